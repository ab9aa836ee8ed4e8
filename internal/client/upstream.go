// Package client provides the HTTP client used to reach the upstream host.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"passthrough-proxy-go/internal/config"
	"passthrough-proxy-go/internal/metrics"
	"passthrough-proxy-go/internal/model"
)

// UpstreamClient sends rewritten requests to the upstream host. Redirects are
// followed (the Go client default), so the caller only ever sees the final
// response.
type UpstreamClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewUpstreamClient creates an UpstreamClient with connection pooling and timeouts.
// The metrics parameter is optional; pass nil to disable upstream metrics recording.
func NewUpstreamClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *UpstreamClient {
	transport := &http.Transport{
		MaxIdleConns:        cfg.Upstream.IdleConnections,
		MaxIdleConnsPerHost: cfg.Upstream.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &UpstreamClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
		},
		logger:  logger.With("component", "upstream_client"),
		metrics: m,
	}
}

// Do sends an OutboundRequest and returns the raw upstream response. The
// caller is responsible for closing the response body.
//
// ctx controls the lifetime of the upstream call: when it is canceled (e.g.
// the client disconnects), the upstream request is canceled with it.
func (c *UpstreamClient) Do(ctx context.Context, out *model.OutboundRequest) (*model.ProxyResponse, error) {
	req, err := http.NewRequestWithContext(ctx, out.Method, out.URL, out.Body)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header = out.Header
	// Virtual-hosted upstreams need the Host header to match; Go takes it
	// from the request field, not the header map.
	req.Host = out.Host

	c.logger.Debug("upstream request",
		"method", out.Method,
		"url", out.URL,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:bodyclose // body ownership transfers to caller via ProxyResponse
	duration := time.Since(start).Seconds()

	method := metrics.NormalizeMethod(out.Method)

	if err != nil {
		if c.metrics != nil {
			c.metrics.UpstreamDuration.WithLabelValues(method).Observe(duration)
		}
		return nil, fmt.Errorf("upstream request: %w", err)
	}

	if c.metrics != nil {
		status := strconv.Itoa(resp.StatusCode)
		c.metrics.UpstreamDuration.WithLabelValues(method).Observe(duration)
		c.metrics.UpstreamResponses.WithLabelValues(method, status).Inc()
	}

	return &model.ProxyResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}
