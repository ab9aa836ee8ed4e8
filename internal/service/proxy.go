// Package service implements the core request-rewrite and
// response-transformation pipeline.
package service

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"passthrough-proxy-go/internal/client"
	"passthrough-proxy-go/internal/config"
	"passthrough-proxy-go/internal/metrics"
	"passthrough-proxy-go/internal/model"
	"passthrough-proxy-go/internal/policy"
	"passthrough-proxy-go/internal/statuspage"
)

// notConfiguredMessage is the fixed message rendered when no upstream host
// is configured.
const notConfiguredMessage = "Proxy is not configured: set GET_URL (or upstream.host) to the upstream hostname."

// strippedRequestHeaders are removed from every outbound request. Host is
// reset to the upstream host; the rest identify the client or the edge in
// front of this proxy and must not leak upstream.
var strippedRequestHeaders = []string{
	"Host",
	"CF-Connecting-IP",
	"CF-IPCountry",
	"CF-RAY",
	"CF-Visitor",
	"CDN-Loop",
	"X-Forwarded-For",
	"X-Forwarded-Proto",
	"X-Real-IP",
	"True-Client-IP",
}

// ProxyService handles one inbound request end to end: rewrite, fetch,
// transform. It holds no per-request state and is safe for concurrent use.
type ProxyService struct {
	client  *client.UpstreamClient
	cfg     *config.Config
	rules   *policy.Rules
	logger  *slog.Logger
	metrics *metrics.Metrics

	// Outbound scheme, normally https. Overridable so tests can point the
	// proxy at a plain-HTTP httptest server.
	upstreamScheme string
}

// NewProxyService creates a ProxyService. The metrics parameter is optional;
// pass nil to disable policy metrics recording.
//
// An empty upstream host is not an error here: the service answers every
// request with a configuration-error page until one is set.
func NewProxyService(c *client.UpstreamClient, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *ProxyService {
	return &ProxyService{
		client:         c,
		cfg:            cfg,
		rules:          policy.NewRules(cfg.Policy.NormalStatusCodes, cfg.Policy.ForceInlineTypes, cfg.Policy.ForceDownloadTypes),
		logger:         logger.With("component", "proxy_service"),
		metrics:        m,
		upstreamScheme: "https",
	}
}

// NewProxyServiceForTest creates a ProxyService that talks plain HTTP to an
// upstream host that may carry a port. Intended only for tests that use
// httptest servers on localhost.
func NewProxyServiceForTest(c *client.UpstreamClient, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *ProxyService {
	s := NewProxyService(c, cfg, logger, m)
	s.upstreamScheme = "http"
	return s
}

// Forward handles one inbound request: rewrite it for the upstream, fetch,
// and transform the response per the status and disposition policy.
//
// Transport failures (DNS, connect, TLS, timeout) are returned as errors and
// mapped to a caller-visible response by the handler layer; everything else
// is converted into a ProxyResponse here, so each request gets exactly one of
// pass-through, bodiless, or error page.
func (s *ProxyService) Forward(pr *model.ProxyRequest) (*model.ProxyResponse, error) {
	out, ok := s.rewrite(pr)
	if !ok {
		s.logger.Warn("upstream host not configured, serving error page",
			"path", pr.Path,
		)
		s.countErrorPage("config")
		return statuspage.Render(http.StatusInternalServerError, notConfiguredMessage), nil
	}

	s.logger.Debug("forwarding request",
		"method", pr.Method,
		"path", pr.Path,
	)

	resp, err := s.client.Do(pr.Ctx, out)
	if err != nil {
		return nil, fmt.Errorf("forward to upstream: %w", err)
	}

	return s.transform(resp), nil
}

// rewrite derives the outbound request: URL rebuilt on the upstream host with
// the inbound port discarded and the scheme forced, headers sanitized, body
// carried only for methods that may have one. Returns false when no upstream
// host is configured.
func (s *ProxyService) rewrite(pr *model.ProxyRequest) (*model.OutboundRequest, bool) {
	host := strings.TrimSpace(s.cfg.Upstream.Host)
	if host == "" {
		return nil, false
	}

	u := url.URL{
		Scheme:   s.upstreamScheme,
		Host:     host,
		Path:     pr.Path,
		RawQuery: pr.Query.Encode(),
	}

	// GET and HEAD never carry a body upstream, even if the inbound request
	// attached one.
	var body io.Reader
	if pr.Method != http.MethodGet && pr.Method != http.MethodHead {
		body = pr.Body
	}

	return &model.OutboundRequest{
		Method: pr.Method,
		URL:    u.String(),
		Host:   host,
		Header: sanitizeRequestHeaders(pr.Header),
		Body:   body,
	}, true
}

// sanitizeRequestHeaders clones the inbound headers and removes the
// edge-identity denylist. The inbound header map is never mutated.
func sanitizeRequestHeaders(src http.Header) http.Header {
	dst := src.Clone()
	if dst == nil {
		dst = make(http.Header)
	}
	for _, key := range strippedRequestHeaders {
		dst.Del(key)
	}
	return dst
}

func (s *ProxyService) countDisposition(d policy.Disposition) {
	if s.metrics != nil {
		s.metrics.Dispositions.WithLabelValues(string(d)).Inc()
	}
}

func (s *ProxyService) countErrorPage(kind string) {
	if s.metrics != nil {
		s.metrics.ErrorPages.WithLabelValues(kind).Inc()
	}
}
