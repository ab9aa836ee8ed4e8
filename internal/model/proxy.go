// Package model defines shared types for the proxy.
package model

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// ProxyRequest represents a client request to be forwarded upstream.
type ProxyRequest struct {
	Ctx    context.Context
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   io.ReadCloser
}

// OutboundRequest is the rewritten form of a ProxyRequest, ready to be sent
// to the upstream: https URL on the upstream host, sanitized headers, body
// present only for methods that may carry one.
//
// Host is carried separately because Go's HTTP client takes the Host header
// from http.Request.Host, not from the header map.
type OutboundRequest struct {
	Method string
	URL    string
	Host   string
	Header http.Header
	Body   io.Reader
}

// ProxyResponse represents the response returned to the client. Body is nil
// for bodiless statuses (101, 204, 205, 304).
type ProxyResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}
