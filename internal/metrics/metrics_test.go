package metrics

import "testing"

func TestNew_RegistersCollectors(t *testing.T) {
	m := New()

	// Touch each collector so Gather has something to report.
	m.RequestsTotal.WithLabelValues("GET", "200", "proxy").Inc()
	m.RequestDuration.WithLabelValues("GET", "200", "proxy").Observe(0.1)
	m.RequestsInFlight.Inc()
	m.UpstreamDuration.WithLabelValues("GET").Observe(0.1)
	m.UpstreamResponses.WithLabelValues("GET", "200").Inc()
	m.Dispositions.WithLabelValues("inline").Inc()
	m.ErrorPages.WithLabelValues("status").Inc()

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	gathered := make(map[string]bool)
	for _, f := range families {
		gathered[f.GetName()] = true
	}

	for _, name := range []string{
		"passthrough_proxy_http_requests_total",
		"passthrough_proxy_http_request_duration_seconds",
		"passthrough_proxy_http_requests_in_flight",
		"passthrough_proxy_upstream_request_duration_seconds",
		"passthrough_proxy_upstream_responses_total",
		"passthrough_proxy_disposition_decisions_total",
		"passthrough_proxy_error_pages_total",
	} {
		if !gathered[name] {
			t.Errorf("metric family %q not gathered", name)
		}
	}
}

func TestNormalizeMethod(t *testing.T) {
	tests := []struct {
		method string
		want   string
	}{
		{"GET", "GET"},
		{"POST", "POST"},
		{"HEAD", "HEAD"},
		{"XYZZY", "other"},
		{"get", "other"},
	}

	for _, tt := range tests {
		if got := NormalizeMethod(tt.method); got != tt.want {
			t.Errorf("NormalizeMethod(%q) = %q, want %q", tt.method, got, tt.want)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/healthz", "/healthz"},
		{"/proxy/status", "/proxy/status"},
		{"/metrics", "/metrics"},
		{"/", "proxy"},
		{"/files/report.pdf", "proxy"},
		{"/healthzz", "proxy"},
	}

	for _, tt := range tests {
		if got := NormalizePath(tt.path); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
