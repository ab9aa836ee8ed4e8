package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func cliWithPath(path string) *CLI {
	return &CLI{Config: path}
}

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Full(t *testing.T) {
	path := writeConfig(t, `
[server]
host = "127.0.0.1"
port = 9000

[upstream]
host = "files.example.com"
timeout_seconds = 30

[policy]
normal_status_codes = "200,301,302"
force_inline_types = "application/zip"
force_download_types = "text/csv"

[log]
level = "debug"
format = "text"
`)

	cfg, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr() != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q, want %q", cfg.Server.Addr(), "127.0.0.1:9000")
	}
	if cfg.Upstream.Host != "files.example.com" {
		t.Errorf("Upstream.Host = %q, want %q", cfg.Upstream.Host, "files.example.com")
	}
	if cfg.Policy.NormalStatusCodes != "200,301,302" {
		t.Errorf("Policy.NormalStatusCodes = %q, want %q", cfg.Policy.NormalStatusCodes, "200,301,302")
	}
	if cfg.Policy.ForceInlineTypes != "application/zip" {
		t.Errorf("Policy.ForceInlineTypes = %q, want %q", cfg.Policy.ForceInlineTypes, "application/zip")
	}
	if cfg.Policy.ForceDownloadTypes != "text/csv" {
		t.Errorf("Policy.ForceDownloadTypes = %q, want %q", cfg.Policy.ForceDownloadTypes, "text/csv")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
[upstream]
host = "files.example.com"
`)

	cfg, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8000)
	}
	if cfg.Server.BodyMaxBytes != 10*1024*1024 {
		t.Errorf("Server.BodyMaxBytes = %d, want %d", cfg.Server.BodyMaxBytes, 10*1024*1024)
	}
	if cfg.Upstream.TimeoutSeconds != 120 {
		t.Errorf("Upstream.TimeoutSeconds = %d, want %d", cfg.Upstream.TimeoutSeconds, 120)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "json")
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, "/metrics")
	}
	if cfg.Policy.NormalStatusCodes != "" {
		t.Errorf("Policy.NormalStatusCodes = %q, want empty (policy layer owns the default)", cfg.Policy.NormalStatusCodes)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// No config file anywhere and no upstream host: still a valid start.
	cfg, err := Load(&CLI{})
	if err != nil {
		t.Fatalf("Load() error = %v; missing config file must not be fatal", err)
	}
	if cfg.Upstream.Host != "" {
		t.Errorf("Upstream.Host = %q, want empty", cfg.Upstream.Host)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want default 8000", cfg.Server.Port)
	}
}

func TestLoad_ExplicitConfigMissing(t *testing.T) {
	_, err := Load(cliWithPath("/nonexistent/config.toml"))
	if err == nil {
		t.Fatal("Load() expected error for explicitly named missing config, got nil")
	}
}

func TestLoad_CLIOverrides(t *testing.T) {
	path := writeConfig(t, `
[upstream]
host = "files.example.com"

[policy]
normal_status_codes = "200"
`)

	cli := cliWithPath(path)
	cli.Host = "127.0.0.1"
	cli.Port = 3000
	cli.UpstreamHost = "override.example.com"
	cli.StatusCodes = "200,404"
	cli.ForceInline = "application/zip"
	cli.ForceDownload = "image/"
	cli.LogLevel = "warn"

	cfg, err := Load(cli)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr() != "127.0.0.1:3000" {
		t.Errorf("Addr() = %q, want %q", cfg.Server.Addr(), "127.0.0.1:3000")
	}
	if cfg.Upstream.Host != "override.example.com" {
		t.Errorf("Upstream.Host = %q, want CLI override", cfg.Upstream.Host)
	}
	if cfg.Policy.NormalStatusCodes != "200,404" {
		t.Errorf("Policy.NormalStatusCodes = %q, want CLI override", cfg.Policy.NormalStatusCodes)
	}
	if cfg.Policy.ForceInlineTypes != "application/zip" {
		t.Errorf("Policy.ForceInlineTypes = %q, want CLI override", cfg.Policy.ForceInlineTypes)
	}
	if cfg.Policy.ForceDownloadTypes != "image/" {
		t.Errorf("Policy.ForceDownloadTypes = %q, want CLI override", cfg.Policy.ForceDownloadTypes)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want CLI override", cfg.Log.Level)
	}
}

func TestLoad_UpstreamHostWithScheme(t *testing.T) {
	tests := []struct {
		name string
		host string
	}{
		{"scheme", "https://files.example.com"},
		{"path", "files.example.com/base"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, `
[upstream]
host = "`+tt.host+`"
`)
			_, err := Load(cliWithPath(path))
			if err == nil {
				t.Fatalf("Load() expected error for upstream.host=%q, got nil", tt.host)
			}
			if !strings.Contains(err.Error(), "upstream.host") {
				t.Errorf("error = %q, want mention of upstream.host", err)
			}
		})
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "verbose"
`)

	_, err := Load(cliWithPath(path))
	if err == nil {
		t.Fatal("Load() expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "log.level") {
		t.Errorf("error = %q, want mention of log.level", err)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 70000
`)

	_, err := Load(cliWithPath(path))
	if err == nil {
		t.Fatal("Load() expected error for out-of-range port, got nil")
	}
}

func TestLoad_RateLimitEnabledWithoutRate(t *testing.T) {
	path := writeConfig(t, `
[server.rate_limit]
enabled = true
requests_per_second = 0
`)

	_, err := Load(cliWithPath(path))
	if err == nil {
		t.Fatal("Load() expected error for enabled rate limit without a rate, got nil")
	}
}

func TestLoad_MetricsPathNoLeadingSlash(t *testing.T) {
	path := writeConfig(t, `
[metrics]
enabled = true
path = "metrics"
`)

	_, err := Load(cliWithPath(path))
	if err == nil {
		t.Fatal("Load() expected error for metrics.path without leading slash, got nil")
	}
	if !strings.Contains(err.Error(), "metrics.path") {
		t.Errorf("error = %q, want mention of metrics.path", err)
	}
}

func TestLoad_MetricsPathConflictsWithReservedRoute(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"healthz exact", "/healthz"},
		{"healthz sub", "/healthz/metrics"},
		{"proxy status", "/proxy/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, `
[metrics]
enabled = true
path = "`+tt.path+`"
`)
			_, err := Load(cliWithPath(path))
			if err == nil {
				t.Fatalf("Load() expected error for metrics.path=%q conflicting with route, got nil", tt.path)
			}
			if !strings.Contains(err.Error(), "conflicts") {
				t.Errorf("error = %q, want mention of conflict", err)
			}
		})
	}
}

func TestLoad_MetricsDisabledSkipsPathValidation(t *testing.T) {
	path := writeConfig(t, `
[metrics]
enabled = false
path = "bad-no-slash"
`)

	_, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v; disabled metrics should skip path validation", err)
	}
}

func TestServerConfig_Addr(t *testing.T) {
	sc := &ServerConfig{Host: "127.0.0.1", Port: 3000}
	want := "127.0.0.1:3000"
	if got := sc.Addr(); got != want {
		t.Errorf("Addr() = %q, want %q", got, want)
	}
}
