package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// cliWithPath returns a CLI struct pointing at the given config file.
func cliWithPath(path string) *CLI {
	return &CLI{Config: path}
}

// writeConfig writes data to name inside a temp dir and returns its path.
func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidTOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[server]
host = "0.0.0.0"
port = 9000
body_max_bytes = 5242880

[upstream]
url = "http://upstream.internal:8080/json_api"
header_timeout_seconds = 15
idle_connections = 50

[log]
level = "debug"
format = "json"
`)

	cfg, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9000)
	}
	if cfg.Server.BodyMaxBytes != 5242880 {
		t.Errorf("Server.BodyMaxBytes = %d, want %d", cfg.Server.BodyMaxBytes, 5242880)
	}
	if cfg.Upstream.URL != "http://upstream.internal:8080/json_api" {
		t.Errorf("Upstream.URL = %q", cfg.Upstream.URL)
	}
	if cfg.Upstream.HeaderTimeoutSeconds != 15 {
		t.Errorf("Upstream.HeaderTimeoutSeconds = %d, want %d", cfg.Upstream.HeaderTimeoutSeconds, 15)
	}
	if cfg.Upstream.IdleConnections != 50 {
		t.Errorf("Upstream.IdleConnections = %d, want %d", cfg.Upstream.IdleConnections, 50)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "json")
	}
	if cfg.Source() != path {
		t.Errorf("Source() = %q, want %q", cfg.Source(), path)
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
server:
  port: 8081
  rate_limit:
    enabled: true
    requests_per_second: 5
upstream:
  url: https://example.com/json_api
metrics:
  enabled: true
  path: /internal/metrics
`)

	cfg, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8081 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8081)
	}
	if !cfg.Server.RateLimit.Enabled || cfg.Server.RateLimit.RequestsPerSecond != 5 {
		t.Errorf("RateLimit = %+v, want enabled at 5 rps", cfg.Server.RateLimit)
	}
	if cfg.Upstream.URL != "https://example.com/json_api" {
		t.Errorf("Upstream.URL = %q", cfg.Upstream.URL)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/internal/metrics" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "config.yml", "server: [unclosed\n")

	if _, err := Load(cliWithPath(path)); err == nil {
		t.Fatal("Load() expected parse error, got nil")
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load(&CLI{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("default Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 1337 {
		t.Errorf("default Server.Port = %d, want %d", cfg.Server.Port, 1337)
	}
	if cfg.Server.BodyMaxBytes != 10*1024*1024 {
		t.Errorf("default Server.BodyMaxBytes = %d, want %d", cfg.Server.BodyMaxBytes, 10*1024*1024)
	}
	if cfg.Upstream.URL != "http://127.0.0.1:1337/json_api" {
		t.Errorf("default Upstream.URL = %q, want %q", cfg.Upstream.URL, "http://127.0.0.1:1337/json_api")
	}
	if cfg.Upstream.HeaderTimeoutSeconds != 0 {
		t.Errorf("default Upstream.HeaderTimeoutSeconds = %d, want 0", cfg.Upstream.HeaderTimeoutSeconds)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("default Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("default Log.Format = %q, want %q", cfg.Log.Format, "text")
	}
	if cfg.Metrics.Enabled {
		t.Error("metrics should be disabled by default")
	}
	if cfg.Source() != "defaults" {
		t.Errorf("Source() = %q, want %q", cfg.Source(), "defaults")
	}
}

func TestLoad_UpstreamURLFollowsListenAddress(t *testing.T) {
	tests := []struct {
		name string
		cli  CLI
		want string
	}{
		{"custom port", CLI{Port: 8080}, "http://127.0.0.1:8080/json_api"},
		{"wildcard host", CLI{Host: "0.0.0.0", Port: 9000}, "http://127.0.0.1:9000/json_api"},
		{"ipv6 wildcard", CLI{Host: "::"}, "http://127.0.0.1:1337/json_api"},
		{"explicit host", CLI{Host: "10.0.0.5"}, "http://10.0.0.5:1337/json_api"},
		{"explicit url wins", CLI{Port: 8080, UpstreamURL: "http://other:1/x"}, "http://other:1/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(&tt.cli)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Upstream.URL != tt.want {
				t.Errorf("Upstream.URL = %q, want %q", cfg.Upstream.URL, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(cliWithPath("/nonexistent/config.toml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
}

func TestLoad_CLIOverrides(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[server]
host = "0.0.0.0"
port = 8000

[upstream]
url = "http://from-file:1/json_api"

[log]
level = "info"
`)

	cli := &CLI{
		Config:      path,
		Host:        "127.0.0.1",
		Port:        9999,
		UpstreamURL: "http://from-cli:2/json_api",
		LogLevel:    "debug",
	}

	cfg, err := Load(cli)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want CLI override %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want CLI override %d", cfg.Server.Port, 9999)
	}
	if cfg.Upstream.URL != "http://from-cli:2/json_api" {
		t.Errorf("Upstream.URL = %q, want CLI override", cfg.Upstream.URL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want CLI override %q", cfg.Log.Level, "debug")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"non-http upstream", "[upstream]\nurl = \"ftp://example.com/json_api\"\n"},
		{"relative upstream", "[upstream]\nurl = \"/json_api\"\n"},
		{"negative port", "[server]\nport = -1\n"},
		{"port too large", "[server]\nport = 70000\n"},
		{"negative body limit", "[server]\nbody_max_bytes = -1\n"},
		{"negative header timeout", "[upstream]\nheader_timeout_seconds = -5\n"},
		{"negative idle connections", "[upstream]\nidle_connections = -1\n"},
		{"rate limit without rps", "[server.rate_limit]\nenabled = true\n"},
		{"invalid log level", "[log]\nlevel = \"verbose\"\n"},
		{"invalid log format", "[log]\nformat = \"xml\"\n"},
		{"metrics path without slash", "[metrics]\nenabled = true\npath = \"metrics\"\n"},
		{"metrics path shadows index", "[metrics]\nenabled = true\npath = \"/\"\n"},
		{"metrics path shadows json api", "[metrics]\nenabled = true\npath = \"/json_api\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "config.toml", tt.data)
			if _, err := Load(cliWithPath(path)); err == nil {
				t.Fatal("Load() expected validation error, got nil")
			}
		})
	}
}

func TestLoad_MetricsDisabledSkipsPathValidation(t *testing.T) {
	path := writeConfig(t, "config.toml", "[metrics]\nenabled = false\npath = \"/json_api\"\n")

	if _, err := Load(cliWithPath(path)); err != nil {
		t.Fatalf("Load() error = %v; disabled metrics should skip path validation", err)
	}
}

func TestFindConfigInPaths_Found(t *testing.T) {
	path := writeConfig(t, "config.toml", "")

	if got := findConfigInPaths([]string{"/nonexistent/config.toml", path}); got != path {
		t.Errorf("findConfigInPaths() = %q, want %q", got, path)
	}
}

func TestFindConfigInPaths_NotFound(t *testing.T) {
	if got := findConfigInPaths([]string{"/nonexistent/a.toml", "/nonexistent/b.yaml"}); got != "" {
		t.Errorf("findConfigInPaths() = %q, want empty", got)
	}
}

func TestFindConfigInPaths_Priority(t *testing.T) {
	first := writeConfig(t, "first.toml", "")
	second := writeConfig(t, "second.yaml", "")

	if got := findConfigInPaths([]string{first, second}); got != first {
		t.Errorf("findConfigInPaths() = %q, want %q", got, first)
	}
}

func TestServerConfig_Addr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"127.0.0.1", 1337, "127.0.0.1:1337"},
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"::1", 1337, "[::1]:1337"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			sc := &ServerConfig{Host: tt.host, Port: tt.port}
			if got := sc.Addr(); got != tt.want {
				t.Errorf("Addr() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWarnPermissions_Loose(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits not meaningful on Windows")
	}
	path := writeConfig(t, "config.toml", "# loose")
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg.WarnPermissions(logger)

	if !strings.Contains(buf.String(), "readable by group/others") {
		t.Errorf("expected permission warning, got: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "mode=0644") {
		t.Errorf("expected mode in warning, got: %q", buf.String())
	}
}

func TestWarnPermissions_Strict(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits not meaningful on Windows")
	}
	path := writeConfig(t, "config.toml", "# strict")

	cfg, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg.WarnPermissions(logger)

	if buf.Len() != 0 {
		t.Errorf("expected no warning for 0600 file, got: %q", buf.String())
	}
}

func TestWarnPermissions_NoFile(t *testing.T) {
	cfg := &Config{}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg.WarnPermissions(logger)

	if buf.Len() != 0 {
		t.Errorf("expected no warning without a config file, got: %q", buf.String())
	}
}
