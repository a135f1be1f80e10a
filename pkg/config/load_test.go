package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
takeoff:
  base_url: "http://localhost:8001"
`

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("listen address = %q, want %q", cfg.Server.ListenAddress, DefaultListenAddress)
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("read timeout = %v, want %v", cfg.Server.ReadTimeout, DefaultReadTimeout)
	}
	if cfg.Takeoff.MaxRetries != DefaultTakeoffMaxRetries {
		t.Errorf("max retries = %d, want %d", cfg.Takeoff.MaxRetries, DefaultTakeoffMaxRetries)
	}
	if cfg.Pricing.RulesPath != DefaultPricingRulesPath {
		t.Errorf("rules path = %q, want %q", cfg.Pricing.RulesPath, DefaultPricingRulesPath)
	}
	if cfg.Reconcile.FetchTimeout != DefaultReconcileFetchTimeout {
		t.Errorf("fetch timeout = %v, want %v", cfg.Reconcile.FetchTimeout, DefaultReconcileFetchTimeout)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("metrics not enabled by default")
	}
	if cfg.Telemetry.Metrics.Namespace != "costline" {
		t.Errorf("namespace = %q, want costline", cfg.Telemetry.Metrics.Namespace)
	}
	if !cfg.Server.CORS.Enabled {
		t.Error("CORS not enabled by default")
	}
}

func TestLoadConfig_ExplicitValuesWin(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
server:
  listen_address: "0.0.0.0:9999"
  cors:
    enabled: false
takeoff:
  base_url: "http://takeoff:8001"
  timeout: 10s
telemetry:
  metrics:
    enabled: false
`))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9999" {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Takeoff.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", cfg.Takeoff.Timeout)
	}
	if cfg.Server.CORS.Enabled {
		t.Error("explicit cors.enabled=false ignored")
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("explicit metrics.enabled=false ignored")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Fatal("LoadConfig() accepted a missing file")
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	if _, err := LoadConfig(writeConfig(t, "takeoff: [")); err == nil {
		t.Fatal("LoadConfig() accepted malformed YAML")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	t.Setenv("COSTLINE_SERVER_LISTEN_ADDRESS", "127.0.0.1:7070")
	t.Setenv("COSTLINE_TAKEOFF_BASE_URL", "http://override:8001")
	t.Setenv("COSTLINE_TAKEOFF_MAX_RETRIES", "5")
	t.Setenv("COSTLINE_RECONCILE_RESYNC_SCHEDULE", "*/5 * * * *")
	t.Setenv("COSTLINE_LOGGING_LEVEL", "debug")

	cfg, err := LoadConfigWithEnvOverrides(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:7070" {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Takeoff.BaseURL != "http://override:8001" {
		t.Errorf("base url = %q", cfg.Takeoff.BaseURL)
	}
	if cfg.Takeoff.MaxRetries != 5 {
		t.Errorf("max retries = %d, want 5", cfg.Takeoff.MaxRetries)
	}
	if cfg.Reconcile.ResyncSchedule != "*/5 * * * *" {
		t.Errorf("resync schedule = %q", cfg.Reconcile.ResyncSchedule)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("logging level = %q, want debug", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverrideFails(t *testing.T) {
	t.Setenv("COSTLINE_RECONCILE_RESYNC_SCHEDULE", "not a cron")

	_, err := LoadConfigWithEnvOverrides(writeConfig(t, minimalConfig))
	if err == nil {
		t.Fatal("invalid env override passed validation")
	}
	if !strings.Contains(err.Error(), "resync_schedule") {
		t.Errorf("error does not name the failing field: %v", err)
	}
}
