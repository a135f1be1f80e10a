package config

import (
	"errors"
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.Takeoff.BaseURL = "http://localhost:8001"
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "empty listen address",
			mutate:    func(c *Config) { c.Server.ListenAddress = "" },
			wantField: "server.listen_address",
		},
		{
			name:      "negative read timeout",
			mutate:    func(c *Config) { c.Server.ReadTimeout = -1 },
			wantField: "server.read_timeout",
		},
		{
			name:      "zero shutdown timeout",
			mutate:    func(c *Config) { c.Server.ShutdownTimeout = 0 },
			wantField: "server.shutdown_timeout",
		},
		{
			name:      "missing base url",
			mutate:    func(c *Config) { c.Takeoff.BaseURL = "" },
			wantField: "takeoff.base_url",
		},
		{
			name:      "base url without scheme",
			mutate:    func(c *Config) { c.Takeoff.BaseURL = "localhost:8001" },
			wantField: "takeoff.base_url",
		},
		{
			name:      "negative retries",
			mutate:    func(c *Config) { c.Takeoff.MaxRetries = -1 },
			wantField: "takeoff.max_retries",
		},
		{
			name:      "empty rules path",
			mutate:    func(c *Config) { c.Pricing.RulesPath = "" },
			wantField: "pricing.rules_path",
		},
		{
			name:      "bad resync schedule",
			mutate:    func(c *Config) { c.Reconcile.ResyncSchedule = "every day" },
			wantField: "reconcile.resync_schedule",
		},
		{
			name:      "bad log level",
			mutate:    func(c *Config) { c.Telemetry.Logging.Level = "verbose" },
			wantField: "telemetry.logging.level",
		},
		{
			name:      "bad log format",
			mutate:    func(c *Config) { c.Telemetry.Logging.Format = "xml" },
			wantField: "telemetry.logging.format",
		},
		{
			name:      "metrics path without slash",
			mutate:    func(c *Config) { c.Telemetry.Metrics.Path = "metrics" },
			wantField: "telemetry.metrics.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() accepted invalid config")
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error type = %T, want ValidationError", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for field %q in %v", tt.wantField, verr.Errors)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.ListenAddress = ""
	cfg.Takeoff.BaseURL = ""
	cfg.Pricing.RulesPath = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() accepted invalid config")
	}
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want ValidationError", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("got %d errors, want 3: %v", len(verr.Errors), verr.Errors)
	}
	if !strings.Contains(err.Error(), "3 errors") {
		t.Errorf("message does not report error count: %s", err.Error())
	}
}
