package config

import "time"

// Config is the root configuration structure for the Costline estimator.
// It contains all configuration sections for the HTTP server, the
// takeoff service connection, pricing rules, the reconciliation loop,
// and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen
	// address, timeouts, and CORS settings.
	Server ServerConfig `yaml:"server"`

	// Takeoff contains configuration for the takeoff service the
	// estimator pulls page state from.
	Takeoff TakeoffConfig `yaml:"takeoff"`

	// Pricing contains configuration for the pricing rules file and its
	// hot reload behavior.
	Pricing PricingConfig `yaml:"pricing"`

	// Reconcile contains configuration for the reconciliation loop.
	Reconcile ReconcileConfig `yaml:"reconcile"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8090", "0.0.0.0:8090").
	// Default: "127.0.0.1:8090"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire
	// request, including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of
	// the response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown, covering both draining HTTP requests and finishing
	// in-flight reconciliation runs.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration for the HTTP server.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers.
	// Default: ["Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is the maximum age in seconds for preflight caching.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// TakeoffConfig contains configuration for the takeoff service client.
type TakeoffConfig struct {
	// BaseURL is the base URL of the takeoff service.
	// Example: "http://localhost:8001"
	BaseURL string `yaml:"base_url"`

	// Timeout is the per-request timeout for state fetches.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retries after a failed fetch.
	// Retries back off exponentially. Default: 3
	MaxRetries int `yaml:"max_retries"`

	// MaxIdleConns limits idle connections in the pool. Default: 10
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost limits idle connections per host. Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout closes idle connections after this duration.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// PricingConfig contains configuration for pricing rules.
type PricingConfig struct {
	// RulesPath is the path to the YAML pricing rules file.
	// Default: "./pricing.yaml"
	RulesPath string `yaml:"rules_path"`

	// Watch enables hot reload of the rules file on change.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval coalesces rapid file change events before a
	// reload. Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// ReconcileConfig contains configuration for the reconciliation loop.
type ReconcileConfig struct {
	// FetchTimeout bounds one full-state pull including retries.
	// Default: 2m
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// ResyncSchedule is a standard cron expression for periodic resync
	// of all known pages. Empty disables resync.
	// Example: "*/15 * * * *"
	ResyncSchedule string `yaml:"resync_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix. Default: "costline"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem segment. Default: "estimator"
	Subsystem string `yaml:"subsystem"`

	// Path is the HTTP path the metrics handler is mounted at.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
