package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8090"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600 // 1 hour

	// Takeoff client defaults
	DefaultTakeoffTimeout             = 30 * time.Second
	DefaultTakeoffMaxRetries          = 3
	DefaultTakeoffMaxIdleConns        = 10
	DefaultTakeoffMaxIdleConnsPerHost = 10
	DefaultTakeoffIdleConnTimeout     = 90 * time.Second

	// Pricing defaults
	DefaultPricingRulesPath        = "./pricing.yaml"
	DefaultPricingWatch            = false
	DefaultPricingDebounceInterval = 100 * time.Millisecond

	// Reconcile defaults
	DefaultReconcileFetchTimeout = 2 * time.Minute

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "costline"
	DefaultMetricsSubsystem = "estimator"
	DefaultMetricsPath      = "/metrics"
)

// ApplyDefaults fills in default values for any zero-valued fields in
// the configuration. It is called automatically by LoadConfig.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// CORS defaults
	if len(cfg.Server.CORS.AllowedOrigins) == 0 {
		cfg.Server.CORS.AllowedOrigins = []string{"*"}
	}
	if len(cfg.Server.CORS.AllowedMethods) == 0 {
		cfg.Server.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.Server.CORS.AllowedHeaders) == 0 {
		cfg.Server.CORS.AllowedHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cfg.Server.CORS.MaxAge == 0 {
		cfg.Server.CORS.MaxAge = DefaultCORSMaxAge
	}

	// Takeoff client defaults
	if cfg.Takeoff.Timeout == 0 {
		cfg.Takeoff.Timeout = DefaultTakeoffTimeout
	}
	if cfg.Takeoff.MaxRetries == 0 {
		cfg.Takeoff.MaxRetries = DefaultTakeoffMaxRetries
	}
	if cfg.Takeoff.MaxIdleConns == 0 {
		cfg.Takeoff.MaxIdleConns = DefaultTakeoffMaxIdleConns
	}
	if cfg.Takeoff.MaxIdleConnsPerHost == 0 {
		cfg.Takeoff.MaxIdleConnsPerHost = DefaultTakeoffMaxIdleConnsPerHost
	}
	if cfg.Takeoff.IdleConnTimeout == 0 {
		cfg.Takeoff.IdleConnTimeout = DefaultTakeoffIdleConnTimeout
	}

	// Pricing defaults
	if cfg.Pricing.RulesPath == "" {
		cfg.Pricing.RulesPath = DefaultPricingRulesPath
	}
	if cfg.Pricing.DebounceInterval == 0 {
		cfg.Pricing.DebounceInterval = DefaultPricingDebounceInterval
	}

	// Reconcile defaults
	if cfg.Reconcile.FetchTimeout == 0 {
		cfg.Reconcile.FetchTimeout = DefaultReconcileFetchTimeout
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}

// NewDefaultConfig returns a configuration populated entirely with
// default values. CORS and metrics are enabled as they are in a fresh
// YAML-less deployment.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.CORS.Enabled = DefaultCORSEnabled
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}
