// Package config defines the estimator's configuration structures and
// handles loading them from YAML files with environment overrides.
//
// Loading follows a fixed sequence: parse the YAML file, fill zero
// values with defaults, apply COSTLINE_* environment variables, then
// validate. Validation collects every failing field instead of stopping
// at the first, so a misconfigured deployment reports all problems at
// once.
//
// Example configuration:
//
//	server:
//	  listen_address: "0.0.0.0:8090"
//	takeoff:
//	  base_url: "http://takeoff:8001"
//	pricing:
//	  rules_path: "/etc/costline/pricing.yaml"
//	  watch: true
//	reconcile:
//	  resync_schedule: "*/15 * * * *"
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
package config
