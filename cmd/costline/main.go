// Costline is a webhook-driven cost estimation service for construction
// takeoffs.
//
// It listens for change notifications from a takeoff service, pulls the
// full measurement hierarchy for the affected page, prices it against a
// configurable rule set, and serves the resulting estimates over HTTP:
//   - Full-state reconciliation with per-page trigger coalescing
//   - Hierarchical cost aggregation with attachment handling
//   - Hot-reloaded pricing rules
//   - Prometheus metrics and health probes
//
// Usage:
//
//	# Start the estimator with default configuration
//	costline run
//
//	# Start with a custom configuration file
//	costline run --config /path/to/config.yaml
//
//	# Validate configuration and pricing rules without starting
//	costline validate
//
//	# Show version information
//	costline version
package main

func main() {
	Execute()
}
