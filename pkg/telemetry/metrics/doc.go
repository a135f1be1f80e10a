// Package metrics exposes the estimator's Prometheus metrics.
//
// The Collector registers every metric against a private registry and
// implements the reconciliation observer interface, so trigger, run,
// stage, retry, warning, and published-total metrics all flow through
// one component. Metric names follow the
// <namespace>_<subsystem>_<name> convention, costline_estimator_* by
// default.
package metrics
