package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"costline-hq/costline/pkg/config"
	"costline-hq/costline/pkg/reconcile"
)

// Collector owns every Prometheus metric the estimator exposes and
// implements the reconcile.Observer interface so the controller can
// report without depending on this package.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	triggersTotal  *prometheus.CounterVec
	runsTotal      *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	stageDuration  *prometheus.HistogramVec
	fetchRetries   prometheus.Counter
	warningsTotal  *prometheus.CounterVec
	estimateTotals *prometheus.GaugeVec
}

// NewCollector creates a collector registered against the given
// registry. If registry is nil a fresh one is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		triggersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "triggers_total",
				Help:      "Change notifications by outcome (started, coalesced, dropped)",
			},
			[]string{"outcome"},
		),

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Completed reconciliation runs by result",
			},
			[]string{"result"},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "run_duration_seconds",
				Help:      "Full reconciliation run duration by result",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 120.0},
			},
			[]string{"result"},
		),

		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stage_duration_seconds",
				Help:      "Run stage duration (fetch, aggregate)",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"stage"},
		),

		fetchRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "fetch_retries_total",
				Help:      "State fetch retry attempts",
			},
		),

		warningsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "estimate_warnings_total",
				Help:      "Aggregation warnings by kind",
			},
			[]string{"kind"},
		),

		estimateTotals: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "estimate_total",
				Help:      "Latest published estimate total in USD per page",
			},
			[]string{"document", "page"},
		),
	}

	registry.MustRegister(
		c.triggersTotal,
		c.runsTotal,
		c.runDuration,
		c.stageDuration,
		c.fetchRetries,
		c.warningsTotal,
		c.estimateTotals,
	)

	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveTrigger records a change notification outcome.
func (c *Collector) ObserveTrigger(outcome string) {
	if !c.config.Enabled {
		return
	}
	c.triggersTotal.WithLabelValues(outcome).Inc()
}

// ObserveRun records a completed run and its duration.
func (c *Collector) ObserveRun(result string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.runsTotal.WithLabelValues(result).Inc()
	c.runDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// ObserveStage records one run stage's duration.
func (c *Collector) ObserveStage(stage string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// ObserveFetchRetry records one fetch retry attempt.
func (c *Collector) ObserveFetchRetry() {
	if !c.config.Enabled {
		return
	}
	c.fetchRetries.Inc()
}

// ObserveWarnings records aggregation warnings of one kind.
func (c *Collector) ObserveWarnings(kind string, count int) {
	if !c.config.Enabled {
		return
	}
	c.warningsTotal.WithLabelValues(kind).Add(float64(count))
}

// ObserveEstimate records the latest published total for a page.
func (c *Collector) ObserveEstimate(key reconcile.Key, total float64) {
	if !c.config.Enabled {
		return
	}
	c.estimateTotals.WithLabelValues(key.DocumentID.String(), strconv.Itoa(key.PageNumber)).Set(total)
}
