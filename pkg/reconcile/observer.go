package reconcile

import "time"

// Trigger outcomes reported through ObserveTrigger.
const (
	TriggerStarted   = "started"
	TriggerCoalesced = "coalesced"
	TriggerDropped   = "dropped"
)

// Run results reported through ObserveRun.
const (
	RunPublished = "published"
	RunFailed    = "failed"
)

// Run stages reported through ObserveStage.
const (
	StageFetch     = "fetch"
	StageAggregate = "aggregate"
)

// Observer receives reconciliation telemetry events. The telemetry
// collector implements it; tests substitute their own recorders.
type Observer interface {
	ObserveTrigger(outcome string)
	ObserveRun(result string, duration time.Duration)
	ObserveStage(stage string, duration time.Duration)
	ObserveFetchRetry()
	ObserveWarnings(kind string, count int)
	ObserveEstimate(key Key, total float64)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) ObserveTrigger(string)              {}
func (NopObserver) ObserveRun(string, time.Duration)   {}
func (NopObserver) ObserveStage(string, time.Duration) {}
func (NopObserver) ObserveFetchRetry()                 {}
func (NopObserver) ObserveWarnings(string, int)        {}
func (NopObserver) ObserveEstimate(Key, float64)       {}
