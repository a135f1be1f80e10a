package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"costline-hq/costline/pkg/estimate"
	"costline-hq/costline/pkg/pricing"
	"costline-hq/costline/pkg/takeoff"
)

// RegistrySource supplies the current pricing registry. The pricing
// manager implements it; each run captures the registry once so a hot
// reload mid-run cannot mix rate tables.
type RegistrySource interface {
	Registry() *pricing.Registry
}

// ControllerConfig configures the reconciliation controller.
type ControllerConfig struct {
	// FetchTimeout bounds one full-state pull including retries.
	FetchTimeout time.Duration
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *ControllerConfig) ApplyDefaults() {
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 2 * time.Minute
	}
}

// keyState tracks one key's reconciliation lifecycle. The pending flag
// is a single bit: however many triggers arrive while a run is active,
// exactly one follow-up run happens.
type keyState struct {
	phase   Phase
	pending bool
}

// Controller turns change notifications into reconciliation runs. Each
// run pulls the full page state, prices it against the current registry,
// and publishes the resulting estimate. Runs for the same key never
// overlap; runs for distinct keys proceed in parallel. In-flight runs
// are never cancelled by new triggers.
type Controller struct {
	fetcher takeoff.Fetcher
	rules   RegistrySource
	store   *Store
	obs     Observer
	cfg     ControllerConfig
	logger  *slog.Logger

	mu     sync.Mutex
	states map[Key]*keyState
	closed bool
	wg     sync.WaitGroup
}

// NewController creates a controller publishing into the given store.
// A nil observer disables telemetry.
func NewController(fetcher takeoff.Fetcher, rules RegistrySource, store *Store, obs Observer, cfg ControllerConfig) *Controller {
	cfg.ApplyDefaults()
	if obs == nil {
		obs = NopObserver{}
	}
	return &Controller{
		fetcher: fetcher,
		rules:   rules,
		store:   store,
		obs:     obs,
		cfg:     cfg,
		logger:  slog.Default().With("component", "reconcile"),
		states:  make(map[Key]*keyState),
	}
}

// Notify signals that the key's source data changed. It returns
// immediately: if no run is active for the key a new run starts in the
// background, otherwise the trigger coalesces into the single pending
// rerun slot.
func (c *Controller) Notify(key Key) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.obs.ObserveTrigger(TriggerDropped)
		return
	}

	st, ok := c.states[key]
	if !ok {
		st = &keyState{phase: PhaseIdle}
		c.states[key] = st
	}
	if st.phase.Active() {
		st.pending = true
		c.mu.Unlock()
		c.obs.ObserveTrigger(TriggerCoalesced)
		c.logger.Debug("trigger coalesced into pending rerun", "key", key.String())
		return
	}

	st.phase = PhaseTriggered
	st.pending = false
	c.wg.Add(1)
	c.mu.Unlock()

	c.obs.ObserveTrigger(TriggerStarted)
	go c.runLoop(key, st)
}

// Phase reports the key's current reconciliation phase.
func (c *Controller) Phase(key Key) Phase {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.states[key]
	if !ok {
		return PhaseIdle
	}
	return st.phase
}

// Shutdown stops accepting triggers and waits for in-flight runs to
// finish, or for the context to expire.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop executes runs for one key until no trigger is pending. Only
// the goroutine that finishes a run may start the queued rerun, which
// keeps runs for the key strictly serial.
func (c *Controller) runLoop(key Key, st *keyState) {
	defer c.wg.Done()

	for {
		result := c.runOnce(key, st)

		c.mu.Lock()
		if st.pending && !c.closed {
			st.pending = false
			st.phase = PhaseTriggered
			c.mu.Unlock()
			continue
		}
		if result == RunPublished {
			st.phase = PhasePublished
		} else {
			st.phase = PhaseFailed
		}
		c.mu.Unlock()
		return
	}
}

// runOnce performs a single fetch and aggregate pass for the key.
func (c *Controller) runOnce(key Key, st *keyState) string {
	start := time.Now()
	logger := c.logger.With("key", key.String())

	c.setPhase(st, PhaseFetching)
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.FetchTimeout)
	snapshot, err := c.fetcher.Fetch(ctx, key.DocumentID, key.PageNumber)
	cancel()
	fetchDuration := time.Since(start)
	c.obs.ObserveStage(StageFetch, fetchDuration)
	if err != nil {
		logger.Error("state fetch failed, marking estimate stale",
			"error", err,
			"duration_ms", fetchDuration.Milliseconds())
		c.store.MarkStale(key)
		c.obs.ObserveRun(RunFailed, time.Since(start))
		return RunFailed
	}

	c.setPhase(st, PhaseAggregating)
	aggStart := time.Now()
	est, err := estimate.Aggregate(snapshot, c.rules.Registry())
	c.obs.ObserveStage(StageAggregate, time.Since(aggStart))
	if err != nil {
		logger.Error("aggregation failed, marking estimate stale",
			"error", err,
			"zones", len(snapshot.Zones))
		c.store.MarkStale(key)
		c.obs.ObserveRun(RunFailed, time.Since(start))
		return RunFailed
	}

	c.store.Publish(key, est)

	warnings := make(map[string]int)
	for _, w := range est.Warnings {
		warnings[string(w.Kind)]++
	}
	for kind, count := range warnings {
		c.obs.ObserveWarnings(kind, count)
	}
	total, _ := est.Total.Float64()
	c.obs.ObserveEstimate(key, total)
	c.obs.ObserveRun(RunPublished, time.Since(start))

	logger.Info("estimate published",
		"lines", len(est.Lines),
		"total", est.Total.StringFixed(2),
		"warnings", len(est.Warnings),
		"duration_ms", time.Since(start).Milliseconds())
	return RunPublished
}

func (c *Controller) setPhase(st *keyState, p Phase) {
	c.mu.Lock()
	st.phase = p
	c.mu.Unlock()
}
