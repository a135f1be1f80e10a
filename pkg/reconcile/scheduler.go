package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ResyncConfig configures the periodic resync sweep.
type ResyncConfig struct {
	// Schedule is a standard cron expression. Empty disables resync.
	Schedule string
}

// Scheduler periodically re-triggers every key that has ever published
// an estimate. Resync is a safety net against missed or dropped webhook
// deliveries: each sweep feeds keys back through Notify, so normal
// coalescing still applies.
type Scheduler struct {
	controller *Controller
	store      *Store
	cfg        ResyncConfig
	cron       *cron.Cron
	mu         sync.Mutex
	logger     *slog.Logger
	running    bool
}

// NewScheduler creates a resync scheduler over the given store.
func NewScheduler(controller *Controller, store *Store, cfg ResyncConfig) *Scheduler {
	return &Scheduler{
		controller: controller,
		store:      store,
		cfg:        cfg,
		cron:       cron.New(),
		logger:     slog.Default().With("component", "reconcile.scheduler"),
	}
}

// Start begins scheduled resync sweeps.
//
// Common cron expressions:
//   - "*/5 * * * *"  - Every 5 minutes
//   - "0 * * * *"    - Hourly
//
// If the schedule is empty, the scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.Schedule == "" {
		s.logger.Info("resync schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.cfg.Schedule, err)
	}

	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.runSweep); err != nil {
		return fmt.Errorf("failed to schedule resync: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("resync scheduler started", "schedule", s.cfg.Schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runSweep re-triggers every known key.
func (s *Scheduler) runSweep() {
	keys := s.store.Keys()
	if len(keys) == 0 {
		s.logger.Debug("resync sweep found no keys")
		return
	}

	s.logger.Info("starting resync sweep", "keys", len(keys))
	for _, key := range keys {
		s.controller.Notify(key)
	}
}

// Stop stops the scheduler and waits for a running sweep to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("resync scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled sweep time.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
