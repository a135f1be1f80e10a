package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ManagerConfig contains configuration for the pricing manager.
type ManagerConfig struct {
	// Path is the pricing rules file to load and (optionally) watch.
	Path string

	// Watch enables hot reload of the rules file.
	Watch bool

	// DebounceInterval is the quiet period after a file event before the
	// rules are reloaded (default: 100ms). Editors often produce bursts
	// of write events for a single save.
	DebounceInterval time.Duration
}

// Manager owns the current pricing registry and optionally hot-reloads it
// when the rules file changes. The registry itself stays immutable; a
// reload builds a fresh one and swaps the pointer atomically, so a
// reconciliation run that captured the old pointer keeps pricing against
// a single consistent rule set.
type Manager struct {
	config  ManagerConfig
	logger  *slog.Logger
	current atomic.Pointer[Registry]

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	timer   *time.Timer
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewManager loads the rules file and returns a manager holding the
// resulting registry.
func NewManager(config ManagerConfig) (*Manager, error) {
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = 100 * time.Millisecond
	}

	reg, err := LoadFile(config.Path)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		config: config,
		logger: slog.Default().With("component", "pricing.manager"),
	}
	m.current.Store(reg)

	m.logger.Info("pricing rules loaded",
		"path", config.Path,
		"rules", reg.Len(),
	)

	return m, nil
}

// Registry returns the current immutable registry. Callers must capture
// the returned pointer once per aggregation pass.
func (m *Manager) Registry() *Registry {
	return m.current.Load()
}

// Start begins watching the rules file for changes when watching is
// enabled; otherwise it is a no-op. Watching stops when the context is
// cancelled or Stop is called.
func (m *Manager) Start(ctx context.Context) error {
	if !m.config.Watch {
		m.logger.Debug("pricing hot reload disabled")
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("pricing watcher already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	// Watch the directory rather than the file: editors replace files on
	// save, which would otherwise drop the watch.
	if err := watcher.Add(filepath.Dir(m.config.Path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %q: %w", m.config.Path, err)
	}

	m.watcher = watcher
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.running = true

	go m.watch(ctx)

	m.logger.Info("pricing watcher started",
		"path", m.config.Path,
		"debounce_ms", m.config.DebounceInterval.Milliseconds(),
	)

	return nil
}

// watch is the event loop for the rules file watcher.
func (m *Manager) watch(ctx context.Context) {
	defer close(m.doneCh)

	target := filepath.Clean(m.config.Path)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("pricing watcher stopped (context cancelled)")
			return

		case <-m.stopCh:
			m.logger.Info("pricing watcher stopped")
			return

		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			if filepath.Clean(event.Name) != target && !strings.EqualFold(filepath.Base(event.Name), filepath.Base(target)) {
				continue
			}

			m.logger.Debug("pricing file event detected",
				"path", event.Name,
				"op", event.Op.String(),
			)
			m.debounceReload()

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Error("pricing watcher error", "error", err)
			// Continue watching despite errors
		}
	}
}

// debounceReload schedules a reload after the quiet period, resetting the
// timer on each new event.
func (m *Manager) debounceReload() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.config.DebounceInterval, m.reload)
}

// reload rebuilds the registry from the rules file and swaps it in. A
// failed reload keeps the previous registry.
func (m *Manager) reload() {
	reg, err := LoadFile(m.config.Path)
	if err != nil {
		m.logger.Error("pricing reload failed, keeping previous rules",
			"path", m.config.Path,
			"error", err,
		)
		return
	}

	m.current.Store(reg)
	m.logger.Info("pricing rules reloaded",
		"path", m.config.Path,
		"rules", reg.Len(),
	)
}

// Stop stops the watcher and waits for the event loop to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	timer := m.timer
	m.timer = nil
	m.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}

	<-m.doneCh

	if err := m.watcher.Close(); err != nil {
		m.logger.Error("failed to close pricing watcher", "error", err)
	}
}
