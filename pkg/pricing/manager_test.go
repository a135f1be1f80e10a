package pricing

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func waitForRate(t *testing.T, m *Manager, category, unit, want string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if rule, ok := m.Registry().Resolve(category, unit); ok && rule.Rate.Equal(decimal.RequireFromString(want)) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	rule, ok := m.Registry().Resolve(category, unit)
	t.Fatalf("rate for %s/%s never became %s (found=%v rule=%+v)", category, unit, want, ok, rule)
}

func TestManager_LoadsInitialRules(t *testing.T) {
	path := writeRules(t, sampleRules)
	m, err := NewManager(ManagerConfig{Path: path})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	defer m.Stop()

	if m.Registry().Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Registry().Len())
	}
}

func TestManager_LoadFailure(t *testing.T) {
	if _, err := NewManager(ManagerConfig{Path: "does-not-exist.yaml"}); err == nil {
		t.Error("NewManager() error = nil, want error for missing file")
	}
}

func TestManager_HotReload(t *testing.T) {
	path := writeRules(t, sampleRules)
	m, err := NewManager(ManagerConfig{
		Path:             path,
		Watch:            true,
		DebounceInterval: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	defer m.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	before := m.Registry()

	updated := `rules:
  - category: Window
    unit: EA
    rate: "225.00"
`
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("rewriting rules: %v", err)
	}

	waitForRate(t, m, "Window", "EA", "225.00")

	// The old registry pointer is untouched: a run that captured it keeps
	// pricing against the original rules.
	if rule, ok := before.Resolve("Window", "EA"); !ok || !rule.Rate.Equal(decimal.RequireFromString("200.00")) {
		t.Errorf("captured registry changed: ok=%v rate=%s", ok, rule.Rate)
	}
}

func TestManager_KeepsPreviousOnBadReload(t *testing.T) {
	path := writeRules(t, sampleRules)
	m, err := NewManager(ManagerConfig{
		Path:             path,
		Watch:            true,
		DebounceInterval: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	defer m.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("rules: []\n"), 0o644); err != nil {
		t.Fatalf("rewriting rules: %v", err)
	}

	// The bad file must never replace the working registry. Give the
	// debounced reload time to fire, then check nothing changed.
	time.Sleep(300 * time.Millisecond)
	if m.Registry().Len() != 2 {
		t.Errorf("Len() = %d after bad reload, want 2", m.Registry().Len())
	}
}

func TestManager_StartTwice(t *testing.T) {
	path := writeRules(t, sampleRules)
	m, err := NewManager(ManagerConfig{Path: path, Watch: true})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	defer m.Stop()

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	if err := m.Start(ctx); err == nil {
		t.Error("second Start() error = nil, want already-running error")
	}
}

func TestManager_WatchDisabled(t *testing.T) {
	path := writeRules(t, sampleRules)
	m, err := NewManager(ManagerConfig{Path: path})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	defer m.Stop()

	if err := m.Start(context.Background()); err != nil {
		t.Errorf("Start() with watch disabled error = %v, want nil", err)
	}
}
