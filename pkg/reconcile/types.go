package reconcile

import (
	"fmt"

	"github.com/google/uuid"
)

// Key identifies one reconciled page: a document and a page within it.
// Every estimate, trigger, and run is scoped to exactly one Key.
type Key struct {
	DocumentID uuid.UUID
	PageNumber int
}

// String renders the key for logs and metric labels.
func (k Key) String() string {
	return fmt.Sprintf("%s/p%d", k.DocumentID, k.PageNumber)
}

// Phase is the reconciliation state of a single key. At most one run is
// ever active per key; phases advance strictly through the fetch and
// aggregate stages before settling on a terminal phase.
type Phase string

const (
	// PhaseIdle means the key has never been triggered.
	PhaseIdle Phase = "idle"

	// PhaseTriggered means a run is scheduled but not yet fetching.
	PhaseTriggered Phase = "triggered"

	// PhaseFetching means the run is pulling the full page state.
	PhaseFetching Phase = "fetching"

	// PhaseAggregating means the run is pricing the fetched snapshot.
	PhaseAggregating Phase = "aggregating"

	// PhasePublished means the last run completed and its estimate is
	// current.
	PhasePublished Phase = "published"

	// PhaseFailed means the last run failed; any previously published
	// estimate for the key is marked stale.
	PhaseFailed Phase = "failed"
)

// Active reports whether a run is currently in flight for this phase.
func (p Phase) Active() bool {
	switch p {
	case PhaseTriggered, PhaseFetching, PhaseAggregating:
		return true
	}
	return false
}
