// Package takeoff defines the measurement provider's data model and the
// HTTP client used to pull complete page snapshots from it.
//
// # Snapshot Model
//
// A page snapshot is a strict hierarchy:
//
//	PageState
//	└── ZoneState (scaled drawing region)
//	    └── ConditionState (one element type, e.g. "Standard Window")
//	        └── Item (one measured instance, possibly attached to a parent)
//	            └── QuantityValue (measured Count/Area/Length values)
//
// Snapshots are immutable once fetched. Reconciliation never merges
// partial data: a change trigger only names a (document, page) key, and
// the client re-pulls the whole hierarchy for that key.
//
// # Fetch Semantics
//
// Client.Fetch issues a single GET per attempt and retries transient
// failures (transport errors, 5xx) with exponential backoff up to a
// bounded attempt count. Client errors (4xx) are permanent. Exhaustion
// yields a *FetchError; callers mark the reconciliation run failed and
// keep the last good estimate flagged stale.
//
// The client also tracks service health (consecutive-failure circuit),
// which the readiness endpoint reports.
package takeoff
