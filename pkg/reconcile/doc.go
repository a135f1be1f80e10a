// Package reconcile drives the notify, pull, recompute loop that keeps
// published estimates in step with the takeoff service.
//
// A change notification for a (document, page) key never carries data:
// it only schedules a run that pulls the full page state and prices it.
// Runs for one key are strictly serial, and triggers arriving while a
// run is active collapse into a single pending rerun, so a burst of N
// notifications costs at most one extra run. A failed run never
// overwrites the last good estimate; it marks it stale instead.
//
// An optional cron-driven scheduler periodically re-triggers every
// known key as a safety net against missed webhook deliveries.
package reconcile
