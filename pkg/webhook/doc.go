// Package webhook receives change notifications from the takeoff
// service. Notifications are triggers, not data: the handler validates
// the payload, schedules reconciliation for the named page, and returns
// 202 without waiting for the run.
package webhook
