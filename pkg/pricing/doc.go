// Package pricing provides the unit-rate rule registry used to price
// measured quantities.
//
// Rules are keyed by (element category, unit of measure) and loaded from a
// yaml file with decimal-string rates:
//
//	rules:
//	  - category: Windows
//	    unit: EA
//	    rate: "200.00"
//	    description: Window installation (per unit)
//	  - category: Walls
//	    unit: SQ.M
//	    rate: "50.00"
//
// A Registry is immutable. The Manager owns the current registry and,
// when watching is enabled, rebuilds it on rules-file changes and swaps
// it in atomically between aggregation runs; a run that already captured
// a registry pointer is never affected by a reload.
package pricing
