// Package estimate turns a takeoff page snapshot into a priced estimate.
//
// Aggregation is a pure computation. Each zone's items are linked into an
// attachment forest from their parent references, usable quantity values
// are computed children-first so that quantities flagged
// exclude-attachments subtract what their attached children already
// account for, and every item of every priceable condition becomes one
// cost line. Totals are exact decimal sums of rounded line costs and are
// never rounded independently.
//
// Malformed input (dangling parents, attachment cycles, conditions with
// no matching pricing rule, items missing the priced quantity) degrades
// the affected entity and is reported through the estimate's warning
// list. Aggregation fails outright only for a nil or zone-less snapshot.
package estimate
