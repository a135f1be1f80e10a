package estimate

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WarningKind classifies a soft aggregation problem. Soft problems degrade
// the affected condition or item and never abort aggregation.
type WarningKind string

const (
	// WarningPricingRuleMissing means no registry rule matched any of a
	// condition's quantities; all of its items were skipped.
	WarningPricingRuleMissing WarningKind = "pricing_rule_missing"

	// WarningDanglingParent means an item referenced a parent that does
	// not exist in its zone; the item was aggregated as a root.
	WarningDanglingParent WarningKind = "dangling_parent"

	// WarningAttachmentCycle means an item's parent chain formed a cycle;
	// the offending edge was cut and the item aggregated as a root.
	WarningAttachmentCycle WarningKind = "attachment_cycle"

	// WarningNegativeClamped means subtracting attached children from a
	// parent's measured value went negative and the result was clamped to
	// zero, indicating overlapping or inconsistent input geometry.
	WarningNegativeClamped WarningKind = "negative_quantity_clamped"

	// WarningQuantityNotFound means an item carried no measured value
	// matching its condition's priced quantity; the item was skipped.
	WarningQuantityNotFound WarningKind = "quantity_not_found"
)

// Warning records one soft aggregation problem and the entity it affects.
type Warning struct {
	Kind        WarningKind `json:"kind"`
	Message     string      `json:"message"`
	ConditionID *uuid.UUID  `json:"conditionId,omitempty"`
	ItemID      *uuid.UUID  `json:"itemId,omitempty"`
}

// Line is the priced cost of a single item.
type Line struct {
	ItemID        uuid.UUID       `json:"itemId"`
	ItemName      string          `json:"itemName,omitempty"`
	ConditionID   uuid.UUID       `json:"conditionId"`
	ConditionName string          `json:"conditionName"`
	ZoneID        uuid.UUID       `json:"zoneId"`
	QuantityName  string          `json:"quantityName"`
	Unit          string          `json:"unit"`
	Quantity      float64         `json:"quantity"`
	Rate          decimal.Decimal `json:"rate"`
	Cost          decimal.Decimal `json:"cost"`
}

// ConditionTotal is the exact sum of one condition's line costs.
type ConditionTotal struct {
	ConditionID   uuid.UUID       `json:"conditionId"`
	ConditionName string          `json:"conditionName"`
	ZoneID        uuid.UUID       `json:"zoneId"`
	Items         int             `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// ZoneTotal is the exact sum of one zone's condition subtotals.
type ZoneTotal struct {
	ZoneID   uuid.UUID       `json:"zoneId"`
	ZoneName string          `json:"zoneName,omitempty"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Estimate is the priced result of aggregating one snapshot. Total is
// always the exact decimal sum of Lines; subtotals are exact partial sums
// of the same line costs, never independently rounded.
type Estimate struct {
	Lines           []Line           `json:"lines"`
	ConditionTotals []ConditionTotal `json:"conditionTotals"`
	ZoneTotals      []ZoneTotal      `json:"zoneTotals"`
	Total           decimal.Decimal  `json:"total"`
	Currency        string           `json:"currency"`
	Warnings        []Warning        `json:"warnings,omitempty"`
}
