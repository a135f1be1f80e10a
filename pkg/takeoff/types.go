package takeoff

import (
	"github.com/google/uuid"
)

// Point is a 2D coordinate on the drawing.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox is a rectangular region in normalized page coordinates.
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Width returns the horizontal extent of the box.
func (b BoundingBox) Width() float64 {
	return b.Right - b.Left
}

// Height returns the vertical extent of the box.
func (b BoundingBox) Height() float64 {
	return b.Bottom - b.Top
}

// NameValuePair is a generic key-value attribute attached to a condition.
type NameValuePair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// QuantityDefinition declares a measurement quantity on a condition.
// ExcludeAttachments marks quantities where the measured value of a parent
// item must be reduced by the contribution of its attached children before
// pricing, to avoid double-counting (e.g. wall area minus openings).
type QuantityDefinition struct {
	Name               string `json:"name"`
	UnitOfMeasure      string `json:"unitOfMeasure"`
	ExcludeAttachments bool   `json:"excludeAttachments"`
}

// QuantityValue is a measured value on an item, matched to a
// QuantityDefinition by name.
type QuantityValue struct {
	Name          string  `json:"name"`
	UnitOfMeasure string  `json:"unitOfMeasure"`
	Value         float64 `json:"value"`
}

// Item is one physical measurement instance of a condition on the drawing.
// ParentItemID, when set, makes this item an attachment nested inside
// another item in the same zone (e.g. a window inside a wall).
type Item struct {
	ID             uuid.UUID       `json:"id"`
	ConditionID    uuid.UUID       `json:"conditionId"`
	ZoneID         uuid.UUID       `json:"takeoffZoneId"`
	ParentItemID   *uuid.UUID      `json:"parentTakeoffItemId,omitempty"`
	Name           string          `json:"itemName,omitempty"`
	Points         []Point         `json:"points,omitempty"`
	Angle          *float64        `json:"angle,omitempty"`
	QuantityValues []QuantityValue `json:"quantityValues,omitempty"`
}

// QuantityValue returns the measured value with the given name and whether
// the item carries it.
func (it *Item) QuantityValue(name string) (QuantityValue, bool) {
	for _, qv := range it.QuantityValues {
		if qv.Name == name {
			return qv, true
		}
	}
	return QuantityValue{}, false
}

// Condition is a measurement definition for one type of construction
// element (e.g. "Standard Window"), with the ordered set of quantities
// measured for each of its items.
type Condition struct {
	ID               uuid.UUID            `json:"id"`
	Name             string               `json:"name,omitempty"`
	Type             string               `json:"type,omitempty"`
	Shape            string               `json:"shape,omitempty"`
	Category         string               `json:"category,omitempty"`
	Description      string               `json:"description,omitempty"`
	Layer            string               `json:"layer,omitempty"`
	Color            string               `json:"color,omitempty"`
	LineStyle        string               `json:"lineStyle,omitempty"`
	FillPattern      string               `json:"fillPattern,omitempty"`
	IsAttachment     bool                 `json:"isAttachment"`
	Quantities       []QuantityDefinition `json:"quantities,omitempty"`
	Properties       []NameValuePair      `json:"properties,omitempty"`
	CustomAttributes []NameValuePair      `json:"customAttributes,omitempty"`
}

// ConditionState pairs a condition with all of its measured items.
type ConditionState struct {
	Condition *Condition `json:"condition"`
	Items     []Item     `json:"takeoffItems,omitempty"`
}

// Zone is a scaled region of a drawing page.
type Zone struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name,omitempty"`
	Scale       float64      `json:"scale"`
	DPI         int          `json:"dpi"`
	BoundingBox *BoundingBox `json:"boundingBox,omitempty"`
}

// ZoneState pairs a zone with all conditions measured within it.
type ZoneState struct {
	Zone       *Zone            `json:"takeoffZone"`
	Conditions []ConditionState `json:"conditions,omitempty"`
}

// PageState is one complete, internally consistent snapshot of the
// measurement hierarchy for a (document, page) key. Snapshots are created
// wholesale by a fetch and replaced wholesale by the next successful fetch;
// they are never mutated incrementally.
type PageState struct {
	Zones []ZoneState `json:"takeoffZones,omitempty"`
}

// ItemCount returns the total number of items across all zones.
func (p *PageState) ItemCount() int {
	n := 0
	for _, zs := range p.Zones {
		for _, cs := range zs.Conditions {
			n += len(cs.Items)
		}
	}
	return n
}

// ActionName identifies the kind of change reported in a trigger.
type ActionName string

const (
	ActionCreate ActionName = "Create"
	ActionUpdate ActionName = "Update"
	ActionDelete ActionName = "Delete"
)

// Valid reports whether the action name is one of the known kinds.
func (a ActionName) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// EntityType identifies which entity kind a change action touched.
type EntityType string

const (
	EntityCondition EntityType = "Condition"
	EntityItem      EntityType = "TakeoffItem"
)

// Valid reports whether the entity type is one of the known kinds.
func (e EntityType) Valid() bool {
	switch e {
	case EntityCondition, EntityItem:
		return true
	}
	return false
}

// ChangeAction is a single entry in a change notification. The payload is
// informational only; reconciliation always re-pulls the full page state
// rather than applying actions.
type ChangeAction struct {
	OrderNumber int        `json:"orderNumber"`
	ActionName  ActionName `json:"actionName"`
	EntityType  EntityType `json:"entityType"`
}

// ConditionsChange is the webhook trigger payload. It carries only the
// reconciliation key and a summary of what changed, never measurement data.
type ConditionsChange struct {
	DocumentID uuid.UUID      `json:"documentId"`
	PageNumber int            `json:"pageNumber"`
	Actions    []ChangeAction `json:"actions,omitempty"`
}
