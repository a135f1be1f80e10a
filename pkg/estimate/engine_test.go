package estimate

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"costline-hq/costline/internal/takeofftest"
	"costline-hq/costline/pkg/pricing"
	"costline-hq/costline/pkg/takeoff"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func TestAggregate_FloorPlan(t *testing.T) {
	est, err := Aggregate(takeofftest.FloorPlan(), takeofftest.Registry())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if len(est.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", est.Warnings)
	}
	if est.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", est.Currency)
	}

	wantCosts := []string{"200", "200", "300", "775", "620"}
	if len(est.Lines) != len(wantCosts) {
		t.Fatalf("got %d lines, want %d", len(est.Lines), len(wantCosts))
	}
	for i, want := range wantCosts {
		if !est.Lines[i].Cost.Equal(mustDecimal(t, want)) {
			t.Errorf("line %d cost = %s, want %s", i, est.Lines[i].Cost, want)
		}
	}

	wantSubtotals := map[uuid.UUID]string{
		takeofftest.WindowConditionID: "400",
		takeofftest.DoorConditionID:   "300",
		takeofftest.WallConditionID:   "1395",
	}
	if len(est.ConditionTotals) != len(wantSubtotals) {
		t.Fatalf("got %d condition totals, want %d", len(est.ConditionTotals), len(wantSubtotals))
	}
	for _, ct := range est.ConditionTotals {
		want, ok := wantSubtotals[ct.ConditionID]
		if !ok {
			t.Errorf("unexpected condition total for %s", ct.ConditionID)
			continue
		}
		if !ct.Subtotal.Equal(mustDecimal(t, want)) {
			t.Errorf("condition %s subtotal = %s, want %s", ct.ConditionName, ct.Subtotal, want)
		}
	}

	if len(est.ZoneTotals) != 1 {
		t.Fatalf("got %d zone totals, want 1", len(est.ZoneTotals))
	}
	if !est.ZoneTotals[0].Subtotal.Equal(mustDecimal(t, "2095")) {
		t.Errorf("zone subtotal = %s, want 2095", est.ZoneTotals[0].Subtotal)
	}
	if est.Total.StringFixed(2) != "2095.00" {
		t.Errorf("total = %s, want 2095.00", est.Total.StringFixed(2))
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	snapshot := takeofftest.FloorPlan()
	reg := takeofftest.Registry()

	first, err := Aggregate(snapshot, reg)
	if err != nil {
		t.Fatalf("first Aggregate() error = %v", err)
	}
	second, err := Aggregate(snapshot, reg)
	if err != nil {
		t.Fatalf("second Aggregate() error = %v", err)
	}

	firstJSON, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal first estimate: %v", err)
	}
	secondJSON, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal second estimate: %v", err)
	}
	if string(firstJSON) != string(secondJSON) {
		t.Errorf("repeated aggregation differs:\n%s\n%s", firstJSON, secondJSON)
	}
}

func TestAggregate_FatalInputs(t *testing.T) {
	tests := []struct {
		name     string
		snapshot *takeoff.PageState
		registry *pricing.Registry
		wantErr  error
	}{
		{
			name:     "nil snapshot",
			snapshot: nil,
			registry: takeofftest.Registry(),
			wantErr:  ErrEmptySnapshot,
		},
		{
			name:     "no zones",
			snapshot: &takeoff.PageState{},
			registry: takeofftest.Registry(),
			wantErr:  ErrEmptySnapshot,
		},
		{
			name:     "nil registry",
			snapshot: takeofftest.FloorPlan(),
			registry: nil,
			wantErr:  ErrNilRegistry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Aggregate(tt.snapshot, tt.registry)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Aggregate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAggregate_MissingPricingRule(t *testing.T) {
	reg := pricing.NewRegistry([]pricing.Rule{
		{Category: "Windows", Unit: "EA", Rate: decimal.NewFromInt(200)},
		{Category: "Walls", Unit: "SQ.M", Rate: decimal.NewFromInt(50)},
	})

	est, err := Aggregate(takeofftest.FloorPlan(), reg)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	// The door condition loses its only rule, the rest still price.
	if len(est.Lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(est.Lines))
	}
	if est.Total.StringFixed(2) != "1795.00" {
		t.Errorf("total = %s, want 1795.00", est.Total.StringFixed(2))
	}

	if len(est.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(est.Warnings), est.Warnings)
	}
	w := est.Warnings[0]
	if w.Kind != WarningPricingRuleMissing {
		t.Errorf("warning kind = %s, want %s", w.Kind, WarningPricingRuleMissing)
	}
	if w.ConditionID == nil || *w.ConditionID != takeofftest.DoorConditionID {
		t.Errorf("warning condition = %v, want %s", w.ConditionID, takeofftest.DoorConditionID)
	}
}

func TestAggregate_MissingPricingRuleEmptyCondition(t *testing.T) {
	zoneID := uuid.New()
	condID := uuid.New()
	snapshot := &takeoff.PageState{
		Zones: []takeoff.ZoneState{
			{
				Zone: &takeoff.Zone{ID: zoneID, Name: "Empty Floor"},
				Conditions: []takeoff.ConditionState{
					{
						Condition: &takeoff.Condition{
							ID:       condID,
							Name:     "Skylight",
							Category: "Skylights",
							Quantities: []takeoff.QuantityDefinition{
								{Name: "Count", UnitOfMeasure: "EA"},
							},
						},
					},
				},
			},
		},
	}
	reg := pricing.NewRegistry([]pricing.Rule{
		{Category: "Windows", Unit: "EA", Rate: decimal.NewFromInt(200)},
	})

	est, err := Aggregate(snapshot, reg)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	// An unpriced condition warns even when it holds no items yet.
	if len(est.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(est.Warnings), est.Warnings)
	}
	w := est.Warnings[0]
	if w.Kind != WarningPricingRuleMissing {
		t.Errorf("warning kind = %s, want %s", w.Kind, WarningPricingRuleMissing)
	}
	if w.ConditionID == nil || *w.ConditionID != condID {
		t.Errorf("warning condition = %v, want %s", w.ConditionID, condID)
	}
	if !est.Total.IsZero() {
		t.Errorf("total = %s, want 0", est.Total)
	}
}

func TestAggregate_ShapeFallback(t *testing.T) {
	snapshot := takeofftest.FloorPlan()
	// Strip the category so only the shape can match.
	snapshot.Zones[0].Conditions[2].Condition.Category = ""

	reg := pricing.NewRegistry([]pricing.Rule{
		{Category: "Windows", Unit: "EA", Rate: decimal.NewFromInt(200)},
		{Category: "Doors", Unit: "EA", Rate: decimal.NewFromInt(300)},
		{Category: "Polygon", Unit: "SQ.M", Rate: decimal.NewFromInt(50)},
	})

	est, err := Aggregate(snapshot, reg)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(est.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", est.Warnings)
	}
	if est.Total.StringFixed(2) != "2095.00" {
		t.Errorf("total = %s, want 2095.00", est.Total.StringFixed(2))
	}
}

func TestAggregate_QuantityNotFound(t *testing.T) {
	snapshot := takeofftest.FloorPlan()
	// The door item loses its Count value entirely.
	snapshot.Zones[0].Conditions[1].Items[0].QuantityValues = nil

	est, err := Aggregate(snapshot, takeofftest.Registry())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if len(est.Lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(est.Lines))
	}
	if est.Total.StringFixed(2) != "1795.00" {
		t.Errorf("total = %s, want 1795.00", est.Total.StringFixed(2))
	}
	if len(est.Warnings) != 1 || est.Warnings[0].Kind != WarningQuantityNotFound {
		t.Fatalf("warnings = %v, want one %s", est.Warnings, WarningQuantityNotFound)
	}
	if est.Warnings[0].ItemID == nil || *est.Warnings[0].ItemID != takeofftest.DoorItem1ID {
		t.Errorf("warning item = %v, want %s", est.Warnings[0].ItemID, takeofftest.DoorItem1ID)
	}
}

// wallWithOpenings builds a one-zone snapshot where openings attach to a
// wall whose area excludes attachments.
func wallWithOpenings(wallArea float64, openingAreas ...float64) (*takeoff.PageState, *pricing.Registry) {
	zoneID := uuid.New()
	wallCondID := uuid.New()
	openCondID := uuid.New()
	wallItemID := uuid.New()

	wallCond := &takeoff.Condition{
		ID:       wallCondID,
		Name:     "Exterior Wall",
		Category: "Walls",
		Quantities: []takeoff.QuantityDefinition{
			{Name: "Area", UnitOfMeasure: "SQ.M", ExcludeAttachments: true},
		},
	}
	openCond := &takeoff.Condition{
		ID:           openCondID,
		Name:         "Wall Opening",
		Category:     "Openings",
		IsAttachment: true,
		Quantities: []takeoff.QuantityDefinition{
			{Name: "Area", UnitOfMeasure: "SQ.M"},
		},
	}

	wallItem := takeoff.Item{
		ID:          wallItemID,
		ConditionID: wallCondID,
		ZoneID:      zoneID,
		Name:        "Wall",
		QuantityValues: []takeoff.QuantityValue{
			{Name: "Area", UnitOfMeasure: "SQ.M", Value: wallArea},
		},
	}
	var openings []takeoff.Item
	for _, area := range openingAreas {
		parent := wallItemID
		openings = append(openings, takeoff.Item{
			ID:           uuid.New(),
			ConditionID:  openCondID,
			ZoneID:       zoneID,
			ParentItemID: &parent,
			Name:         "Opening",
			QuantityValues: []takeoff.QuantityValue{
				{Name: "Area", UnitOfMeasure: "SQ.M", Value: area},
			},
		})
	}

	snapshot := &takeoff.PageState{
		Zones: []takeoff.ZoneState{
			{
				Zone: &takeoff.Zone{ID: zoneID, Name: "Plan"},
				Conditions: []takeoff.ConditionState{
					{Condition: wallCond, Items: []takeoff.Item{wallItem}},
					{Condition: openCond, Items: openings},
				},
			},
		},
	}
	reg := pricing.NewRegistry([]pricing.Rule{
		{Category: "Walls", Unit: "SQ.M", Rate: decimal.NewFromInt(50)},
		{Category: "Openings", Unit: "SQ.M", Rate: decimal.NewFromInt(10)},
	})
	return snapshot, reg
}

func TestAggregate_ExcludeAttachments(t *testing.T) {
	snapshot, reg := wallWithOpenings(20.0, 2.5, 1.5)

	est, err := Aggregate(snapshot, reg)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(est.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", est.Warnings)
	}

	// Wall usable area is 20 - (2.5 + 1.5) = 16; openings price in full.
	if len(est.Lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(est.Lines))
	}
	if est.Lines[0].Quantity != 16.0 {
		t.Errorf("wall quantity = %g, want 16", est.Lines[0].Quantity)
	}
	if !est.Lines[0].Cost.Equal(mustDecimal(t, "800")) {
		t.Errorf("wall cost = %s, want 800", est.Lines[0].Cost)
	}
	if est.Total.StringFixed(2) != "840.00" {
		t.Errorf("total = %s, want 840.00", est.Total.StringFixed(2))
	}
}

func TestAggregate_NegativeClamped(t *testing.T) {
	snapshot, reg := wallWithOpenings(3.0, 2.5, 1.5)

	est, err := Aggregate(snapshot, reg)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if est.Lines[0].Quantity != 0 {
		t.Errorf("wall quantity = %g, want 0", est.Lines[0].Quantity)
	}
	if !est.Lines[0].Cost.IsZero() {
		t.Errorf("wall cost = %s, want 0", est.Lines[0].Cost)
	}
	if est.Total.StringFixed(2) != "40.00" {
		t.Errorf("total = %s, want 40.00", est.Total.StringFixed(2))
	}
	if len(est.Warnings) != 1 || est.Warnings[0].Kind != WarningNegativeClamped {
		t.Fatalf("warnings = %v, want one %s", est.Warnings, WarningNegativeClamped)
	}
}

func TestAggregate_NestedAttachments(t *testing.T) {
	zoneID := uuid.New()
	condID := uuid.New()
	parentID := uuid.New()
	childID := uuid.New()
	grandchildID := uuid.New()

	cond := &takeoff.Condition{
		ID:       condID,
		Name:     "Surface",
		Category: "Surfaces",
		Quantities: []takeoff.QuantityDefinition{
			{Name: "Area", UnitOfMeasure: "SQ.M", ExcludeAttachments: true},
		},
	}
	item := func(id uuid.UUID, parent *uuid.UUID, area float64) takeoff.Item {
		return takeoff.Item{
			ID:           id,
			ConditionID:  condID,
			ZoneID:       zoneID,
			ParentItemID: parent,
			QuantityValues: []takeoff.QuantityValue{
				{Name: "Area", UnitOfMeasure: "SQ.M", Value: area},
			},
		}
	}

	snapshot := &takeoff.PageState{
		Zones: []takeoff.ZoneState{
			{
				Zone: &takeoff.Zone{ID: zoneID, Name: "Plan"},
				Conditions: []takeoff.ConditionState{
					{Condition: cond, Items: []takeoff.Item{
						item(parentID, nil, 20.0),
						item(childID, &parentID, 8.0),
						item(grandchildID, &childID, 3.0),
					}},
				},
			},
		},
	}
	reg := pricing.NewRegistry([]pricing.Rule{
		{Category: "Surfaces", Unit: "SQ.M", Rate: decimal.NewFromInt(10)},
	})

	est, err := Aggregate(snapshot, reg)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	// Usable areas resolve bottom-up: grandchild 3, child 8-3=5,
	// parent 20-5=15. Only the child's usable value subtracts from the
	// parent, never the grandchild's raw value.
	wantQty := map[uuid.UUID]float64{parentID: 15.0, childID: 5.0, grandchildID: 3.0}
	for _, line := range est.Lines {
		if want := wantQty[line.ItemID]; line.Quantity != want {
			t.Errorf("item %s quantity = %g, want %g", line.ItemID, line.Quantity, want)
		}
	}
	if est.Total.StringFixed(2) != "230.00" {
		t.Errorf("total = %s, want 230.00", est.Total.StringFixed(2))
	}
}

func TestAggregate_RoundsPerLine(t *testing.T) {
	snapshot, reg := wallWithOpenings(0, 3.333, 3.333)

	est, err := Aggregate(snapshot, reg)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	// Each opening is 3.333 * 10 = 33.33 after rounding; the total sums
	// the rounded lines exactly instead of rounding 66.66 twice.
	for _, line := range est.Lines[1:] {
		if line.Cost.StringFixed(2) != "33.33" {
			t.Errorf("opening cost = %s, want 33.33", line.Cost.StringFixed(2))
		}
	}
	if est.Total.StringFixed(2) != "66.66" {
		t.Errorf("total = %s, want 66.66", est.Total.StringFixed(2))
	}
}

func TestAggregate_MultipleZonesSum(t *testing.T) {
	base := takeofftest.FloorPlan()
	second := takeofftest.FloorPlan()
	base.Zones = append(base.Zones, second.Zones...)

	est, err := Aggregate(base, takeofftest.Registry())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(est.ZoneTotals) != 2 {
		t.Fatalf("got %d zone totals, want 2", len(est.ZoneTotals))
	}
	if est.Total.StringFixed(2) != "4190.00" {
		t.Errorf("total = %s, want 4190.00", est.Total.StringFixed(2))
	}
}
