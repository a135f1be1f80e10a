// Package takeofftest provides canned takeoff snapshots and a mock
// takeoff service for tests.
package takeofftest

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"costline-hq/costline/pkg/pricing"
	"costline-hq/costline/pkg/takeoff"
)

// Well-known identifiers used by the canned floor plan snapshot.
var (
	ZoneID = uuid.MustParse("a1b2c3d4-e5f6-4a5b-8c9d-0e1f2a3b4c5d")

	WindowConditionID = uuid.MustParse("f1e2d3c4-b5a6-4c5d-8e9f-0a1b2c3d4e5f")
	DoorConditionID   = uuid.MustParse("e2d3c4b5-a6f7-4c5d-8e9f-0a1b2c3d4e5f")
	WallConditionID   = uuid.MustParse("d3c4b5a6-f7e8-4c5d-8e9f-0a1b2c3d4e5f")

	WindowItem1ID = uuid.MustParse("b2c3d4e5-f6a7-4b5c-8d9e-0f1a2b3c4d5e")
	WindowItem2ID = uuid.MustParse("c3d4e5f6-a7b8-4c5d-8e9f-0a1b2c3d4e5f")
	DoorItem1ID   = uuid.MustParse("d4e5f6a7-b8c9-4d5e-8f9a-0b1c2d3e4f5a")
	WallItem1ID   = uuid.MustParse("e5f6a7b8-c9d0-4e5f-8a9b-0c1d2e3f4a5b")
	WallItem2ID   = uuid.MustParse("f6a7b8c9-d0e1-4f5a-8b9c-0d1e2f3a4b5c")
)

// FloorPlan returns a realistic single-zone snapshot: two windows, one
// door, and two exterior walls on a 1:100 floor plan. Priced against
// Rules() it totals exactly 2095.00.
func FloorPlan() *takeoff.PageState {
	zero := 0.0
	ninety := 90.0

	windowCondition := &takeoff.Condition{
		ID:          WindowConditionID,
		Name:        "Standard Window",
		Type:        "Count",
		Shape:       "Rectangle",
		Category:    "Windows",
		Description: "Standard residential window",
		Layer:       "WINDOWS",
		Color:       "#3498db",
		LineStyle:   "Solid",
		FillPattern: "None",
		Quantities: []takeoff.QuantityDefinition{
			{Name: "Count", UnitOfMeasure: "EA"},
			{Name: "Area", UnitOfMeasure: "SQ.M"},
		},
		Properties: []takeoff.NameValuePair{
			{Name: "Width", Value: "1200"},
			{Name: "Height", Value: "1500"},
			{Name: "Material", Value: "PVC"},
		},
		CustomAttributes: []takeoff.NameValuePair{
			{Name: "EnergyRating", Value: "A+"},
			{Name: "GlazingType", Value: "Double"},
		},
	}

	doorCondition := &takeoff.Condition{
		ID:          DoorConditionID,
		Name:        "Interior Door",
		Type:        "Count",
		Shape:       "Door",
		Category:    "Doors",
		Description: "Standard interior door with frame",
		Layer:       "DOORS",
		Color:       "#e74c3c",
		LineStyle:   "Solid",
		FillPattern: "None",
		Quantities: []takeoff.QuantityDefinition{
			{Name: "Count", UnitOfMeasure: "EA"},
		},
		Properties: []takeoff.NameValuePair{
			{Name: "Width", Value: "900"},
			{Name: "Height", Value: "2100"},
			{Name: "Material", Value: "Wood"},
		},
	}

	wallCondition := &takeoff.Condition{
		ID:          WallConditionID,
		Name:        "Exterior Wall",
		Type:        "Area",
		Shape:       "Polygon",
		Category:    "Walls",
		Description: "Exterior wall with insulation",
		Layer:       "WALLS",
		Color:       "#95a5a6",
		LineStyle:   "Solid",
		FillPattern: "Solid",
		Quantities: []takeoff.QuantityDefinition{
			{Name: "Area", UnitOfMeasure: "SQ.M"},
			{Name: "Length", UnitOfMeasure: "M"},
		},
		Properties: []takeoff.NameValuePair{
			{Name: "Thickness", Value: "300"},
			{Name: "Material", Value: "Brick"},
		},
	}

	return &takeoff.PageState{
		Zones: []takeoff.ZoneState{
			{
				Zone: &takeoff.Zone{
					ID:    ZoneID,
					Name:  "First Floor Plan",
					Scale: 100.0,
					DPI:   300,
					BoundingBox: &takeoff.BoundingBox{
						Left: 0.1, Top: 0.1, Right: 0.9, Bottom: 0.9,
					},
				},
				Conditions: []takeoff.ConditionState{
					{
						Condition: windowCondition,
						Items: []takeoff.Item{
							{
								ID:          WindowItem1ID,
								ConditionID: WindowConditionID,
								ZoneID:      ZoneID,
								Name:        "Window #1 - Living Room",
								Angle:       &zero,
								Points: []takeoff.Point{
									{X: 150.5, Y: 200.3}, {X: 180.5, Y: 200.3},
									{X: 180.5, Y: 237.8}, {X: 150.5, Y: 237.8},
								},
								QuantityValues: []takeoff.QuantityValue{
									{Name: "Count", UnitOfMeasure: "EA", Value: 1.0},
									{Name: "Area", UnitOfMeasure: "SQ.M", Value: 1.8},
								},
							},
							{
								ID:          WindowItem2ID,
								ConditionID: WindowConditionID,
								ZoneID:      ZoneID,
								Name:        "Window #2 - Bedroom",
								Angle:       &zero,
								Points: []takeoff.Point{
									{X: 450.0, Y: 180.0}, {X: 480.0, Y: 180.0},
									{X: 480.0, Y: 217.5}, {X: 450.0, Y: 217.5},
								},
								QuantityValues: []takeoff.QuantityValue{
									{Name: "Count", UnitOfMeasure: "EA", Value: 1.0},
									{Name: "Area", UnitOfMeasure: "SQ.M", Value: 1.8},
								},
							},
						},
					},
					{
						Condition: doorCondition,
						Items: []takeoff.Item{
							{
								ID:          DoorItem1ID,
								ConditionID: DoorConditionID,
								ZoneID:      ZoneID,
								Name:        "Door #1 - Main Entrance",
								Angle:       &ninety,
								Points: []takeoff.Point{
									{X: 300.0, Y: 150.0}, {X: 327.0, Y: 150.0},
									{X: 327.0, Y: 213.0}, {X: 300.0, Y: 213.0},
								},
								QuantityValues: []takeoff.QuantityValue{
									{Name: "Count", UnitOfMeasure: "EA", Value: 1.0},
								},
							},
						},
					},
					{
						Condition: wallCondition,
						Items: []takeoff.Item{
							{
								ID:          WallItem1ID,
								ConditionID: WallConditionID,
								ZoneID:      ZoneID,
								Name:        "Wall #1 - North Wall",
								Points: []takeoff.Point{
									{X: 100.0, Y: 100.0}, {X: 600.0, Y: 100.0},
									{X: 600.0, Y: 130.0}, {X: 100.0, Y: 130.0},
								},
								QuantityValues: []takeoff.QuantityValue{
									{Name: "Area", UnitOfMeasure: "SQ.M", Value: 15.5},
									{Name: "Length", UnitOfMeasure: "M", Value: 5.0},
								},
							},
							{
								ID:          WallItem2ID,
								ConditionID: WallConditionID,
								ZoneID:      ZoneID,
								Name:        "Wall #2 - East Wall",
								Points: []takeoff.Point{
									{X: 600.0, Y: 100.0}, {X: 630.0, Y: 100.0},
									{X: 630.0, Y: 500.0}, {X: 600.0, Y: 500.0},
								},
								QuantityValues: []takeoff.QuantityValue{
									{Name: "Area", UnitOfMeasure: "SQ.M", Value: 12.4},
									{Name: "Length", UnitOfMeasure: "M", Value: 4.0},
								},
							},
						},
					},
				},
			},
		},
	}
}

// Rules returns the pricing rules matching the canned floor plan.
func Rules() []pricing.Rule {
	return []pricing.Rule{
		{Category: "Windows", Unit: "EA", Rate: decimal.NewFromInt(200), Description: "Standard window, installed"},
		{Category: "Doors", Unit: "EA", Rate: decimal.NewFromInt(300), Description: "Interior door, installed"},
		{Category: "Walls", Unit: "SQ.M", Rate: decimal.NewFromInt(50), Description: "Exterior wall per square meter"},
	}
}

// Registry returns a registry built from Rules().
func Registry() *pricing.Registry {
	return pricing.NewRegistry(Rules())
}
