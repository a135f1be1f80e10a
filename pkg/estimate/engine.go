package estimate

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"costline-hq/costline/pkg/pricing"
	"costline-hq/costline/pkg/takeoff"
)

// Currency is the currency code stamped on every estimate.
const Currency = "USD"

// Aggregate prices a full page snapshot against the supplied registry
// and returns the resulting estimate. It is a pure function of its
// inputs: the same snapshot and registry always produce the same
// estimate, and the snapshot is never modified.
//
// Structural problems with individual conditions or items degrade those
// entities and surface as warnings on the estimate. Only a nil or empty
// snapshot is fatal.
func Aggregate(snapshot *takeoff.PageState, reg *pricing.Registry) (*Estimate, error) {
	if snapshot == nil || len(snapshot.Zones) == 0 {
		return nil, ErrEmptySnapshot
	}
	if reg == nil {
		return nil, ErrNilRegistry
	}

	est := &Estimate{
		Lines:           []Line{},
		ConditionTotals: []ConditionTotal{},
		ZoneTotals:      []ZoneTotal{},
		Total:           decimal.Zero,
		Currency:        Currency,
	}

	for zi := range snapshot.Zones {
		zone := &snapshot.Zones[zi]
		if zone.Zone == nil {
			continue
		}

		f, warns := buildForest(zone)
		est.Warnings = append(est.Warnings, warns...)
		est.Warnings = append(est.Warnings, f.computeUsable()...)

		zoneSubtotal := decimal.Zero
		for ci := range zone.Conditions {
			cs := &zone.Conditions[ci]
			if cs.Condition == nil {
				continue
			}
			cond := cs.Condition

			qty, rule, ok := resolveRule(cond, reg)
			if !ok {
				id := cond.ID
				est.Warnings = append(est.Warnings, Warning{
					Kind:        WarningPricingRuleMissing,
					Message:     fmt.Sprintf("no pricing rule matches condition %q; skipping %d item(s)", cond.Name, len(cs.Items)),
					ConditionID: &id,
				})
				continue
			}

			condSubtotal := decimal.Zero
			priced := 0
			for ii := range cs.Items {
				item := &cs.Items[ii]
				n := f.byID[item.ID]
				usable, found := n.usable[qty.Name]
				if !found {
					id := item.ID
					cid := cond.ID
					est.Warnings = append(est.Warnings, Warning{
						Kind:        WarningQuantityNotFound,
						Message:     fmt.Sprintf("item carries no %q quantity; skipping", qty.Name),
						ConditionID: &cid,
						ItemID:      &id,
					})
					continue
				}

				cost := decimal.NewFromFloat(usable).Mul(rule.Rate).Round(2)
				est.Lines = append(est.Lines, Line{
					ItemID:        item.ID,
					ItemName:      item.Name,
					ConditionID:   cond.ID,
					ConditionName: cond.Name,
					ZoneID:        zone.Zone.ID,
					QuantityName:  qty.Name,
					Unit:          qty.UnitOfMeasure,
					Quantity:      usable,
					Rate:          rule.Rate,
					Cost:          cost,
				})
				condSubtotal = condSubtotal.Add(cost)
				priced++
			}

			if priced > 0 {
				est.ConditionTotals = append(est.ConditionTotals, ConditionTotal{
					ConditionID:   cond.ID,
					ConditionName: cond.Name,
					ZoneID:        zone.Zone.ID,
					Items:         priced,
					Subtotal:      condSubtotal,
				})
			}
			zoneSubtotal = zoneSubtotal.Add(condSubtotal)
		}

		est.ZoneTotals = append(est.ZoneTotals, ZoneTotal{
			ZoneID:   zone.Zone.ID,
			ZoneName: zone.Zone.Name,
			Subtotal: zoneSubtotal,
		})
		est.Total = est.Total.Add(zoneSubtotal)
	}

	if len(est.Warnings) > 0 {
		slog.Default().With("component", "estimate").Debug("aggregation produced warnings",
			"warnings", len(est.Warnings),
			"lines", len(est.Lines))
	}

	return est, nil
}

// resolveRule picks the priced quantity for a condition: the first
// quantity, in declaration order, whose category (or shape, when the
// category carries no rule) and unit resolve in the registry.
func resolveRule(cond *takeoff.Condition, reg *pricing.Registry) (takeoff.QuantityDefinition, pricing.Rule, bool) {
	for _, q := range cond.Quantities {
		if rule, ok := reg.Resolve(cond.Category, q.UnitOfMeasure); ok {
			return q, rule, true
		}
		if rule, ok := reg.Resolve(cond.Shape, q.UnitOfMeasure); ok {
			return q, rule, true
		}
	}
	return takeoff.QuantityDefinition{}, pricing.Rule{}, false
}
