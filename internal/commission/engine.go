// Package commission computes what a location is owed under its commission
// agreement and what the machine owner keeps afterwards. Every function is
// pure: inputs in, a new value out.
package commission

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vendops/earnings/internal/domain"
	"github.com/vendops/earnings/internal/money"
)

// BaseAmount selects the revenue figure the policy's rates apply to,
// floored at zero.
func BaseAmount(base domain.CommissionBase, agg domain.RevenueAggregate) money.Cents {
	var amount money.Cents
	switch base {
	case domain.BaseGross:
		amount = agg.Gross
	case domain.BaseNet:
		amount = agg.Net
	default:
		amount = agg.GrossLessFees()
	}
	return amount.NonNegative()
}

// Compute returns the commission owed under policy for a period covering
// monthsFactor standard months. Flat amounts and the minimum guarantee are
// prorated by monthsFactor; percentages are not.
func Compute(policy domain.CommissionPolicy, agg domain.RevenueAggregate, monthsFactor decimal.Decimal) domain.CommissionResult {
	mf := clampFactor(monthsFactor)
	base := BaseAmount(policy.Base, agg)

	var raw decimal.Decimal
	switch policy.Method {
	case domain.MethodPercent:
		raw = base.Percent(policy.RatePercent)
	case domain.MethodFlat:
		raw = policy.FlatPerMonth.Scale(mf)
	case domain.MethodTieredPercent:
		raw = Tiered(base, policy.Tiers)
	case domain.MethodHybrid:
		raw = base.Percent(policy.RatePercent).Add(policy.FlatPerMonth.Scale(mf))
	default:
		raw = decimal.Zero
	}

	locationID := policy.LocationID
	if locationID == "" {
		locationID = agg.EntityID
	}
	res := domain.CommissionResult{
		LocationID:    locationID,
		BaseAmount:    base,
		Method:        policy.Method,
		RawCommission: money.FromDecimal(raw),
	}
	res.Commission = res.RawCommission

	if policy.Method != domain.MethodNone && policy.MinimumPerMonth > 0 {
		floor := money.FromDecimal(policy.MinimumPerMonth.Scale(mf))
		if floor > res.Commission {
			res.Commission = floor
			res.FloorApplied = true
		}
	}
	return res
}

// Tiered applies progressive brackets to base: each tier's rate covers only
// the slice of base between its threshold and the next tier's threshold.
// The last bracket is open-ended and amounts below the first threshold earn
// nothing.
func Tiered(base money.Cents, tiers []domain.Tier) decimal.Decimal {
	if len(tiers) == 0 || base <= 0 {
		return decimal.Zero
	}
	sorted := make([]domain.Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Threshold < sorted[j].Threshold })

	total := decimal.Zero
	for i, t := range sorted {
		lo := t.Threshold.NonNegative()
		hi := base
		if i+1 < len(sorted) && sorted[i+1].Threshold < hi {
			hi = sorted[i+1].Threshold
		}
		if hi <= lo {
			continue
		}
		total = total.Add((hi - lo).Percent(t.RatePercent))
	}
	return total
}

func clampFactor(f decimal.Decimal) decimal.Decimal {
	if f.IsNegative() {
		return decimal.Zero
	}
	return f
}
