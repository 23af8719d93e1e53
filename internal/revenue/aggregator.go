// Package revenue folds sale lines into fee-aware revenue totals per machine
// or per location.
package revenue

import (
	"sort"

	"github.com/vendops/earnings/internal/domain"
	"github.com/vendops/earnings/internal/fees"
)

// KeyFunc picks the group a sale belongs to.
type KeyFunc func(domain.Sale) string

// ByMachine groups sales by the machine that recorded them.
func ByMachine(s domain.Sale) string {
	return s.MachineID
}

// ByLocation groups sales by the location their machine stands in. Sales
// from unplaced machines group under "".
func ByLocation(placement domain.Placement) KeyFunc {
	return func(s domain.Sale) string {
		return placement.LocationOf(s.MachineID)
	}
}

// Aggregate folds sales into one RevenueAggregate per group. The sales are
// expected to be filtered to the reporting window already; nothing is
// rejected, negative quantities included. Net is derived once per group
// after all lines are summed.
func Aggregate(sales []domain.Sale, key KeyFunc, resolver fees.Resolver) map[string]domain.RevenueAggregate {
	if resolver == nil {
		resolver = fees.NoFees{}
	}
	out := make(map[string]domain.RevenueAggregate)
	for _, s := range sales {
		k := key(s)
		agg := out[k]
		agg.EntityID = k
		agg.Gross += s.Gross()
		agg.CostOfGoods += s.Cost()
		agg.Fees += resolver.Fee(s)
		agg.SaleCount++
		agg.Units += s.Quantity
		out[k] = agg
	}
	for k, agg := range out {
		agg.Net = agg.Gross - agg.Fees - agg.CostOfGoods
		out[k] = agg
	}
	return out
}

// Total folds several aggregates into one under the given entity ID.
func Total(entityID string, aggs map[string]domain.RevenueAggregate) domain.RevenueAggregate {
	total := domain.RevenueAggregate{EntityID: entityID}
	for _, a := range aggs {
		total.Gross += a.Gross
		total.Fees += a.Fees
		total.CostOfGoods += a.CostOfGoods
		total.SaleCount += a.SaleCount
		total.Units += a.Units
	}
	total.Net = total.Gross - total.Fees - total.CostOfGoods
	return total
}

// Sorted returns the aggregates ordered by entity ID.
func Sorted(aggs map[string]domain.RevenueAggregate) []domain.RevenueAggregate {
	out := make([]domain.RevenueAggregate, 0, len(aggs))
	for _, a := range aggs {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}
