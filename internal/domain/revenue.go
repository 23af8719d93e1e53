package domain

import "github.com/vendops/earnings/internal/money"

// RevenueAggregate is the fee-aware revenue of one machine or location over
// a reporting window. Net is always Gross - Fees - CostOfGoods.
type RevenueAggregate struct {
	EntityID    string      `json:"entity_id"`
	Gross       money.Cents `json:"gross_cents"`
	Fees        money.Cents `json:"fees_cents"`
	CostOfGoods money.Cents `json:"cost_of_goods_cents"`
	Net         money.Cents `json:"net_cents"`
	SaleCount   int         `json:"sale_count"`
	Units       int64       `json:"units"`
}

// GrossLessFees is gross revenue with processing fees removed.
func (a RevenueAggregate) GrossLessFees() money.Cents {
	return a.Gross - a.Fees
}
