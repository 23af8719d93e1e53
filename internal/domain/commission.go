package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vendops/earnings/internal/money"
)

// CommissionResult is the commission owed to a location for one period.
type CommissionResult struct {
	LocationID    string           `json:"location_id"`
	Month         string           `json:"month"`
	BaseAmount    money.Cents      `json:"base_amount_cents"`
	Method        CommissionMethod `json:"method"`
	RawCommission money.Cents      `json:"raw_commission_cents"`
	Commission    money.Cents      `json:"commission_cents"`
	FloorApplied  bool             `json:"floor_applied"`
}

// Statement is a persisted commission result.
type Statement struct {
	ID string `json:"id"`
	CommissionResult
	Gross      money.Cents `json:"gross_cents"`
	Fees       money.Cents `json:"fees_cents"`
	Net        money.Cents `json:"net_cents"`
	ComputedAt time.Time   `json:"computed_at"`
}

type ROIModel string

const (
	ROINone         ROIModel = "none"
	ROIPercentGross ROIModel = "percent_gross"
	ROIFlatMonth    ROIModel = "flat_month"
	ROIHybrid       ROIModel = "hybrid"
)

// ROITerms is the simplified commission model used for owner profitability.
type ROITerms struct {
	Model           ROIModel        `json:"model"`
	RatePercent     decimal.Decimal `json:"rate_percent"`
	FlatPerMonth    money.Cents     `json:"flat_per_month_cents"`
	MinimumPerMonth money.Cents     `json:"minimum_per_month_cents"`
}

// ROIRow is the owner's profitability for one machine over a period.
type ROIRow struct {
	MachineID     string      `json:"machine_id"`
	LocationID    string      `json:"location_id"`
	Gross         money.Cents `json:"gross_cents"`
	Fees          money.Cents `json:"fees_cents"`
	CostOfGoods   money.Cents `json:"cost_of_goods_cents"`
	NetRevenue    money.Cents `json:"net_revenue_cents"`
	FinancingCost money.Cents `json:"financing_cost_cents"`
	Commission    money.Cents `json:"commission_cents"`
	OwnerNet      money.Cents `json:"owner_net_cents"`
	// PaybackMonths estimates months to recover the purchase price at the
	// period's owner net rate; nil when the machine is not profitable.
	PaybackMonths *decimal.Decimal `json:"payback_months,omitempty"`
}
