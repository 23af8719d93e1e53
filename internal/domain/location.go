package domain

import (
	"github.com/shopspring/decimal"

	"github.com/vendops/earnings/internal/money"
)

type CommissionMethod string

const (
	MethodPercent       CommissionMethod = "percent"
	MethodFlat          CommissionMethod = "flat"
	MethodTieredPercent CommissionMethod = "tiered_percent"
	MethodHybrid        CommissionMethod = "hybrid"
	MethodNone          CommissionMethod = "none"
)

// CommissionBase selects which revenue figure a rate is applied to.
type CommissionBase string

const (
	BaseGross         CommissionBase = "gross"
	BaseGrossLessFees CommissionBase = "gross_less_fees"
	BaseNet           CommissionBase = "net"
)

// Tier is one bracket of a progressive commission schedule. The bracket
// starts at Threshold and runs up to the next tier's threshold.
type Tier struct {
	Threshold   money.Cents     `json:"threshold_cents"`
	RatePercent decimal.Decimal `json:"rate_percent"`
}

// CommissionPolicy is the per-location commission agreement. Amounts are per
// standard month and get prorated by the caller's months factor.
type CommissionPolicy struct {
	LocationID      string           `json:"location_id"`
	Method          CommissionMethod `json:"method"`
	Base            CommissionBase   `json:"base"`
	RatePercent     decimal.Decimal  `json:"rate_percent"`
	FlatPerMonth    money.Cents      `json:"flat_per_month_cents"`
	Tiers           []Tier           `json:"tiers,omitempty"`
	MinimumPerMonth money.Cents      `json:"minimum_per_month_cents"`
}

// DefaultPolicy is applied to locations with no configured agreement and
// always yields a zero commission.
func DefaultPolicy(locationID string) CommissionPolicy {
	return CommissionPolicy{
		LocationID:  locationID,
		Method:      MethodPercent,
		Base:        BaseGrossLessFees,
		RatePercent: decimal.Zero,
	}
}

type Location struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Policy CommissionPolicy `json:"commission_policy"`
}
