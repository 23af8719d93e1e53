package commission

import (
	"testing"
	"testing/quick"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendops/earnings/internal/domain"
	"github.com/vendops/earnings/internal/money"
)

var one = decimal.NewFromInt(1)

func pct(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dollars(d int64) money.Cents { return money.Cents(d * 100) }

func TestComputePercentOnGrossLessFees(t *testing.T) {
	t.Parallel()

	policy := domain.CommissionPolicy{
		LocationID:  "l1",
		Method:      domain.MethodPercent,
		Base:        domain.BaseGrossLessFees,
		RatePercent: pct("12"),
	}
	agg := domain.RevenueAggregate{EntityID: "l1", Gross: dollars(1000), Fees: dollars(30)}

	res := Compute(policy, agg, one)
	assert.Equal(t, dollars(970), res.BaseAmount)
	assert.Equal(t, money.Cents(11640), res.Commission)
	assert.False(t, res.FloorApplied)
	assert.Equal(t, domain.MethodPercent, res.Method)
}

func TestComputeBaseSelection(t *testing.T) {
	t.Parallel()

	agg := domain.RevenueAggregate{Gross: 10000, Fees: 500, CostOfGoods: 4000, Net: 5500}
	tests := []struct {
		base domain.CommissionBase
		want money.Cents
	}{
		{domain.BaseGross, 10000},
		{domain.BaseGrossLessFees, 9500},
		{domain.BaseNet, 5500},
		{"", 9500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BaseAmount(tt.base, agg), string(tt.base))
	}
}

func TestComputeNegativeBaseClampsToZero(t *testing.T) {
	t.Parallel()

	policy := domain.CommissionPolicy{Method: domain.MethodPercent, Base: domain.BaseNet, RatePercent: pct("20")}
	agg := domain.RevenueAggregate{EntityID: "l1", Gross: 1000, CostOfGoods: 3000, Net: -2000}

	res := Compute(policy, agg, one)
	assert.Equal(t, money.Cents(0), res.BaseAmount)
	assert.Equal(t, money.Cents(0), res.Commission)
	assert.Equal(t, "l1", res.LocationID)
	assert.Equal(t, money.Cents(-2000), agg.Net)
}

func TestComputeTieredExample(t *testing.T) {
	t.Parallel()

	policy := domain.CommissionPolicy{
		Method: domain.MethodTieredPercent,
		Base:   domain.BaseGross,
		Tiers: []domain.Tier{
			{Threshold: dollars(500), RatePercent: pct("12")},
			{Threshold: 0, RatePercent: pct("10")},
		},
	}
	res := Compute(policy, domain.RevenueAggregate{Gross: dollars(700)}, one)
	assert.Equal(t, dollars(74), res.Commission)
}

func TestTieredEmptyIsZero(t *testing.T) {
	t.Parallel()

	assert.True(t, Tiered(dollars(700), nil).IsZero())
	assert.True(t, Tiered(0, []domain.Tier{{Threshold: 0, RatePercent: pct("10")}}).IsZero())
}

func TestTieredBelowFirstThresholdEarnsNothing(t *testing.T) {
	t.Parallel()

	tiers := []domain.Tier{{Threshold: dollars(100), RatePercent: pct("10")}}
	assert.True(t, Tiered(dollars(50), tiers).IsZero())
	assert.Equal(t, "500", Tiered(dollars(150), tiers).String())
}

func TestTieredDuplicateThresholdUsesLast(t *testing.T) {
	t.Parallel()

	tiers := []domain.Tier{
		{Threshold: 0, RatePercent: pct("10")},
		{Threshold: 0, RatePercent: pct("20")},
	}
	assert.Equal(t, "2000", Tiered(dollars(100), tiers).String())
}

func TestTieredMonotonicAtBoundaries(t *testing.T) {
	t.Parallel()

	tiers := []domain.Tier{
		{Threshold: 0, RatePercent: pct("10")},
		{Threshold: dollars(500), RatePercent: pct("12")},
		{Threshold: dollars(1000), RatePercent: pct("15")},
	}
	c499 := Tiered(dollars(499), tiers)
	c500 := Tiered(dollars(500), tiers)
	c501 := Tiered(dollars(501), tiers)
	assert.True(t, c499.LessThan(c500))
	assert.True(t, c500.LessThanOrEqual(c501))

	property := func(a, b uint32) bool {
		x, y := money.Cents(a%500000), money.Cents(b%500000)
		if x > y {
			x, y = y, x
		}
		cx, cy := Tiered(x, tiers), Tiered(y, tiers)
		if cx.GreaterThan(cy) {
			return false
		}
		// slope never exceeds the top rate, so there are no jumps
		return cy.Sub(cx).LessThanOrEqual((y - x).Percent(pct("15")))
	}
	require.NoError(t, quick.Check(property, nil))
}

func TestComputeMinimumGuaranteeFloor(t *testing.T) {
	t.Parallel()

	policy := domain.CommissionPolicy{
		Method:          domain.MethodFlat,
		FlatPerMonth:    dollars(50),
		MinimumPerMonth: dollars(100),
	}
	res := Compute(policy, domain.RevenueAggregate{}, one)
	assert.Equal(t, dollars(100), res.Commission)
	assert.Equal(t, dollars(50), res.RawCommission)
	assert.True(t, res.FloorApplied)
}

func TestComputeProratesFlatAndMinimum(t *testing.T) {
	t.Parallel()

	half := pct("0.5")
	flat := domain.CommissionPolicy{Method: domain.MethodFlat, FlatPerMonth: dollars(300)}
	assert.Equal(t, dollars(150), Compute(flat, domain.RevenueAggregate{}, half).Commission)

	floored := domain.CommissionPolicy{
		Method:          domain.MethodPercent,
		Base:            domain.BaseGross,
		RatePercent:     pct("10"),
		MinimumPerMonth: dollars(100),
	}
	res := Compute(floored, domain.RevenueAggregate{Gross: dollars(200)}, half)
	assert.Equal(t, dollars(50), res.Commission)
	assert.True(t, res.FloorApplied)
}

func TestComputeHybridAndNone(t *testing.T) {
	t.Parallel()

	agg := domain.RevenueAggregate{Gross: dollars(1000)}
	hybrid := domain.CommissionPolicy{
		Method:       domain.MethodHybrid,
		Base:         domain.BaseGross,
		RatePercent:  pct("5"),
		FlatPerMonth: dollars(20),
	}
	assert.Equal(t, dollars(70), Compute(hybrid, agg, one).Commission)

	none := domain.CommissionPolicy{Method: domain.MethodNone, MinimumPerMonth: dollars(100)}
	res := Compute(none, agg, one)
	assert.Equal(t, money.Cents(0), res.Commission)
	assert.False(t, res.FloorApplied)
}

func TestComputeAbsentEntityWithDefaultPolicy(t *testing.T) {
	t.Parallel()

	res := Compute(domain.DefaultPolicy("l9"), domain.RevenueAggregate{}, one)
	assert.Equal(t, "l9", res.LocationID)
	assert.Equal(t, money.Cents(0), res.Commission)
}

func TestComputeDeterministic(t *testing.T) {
	t.Parallel()

	policy := domain.CommissionPolicy{
		Method: domain.MethodTieredPercent,
		Tiers: []domain.Tier{
			{Threshold: 0, RatePercent: pct("7.5")},
			{Threshold: 25000, RatePercent: pct("9.25")},
		},
		MinimumPerMonth: 1500,
	}
	property := func(gross, fees uint32, days uint8) bool {
		agg := domain.RevenueAggregate{Gross: money.Cents(gross), Fees: money.Cents(fees % 10000)}
		mf := decimal.NewFromInt(int64(days%31) + 1).Div(decimal.NewFromInt(30))
		return Compute(policy, agg, mf) == Compute(policy, agg, mf)
	}
	assert.NoError(t, quick.Check(property, nil))
}

func TestComputeNegativeMonthsFactor(t *testing.T) {
	t.Parallel()

	policy := domain.CommissionPolicy{Method: domain.MethodFlat, FlatPerMonth: dollars(10)}
	assert.Equal(t, money.Cents(0), Compute(policy, domain.RevenueAggregate{}, pct("-1")).Commission)
}
