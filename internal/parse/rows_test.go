package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendops/earnings/internal/domain"
	"github.com/vendops/earnings/internal/money"
)

func TestRawSaleDefaultsMissingFields(t *testing.T) {
	t.Parallel()

	s := RawSale{
		ID:         "s1",
		MachineID:  "m1",
		OccurredAt: "2024-03-02T12:00:00Z",
		Qty:        "2",
		UnitPrice:  150.0,
		UnitCost:   nil,
	}.Sale()

	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, int64(2), s.Quantity)
	assert.Equal(t, money.Cents(150), s.UnitPrice)
	assert.Equal(t, money.Cents(0), s.UnitCost)
	assert.Equal(t, time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC), s.OccurredAt)
}

func TestRawLocationPolicy(t *testing.T) {
	t.Parallel()

	loc := RawLocation{
		ID:                  "loc-1",
		Name:                "Gym",
		CommissionType:      "Tiered",
		CommissionRate:      "oops",
		CommissionTiersJSON: `[{"threshold":0,"rate":10},{"threshold":500,"rate":12}]`,
		CommissionBase:      "NET",
		CommissionMinCents:  "10000",
	}.Location()

	assert.Equal(t, "loc-1", loc.Policy.LocationID)
	assert.Equal(t, domain.MethodTieredPercent, loc.Policy.Method)
	assert.Equal(t, domain.BaseNet, loc.Policy.Base)
	assert.True(t, loc.Policy.RatePercent.IsZero())
	assert.Equal(t, money.Cents(10000), loc.Policy.MinimumPerMonth)
	require.Len(t, loc.Policy.Tiers, 2)
}

func TestRawLocationWithoutPolicyIsDefault(t *testing.T) {
	t.Parallel()

	loc := RawLocation{ID: "loc-2"}.Location()
	def := domain.DefaultPolicy("loc-2")
	assert.Equal(t, def.Method, loc.Policy.Method)
	assert.Equal(t, def.Base, loc.Policy.Base)
	assert.True(t, loc.Policy.RatePercent.IsZero())
}

func TestMethodAndBaseMapping(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.MethodFlat, Method("flat_month"))
	assert.Equal(t, domain.MethodHybrid, Method(" HYBRID "))
	assert.Equal(t, domain.MethodNone, Method("none"))
	assert.Equal(t, domain.MethodPercent, Method("mystery"))
	assert.Equal(t, domain.BaseGross, Base("gross"))
	assert.Equal(t, domain.BaseGrossLessFees, Base(""))
}

func TestROITerms(t *testing.T) {
	t.Parallel()

	terms := ROITerms("hybrid", "5", "2500", "x")
	assert.Equal(t, domain.ROIHybrid, terms.Model)
	assert.Equal(t, "5", terms.RatePercent.String())
	assert.Equal(t, money.Cents(2500), terms.FlatPerMonth)
	assert.Equal(t, money.Cents(0), terms.MinimumPerMonth)
	assert.Equal(t, domain.ROINone, ROIModel(""))
}

func TestRawFinanceAndFeeRule(t *testing.T) {
	t.Parallel()

	f := RawFinance{MachineID: "m1", MonthlyPayment: "10000", PurchasePrice: 360000.0, TermMonths: "36"}.Terms()
	assert.Equal(t, money.Cents(10000), f.MonthlyPayment)
	assert.Equal(t, money.Cents(360000), f.PurchasePrice)
	assert.Equal(t, 36, f.TermMonths)

	r := RawFeeRule{Key: "method:card", Percent: "2.9", FlatCents: "bad"}.Rule()
	assert.Equal(t, "method:card", r.Key)
	assert.Equal(t, "2.9", r.Percent.String())
	assert.Equal(t, money.Cents(0), r.Flat)
}
