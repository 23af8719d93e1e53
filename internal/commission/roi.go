package commission

import (
	"github.com/shopspring/decimal"

	"github.com/vendops/earnings/internal/domain"
	"github.com/vendops/earnings/internal/money"
)

// ROICommission is the commission charged against a machine's gross revenue
// under terms. Every model except none is floored at the prorated minimum.
func ROICommission(terms domain.ROITerms, gross money.Cents, monthsFactor decimal.Decimal) money.Cents {
	mf := clampFactor(monthsFactor)
	percent := gross.NonNegative().Percent(terms.RatePercent)
	flat := terms.FlatPerMonth.Scale(mf)

	var amount decimal.Decimal
	switch terms.Model {
	case domain.ROIPercentGross:
		amount = percent
	case domain.ROIFlatMonth:
		amount = flat
	case domain.ROIHybrid:
		amount = percent.Add(flat)
	default:
		return 0
	}
	return money.Max(money.FromDecimal(amount), money.FromDecimal(terms.MinimumPerMonth.Scale(mf)))
}

// OwnerNet is net revenue less the prorated financing payment and the
// location's commission.
func OwnerNet(net, monthlyPayment money.Cents, monthsFactor decimal.Decimal, commission money.Cents) money.Cents {
	return net - money.FromDecimal(monthlyPayment.Scale(clampFactor(monthsFactor))) - commission
}

// ROI assembles the profitability row for one machine.
func ROI(agg domain.RevenueAggregate, locationID string, finance domain.FinanceTerms, commission money.Cents, monthsFactor decimal.Decimal) domain.ROIRow {
	mf := clampFactor(monthsFactor)
	row := domain.ROIRow{
		MachineID:     agg.EntityID,
		LocationID:    locationID,
		Gross:         agg.Gross,
		Fees:          agg.Fees,
		CostOfGoods:   agg.CostOfGoods,
		NetRevenue:    agg.Net,
		FinancingCost: money.FromDecimal(finance.MonthlyPayment.Scale(mf)),
		Commission:    commission,
	}
	row.OwnerNet = OwnerNet(agg.Net, finance.MonthlyPayment, mf, commission)
	row.PaybackMonths = paybackMonths(finance.PurchasePrice, row.OwnerNet, mf)
	return row
}

func paybackMonths(purchase, ownerNet money.Cents, mf decimal.Decimal) *decimal.Decimal {
	if purchase <= 0 || ownerNet <= 0 || !mf.IsPositive() {
		return nil
	}
	perMonth := ownerNet.Decimal().Div(mf)
	months := purchase.Decimal().Div(perMonth).Round(1)
	return &months
}
