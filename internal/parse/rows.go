package parse

import (
	"strings"

	"github.com/vendops/earnings/internal/domain"
)

// RawSale is a sales row as the data store or an export hands it over.
type RawSale struct {
	ID            any `json:"id"`
	MachineID     any `json:"machine_id"`
	OccurredAt    any `json:"occurred_at"`
	Qty           any `json:"qty"`
	UnitPrice     any `json:"unit_price_cents"`
	UnitCost      any `json:"unit_cost_cents"`
	PaymentMethod any `json:"payment_method"`
}

// Sale converts the row; a missing unit cost becomes zero.
func (r RawSale) Sale() domain.Sale {
	return domain.Sale{
		ID:            String(r.ID),
		MachineID:     String(r.MachineID),
		OccurredAt:    Time(r.OccurredAt),
		Quantity:      Int(r.Qty),
		UnitPrice:     Cents(r.UnitPrice),
		UnitCost:      Cents(r.UnitCost),
		PaymentMethod: strings.ToLower(String(r.PaymentMethod)),
	}
}

func Sales(rows []RawSale) []domain.Sale {
	out := make([]domain.Sale, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Sale())
	}
	return out
}

type RawMachine struct {
	ID         any `json:"id"`
	LocationID any `json:"location_id"`
	Name       any `json:"name"`
}

func (r RawMachine) Machine() domain.Machine {
	return domain.Machine{
		ID:         String(r.ID),
		LocationID: String(r.LocationID),
		Name:       String(r.Name),
	}
}

// RawLocation carries a location and its commission columns.
type RawLocation struct {
	ID                  any `json:"id"`
	Name                any `json:"name"`
	CommissionType      any `json:"commission_type"`
	CommissionRate      any `json:"commission_rate"`
	CommissionFlatCents any `json:"commission_flat_cents"`
	CommissionTiersJSON any `json:"commission_tiers_json"`
	CommissionBase      any `json:"commission_base"`
	CommissionMinCents  any `json:"commission_min_guarantee_cents"`
}

func (r RawLocation) Location() domain.Location {
	id := String(r.ID)
	return domain.Location{
		ID:   id,
		Name: String(r.Name),
		Policy: domain.CommissionPolicy{
			LocationID:      id,
			Method:          Method(String(r.CommissionType)),
			Base:            Base(String(r.CommissionBase)),
			RatePercent:     Decimal(r.CommissionRate),
			FlatPerMonth:    Cents(r.CommissionFlatCents),
			Tiers:           TiersJSON(String(r.CommissionTiersJSON)),
			MinimumPerMonth: Cents(r.CommissionMinCents),
		},
	}
}

type RawFinance struct {
	MachineID      any `json:"machine_id"`
	MonthlyPayment any `json:"monthly_payment_cents"`
	PurchasePrice  any `json:"purchase_price_cents"`
	TermMonths     any `json:"term_months"`
}

func (r RawFinance) Terms() domain.FinanceTerms {
	return domain.FinanceTerms{
		MachineID:      String(r.MachineID),
		MonthlyPayment: Cents(r.MonthlyPayment),
		PurchasePrice:  Cents(r.PurchasePrice),
		TermMonths:     int(Int(r.TermMonths)),
	}
}

type RawFeeRule struct {
	Key       any `json:"key"`
	Percent   any `json:"percent"`
	FlatCents any `json:"flat_cents"`
}

func (r RawFeeRule) Rule() domain.FeeRule {
	return domain.FeeRule{
		Key:     String(r.Key),
		Percent: Decimal(r.Percent),
		Flat:    Cents(r.FlatCents),
	}
}

// Method maps stored commission types, including legacy spellings, onto
// the engine's methods. Unknown values fall back to percent, which with a
// zero rate is the default no-commission policy.
func Method(s string) domain.CommissionMethod {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flat", "flat_month", "flat_fee":
		return domain.MethodFlat
	case "tiered", "tiered_percent", "tier":
		return domain.MethodTieredPercent
	case "hybrid":
		return domain.MethodHybrid
	case "none":
		return domain.MethodNone
	default:
		return domain.MethodPercent
	}
}

func Base(s string) domain.CommissionBase {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gross":
		return domain.BaseGross
	case "net":
		return domain.BaseNet
	default:
		return domain.BaseGrossLessFees
	}
}

// ROIModel maps a query value onto an ROI commission model; unknown values
// mean no commission.
func ROIModel(s string) domain.ROIModel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "percent_gross", "percent":
		return domain.ROIPercentGross
	case "flat_month", "flat":
		return domain.ROIFlatMonth
	case "hybrid":
		return domain.ROIHybrid
	default:
		return domain.ROINone
	}
}

// ROITerms builds what-if terms from request parameters.
func ROITerms(model, rate, flatCents, minCents string) domain.ROITerms {
	return domain.ROITerms{
		Model:           ROIModel(model),
		RatePercent:     Decimal(rate),
		FlatPerMonth:    Cents(flatCents),
		MinimumPerMonth: Cents(minCents),
	}
}
