package domain

import "github.com/vendops/earnings/internal/money"

// FinanceTerms describes how a machine purchase is being paid off.
type FinanceTerms struct {
	MachineID      string      `json:"machine_id"`
	MonthlyPayment money.Cents `json:"monthly_payment_cents"`
	PurchasePrice  money.Cents `json:"purchase_price_cents"`
	TermMonths     int         `json:"term_months"`
}
