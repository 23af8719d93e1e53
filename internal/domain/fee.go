package domain

import (
	"github.com/shopspring/decimal"

	"github.com/vendops/earnings/internal/money"
)

// FeeRule describes the processing fee taken from a sale: a percentage of
// the line's gross value, a flat amount per sale line, or both.
type FeeRule struct {
	Key     string          `json:"key"`
	Percent decimal.Decimal `json:"percent"`
	Flat    money.Cents     `json:"flat_cents"`
}

// DefaultFeeKey matches every sale not covered by a more specific rule.
const DefaultFeeKey = "*"

func MachineFeeKey(machineID string) string   { return "machine:" + machineID }
func LocationFeeKey(locationID string) string { return "location:" + locationID }
func MethodFeeKey(method string) string       { return "method:" + method }

// WithMethod narrows a machine or location key to one payment method.
func WithMethod(key, method string) string {
	return key + "|" + MethodFeeKey(method)
}
