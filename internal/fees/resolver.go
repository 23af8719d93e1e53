// Package fees resolves the payment-processing fee taken from each sale.
package fees

import (
	"github.com/vendops/earnings/internal/domain"
	"github.com/vendops/earnings/internal/money"
)

// Resolver returns the processing fee for a sale line.
type Resolver interface {
	Fee(s domain.Sale) money.Cents
}

// RuleResolver looks fees up in a rule table keyed by machine, location and
// payment method. A sale with no matching rule costs nothing.
type RuleResolver struct {
	rules     map[string]domain.FeeRule
	placement domain.Placement
}

// NewRuleResolver indexes rules by key; later rules replace earlier ones
// with the same key.
func NewRuleResolver(rules []domain.FeeRule, placement domain.Placement) *RuleResolver {
	idx := make(map[string]domain.FeeRule, len(rules))
	for _, r := range rules {
		idx[r.Key] = r
	}
	return &RuleResolver{rules: idx, placement: placement}
}

// Rule returns the most specific rule that applies to the sale.
func (r *RuleResolver) Rule(s domain.Sale) (domain.FeeRule, bool) {
	for _, key := range candidateKeys(s, r.placement.LocationOf(s.MachineID)) {
		if rule, ok := r.rules[key]; ok {
			return rule, true
		}
	}
	return domain.FeeRule{}, false
}

// Fee is gross × percent/100 rounded to cents, plus the flat amount.
func (r *RuleResolver) Fee(s domain.Sale) money.Cents {
	rule, ok := r.Rule(s)
	if !ok {
		return 0
	}
	return money.FromDecimal(s.Gross().Percent(rule.Percent)) + rule.Flat
}

func candidateKeys(s domain.Sale, locationID string) []string {
	keys := make([]string, 0, 6)
	machine := domain.MachineFeeKey(s.MachineID)
	location := domain.LocationFeeKey(locationID)
	if s.PaymentMethod != "" {
		keys = append(keys, domain.WithMethod(machine, s.PaymentMethod))
	}
	keys = append(keys, machine)
	if locationID != "" {
		if s.PaymentMethod != "" {
			keys = append(keys, domain.WithMethod(location, s.PaymentMethod))
		}
		keys = append(keys, location)
	}
	if s.PaymentMethod != "" {
		keys = append(keys, domain.MethodFeeKey(s.PaymentMethod))
	}
	return append(keys, domain.DefaultFeeKey)
}

// NoFees charges nothing on any sale.
type NoFees struct{}

func (NoFees) Fee(domain.Sale) money.Cents { return 0 }
