package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vendops/earnings/internal/domain"
	"github.com/vendops/earnings/internal/money"
)

var ErrMalformedTiers = errors.New("malformed commission tiers")

// rawTier accepts both the dollar-denominated shape stored by older rows
// ({"threshold": 500, "rate": 12}) and the cents shape the API writes.
type rawTier struct {
	Threshold      any `json:"threshold"`
	ThresholdCents any `json:"threshold_cents"`
	Rate           any `json:"rate"`
	RatePercent    any `json:"rate_percent"`
}

func (r rawTier) tier() domain.Tier {
	t := domain.Tier{RatePercent: Decimal(r.RatePercent)}
	if r.Rate != nil {
		t.RatePercent = Decimal(r.Rate)
	}
	if r.ThresholdCents != nil {
		t.Threshold = Cents(r.ThresholdCents)
	} else {
		t.Threshold = DollarsToCents(r.Threshold)
	}
	return t
}

// TiersJSON decodes a stored tier list. Empty or undecodable input yields no
// tiers; the result is normalised.
func TiersJSON(s string) []domain.Tier {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil
	}
	var raw []rawTier
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil
	}
	tiers := make([]domain.Tier, 0, len(raw))
	for _, r := range raw {
		tiers = append(tiers, r.tier())
	}
	return NormalizeTiers(tiers)
}

// NormalizeTiers drops tiers with a negative threshold or rate, collapses
// duplicate thresholds to the last one given and sorts by threshold.
func NormalizeTiers(tiers []domain.Tier) []domain.Tier {
	byThreshold := make(map[money.Cents]domain.Tier, len(tiers))
	for _, t := range tiers {
		if t.Threshold < 0 || t.RatePercent.IsNegative() {
			continue
		}
		byThreshold[t.Threshold] = t
	}
	if len(byThreshold) == 0 {
		return nil
	}
	out := make([]domain.Tier, 0, len(byThreshold))
	for _, t := range byThreshold {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Threshold < out[j].Threshold })
	return out
}

// ValidateTiers is the strict check applied when a policy is written.
// Out-of-order input is accepted; duplicates and negatives are not.
func ValidateTiers(tiers []domain.Tier) error {
	seen := make(map[money.Cents]bool, len(tiers))
	for i, t := range tiers {
		if t.Threshold < 0 {
			return fmt.Errorf("%w: tier %d has negative threshold %s", ErrMalformedTiers, i, t.Threshold)
		}
		if t.RatePercent.IsNegative() {
			return fmt.Errorf("%w: tier %d has negative rate %s", ErrMalformedTiers, i, t.RatePercent)
		}
		if seen[t.Threshold] {
			return fmt.Errorf("%w: duplicate threshold %s", ErrMalformedTiers, t.Threshold)
		}
		seen[t.Threshold] = true
	}
	return nil
}

// EncodeTiers stores tiers in the cents shape.
func EncodeTiers(tiers []domain.Tier) string {
	if len(tiers) == 0 {
		return ""
	}
	b, err := json.Marshal(tiers)
	if err != nil {
		return ""
	}
	return string(b)
}
