package commission

import "github.com/vendops/earnings/internal/money"

// Allocate splits total into shares proportional to weights. Shares are
// floored to whole cents and the remainder goes to the largest weight, so
// the shares always sum to total. Negative weights count as zero; when no
// weight is positive the split is even.
func Allocate(total money.Cents, weights []money.Cents) []money.Cents {
	if len(weights) == 0 {
		return nil
	}

	w := make([]money.Cents, len(weights))
	var sum money.Cents
	for i, x := range weights {
		w[i] = x.NonNegative()
		sum += w[i]
	}
	if sum == 0 {
		for i := range w {
			w[i] = 1
		}
		sum = money.Cents(len(w))
	}

	shares := make([]money.Cents, len(w))
	var allocated money.Cents
	largest := 0
	for i := range w {
		share := total.Decimal().Mul(w[i].Decimal()).Div(sum.Decimal())
		if total < 0 {
			shares[i] = money.Cents(share.Ceil().IntPart())
		} else {
			shares[i] = money.Cents(share.Floor().IntPart())
		}
		allocated += shares[i]
		if w[i] > w[largest] {
			largest = i
		}
	}
	shares[largest] += total - allocated
	return shares
}
