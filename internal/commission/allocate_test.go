package commission

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"

	"github.com/vendops/earnings/internal/money"
)

func TestAllocate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		total   money.Cents
		weights []money.Cents
		want    []money.Cents
	}{
		{"proportional", 3300, []money.Cents{40000, 20000}, []money.Cents{2200, 1100}},
		{"remainder to largest", 100, []money.Cents{1, 1, 2}, []money.Cents{25, 25, 50}},
		{"uneven remainder", 1000, []money.Cents{1, 1, 1}, []money.Cents{334, 333, 333}},
		{"zero weights split evenly", 10000, []money.Cents{0, 0}, []money.Cents{5000, 5000}},
		{"negative weight ignored", 900, []money.Cents{-50, 300}, []money.Cents{0, 900}},
		{"zero total", 0, []money.Cents{10, 20}, []money.Cents{0, 0}},
		{"no weights", 500, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allocate(tt.total, tt.weights))
		})
	}
}

func TestAllocateSharesSumToTotal(t *testing.T) {
	t.Parallel()

	f := func(total uint32, raw []uint16) bool {
		if len(raw) == 0 {
			return true
		}
		weights := make([]money.Cents, len(raw))
		for i, r := range raw {
			weights[i] = money.Cents(r)
		}
		var sum money.Cents
		for _, s := range Allocate(money.Cents(total), weights) {
			if s < 0 {
				return false
			}
			sum += s
		}
		return sum == money.Cents(total)
	}
	assert.NoError(t, quick.Check(f, nil))
}
