package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDecimalRoundsHalfAwayFromZero(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Cents
	}{
		{"11640", 11640},
		{"0.5", 1},
		{"0.49", 0},
		{"-0.5", -1},
		{"2.5", 3},
		{"7400.0000001", 7400},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromDecimal(decimal.RequireFromString(tt.in)), tt.in)
	}
}

func TestParseDollars(t *testing.T) {
	t.Parallel()

	c, err := ParseDollars("1.25")
	require.NoError(t, err)
	assert.Equal(t, Cents(125), c)

	c, err = ParseDollars("-0.015")
	require.NoError(t, err)
	assert.Equal(t, Cents(-2), c)

	_, err = ParseDollars("abc")
	assert.Error(t, err)
}

func TestCentsArithmetic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Cents(375), Cents(125).Times(3))
	assert.Equal(t, "116.4", Cents(97000).Percent(decimal.NewFromInt(12)).Shift(-2).String())
	assert.Equal(t, "15000", Cents(30000).Scale(decimal.RequireFromString("0.5")).String())
	assert.Equal(t, Cents(0), Cents(-5).NonNegative())
	assert.Equal(t, Cents(10), Max(Cents(10), Cents(-3)))
}

func TestCentsString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "12.34", Cents(1234).String())
	assert.Equal(t, "-3.05", Cents(-305).String())
	assert.Equal(t, "0.00", Cents(0).String())
}
