// Package parse is the boundary between loosely typed rows coming from the
// data store or an uploaded file and the typed domain records the core works
// on. Malformed numeric input never fails here: it becomes zero, once, in
// this package.
package parse

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vendops/earnings/internal/money"
)

// OrDefault returns v unless err is set, in which case it returns def.
func OrDefault[T any](v T, err error, def T) T {
	if err != nil {
		return def
	}
	return v
}

// Decimal coerces a loosely typed value to a decimal. Nil, empty strings,
// NaN, infinities and anything unparseable become zero.
func Decimal(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(x)
	case float32:
		return Decimal(float64(x))
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case int32:
		return decimal.NewFromInt(int64(x))
	case json.Number:
		return Decimal(string(x))
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(s)
		return OrDefault(d, err, decimal.Zero)
	default:
		return decimal.Zero
	}
}

// Cents coerces a value already expressed in cents.
func Cents(v any) money.Cents {
	return money.FromDecimal(Decimal(v))
}

// DollarsToCents coerces a value expressed in dollars.
func DollarsToCents(v any) money.Cents {
	return money.FromDollars(Decimal(v))
}

// Int coerces a value to an integer, truncating any fraction.
func Int(v any) int64 {
	return Decimal(v).IntPart()
}

// String coerces a value to a trimmed string.
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return ""
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time parses the timestamp formats seen in exports. Unparseable values
// become the zero time.
func Time(v any) time.Time {
	switch x := v.(type) {
	case time.Time:
		return x.UTC()
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}
