package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vendops/earnings/internal/domain"
	"github.com/vendops/earnings/internal/money"
)

type product struct {
	price money.Cents
	cost  money.Cents
}

var products = []product{
	{150, 55}, {175, 60}, {200, 70}, {225, 80}, {250, 95}, {325, 110},
}

// machines and their average sales per day; IDs match seed.json.
var machines = []struct {
	id    string
	daily int
}{
	{"m-001", 14}, {"m-002", 11}, {"m-003", 6}, {"m-004", 4},
	{"m-005", 8}, {"m-006", 7}, {"m-007", 9}, {"m-008", 2},
}

func main() {
	rng := rand.New(rand.NewSource(42))
	baseDir := findTestdataDir()

	// Q1 2024 as the POS CSV export, April as the backend JSON export.
	q1 := generate(rng, "S", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	writeSalesCSV(filepath.Join(baseDir, "sales.csv"), q1)
	fmt.Printf("Generated %d sales -> sales.csv\n", len(q1))

	april := generate(rng, "J", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC))
	writeJSONFile(filepath.Join(baseDir, "sales_april.json"), map[string]any{"records": april})
	fmt.Printf("Generated %d sales -> sales_april.json\n", len(april))

	fmt.Println("Test data generation complete.")
}

func generate(rng *rand.Rand, prefix string, from, to time.Time) []domain.Sale {
	var sales []domain.Sale
	n := 0
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		for _, m := range machines {
			// +/- 50% around the machine's average.
			count := m.daily/2 + rng.Intn(m.daily+1)
			for i := 0; i < count; i++ {
				n++
				p := products[rng.Intn(len(products))]
				qty := int64(1)
				if rng.Float64() < 0.12 {
					qty = 2
				}
				// 1% refunds.
				if rng.Float64() < 0.01 {
					qty = -1
				}

				sales = append(sales, domain.Sale{
					ID:            fmt.Sprintf("%s-%06d", prefix, n),
					MachineID:     m.id,
					OccurredAt:    day.Add(time.Duration(6*60+rng.Intn(17*60)) * time.Minute),
					Quantity:      qty,
					UnitPrice:     p.price,
					UnitCost:      p.cost,
					PaymentMethod: paymentMethod(rng),
				})
			}
		}
	}
	return sales
}

// paymentMethod: 65% card, 27% cash, 8% mobile.
func paymentMethod(rng *rand.Rand) string {
	roll := rng.Float64()
	switch {
	case roll < 0.65:
		return "card"
	case roll < 0.92:
		return "cash"
	default:
		return "mobile"
	}
}

func writeSalesCSV(path string, sales []domain.Sale) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	w.Write([]string{"sale_id", "machine_id", "occurred_at", "qty", "unit_price", "unit_cost", "payment_method"})
	for _, s := range sales {
		w.Write([]string{
			s.ID,
			s.MachineID,
			s.OccurredAt.Format(time.RFC3339),
			strconv.FormatInt(s.Quantity, 10),
			s.UnitPrice.String(),
			s.UnitCost.String(),
			s.PaymentMethod,
		})
	}
}

func writeJSONFile(path string, v any) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		panic(err)
	}
}

func findTestdataDir() string {
	for _, c := range []string{"testdata", "../testdata", "."} {
		if info, err := os.Stat(filepath.Join(c, "seed.json")); err == nil && !info.IsDir() {
			return c
		}
	}
	return "testdata"
}
