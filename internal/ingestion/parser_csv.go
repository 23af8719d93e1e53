package ingestion

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vendops/earnings/internal/domain"
	"github.com/vendops/earnings/internal/parse"
)

var requiredCSVColumns = []string{"machine_id", "occurred_at", "qty", "unit_price"}

// ParseSalesCSV parses a point-of-sale export.
//
// Expected header (any order, unit_cost/sale_id/payment_method optional):
//
//	sale_id,machine_id,occurred_at,qty,unit_price,unit_cost,payment_method
//
// Prices are decimal dollars. Unparseable numbers become zero rather than
// failing the file; a missing required column does fail it.
func ParseSalesCSV(data []byte) ([]domain.Sale, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, c := range requiredCSVColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, strconv.Quote(c))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns %s", strings.Join(missing, ", "))
	}

	field := func(row []string, name string) any {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return nil
		}
		return row[i]
	}

	var sales []domain.Sale
	lineNum := 1
	for {
		lineNum++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if len(row) < len(requiredCSVColumns) {
			continue
		}

		s := parse.RawSale{
			ID:            field(row, "sale_id"),
			MachineID:     field(row, "machine_id"),
			OccurredAt:    field(row, "occurred_at"),
			Qty:           field(row, "qty"),
			PaymentMethod: field(row, "payment_method"),
		}.Sale()
		s.UnitPrice = parse.DollarsToCents(field(row, "unit_price"))
		s.UnitCost = parse.DollarsToCents(field(row, "unit_cost"))
		sales = append(sales, s)
	}

	return sales, nil
}
