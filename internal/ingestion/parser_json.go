package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vendops/earnings/internal/domain"
	"github.com/vendops/earnings/internal/parse"
)

// salesExport is the wrapped form of a backend export.
type salesExport struct {
	Records []parse.RawSale `json:"records"`
}

// ParseSalesJSON parses backend sales rows, either a bare array or an
// object with a "records" array. Amounts are in cents.
func ParseSalesJSON(data []byte) ([]domain.Sale, error) {
	trimmed := bytes.TrimSpace(data)
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var rows []parse.RawSale
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var export salesExport
		if err := dec.Decode(&export); err != nil {
			return nil, fmt.Errorf("unmarshal: %w", err)
		}
		rows = export.Records
	} else if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	return parse.Sales(rows), nil
}
