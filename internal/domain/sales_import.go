package domain

import "time"

type ImportFormat string

const (
	FormatCSV  ImportFormat = "csv"
	FormatJSON ImportFormat = "json"
)

// SalesImport records one ingested sales file.
type SalesImport struct {
	ID          string       `json:"id"`
	Format      ImportFormat `json:"format"`
	FileHash    string       `json:"file_hash"`
	RecordCount int          `json:"record_count"`
	IngestedAt  time.Time    `json:"ingested_at"`
}
