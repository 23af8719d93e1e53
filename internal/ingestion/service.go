package ingestion

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vendops/earnings/internal/domain"
	"github.com/vendops/earnings/internal/metrics"
	"github.com/vendops/earnings/internal/repository"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrMalformedFile wraps every parse failure of an uploaded file.
	ErrMalformedFile = errors.New("malformed file")
)

// ImportResult is returned from a successful import.
type ImportResult struct {
	ImportID          string `json:"import_id"`
	AlreadyImported   bool   `json:"already_imported"`
	RecordsParsed     int    `json:"records_parsed"`
	RecordsIngested   int    `json:"records_ingested"`
	DuplicatesSkipped int    `json:"duplicates_skipped"`
}

// Service imports sales files into the data store.
type Service struct {
	imports *repository.ImportRepo
	sales   *repository.SaleRepo
	log     *zap.Logger
	now     func() time.Time
}

// NewService creates a new ingestion service.
func NewService(imports *repository.ImportRepo, sales *repository.SaleRepo, log *zap.Logger) *Service {
	return &Service{
		imports: imports,
		sales:   sales,
		log:     log.Named("ingestion"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Import parses a sales file and stores its lines. A file whose content
// was imported before is skipped as a whole; individual sale IDs already
// present are skipped line by line.
func (s *Service) Import(ctx context.Context, data []byte, format domain.ImportFormat) (*ImportResult, error) {
	hash := fmt.Sprintf("%x", sha256.Sum256(data))
	exists, err := s.imports.ExistsByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("check hash: %w", err)
	}
	if exists {
		metrics.ImportsSkipped.Inc()
		s.log.Info("file already imported", zap.String("hash", hash))
		return &ImportResult{AlreadyImported: true}, nil
	}

	var sales []domain.Sale
	switch format {
	case domain.FormatCSV:
		sales, err = ParseSalesCSV(data)
	case domain.FormatJSON:
		sales, err = ParseSalesJSON(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrMalformedFile, format, err)
	}

	importID := uuid.NewString()
	for i := range sales {
		sales[i].ImportID = importID
		if sales[i].ID == "" {
			sales[i].ID = fmt.Sprintf("%s-%d", importID, i+1)
		}
	}

	imp := &domain.SalesImport{
		ID:          importID,
		Format:      format,
		FileHash:    hash,
		RecordCount: len(sales),
		IngestedAt:  s.now(),
	}
	inserted, err := s.sales.Import(ctx, imp, sales)
	if err != nil {
		return nil, fmt.Errorf("store import: %w", err)
	}
	metrics.SalesImported.WithLabelValues(string(format)).Add(float64(inserted))

	s.log.Info("imported sales file",
		zap.String("import_id", importID),
		zap.String("format", string(format)),
		zap.Int("parsed", len(sales)),
		zap.Int("inserted", inserted),
	)

	return &ImportResult{
		ImportID:          importID,
		RecordsParsed:     len(sales),
		RecordsIngested:   inserted,
		DuplicatesSkipped: len(sales) - inserted,
	}, nil
}
