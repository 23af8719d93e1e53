package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/vendops/earnings/internal/domain"
	"github.com/vendops/earnings/internal/parse"
)

type SaleRepo struct {
	db *sql.DB
}

func NewSaleRepo(db *sql.DB) *SaleRepo {
	return &SaleRepo{db: db}
}

// BulkInsert stores sales, skipping IDs that already exist. It returns the
// number of rows actually written.
func (r *SaleRepo) BulkInsert(ctx context.Context, sales []domain.Sale) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	inserted, err := insertSales(ctx, tx, sales)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// Import records the import and stores its sales in one transaction, so a
// failed write leaves no trace of the file and it can be retried.
func (r *SaleRepo) Import(ctx context.Context, imp *domain.SalesImport, sales []domain.Sale) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sales_imports (id, format, file_hash, record_count, ingested_at)
		VALUES (?,?,?,?,?)`,
		imp.ID, string(imp.Format), imp.FileHash, imp.RecordCount, formatTime(imp.IngestedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert import %s: %w", imp.ID, err)
	}

	inserted, err := insertSales(ctx, tx, sales)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func insertSales(ctx context.Context, tx *sql.Tx, sales []domain.Sale) (int, error) {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO sales
		(id, machine_id, occurred_at, qty, unit_price_cents, unit_cost_cents, payment_method, import_id)
		VALUES (?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i := range sales {
		s := &sales[i]
		res, err := stmt.ExecContext(ctx,
			s.ID, s.MachineID, formatTime(s.OccurredAt), s.Quantity,
			int64(s.UnitPrice), int64(s.UnitCost), nullIfEmpty(s.PaymentMethod), nullIfEmpty(s.ImportID),
		)
		if err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i, err)
		}
		ra, _ := res.RowsAffected()
		inserted += int(ra)
	}
	return inserted, nil
}

func (r *SaleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sales").Scan(&count)
	return count, err
}

type SaleFilter struct {
	Period    domain.Period
	MachineID string
}

// List returns the sales recorded inside the filter's period.
func (r *SaleRepo) List(ctx context.Context, f SaleFilter) ([]domain.Sale, error) {
	clauses := []string{"occurred_at >= ?", "occurred_at < ?"}
	args := []any{formatTime(f.Period.From), formatTime(f.Period.End())}
	if f.MachineID != "" {
		clauses = append(clauses, "machine_id = ?")
		args = append(args, f.MachineID)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, machine_id, occurred_at, qty, unit_price_cents, unit_cost_cents, payment_method, import_id
		FROM sales WHERE `+strings.Join(clauses, " AND ")+` ORDER BY occurred_at, id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	var sales []domain.Sale
	for rows.Next() {
		var id, machineID, occurredAt, method, importID sql.NullString
		var qty, price, cost sql.NullInt64
		if err := rows.Scan(&id, &machineID, &occurredAt, &qty, &price, &cost, &method, &importID); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		s := parse.RawSale{
			ID:            nullable(id),
			MachineID:     nullable(machineID),
			OccurredAt:    nullable(occurredAt),
			Qty:           nullable(qty),
			UnitPrice:     nullable(price),
			UnitCost:      nullable(cost),
			PaymentMethod: nullable(method),
		}.Sale()
		s.ImportID = importID.String
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

// --- helpers ---

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
