package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/vendops/earnings/internal/domain"
	"github.com/vendops/earnings/internal/money"
)

// StatementRepo persists commission statements, one per location and month.
type StatementRepo struct {
	db *sql.DB
}

func NewStatementRepo(db *sql.DB) *StatementRepo {
	return &StatementRepo{db: db}
}

// ReplaceMonth deletes the month's statements and writes the new set in a
// single transaction, so a rerun always leaves one consistent view.
func (r *StatementRepo) ReplaceMonth(ctx context.Context, month string, stmts []domain.Statement) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM commission_statements WHERE month = ?", month); err != nil {
		return 0, fmt.Errorf("clear month %s: %w", month, err)
	}

	ins, err := tx.PrepareContext(ctx,
		`INSERT INTO commission_statements
		(id, location_id, month, method, base_amount_cents, raw_commission_cents, commission_cents,
		 floor_applied, gross_cents, fees_cents, net_cents, computed_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer ins.Close()

	for i := range stmts {
		s := &stmts[i]
		_, err := ins.ExecContext(ctx,
			s.ID, s.LocationID, s.Month, string(s.Method), int64(s.BaseAmount),
			int64(s.RawCommission), int64(s.Commission), s.FloorApplied,
			int64(s.Gross), int64(s.Fees), int64(s.Net), formatTime(s.ComputedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("insert statement %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(stmts), nil
}

type StatementFilter struct {
	Month      string
	LocationID string
}

func (r *StatementRepo) List(ctx context.Context, f StatementFilter) ([]domain.Statement, error) {
	var clauses []string
	var args []any
	if f.Month != "" {
		clauses = append(clauses, "month = ?")
		args = append(args, f.Month)
	}
	if f.LocationID != "" {
		clauses = append(clauses, "location_id = ?")
		args = append(args, f.LocationID)
	}
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, location_id, month, method, base_amount_cents, raw_commission_cents, commission_cents,
			floor_applied, gross_cents, fees_cents, net_cents, computed_at
		FROM commission_statements`+where+` ORDER BY month DESC, location_id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query statements: %w", err)
	}
	defer rows.Close()

	var out []domain.Statement
	for rows.Next() {
		var s domain.Statement
		var method, computedAt string
		var base, raw, commission, gross, fees, net int64
		err := rows.Scan(&s.ID, &s.LocationID, &s.Month, &method, &base, &raw, &commission,
			&s.FloorApplied, &gross, &fees, &net, &computedAt)
		if err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		s.Method = domain.CommissionMethod(method)
		s.BaseAmount = money.Cents(base)
		s.RawCommission = money.Cents(raw)
		s.Commission = money.Cents(commission)
		s.Gross = money.Cents(gross)
		s.Fees = money.Cents(fees)
		s.Net = money.Cents(net)
		s.ComputedAt, _ = time.Parse(time.RFC3339, computedAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

// StatementSummary totals the statements of one month.
type StatementSummary struct {
	Month           string      `json:"month"`
	Locations       int         `json:"locations"`
	TotalCommission money.Cents `json:"total_commission_cents"`
	FloorsApplied   int         `json:"floors_applied"`
}

func (r *StatementRepo) Summary(ctx context.Context, month string) (*StatementSummary, error) {
	s := &StatementSummary{Month: month}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(commission_cents), 0), COALESCE(SUM(floor_applied), 0)
		FROM commission_statements WHERE month = ?`, month,
	).Scan(&s.Locations, &s.TotalCommission, &s.FloorsApplied)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", month, err)
	}
	return s, nil
}
