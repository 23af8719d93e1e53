package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vendops/earnings/internal/domain"
	"github.com/vendops/earnings/internal/parse"
)

type FinanceRepo struct {
	db *sql.DB
}

func NewFinanceRepo(db *sql.DB) *FinanceRepo {
	return &FinanceRepo{db: db}
}

func (r *FinanceRepo) List(ctx context.Context) ([]domain.FinanceTerms, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT machine_id, monthly_payment_cents, purchase_price_cents, term_months FROM finance_terms ORDER BY machine_id",
	)
	if err != nil {
		return nil, fmt.Errorf("query finance terms: %w", err)
	}
	defer rows.Close()

	var terms []domain.FinanceTerms
	for rows.Next() {
		var machineID sql.NullString
		var payment, price, term sql.NullInt64
		if err := rows.Scan(&machineID, &payment, &price, &term); err != nil {
			return nil, fmt.Errorf("scan finance terms: %w", err)
		}
		raw := parse.RawFinance{
			MachineID:      nullable(machineID),
			MonthlyPayment: nullable(payment),
			PurchasePrice:  nullable(price),
			TermMonths:     nullable(term),
		}
		terms = append(terms, raw.Terms())
	}
	return terms, rows.Err()
}

func (r *FinanceRepo) Upsert(ctx context.Context, f domain.FinanceTerms) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO finance_terms (machine_id, monthly_payment_cents, purchase_price_cents, term_months)
		VALUES (?,?,?,?)
		ON CONFLICT(machine_id) DO UPDATE SET
			monthly_payment_cents = excluded.monthly_payment_cents,
			purchase_price_cents = excluded.purchase_price_cents,
			term_months = excluded.term_months`,
		f.MachineID, int64(f.MonthlyPayment), int64(f.PurchasePrice), f.TermMonths,
	)
	if err != nil {
		return fmt.Errorf("upsert finance terms %s: %w", f.MachineID, err)
	}
	return nil
}
