package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vendops/earnings/internal/domain"
	"github.com/vendops/earnings/internal/parse"
)

type FeeRuleRepo struct {
	db *sql.DB
}

func NewFeeRuleRepo(db *sql.DB) *FeeRuleRepo {
	return &FeeRuleRepo{db: db}
}

func (r *FeeRuleRepo) List(ctx context.Context) ([]domain.FeeRule, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT key, percent, flat_cents FROM fee_rules ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("query fee rules: %w", err)
	}
	defer rows.Close()

	var rules []domain.FeeRule
	for rows.Next() {
		var key, percent sql.NullString
		var flat sql.NullInt64
		if err := rows.Scan(&key, &percent, &flat); err != nil {
			return nil, fmt.Errorf("scan fee rule: %w", err)
		}
		raw := parse.RawFeeRule{Key: nullable(key), Percent: nullable(percent), FlatCents: nullable(flat)}
		rules = append(rules, raw.Rule())
	}
	return rules, rows.Err()
}

// ReplaceAll swaps the whole rule table in one transaction.
func (r *FeeRuleRepo) ReplaceAll(ctx context.Context, rules []domain.FeeRule) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM fee_rules"); err != nil {
		return fmt.Errorf("clear fee rules: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT OR REPLACE INTO fee_rules (key, percent, flat_cents) VALUES (?,?,?)")
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i, rule := range rules {
		if _, err := stmt.ExecContext(ctx, rule.Key, rule.Percent.String(), int64(rule.Flat)); err != nil {
			return fmt.Errorf("insert rule %d: %w", i, err)
		}
	}
	return tx.Commit()
}
