package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vendops/earnings/internal/domain"
	"github.com/vendops/earnings/internal/parse"
)

// LocationRepo stores locations, their commission agreements and the
// machines placed in them.
type LocationRepo struct {
	db *sql.DB
}

func NewLocationRepo(db *sql.DB) *LocationRepo {
	return &LocationRepo{db: db}
}

const locationColumns = `id, name, commission_type, commission_rate, commission_flat_cents,
	commission_tiers_json, commission_base, commission_min_guarantee_cents`

// List returns every location with its parsed commission policy.
func (r *LocationRepo) List(ctx context.Context) ([]domain.Location, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+locationColumns+" FROM locations ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	var locs []domain.Location
	for rows.Next() {
		raw, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locs = append(locs, raw.Location())
	}
	return locs, rows.Err()
}

func (r *LocationRepo) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+locationColumns+" FROM locations WHERE id = ?", id)
	raw, err := scanLocation(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("location %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan location: %w", err)
	}
	loc := raw.Location()
	return &loc, nil
}

// Upsert writes a location and its policy.
func (r *LocationRepo) Upsert(ctx context.Context, loc domain.Location) error {
	p := loc.Policy
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO locations (`+locationColumns+`) VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			commission_type = excluded.commission_type,
			commission_rate = excluded.commission_rate,
			commission_flat_cents = excluded.commission_flat_cents,
			commission_tiers_json = excluded.commission_tiers_json,
			commission_base = excluded.commission_base,
			commission_min_guarantee_cents = excluded.commission_min_guarantee_cents`,
		loc.ID, loc.Name, string(p.Method), p.RatePercent.String(), int64(p.FlatPerMonth),
		parse.EncodeTiers(p.Tiers), string(p.Base), int64(p.MinimumPerMonth),
	)
	if err != nil {
		return fmt.Errorf("upsert location %s: %w", loc.ID, err)
	}
	return nil
}

// UpdatePolicy replaces the commission agreement of an existing location.
func (r *LocationRepo) UpdatePolicy(ctx context.Context, p domain.CommissionPolicy) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE locations SET commission_type = ?, commission_rate = ?, commission_flat_cents = ?,
			commission_tiers_json = ?, commission_base = ?, commission_min_guarantee_cents = ?
		WHERE id = ?`,
		string(p.Method), p.RatePercent.String(), int64(p.FlatPerMonth),
		parse.EncodeTiers(p.Tiers), string(p.Base), int64(p.MinimumPerMonth), p.LocationID,
	)
	if err != nil {
		return fmt.Errorf("update policy %s: %w", p.LocationID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("location %s: %w", p.LocationID, ErrNotFound)
	}
	return nil
}

func (r *LocationRepo) ListMachines(ctx context.Context) ([]domain.Machine, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, location_id, name FROM machines ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query machines: %w", err)
	}
	defer rows.Close()

	var machines []domain.Machine
	for rows.Next() {
		var id, locationID, name sql.NullString
		if err := rows.Scan(&id, &locationID, &name); err != nil {
			return nil, fmt.Errorf("scan machine: %w", err)
		}
		raw := parse.RawMachine{ID: nullable(id), LocationID: nullable(locationID), Name: nullable(name)}
		machines = append(machines, raw.Machine())
	}
	return machines, rows.Err()
}

func (r *LocationRepo) UpsertMachine(ctx context.Context, m domain.Machine) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO machines (id, location_id, name) VALUES (?,?,?)
		ON CONFLICT(id) DO UPDATE SET location_id = excluded.location_id, name = excluded.name`,
		m.ID, m.LocationID, m.Name,
	)
	if err != nil {
		return fmt.Errorf("upsert machine %s: %w", m.ID, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLocation(s scanner) (parse.RawLocation, error) {
	var (
		id, name, ctype, rate, tiers, base sql.NullString
		flat, minimum                      sql.NullInt64
	)
	if err := s.Scan(&id, &name, &ctype, &rate, &flat, &tiers, &base, &minimum); err != nil {
		return parse.RawLocation{}, err
	}
	return parse.RawLocation{
		ID:                  nullable(id),
		Name:                nullable(name),
		CommissionType:      nullable(ctype),
		CommissionRate:      nullable(rate),
		CommissionFlatCents: nullable(flat),
		CommissionTiersJSON: nullable(tiers),
		CommissionBase:      nullable(base),
		CommissionMinCents:  nullable(minimum),
	}, nil
}
