package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/vendops/earnings/internal/domain"
	"github.com/vendops/earnings/internal/parse"
)

// seedFile mirrors the backend tables, loosely typed like the rows the
// backend returns.
type seedFile struct {
	Locations []parse.RawLocation `json:"locations"`
	Machines  []parse.RawMachine  `json:"machines"`
	Finance   []parse.RawFinance  `json:"finance_terms"`
	FeeRules  []parse.RawFeeRule  `json:"fee_rules"`
}

func (a *app) seed(ctx context.Context, force bool) error {
	existing, err := a.locations.List(ctx)
	if err != nil {
		return fmt.Errorf("count locations: %w", err)
	}
	if len(existing) > 0 && !force {
		a.log.Info("database already seeded, skipping", zap.Int("locations", len(existing)))
		return nil
	}

	data, path, err := readSeed(a.cfg.SeedDir, "seed.json")
	if err != nil {
		return err
	}
	var seed seedFile
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&seed); err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}

	for _, raw := range seed.Locations {
		if err := a.locations.Upsert(ctx, raw.Location()); err != nil {
			return err
		}
	}
	for _, raw := range seed.Machines {
		if err := a.locations.UpsertMachine(ctx, raw.Machine()); err != nil {
			return err
		}
	}
	for _, raw := range seed.Finance {
		if err := a.finance.Upsert(ctx, raw.Terms()); err != nil {
			return err
		}
	}
	rules := make([]domain.FeeRule, 0, len(seed.FeeRules))
	for _, raw := range seed.FeeRules {
		rules = append(rules, raw.Rule())
	}
	if err := a.feeRules.ReplaceAll(ctx, rules); err != nil {
		return err
	}
	a.log.Info("seeded configuration",
		zap.String("path", path),
		zap.Int("locations", len(seed.Locations)),
		zap.Int("machines", len(seed.Machines)),
		zap.Int("fee_rules", len(rules)),
	)

	sales, salesPath, err := readSeed(a.cfg.SeedDir, "sales.csv")
	if err != nil {
		a.log.Warn("no sample sales to import", zap.Error(err))
		return nil
	}
	res, err := a.imports.Import(ctx, sales, domain.FormatCSV)
	if err != nil {
		return fmt.Errorf("import %s: %w", salesPath, err)
	}
	a.log.Info("seeded sales", zap.String("path", salesPath), zap.Int("inserted", res.RecordsIngested))
	return nil
}

// readSeed looks for name in the seed directory, then next to the binary.
func readSeed(dir, name string) ([]byte, string, error) {
	candidates := []string{filepath.Join(dir, name)}
	if exe, err := os.Executable(); err == nil {
		base := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(base, dir, name),
			filepath.Join(base, "..", "..", dir, name),
		)
	}

	var loadErr error
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err == nil {
			return data, path, nil
		}
		loadErr = err
	}
	return nil, "", fmt.Errorf("could not find %s in any candidate path: %w", name, loadErr)
}
