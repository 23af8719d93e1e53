package repository

import (
	"context"
	"database/sql"
)

type ImportRepo struct {
	db *sql.DB
}

func NewImportRepo(db *sql.DB) *ImportRepo {
	return &ImportRepo{db: db}
}

// ExistsByHash checks whether a file with the given hash has already been
// imported.
func (r *ImportRepo) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sales_imports WHERE file_hash = ?", hash,
	).Scan(&count)
	return count > 0, err
}
