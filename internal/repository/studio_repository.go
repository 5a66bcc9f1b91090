package repository

import (
	"context"
	"database/sql"

	"github.com/adityarizkyr/cinetix/internal/model"
)

// StudioRepo provides read access to studios. Studio layout is managed
// by administration; this core only resolves names for listings and
// events.
type StudioRepo struct {
	db *sql.DB
}

// NewStudioRepo returns a new StudioRepo bound to the given database.
func NewStudioRepo(db *sql.DB) *StudioRepo { return &StudioRepo{db: db} }

// GetByID returns a single studio. When no studio with the specified
// ID exists, sql.ErrNoRows is returned.
func (r *StudioRepo) GetByID(ctx context.Context, id uint64) (*model.Studio, error) {
	const q = `SELECT id, name, created_at, updated_at FROM studios WHERE id = ?`
	var s model.Studio
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
