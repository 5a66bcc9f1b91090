package repository

import (
	"context"
	"database/sql"

	"github.com/adityarizkyr/cinetix/internal/model"
)

// MovieRepo provides read access to the movie catalog. Movies are
// administered elsewhere; the reservation core only lists them and
// resolves titles for schedule listings and ticket views.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo returns a new MovieRepo bound to the given database.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// List returns every movie ordered by title. When the catalog is empty
// an empty slice is returned.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	const q = `SELECT id, title, description, duration_min, created_at, updated_at
               FROM movies ORDER BY title`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movies := make([]model.Movie, 0)
	for rows.Next() {
		var m model.Movie
		var desc sql.NullString
		var dur sql.NullInt64
		if err := rows.Scan(&m.ID, &m.Title, &desc, &dur, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			d := desc.String
			m.Description = &d
		}
		if dur.Valid {
			v := uint32(dur.Int64)
			m.Duration = &v
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}

// GetByID returns a single movie. When no movie with the specified ID
// exists, sql.ErrNoRows is returned.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	const q = `SELECT id, title, description, duration_min, created_at, updated_at
               FROM movies WHERE id = ?`
	var m model.Movie
	var desc sql.NullString
	var dur sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, id).Scan(&m.ID, &m.Title, &desc, &dur, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		m.Description = &d
	}
	if dur.Valid {
		v := uint32(dur.Int64)
		m.Duration = &v
	}
	return &m, nil
}
