package repository

import (
	"context"
	"database/sql"

	"github.com/adityarizkyr/cinetix/internal/model"
)

// ScheduleRepo provides read access to screening schedules. Schedules
// are created and edited by administration; this core treats them as
// given and only reads the fields needed for availability evaluation,
// pricing and seat listing.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo returns a new ScheduleRepo bound to the given database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

const scheduleColumns = `id, movie_id, studio_id, show_date, start_time,
       price_weekday, price_weekend, is_active, created_at, updated_at`

func scanSchedule(row interface{ Scan(...any) error }) (*model.Schedule, error) {
	var s model.Schedule
	err := row.Scan(&s.ID, &s.MovieID, &s.StudioID, &s.ShowDate, &s.StartTime,
		&s.PriceWeekday, &s.PriceWeekend, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID returns a single schedule. When no schedule with the
// specified ID exists, sql.ErrNoRows is returned.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (*model.Schedule, error) {
	return scanSchedule(r.db.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id))
}

// ListByMovie returns all schedules for a movie ordered by date and
// start time. Callers filter out unbookable entries via the
// availability evaluator; the repository returns them all so clients
// can also display past or disabled showtimes when needed.
func (r *ScheduleRepo) ListByMovie(ctx context.Context, movieID uint64) ([]model.Schedule, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE movie_id = ? ORDER BY show_date, start_time`,
		movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	schedules := make([]model.Schedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return schedules, nil
}
