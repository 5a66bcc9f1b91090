package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/adityarizkyr/cinetix/internal/model"
)

// SeatRepo provides read access to the physical seating layout. Seats
// belong to a studio and are uniquely identified by (studio, row,
// number). The layout is administered elsewhere and treated as fixed
// by the reservation core.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a new SeatRepo bound to the given database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// GetByIDs loads the given seats in one query. Missing IDs are simply
// absent from the result; the caller decides whether that is an error.
func (r *SeatRepo) GetByIDs(ctx context.Context, seatIDs []uint64) (map[uint64]model.Seat, error) {
	out := make(map[uint64]model.Seat, len(seatIDs))
	if len(seatIDs) == 0 {
		return out, nil
	}
	args := make([]interface{}, 0, len(seatIDs))
	placeholders := make([]string, 0, len(seatIDs))
	for _, id := range seatIDs {
		args = append(args, id)
		placeholders = append(placeholders, "?")
	}
	q := `SELECT id, studio_id, row_label, seat_number, seat_class, created_at, updated_at
          FROM seats WHERE id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.StudioID, &s.RowLabel, &s.SeatNumber, &s.SeatClass, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out[s.ID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
