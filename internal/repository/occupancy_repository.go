package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/adityarizkyr/cinetix/internal/model"
)

// OccupancyRepo is the authoritative source of seat occupancy per
// schedule. The occupancies table carries a unique key on
// (schedule_id, seat_id); that key is the core correctness property of
// the whole reservation path and every write here is designed around
// it.
type OccupancyRepo struct {
	db *sql.DB
}

// NewOccupancyRepo returns a new OccupancyRepo bound to the given database.
func NewOccupancyRepo(db *sql.DB) *OccupancyRepo { return &OccupancyRepo{db: db} }

// SeatStatus pairs a seat with its occupancy for one schedule. It is
// the unit of the seat map returned to clients.
type SeatStatus struct {
	Seat       model.Seat
	IsOccupied bool
}

// ListSeatStatus returns every seat of the studio annotated with its
// occupancy for the given schedule, ordered by row label and seat
// number. The left join reads one consistent snapshot, so a partially
// committed reservation is never visible.
func (r *OccupancyRepo) ListSeatStatus(ctx context.Context, scheduleID, studioID uint64) ([]SeatStatus, error) {
	const q = `SELECT s.id, s.studio_id, s.row_label, s.seat_number, s.seat_class,
                      s.created_at, s.updated_at, o.id IS NOT NULL
               FROM seats s
               LEFT JOIN occupancies o ON o.seat_id = s.id AND o.schedule_id = ?
               WHERE s.studio_id = ?
               ORDER BY s.row_label, s.seat_number`
	rows, err := r.db.QueryContext(ctx, q, scheduleID, studioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	statuses := make([]SeatStatus, 0)
	for rows.Next() {
		var st SeatStatus
		if err := rows.Scan(&st.Seat.ID, &st.Seat.StudioID, &st.Seat.RowLabel, &st.Seat.SeatNumber,
			&st.Seat.SeatClass, &st.Seat.CreatedAt, &st.Seat.UpdatedAt, &st.IsOccupied); err != nil {
			return nil, err
		}
		statuses = append(statuses, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return statuses, nil
}

// OccupiedSet returns the IDs of all occupied seats for a schedule,
// optionally restricted to the given seat IDs. It reads a consistent
// snapshot and never blocks on in-flight reservations.
func (r *OccupancyRepo) OccupiedSet(ctx context.Context, scheduleID uint64, seatIDs []uint64) (map[uint64]bool, error) {
	q := `SELECT seat_id FROM occupancies WHERE schedule_id = ?`
	args := []interface{}{scheduleID}
	if len(seatIDs) > 0 {
		placeholders := make([]string, 0, len(seatIDs))
		for _, id := range seatIDs {
			placeholders = append(placeholders, "?")
			args = append(args, id)
		}
		q += ` AND seat_id IN (` + strings.Join(placeholders, ",") + `)`
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	occupied := make(map[uint64]bool)
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		occupied[sid] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return occupied, nil
}

// Reserve atomically creates occupancy records for every seat in the
// set on behalf of the given booking. Either all requested seats
// become occupied or none do. The returned slice names every seat that
// was already taken; it is empty exactly when the reservation
// succeeded.
//
// Conflicting attempts on overlapping seat sets are serialized by a
// locking read over the requested (schedule, seat) pairs followed by a
// single multi-row insert inside one transaction. Should a concurrent
// insert still slip past the read, the unique key rejects it and
// ErrDuplicateOccupancy is returned so the caller can re-read the
// occupied set and report the losers.
//
// When the requested rows do not exist yet, the locking read takes gap
// locks, which concurrent reservers hold compatibly; their inserts
// then wait on each other and InnoDB resolves the cycle by killing one
// transaction. That loss is not a seat conflict, so a killed attempt
// is retried once against the committed winner: disjoint seat sets
// succeed on the retry, overlapping ones are named by the locking
// read. A second kill is reported as ErrDuplicateOccupancy so the
// caller's re-read path classifies it.
func (r *OccupancyRepo) Reserve(ctx context.Context, scheduleID, bookingID uint64, seatIDs []uint64) ([]uint64, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	conflicts, err := r.reserve(ctx, scheduleID, bookingID, seatIDs)
	if err != nil && isLockContention(err) {
		conflicts, err = r.reserve(ctx, scheduleID, bookingID, seatIDs)
		if err != nil && isLockContention(err) {
			return nil, ErrDuplicateOccupancy
		}
	}
	return conflicts, err
}

func (r *OccupancyRepo) reserve(ctx context.Context, scheduleID, bookingID uint64, seatIDs []uint64) ([]uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock any existing occupancy rows for the requested seats. Losers
	// of a race block here until the winner commits and then observe
	// the winner's rows.
	args := make([]interface{}, 0, len(seatIDs)+1)
	args = append(args, scheduleID)
	placeholders := make([]string, 0, len(seatIDs))
	for _, id := range seatIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	lockQ := `SELECT seat_id FROM occupancies
              WHERE schedule_id = ? AND seat_id IN (` + strings.Join(placeholders, ",") + `)
              FOR UPDATE`
	rows, err := tx.QueryContext(ctx, lockQ, args...)
	if err != nil {
		return nil, err
	}
	var taken []uint64
	for rows.Next() {
		var sid uint64
		if scanErr := rows.Scan(&sid); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		taken = append(taken, sid)
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}
	if len(taken) > 0 {
		// All-or-nothing: nothing is inserted when any seat is taken.
		return taken, nil
	}

	insQ := `INSERT INTO occupancies (schedule_id, seat_id, booking_id) VALUES `
	insArgs := make([]interface{}, 0, len(seatIDs)*3)
	for i, sid := range seatIDs {
		if i > 0 {
			insQ += ","
		}
		insQ += "(?, ?, ?)"
		insArgs = append(insArgs, scheduleID, sid, bookingID)
	}
	if _, err := tx.ExecContext(ctx, insQ, insArgs...); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateOccupancy
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return nil, nil
}

// isDuplicateKey reports whether err is the MySQL duplicate-entry
// error (1062).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// isLockContention reports whether err is a MySQL deadlock (1213) or
// lock wait timeout (1205), the two ways InnoDB fails a reservation
// attempt that lost a lock race rather than a seat.
func isLockContention(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && (me.Number == 1213 || me.Number == 1205)
}

// Release removes occupancy records for the given seats. It is used
// only when a booking is cancelled before its ticket is used, and it
// is idempotent: releasing a seat that is not occupied is a no-op.
func (r *OccupancyRepo) Release(ctx context.Context, scheduleID uint64, seatIDs []uint64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(seatIDs)+1)
	args = append(args, scheduleID)
	placeholders := make([]string, 0, len(seatIDs))
	for _, id := range seatIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `DELETE FROM occupancies
          WHERE schedule_id = ? AND seat_id IN (` + strings.Join(placeholders, ",") + `)`
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

// ReleaseByBookingTx removes all occupancy records owned by a booking
// within an existing transaction. Used by the cancellation path, which
// must also flip the ticket status in the same transaction.
func (r *OccupancyRepo) ReleaseByBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM occupancies WHERE booking_id = ?`, bookingID)
	return err
}

// SeatIDsByBooking returns the seats currently occupied by a booking,
// ordered for deterministic output.
func (r *OccupancyRepo) SeatIDsByBooking(ctx context.Context, bookingID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_id FROM occupancies WHERE booking_id = ? ORDER BY seat_id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		ids = append(ids, sid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
