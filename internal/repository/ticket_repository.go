package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/adityarizkyr/cinetix/internal/model"
)

// TicketRepo persists tickets and owns the two writes with correctness
// requirements: issuing a globally unique ticket number and flipping a
// ticket from active to used exactly once.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// Issue creates a ticket in active status for the booking. The ticket
// number is PREFIX-YYYYMMDD-NNNNNN where NNNNNN is a zero-padded
// per-day sequence drawn from the ticket_sequences table. The counter
// increment uses the LAST_INSERT_ID trick so concurrent issuers each
// observe a distinct value, and the unique key on ticket_number backs
// the whole scheme up.
func (r *TicketRepo) Issue(ctx context.Context, bookingID uint64, prefix string, issuedAt time.Time) (*model.Ticket, error) {
	day := issuedAt.UTC().Format("20060102")
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

	res, err := tx.ExecContext(ctx,
		`INSERT INTO ticket_sequences (seq_date, next_seq) VALUES (?, LAST_INSERT_ID(1))
         ON DUPLICATE KEY UPDATE next_seq = LAST_INSERT_ID(next_seq + 1)`, day)
	if err != nil {
		return nil, err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	number := fmt.Sprintf("%s-%s-%06d", prefix, day, seq)

	ins, err := tx.ExecContext(ctx,
		`INSERT INTO tickets (ticket_number, booking_id, status) VALUES (?, ?, ?)`,
		number, bookingID, model.TicketActive)
	if err != nil {
		return nil, err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return nil, err
	}
	t := &model.Ticket{
		ID:           uint64(id),
		TicketNumber: number,
		BookingID:    bookingID,
		Status:       model.TicketActive,
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at FROM tickets WHERE id = ?`, t.ID).Scan(&t.CreatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return t, nil
}

// TicketDetail aggregates a ticket with its booking, schedule, movie
// and seats. It backs the cashier verify view and the reconciliation
// listing.
type TicketDetail struct {
	Ticket     model.Ticket
	Booking    model.Booking
	Schedule   model.Schedule
	MovieTitle string
	StudioName string
	Seats      []model.Seat
}

// GetDetailByNumber loads the full ticket view for a (normalized)
// ticket number. When no ticket with that number exists, sql.ErrNoRows
// is returned. The seats are read through the booking's occupancy
// records; a cancelled booking therefore reports no seats, which is
// correct because they have been released.
func (r *TicketRepo) GetDetailByNumber(ctx context.Context, number string) (*TicketDetail, error) {
	const q = `SELECT t.id, t.ticket_number, t.booking_id, t.status, t.used_at, t.created_at,
                      b.id, b.schedule_id, b.customer_id, b.customer_name, b.customer_phone,
                      b.unit_price, b.total_price, b.payment_ref, b.created_at,
                      sc.id, sc.movie_id, sc.studio_id, sc.show_date, sc.start_time,
                      sc.price_weekday, sc.price_weekend, sc.is_active, sc.created_at, sc.updated_at,
                      m.title, st.name
               FROM tickets t
               JOIN bookings b ON b.id = t.booking_id
               JOIN schedules sc ON sc.id = b.schedule_id
               JOIN movies m ON m.id = sc.movie_id
               JOIN studios st ON st.id = sc.studio_id
               WHERE t.ticket_number = ?`
	var d TicketDetail
	var usedAt sql.NullTime
	var custID sql.NullInt64
	var custName, custPhone, payRef sql.NullString
	err := r.db.QueryRowContext(ctx, q, number).Scan(
		&d.Ticket.ID, &d.Ticket.TicketNumber, &d.Ticket.BookingID, &d.Ticket.Status, &usedAt, &d.Ticket.CreatedAt,
		&d.Booking.ID, &d.Booking.ScheduleID, &custID, &custName, &custPhone,
		&d.Booking.UnitPrice, &d.Booking.TotalPrice, &payRef, &d.Booking.CreatedAt,
		&d.Schedule.ID, &d.Schedule.MovieID, &d.Schedule.StudioID, &d.Schedule.ShowDate, &d.Schedule.StartTime,
		&d.Schedule.PriceWeekday, &d.Schedule.PriceWeekend, &d.Schedule.IsActive, &d.Schedule.CreatedAt, &d.Schedule.UpdatedAt,
		&d.MovieTitle, &d.StudioName,
	)
	if err != nil {
		return nil, err
	}
	if usedAt.Valid {
		u := usedAt.Time.UTC()
		d.Ticket.UsedAt = &u
	}
	if custID.Valid {
		v := uint64(custID.Int64)
		d.Booking.CustomerID = &v
	}
	if custName.Valid {
		v := custName.String
		d.Booking.CustomerName = &v
	}
	if custPhone.Valid {
		v := custPhone.String
		d.Booking.CustomerPhone = &v
	}
	if payRef.Valid {
		v := payRef.String
		d.Booking.PaymentRef = &v
	}
	d.Seats, err = r.seatsByBooking(ctx, d.Booking.ID)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *TicketRepo) seatsByBooking(ctx context.Context, bookingID uint64) ([]model.Seat, error) {
	const q = `SELECT se.id, se.studio_id, se.row_label, se.seat_number, se.seat_class,
                      se.created_at, se.updated_at
               FROM occupancies o
               JOIN seats se ON se.id = o.seat_id
               WHERE o.booking_id = ?
               ORDER BY se.row_label, se.seat_number`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.StudioID, &s.RowLabel, &s.SeatNumber, &s.SeatClass, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// MarkUsed attempts the active→used transition for a ticket. The
// conditional UPDATE makes the transition atomic per ticket: exactly
// one concurrent caller observes won=true, every other caller loses
// and classifies the rejection by re-reading the row. used_at is set
// here and never touched again.
func (r *TicketRepo) MarkUsed(ctx context.Context, number string, usedAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET status = ?, used_at = ? WHERE ticket_number = ? AND status = ?`,
		model.TicketUsed, usedAt.UTC(), number, model.TicketActive)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListBySchedule returns every ticket issued for a schedule together
// with payer and seat information, newest first. Cashiers use it to
// reconcile scanned tickets against bookings.
func (r *TicketRepo) ListBySchedule(ctx context.Context, scheduleID uint64) ([]TicketDetail, error) {
	const q = `SELECT t.id, t.ticket_number, t.booking_id, t.status, t.used_at, t.created_at,
                      b.id, b.schedule_id, b.customer_id, b.customer_name, b.customer_phone,
                      b.unit_price, b.total_price, b.payment_ref, b.created_at,
                      sc.id, sc.movie_id, sc.studio_id, sc.show_date, sc.start_time,
                      sc.price_weekday, sc.price_weekend, sc.is_active, sc.created_at, sc.updated_at,
                      m.title, st.name
               FROM tickets t
               JOIN bookings b ON b.id = t.booking_id
               JOIN schedules sc ON sc.id = b.schedule_id
               JOIN movies m ON m.id = sc.movie_id
               JOIN studios st ON st.id = sc.studio_id
               WHERE b.schedule_id = ?
               ORDER BY t.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]TicketDetail, 0)
	for rows.Next() {
		var d TicketDetail
		var usedAt sql.NullTime
		var custID sql.NullInt64
		var custName, custPhone, payRef sql.NullString
		if err := rows.Scan(
			&d.Ticket.ID, &d.Ticket.TicketNumber, &d.Ticket.BookingID, &d.Ticket.Status, &usedAt, &d.Ticket.CreatedAt,
			&d.Booking.ID, &d.Booking.ScheduleID, &custID, &custName, &custPhone,
			&d.Booking.UnitPrice, &d.Booking.TotalPrice, &payRef, &d.Booking.CreatedAt,
			&d.Schedule.ID, &d.Schedule.MovieID, &d.Schedule.StudioID, &d.Schedule.ShowDate, &d.Schedule.StartTime,
			&d.Schedule.PriceWeekday, &d.Schedule.PriceWeekend, &d.Schedule.IsActive, &d.Schedule.CreatedAt, &d.Schedule.UpdatedAt,
			&d.MovieTitle, &d.StudioName,
		); err != nil {
			return nil, err
		}
		if usedAt.Valid {
			u := usedAt.Time.UTC()
			d.Ticket.UsedAt = &u
		}
		if custID.Valid {
			v := uint64(custID.Int64)
			d.Booking.CustomerID = &v
		}
		if custName.Valid {
			v := custName.String
			d.Booking.CustomerName = &v
		}
		if custPhone.Valid {
			v := custPhone.String
			d.Booking.CustomerPhone = &v
		}
		if payRef.Valid {
			v := payRef.String
			d.Booking.PaymentRef = &v
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range details {
		seats, err := r.seatsByBooking(ctx, details[i].Booking.ID)
		if err != nil {
			return nil, err
		}
		details[i].Seats = seats
	}
	return details, nil
}

// GetByBookingID returns the ticket bound to a booking, or
// sql.ErrNoRows when the booking has no ticket.
func (r *TicketRepo) GetByBookingID(ctx context.Context, bookingID uint64) (*model.Ticket, error) {
	const q = `SELECT id, ticket_number, booking_id, status, used_at, created_at
               FROM tickets WHERE booking_id = ?`
	var t model.Ticket
	var usedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, q, bookingID).Scan(
		&t.ID, &t.TicketNumber, &t.BookingID, &t.Status, &usedAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if usedAt.Valid {
		u := usedAt.Time.UTC()
		t.UsedAt = &u
	}
	return &t, nil
}
