package repository

import (
	"context"
	"database/sql"

	"github.com/adityarizkyr/cinetix/internal/model"
)

// BookingRepo provides CRUD operations for bookings. A booking groups
// the seats claimed for one schedule together with the payer and the
// price captured at booking time. All timestamps are stored in UTC.
type BookingRepo struct {
	db          *sql.DB
	occupancies *OccupancyRepo
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db, occupancies: NewOccupancyRepo(db)}
}

// Create inserts a new booking and populates the generated ID and
// creation timestamp on the provided record. The seat set is not part
// of the bookings table; seats are bound through occupancy records by
// the reservation step that follows.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings
               (schedule_id, customer_id, customer_name, customer_phone, unit_price, total_price, payment_ref)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		b.ScheduleID, b.CustomerID, b.CustomerName, b.CustomerPhone,
		b.UnitPrice, b.TotalPrice, b.PaymentRef)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	// Query back the row to populate the DB-assigned timestamp.
	return r.db.QueryRowContext(ctx,
		`SELECT created_at FROM bookings WHERE id = ?`, b.ID).Scan(&b.CreatedAt)
}

// Delete removes a booking row. It is the compensation step for a
// booking whose reservation or ticket issuance failed; occupancy
// records, if any were created, must be released separately.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	return err
}

// GetByID returns a single booking. When no booking with the specified
// ID exists, sql.ErrNoRows is returned.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT id, schedule_id, customer_id, customer_name, customer_phone,
                      unit_price, total_price, payment_ref, created_at
               FROM bookings WHERE id = ?`
	var b model.Booking
	var custID sql.NullInt64
	var custName, custPhone, payRef sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.ScheduleID, &custID, &custName, &custPhone,
		&b.UnitPrice, &b.TotalPrice, &payRef, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	if custID.Valid {
		v := uint64(custID.Int64)
		b.CustomerID = &v
	}
	if custName.Valid {
		v := custName.String
		b.CustomerName = &v
	}
	if custPhone.Valid {
		v := custPhone.String
		b.CustomerPhone = &v
	}
	if payRef.Valid {
		v := payRef.String
		b.PaymentRef = &v
	}
	return &b, nil
}

// Cancel cancels a booking on behalf of the given customer: the ticket
// flips to cancelled and every occupancy record owned by the booking is
// released, all in one transaction. Cashiers pass isCashier=true to
// cancel any booking regardless of owner.
//
// It returns sql.ErrNoRows when the booking does not exist,
// ErrForbidden when it belongs to a different customer, and
// ErrConflict when the ticket has already left the active state (a
// used ticket must never lose its seats or its used_at).
func (r *BookingRepo) Cancel(ctx context.Context, bookingID uint64, customerID uint64, isCashier bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var ownerID sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT customer_id FROM bookings WHERE id = ? FOR UPDATE`, bookingID).Scan(&ownerID); err != nil {
		return err
	}
	if !isCashier {
		if !ownerID.Valid || uint64(ownerID.Int64) != customerID {
			return ErrForbidden
		}
	}

	// Lock the ticket row so a concurrent scan cannot race the cancel.
	var ticketStatus string
	if err := tx.QueryRowContext(ctx,
		`SELECT status FROM tickets WHERE booking_id = ? FOR UPDATE`, bookingID).Scan(&ticketStatus); err != nil {
		return err
	}
	if ticketStatus != model.TicketActive {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE tickets SET status = ? WHERE booking_id = ?`, model.TicketCancelled, bookingID); err != nil {
		return err
	}
	if err := r.occupancies.ReleaseByBookingTx(ctx, tx, bookingID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
