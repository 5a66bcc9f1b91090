package booking

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/adityarizkyr/cinetix/internal/model"
	"github.com/adityarizkyr/cinetix/internal/repository"
)

// ScheduleStore supplies the schedules the orchestrator books against.
type ScheduleStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Schedule, error)
}

// SeatStore resolves seat IDs to seats for selection validation.
type SeatStore interface {
	GetByIDs(ctx context.Context, seatIDs []uint64) (map[uint64]model.Seat, error)
}

// SeatInventory is the authoritative seat occupancy manager. Reserve
// must be atomic and all-or-nothing; its conflict slice names every
// already-taken seat and is empty exactly on success.
type SeatInventory interface {
	ListSeatStatus(ctx context.Context, scheduleID, studioID uint64) ([]repository.SeatStatus, error)
	OccupiedSet(ctx context.Context, scheduleID uint64, seatIDs []uint64) (map[uint64]bool, error)
	Reserve(ctx context.Context, scheduleID, bookingID uint64, seatIDs []uint64) ([]uint64, error)
	Release(ctx context.Context, scheduleID uint64, seatIDs []uint64) error
}

// BookingStore persists bookings and owns the cancellation
// transaction.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	Delete(ctx context.Context, id uint64) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	Cancel(ctx context.Context, bookingID, customerID uint64, isCashier bool) error
}

// TicketIssuer mints the ticket bound to a confirmed booking.
type TicketIssuer interface {
	Issue(ctx context.Context, bookingID uint64, prefix string, issuedAt time.Time) (*model.Ticket, error)
}

// Payer identifies who pays for a booking: a pre-validated customer ID
// for online bookings, or a free-text name and phone captured by a
// cashier for offline ones. PaymentRef is an opaque settlement
// reference recorded as-is.
type Payer struct {
	CustomerID *uint64
	Name       string
	Phone      string
	PaymentRef *string
}

func (p Payer) valid() bool {
	if p.CustomerID != nil {
		return true
	}
	return strings.TrimSpace(p.Name) != "" && strings.TrimSpace(p.Phone) != ""
}

// Config tunes the orchestrator. Now is swappable for tests.
type Config struct {
	TicketPrefix string
	Now          func() time.Time
}

// Service is the booking orchestrator. It composes the availability
// evaluator, the pricing calculator, the seat inventory and the ticket
// issuer to turn a seat request into a confirmed booking with exactly
// one ticket, or a typed rejection.
type Service struct {
	schedules ScheduleStore
	seats     SeatStore
	inventory SeatInventory
	bookings  BookingStore
	tickets   TicketIssuer
	cfg       Config
}

// New constructs a booking Service. All stores must be non-nil.
func New(schedules ScheduleStore, seats SeatStore, inventory SeatInventory, bookings BookingStore, tickets TicketIssuer, cfg Config) *Service {
	if schedules == nil || seats == nil || inventory == nil || bookings == nil || tickets == nil {
		panic("nil store passed to booking.New")
	}
	if cfg.TicketPrefix == "" {
		cfg.TicketPrefix = "TKT"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		schedules: schedules,
		seats:     seats,
		inventory: inventory,
		bookings:  bookings,
		tickets:   tickets,
		cfg:       cfg,
	}
}

// SeatMap is the seat-listing result: the schedule, its availability
// at read time, the unit price its date selects, and every studio seat
// annotated with occupancy.
type SeatMap struct {
	Schedule  model.Schedule
	State     Availability
	UnitPrice int64
	Seats     []repository.SeatStatus
}

// ListSeats returns the seat map for a schedule. Availability is
// evaluated here as well as at commit time; a listing of an expired or
// disabled schedule still renders, flagged unbookable, so clients can
// show why.
func (s *Service) ListSeats(ctx context.Context, scheduleID uint64) (*SeatMap, error) {
	sched, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	statuses, err := s.inventory.ListSeatStatus(ctx, scheduleID, sched.StudioID)
	if err != nil {
		return nil, err
	}
	return &SeatMap{
		Schedule:  *sched,
		State:     Evaluate(*sched, s.cfg.Now().UTC()),
		UnitPrice: UnitPrice(*sched),
		Seats:     statuses,
	}, nil
}

// Result is a confirmed booking together with its ticket and the
// booked seats.
type Result struct {
	Booking model.Booking
	Ticket  model.Ticket
	Seats   []model.Seat
}

// CreateBooking converts a seat request into a confirmed booking and
// exactly one active ticket, or a typed rejection. The gates run in
// order and each is hard: availability, seat-set validation, pricing,
// atomic reservation, ticket issuance. Booking, occupancy records and
// ticket form one logical unit; when ticket issuance fails after the
// seats were reserved, the reservation is rolled back rather than left
// orphaned.
func (s *Service) CreateBooking(ctx context.Context, scheduleID uint64, seatIDs []uint64, payer Payer) (*Result, error) {
	if !payer.valid() {
		return nil, ErrInvalidPayer
	}
	sched, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	now := s.cfg.Now().UTC()
	if state := Evaluate(*sched, now); state != Bookable {
		return nil, &ScheduleUnavailableError{Reason: state}
	}

	seats, err := s.validateSeats(ctx, sched, seatIDs)
	if err != nil {
		return nil, err
	}

	unit := UnitPrice(*sched)
	b := &model.Booking{
		ScheduleID: scheduleID,
		CustomerID: payer.CustomerID,
		UnitPrice:  unit,
		TotalPrice: unit * int64(len(seatIDs)),
		PaymentRef: payer.PaymentRef,
	}
	if payer.CustomerID == nil {
		name := strings.TrimSpace(payer.Name)
		phone := strings.TrimSpace(payer.Phone)
		b.CustomerName = &name
		b.CustomerPhone = &phone
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}

	conflicts, err := s.inventory.Reserve(ctx, scheduleID, b.ID, seatIDs)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateOccupancy) {
			// The unique key caught a race the locking read missed.
			// Abort this booking and report the occupied seats from a
			// fresh read; the winner's rows are authoritative.
			log.Printf("booking: duplicate occupancy on schedule %d, re-reading conflicts", scheduleID)
			occupied, readErr := s.inventory.OccupiedSet(ctx, scheduleID, seatIDs)
			s.deleteAborted(ctx, b.ID)
			if readErr != nil {
				return nil, readErr
			}
			return nil, &SeatsUnavailableError{SeatIDs: keysSorted(occupied)}
		}
		s.deleteAborted(ctx, b.ID)
		return nil, err
	}
	if len(conflicts) > 0 {
		s.deleteAborted(ctx, b.ID)
		sort.Slice(conflicts, func(i, j int) bool { return conflicts[i] < conflicts[j] })
		return nil, &SeatsUnavailableError{SeatIDs: conflicts}
	}

	ticket, err := s.tickets.Issue(ctx, b.ID, s.cfg.TicketPrefix, now)
	if err != nil {
		// Roll the reservation back; a booking without a ticket must
		// not hold seats.
		if relErr := s.inventory.Release(ctx, scheduleID, seatIDs); relErr != nil {
			log.Printf("booking: failed to release seats for aborted booking %d: %v", b.ID, relErr)
		}
		s.deleteAborted(ctx, b.ID)
		return nil, err
	}

	return &Result{Booking: *b, Ticket: *ticket, Seats: seats}, nil
}

// deleteAborted removes the booking row of a failed attempt. A failed
// delete leaves an orphaned booking with no seats or ticket; it cannot
// change the outcome reported to the caller, but it must leave a trace
// for cleanup.
func (s *Service) deleteAborted(ctx context.Context, bookingID uint64) {
	if err := s.bookings.Delete(ctx, bookingID); err != nil {
		log.Printf("booking: failed to delete aborted booking %d: %v", bookingID, err)
	}
}

// validateSeats checks the request's seat set: non-empty, free of
// duplicates, and every seat belonging to the schedule's studio. The
// returned seats are ordered as requested.
func (s *Service) validateSeats(ctx context.Context, sched *model.Schedule, seatIDs []uint64) ([]model.Seat, error) {
	if len(seatIDs) == 0 {
		return nil, &InvalidSeatSelectionError{Detail: "seat set is empty"}
	}
	seen := make(map[uint64]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		if _, dup := seen[id]; dup {
			return nil, &InvalidSeatSelectionError{Detail: "duplicate seat in selection", SeatIDs: []uint64{id}}
		}
		seen[id] = struct{}{}
	}
	seatMap, err := s.seats.GetByIDs(ctx, seatIDs)
	if err != nil {
		return nil, err
	}
	seats := make([]model.Seat, 0, len(seatIDs))
	var invalid []uint64
	for _, id := range seatIDs {
		seat, ok := seatMap[id]
		if !ok || seat.StudioID != sched.StudioID {
			invalid = append(invalid, id)
			continue
		}
		seats = append(seats, seat)
	}
	if len(invalid) > 0 {
		return nil, &InvalidSeatSelectionError{Detail: "seats do not belong to the schedule's studio", SeatIDs: invalid}
	}
	return seats, nil
}

// Cancel cancels a booking before its ticket is used, releasing every
// occupancy record the booking owns. Customers may only cancel their
// own bookings; cashiers may cancel any.
func (s *Service) Cancel(ctx context.Context, bookingID, customerID uint64, isCashier bool) error {
	return s.bookings.Cancel(ctx, bookingID, customerID, isCashier)
}

// GetBooking returns a booking by ID for its owner. Cashiers bypass
// the ownership check.
func (s *Service) GetBooking(ctx context.Context, bookingID, customerID uint64, isCashier bool) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isCashier {
		if b.CustomerID == nil || *b.CustomerID != customerID {
			return nil, repository.ErrForbidden
		}
	}
	return b, nil
}

func keysSorted(m map[uint64]bool) []uint64 {
	out := make([]uint64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
