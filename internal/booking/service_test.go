package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityarizkyr/cinetix/internal/model"
	"github.com/adityarizkyr/cinetix/internal/repository"
)

// memStore is a mutex-guarded in-memory implementation of every store
// interface the orchestrator consumes. Locking is per-operation, like
// the real repositories' transactions, so concurrent bookings race
// between operations exactly as they would against the database.
type memStore struct {
	mu          sync.Mutex
	schedules   map[uint64]model.Schedule
	seats       map[uint64]model.Seat
	occupied    map[uint64]map[uint64]uint64 // scheduleID -> seatID -> bookingID
	bookings    map[uint64]model.Booking
	tickets     map[uint64]model.Ticket // keyed by booking ID
	nextBooking uint64
	nextTicket  uint64
	failIssue   bool
	failDelete  bool
	dupReserve  bool
}

func newMemStore() *memStore {
	return &memStore{
		schedules: make(map[uint64]model.Schedule),
		seats:     make(map[uint64]model.Seat),
		occupied:  make(map[uint64]map[uint64]uint64),
		bookings:  make(map[uint64]model.Booking),
		tickets:   make(map[uint64]model.Ticket),
	}
}

func (m *memStore) GetByID(ctx context.Context, id uint64) (*model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (m *memStore) GetByIDs(ctx context.Context, seatIDs []uint64) (map[uint64]model.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uint64]model.Seat)
	for _, id := range seatIDs {
		if s, ok := m.seats[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (m *memStore) ListSeatStatus(ctx context.Context, scheduleID, studioID uint64) ([]repository.SeatStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.SeatStatus
	for _, s := range m.seats {
		if s.StudioID != studioID {
			continue
		}
		_, occ := m.occupied[scheduleID][s.ID]
		out = append(out, repository.SeatStatus{Seat: s, IsOccupied: occ})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seat.ID < out[j].Seat.ID })
	return out, nil
}

func (m *memStore) OccupiedSet(ctx context.Context, scheduleID uint64, seatIDs []uint64) (map[uint64]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uint64]bool)
	for _, id := range seatIDs {
		if _, ok := m.occupied[scheduleID][id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (m *memStore) Reserve(ctx context.Context, scheduleID, bookingID uint64, seatIDs []uint64) ([]uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dupReserve {
		// A concurrent insert slipped past the locking read and the
		// unique key rejected this attempt.
		m.dupReserve = false
		return nil, repository.ErrDuplicateOccupancy
	}
	var taken []uint64
	for _, id := range seatIDs {
		if _, ok := m.occupied[scheduleID][id]; ok {
			taken = append(taken, id)
		}
	}
	if len(taken) > 0 {
		return taken, nil
	}
	if m.occupied[scheduleID] == nil {
		m.occupied[scheduleID] = make(map[uint64]uint64)
	}
	for _, id := range seatIDs {
		m.occupied[scheduleID][id] = bookingID
	}
	return nil, nil
}

func (m *memStore) Release(ctx context.Context, scheduleID uint64, seatIDs []uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range seatIDs {
		delete(m.occupied[scheduleID], id)
	}
	return nil
}

func (m *memStore) Create(ctx context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextBooking++
	b.ID = m.nextBooking
	b.CreatedAt = time.Now().UTC()
	m.bookings[b.ID] = *b
	return nil
}

func (m *memStore) Delete(ctx context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete {
		return errors.New("delete unavailable")
	}
	delete(m.bookings, id)
	return nil
}

func (m *memStore) GetBookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &b, nil
}

func (m *memStore) Cancel(ctx context.Context, bookingID, customerID uint64, isCashier bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return sql.ErrNoRows
	}
	if !isCashier {
		if b.CustomerID == nil || *b.CustomerID != customerID {
			return repository.ErrForbidden
		}
	}
	t, ok := m.tickets[bookingID]
	if !ok {
		return sql.ErrNoRows
	}
	if t.Status != model.TicketActive {
		return repository.ErrConflict
	}
	t.Status = model.TicketCancelled
	m.tickets[bookingID] = t
	for sched, seats := range m.occupied {
		for seatID, owner := range seats {
			if owner == bookingID {
				delete(m.occupied[sched], seatID)
			}
		}
	}
	return nil
}

func (m *memStore) Issue(ctx context.Context, bookingID uint64, prefix string, issuedAt time.Time) (*model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failIssue {
		return nil, errors.New("ticket issuance unavailable")
	}
	m.nextTicket++
	t := model.Ticket{
		ID:           m.nextTicket,
		TicketNumber: fmt.Sprintf("%s-%s-%06d", prefix, issuedAt.UTC().Format("20060102"), m.nextTicket),
		BookingID:    bookingID,
		Status:       model.TicketActive,
		CreatedAt:    issuedAt.UTC(),
	}
	m.tickets[bookingID] = t
	return &t, nil
}

// bookingStoreAdapter satisfies BookingStore; memStore's schedule
// lookup already claims the GetByID name.
type bookingStoreAdapter struct{ *memStore }

func (a bookingStoreAdapter) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	return a.memStore.GetBookingByID(ctx, id)
}

// Saturday, March 14 2026 at 19:30 UTC. Clock fixed at noon the same
// day unless a test moves it.
var (
	testShowDate = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	testClock    = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T) (*Service, *memStore) {
	t.Helper()
	store := newMemStore()
	store.schedules[1] = model.Schedule{
		ID:           1,
		MovieID:      1,
		StudioID:     1,
		ShowDate:     testShowDate,
		StartTime:    "19:30:00",
		PriceWeekday: 35000,
		PriceWeekend: 50000,
		IsActive:     true,
	}
	for i := uint64(1); i <= 4; i++ {
		store.seats[i] = model.Seat{ID: i, StudioID: 1, RowLabel: "A", SeatNumber: uint32(i), SeatClass: model.SeatClassRegular}
	}
	// Seat in another studio for membership checks.
	store.seats[99] = model.Seat{ID: 99, StudioID: 2, RowLabel: "Z", SeatNumber: 1, SeatClass: model.SeatClassVIP}

	svc := New(store, store, store, bookingStoreAdapter{store}, store, Config{
		TicketPrefix: "TKT",
		Now:          func() time.Time { return testClock },
	})
	return svc, store
}

func customer(id uint64) Payer {
	return Payer{CustomerID: &id}
}

func TestCreateBookingHappyPath(t *testing.T) {
	svc, store := newTestService(t)

	res, err := svc.CreateBooking(context.Background(), 1, []uint64{1, 2}, customer(7))
	require.NoError(t, err)

	// Saturday schedule, so the weekend price applies.
	assert.Equal(t, int64(50000), res.Booking.UnitPrice)
	assert.Equal(t, int64(100000), res.Booking.TotalPrice)
	assert.Regexp(t, regexp.MustCompile(`^TKT-20260314-\d{6}$`), res.Ticket.TicketNumber)
	assert.Equal(t, model.TicketActive, res.Ticket.Status)
	require.Len(t, res.Seats, 2)
	assert.Equal(t, "A1", res.Seats[0].Label())

	occ, err := store.OccupiedSet(context.Background(), 1, []uint64{1, 2})
	require.NoError(t, err)
	assert.Len(t, occ, 2)
}

func TestCreateBookingOfflinePayer(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.CreateBooking(context.Background(), 1, []uint64{3}, Payer{Name: "Budi", Phone: "0812000111"})
	require.NoError(t, err)
	require.NotNil(t, res.Booking.CustomerName)
	assert.Equal(t, "Budi", *res.Booking.CustomerName)
	assert.Nil(t, res.Booking.CustomerID)
}

func TestCreateBookingInvalidPayer(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateBooking(context.Background(), 1, []uint64{1}, Payer{Name: "   "})
	assert.ErrorIs(t, err, ErrInvalidPayer)
}

func TestCreateBookingScheduleNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateBooking(context.Background(), 42, []uint64{1}, customer(7))
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestCreateBookingPastShowtime(t *testing.T) {
	svc, store := newTestService(t)
	s := store.schedules[1]
	s.StartTime = "11:00:00" // clock is fixed at 12:00
	store.schedules[1] = s

	_, err := svc.CreateBooking(context.Background(), 1, []uint64{1}, customer(7))
	var unavailable *ScheduleUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, PastShowtime, unavailable.Reason)
}

func TestCreateBookingDisabledSchedule(t *testing.T) {
	svc, store := newTestService(t)
	s := store.schedules[1]
	s.IsActive = false
	store.schedules[1] = s

	_, err := svc.CreateBooking(context.Background(), 1, []uint64{1}, customer(7))
	var unavailable *ScheduleUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, AdminDisabled, unavailable.Reason)
}

func TestCreateBookingSeatValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var invalid *InvalidSeatSelectionError

	_, err := svc.CreateBooking(ctx, 1, nil, customer(7))
	require.ErrorAs(t, err, &invalid)

	_, err = svc.CreateBooking(ctx, 1, []uint64{1, 1}, customer(7))
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []uint64{1}, invalid.SeatIDs)

	// Seat 99 belongs to another studio, seat 1000 does not exist.
	_, err = svc.CreateBooking(ctx, 1, []uint64{1, 99, 1000}, customer(7))
	require.ErrorAs(t, err, &invalid)
	assert.ElementsMatch(t, []uint64{99, 1000}, invalid.SeatIDs)
}

func TestCreateBookingSeatsTaken(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, 1, []uint64{2}, customer(1))
	require.NoError(t, err)

	// All-or-nothing: seat 1 is free but must not be taken either.
	_, err = svc.CreateBooking(ctx, 1, []uint64{1, 2}, customer(2))
	var taken *SeatsUnavailableError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, []uint64{2}, taken.SeatIDs)

	occ, err := store.OccupiedSet(ctx, 1, []uint64{1})
	require.NoError(t, err)
	assert.Empty(t, occ)

	// Only the first booking remains.
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.bookings, 1)
}

// A reservation rejected by the unique key after the locking read is
// still reported as a seat conflict, with the occupied seats named
// from a fresh read of the winner's rows.
func TestCreateBookingDuplicateOccupancyClassifiedAsConflict(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	// The winner's rows are already committed when the re-read runs.
	store.occupied[1] = map[uint64]uint64{1: 55, 2: 55}
	store.dupReserve = true

	_, err := svc.CreateBooking(ctx, 1, []uint64{1, 2}, customer(7))
	var taken *SeatsUnavailableError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, []uint64{1, 2}, taken.SeatIDs)

	// The loser's booking was compensated away.
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.bookings)
}

// A failed compensation delete must not mask the typed rejection the
// caller needs.
func TestCreateBookingConflictSurvivesCompensationFailure(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, 1, []uint64{2}, customer(1))
	require.NoError(t, err)

	store.failDelete = true
	_, err = svc.CreateBooking(ctx, 1, []uint64{2}, customer(2))
	var taken *SeatsUnavailableError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, []uint64{2}, taken.SeatIDs)
}

func TestCreateBookingTicketIssueFailureRollsBack(t *testing.T) {
	svc, store := newTestService(t)
	store.failIssue = true
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, 1, []uint64{1, 2}, customer(7))
	require.Error(t, err)

	// Seats were released and the booking removed.
	occ, occErr := store.OccupiedSet(ctx, 1, []uint64{1, 2})
	require.NoError(t, occErr)
	assert.Empty(t, occ)
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.bookings)
}

func TestConcurrentBookingsSameSeatOneWinner(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	const attempts = 32
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			_, err := svc.CreateBooking(ctx, 1, []uint64{1, 2}, customer(id))
			results <- err
		}(uint64(i + 1))
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		var taken *SeatsUnavailableError
		require.ErrorAs(t, err, &taken)
		conflicts++
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, conflicts)

	// Both seats are owned by the same booking and no orphan bookings
	// were left behind by the losers.
	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.bookings, 1)
	require.Len(t, store.occupied[1], 2)
	assert.Equal(t, store.occupied[1][1], store.occupied[1][2])
}

func TestCancelReleasesSeatsForRebooking(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.CreateBooking(ctx, 1, []uint64{1, 2}, customer(7))
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, res.Booking.ID, 7, false))

	// The same seats can be booked again by someone else.
	_, err = svc.CreateBooking(ctx, 1, []uint64{1, 2}, customer(8))
	assert.NoError(t, err)
}

func TestCancelRejectsForeignBooking(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.CreateBooking(ctx, 1, []uint64{1}, customer(7))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Cancel(ctx, res.Booking.ID, 8, false), repository.ErrForbidden)
	// A cashier may cancel anyone's booking.
	assert.NoError(t, svc.Cancel(ctx, res.Booking.ID, 0, true))
}

func TestGetBookingOwnership(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.CreateBooking(ctx, 1, []uint64{1}, customer(7))
	require.NoError(t, err)

	got, err := svc.GetBooking(ctx, res.Booking.ID, 7, false)
	require.NoError(t, err)
	assert.Equal(t, res.Booking.ID, got.ID)

	_, err = svc.GetBooking(ctx, res.Booking.ID, 8, false)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	_, err = svc.GetBooking(ctx, res.Booking.ID, 0, true)
	assert.NoError(t, err)
}

func TestListSeatsRendersUnbookableSchedule(t *testing.T) {
	svc, store := newTestService(t)
	s := store.schedules[1]
	s.IsActive = false
	store.schedules[1] = s

	sm, err := svc.ListSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, AdminDisabled, sm.State)
	assert.Equal(t, int64(50000), sm.UnitPrice)
	assert.Len(t, sm.Seats, 4)
}
