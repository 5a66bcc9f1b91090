package ticket

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityarizkyr/cinetix/internal/model"
	"github.com/adityarizkyr/cinetix/internal/repository"
)

// memTicketStore is a mutex-guarded in-memory Store. MarkUsed mirrors
// the repository's conditional UPDATE: it flips status only when still
// active and reports whether this caller won.
type memTicketStore struct {
	mu      sync.Mutex
	details map[string]*repository.TicketDetail
}

func newMemTicketStore() *memTicketStore {
	return &memTicketStore{details: make(map[string]*repository.TicketDetail)}
}

func (m *memTicketStore) GetDetailByNumber(ctx context.Context, number string) (*repository.TicketDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.details[number]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *d
	return &cp, nil
}

func (m *memTicketStore) MarkUsed(ctx context.Context, number string, usedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.details[number]
	if !ok || d.Ticket.Status != model.TicketActive {
		return false, nil
	}
	u := usedAt.UTC()
	d.Ticket.Status = model.TicketUsed
	d.Ticket.UsedAt = &u
	return true, nil
}

func (m *memTicketStore) ListBySchedule(ctx context.Context, scheduleID uint64) ([]repository.TicketDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.TicketDetail
	for _, d := range m.details {
		if d.Schedule.ID == scheduleID {
			out = append(out, *d)
		}
	}
	return out, nil
}

// Clock fixed at Saturday, March 14 2026, noon UTC. The fixture
// schedule starts at 19:30 the same day.
var ticketClock = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

const testNumber = "TKT-20260314-000001"

func newTicketFixture(status string) *repository.TicketDetail {
	custID := uint64(7)
	return &repository.TicketDetail{
		Ticket: model.Ticket{
			ID:           1,
			TicketNumber: testNumber,
			BookingID:    10,
			Status:       status,
			CreatedAt:    ticketClock,
		},
		Booking: model.Booking{
			ID:         10,
			ScheduleID: 1,
			CustomerID: &custID,
			UnitPrice:  50000,
			TotalPrice: 100000,
		},
		Schedule: model.Schedule{
			ID:        1,
			MovieID:   1,
			StudioID:  1,
			ShowDate:  time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
			StartTime: "19:30:00",
			IsActive:  true,
		},
		MovieTitle: "Interstellar",
		StudioName: "Studio 1",
		Seats: []model.Seat{
			{ID: 1, StudioID: 1, RowLabel: "A", SeatNumber: 1, SeatClass: model.SeatClassRegular},
			{ID: 2, StudioID: 1, RowLabel: "A", SeatNumber: 2, SeatClass: model.SeatClassRegular},
		},
	}
}

func newTicketService(store *memTicketStore, now time.Time) *Service {
	return New(store, Config{
		RedeemWindow: 3 * time.Hour,
		Now:          func() time.Time { return now },
	})
}

func TestVerifyActiveTicket(t *testing.T) {
	store := newMemTicketStore()
	store.details[testNumber] = newTicketFixture(model.TicketActive)
	svc := newTicketService(store, ticketClock)

	view, err := svc.Verify(context.Background(), " tkt-20260314-000001 ")
	require.NoError(t, err)
	assert.Equal(t, model.TicketActive, view.Status)
	assert.True(t, view.IsRedeemable)
	assert.Equal(t, "Interstellar", view.MovieTitle)
	assert.Equal(t, "2026-03-14", view.ShowDate)
	require.Len(t, view.Seats, 2)
	assert.Equal(t, "A1", view.Seats[0].Label)
	assert.Nil(t, view.UsedAt)
}

func TestVerifyMalformedNumber(t *testing.T) {
	svc := newTicketService(newMemTicketStore(), ticketClock)
	_, err := svc.Verify(context.Background(), "not-a-ticket")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyUnknownNumber(t *testing.T) {
	svc := newTicketService(newMemTicketStore(), ticketClock)
	_, err := svc.Verify(context.Background(), testNumber)
	assert.ErrorIs(t, err, ErrNotFound)
}

// A stored-active ticket past the redemption window reads as expired
// without any write: storage keeps status active and used_at null.
func TestVerifyDerivedExpiry(t *testing.T) {
	store := newMemTicketStore()
	store.details[testNumber] = newTicketFixture(model.TicketActive)
	// 19:30 start plus 3h window ends at 22:30; read at 23:00.
	svc := newTicketService(store, time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC))

	view, err := svc.Verify(context.Background(), testNumber)
	require.NoError(t, err)
	assert.Equal(t, model.TicketExpired, view.Status)
	assert.False(t, view.IsRedeemable)
	assert.Nil(t, view.UsedAt)

	// Storage was not touched.
	assert.Equal(t, model.TicketActive, store.details[testNumber].Ticket.Status)
	assert.Nil(t, store.details[testNumber].Ticket.UsedAt)
}

func TestVerifyWithinWindowAfterStart(t *testing.T) {
	store := newMemTicketStore()
	store.details[testNumber] = newTicketFixture(model.TicketActive)
	// 21:00 is after the 19:30 start but inside the 3h window.
	svc := newTicketService(store, time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC))

	view, err := svc.Verify(context.Background(), testNumber)
	require.NoError(t, err)
	assert.True(t, view.IsRedeemable)
}

func TestVerifyIntegrityViolation(t *testing.T) {
	store := newMemTicketStore()
	d := newTicketFixture(model.TicketUsed) // used but UsedAt nil
	store.details[testNumber] = d
	svc := newTicketService(store, ticketClock)

	_, err := svc.Verify(context.Background(), testNumber)
	assert.ErrorIs(t, err, ErrIntegrity)
	// The inconsistent row is left untouched for investigation.
	assert.Equal(t, model.TicketUsed, store.details[testNumber].Ticket.Status)
}

func TestRedeemHappyPath(t *testing.T) {
	store := newMemTicketStore()
	store.details[testNumber] = newTicketFixture(model.TicketActive)
	svc := newTicketService(store, ticketClock)

	usedAt, err := svc.Redeem(context.Background(), testNumber)
	require.NoError(t, err)
	assert.Equal(t, ticketClock, usedAt)
	assert.Equal(t, model.TicketUsed, store.details[testNumber].Ticket.Status)
	require.NotNil(t, store.details[testNumber].Ticket.UsedAt)
	assert.Equal(t, ticketClock, *store.details[testNumber].Ticket.UsedAt)
}

func TestRedeemAlreadyUsedKeepsOriginalUsedAt(t *testing.T) {
	store := newMemTicketStore()
	store.details[testNumber] = newTicketFixture(model.TicketActive)
	svc := newTicketService(store, ticketClock)

	first, err := svc.Redeem(context.Background(), testNumber)
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), testNumber)
	var used *AlreadyUsedError
	require.ErrorAs(t, err, &used)
	assert.Equal(t, first, used.UsedAt)
	assert.Equal(t, first, *store.details[testNumber].Ticket.UsedAt)
}

func TestRedeemExpiredTicket(t *testing.T) {
	store := newMemTicketStore()
	store.details[testNumber] = newTicketFixture(model.TicketActive)
	svc := newTicketService(store, time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC))

	_, err := svc.Redeem(context.Background(), testNumber)
	assert.ErrorIs(t, err, ErrExpired)
	// Refusal is read-only.
	assert.Equal(t, model.TicketActive, store.details[testNumber].Ticket.Status)
	assert.Nil(t, store.details[testNumber].Ticket.UsedAt)
}

func TestRedeemCancelledTicket(t *testing.T) {
	store := newMemTicketStore()
	store.details[testNumber] = newTicketFixture(model.TicketCancelled)
	svc := newTicketService(store, ticketClock)

	_, err := svc.Redeem(context.Background(), testNumber)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestRedeemUnknownNumber(t *testing.T) {
	svc := newTicketService(newMemTicketStore(), ticketClock)
	_, err := svc.Redeem(context.Background(), testNumber)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentRedeemSingleWinner(t *testing.T) {
	store := newMemTicketStore()
	store.details[testNumber] = newTicketFixture(model.TicketActive)
	svc := newTicketService(store, ticketClock)

	const scans = 50
	errs := make(chan error, scans)
	var wg sync.WaitGroup
	for i := 0; i < scans; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Redeem(context.Background(), testNumber)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var wins, rejected int
	for err := range errs {
		if err == nil {
			wins++
			continue
		}
		var used *AlreadyUsedError
		require.ErrorAs(t, err, &used)
		assert.Equal(t, ticketClock, used.UsedAt)
		rejected++
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, scans-1, rejected)
	assert.Equal(t, ticketClock, *store.details[testNumber].Ticket.UsedAt)
}

func TestListByScheduleAppliesDerivedExpiry(t *testing.T) {
	store := newMemTicketStore()
	active := newTicketFixture(model.TicketActive)
	store.details[testNumber] = active

	// A second ticket for a morning schedule that is already past its
	// window at read time.
	morning := newTicketFixture(model.TicketActive)
	morning.Ticket.ID = 2
	morning.Ticket.TicketNumber = "TKT-20260314-000002"
	morning.Ticket.BookingID = 11
	morning.Booking.ID = 11
	morning.Schedule.StartTime = "08:00:00"
	store.details[morning.Ticket.TicketNumber] = morning

	svc := newTicketService(store, ticketClock) // noon
	views, err := svc.ListBySchedule(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, views, 2)

	byNumber := map[string]View{}
	for _, v := range views {
		byNumber[v.TicketNumber] = v
	}
	assert.Equal(t, model.TicketActive, byNumber[testNumber].Status)
	assert.Equal(t, model.TicketExpired, byNumber["TKT-20260314-000002"].Status)
}
