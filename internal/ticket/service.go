package ticket

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/adityarizkyr/cinetix/internal/model"
	"github.com/adityarizkyr/cinetix/internal/repository"
)

// Store is the persistence surface the lifecycle manager needs. The
// SQL implementation lives in the repository package; tests use an
// in-memory fake.
type Store interface {
	GetDetailByNumber(ctx context.Context, number string) (*repository.TicketDetail, error)
	MarkUsed(ctx context.Context, number string, usedAt time.Time) (bool, error)
	ListBySchedule(ctx context.Context, scheduleID uint64) ([]repository.TicketDetail, error)
}

// Config tunes the lifecycle manager. RedeemWindow bounds how long
// after the schedule's start a ticket may still be scanned; once it
// has elapsed the ticket reads as expired. Now is swappable for tests.
type Config struct {
	RedeemWindow time.Duration
	Now          func() time.Time
}

// Service owns ticket state transitions. Stored status only ever moves
// active→used (scan) or active→cancelled (booking cancellation);
// expiry is derived at read time from the schedule so an
// expired-but-never-scanned ticket keeps used_at null and needs no
// background job.
type Service struct {
	store Store
	cfg   Config
}

// New constructs a ticket Service bound to the given store.
func New(store Store, cfg Config) *Service {
	if store == nil {
		panic("nil store passed to ticket.New")
	}
	if cfg.RedeemWindow <= 0 {
		cfg.RedeemWindow = 3 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{store: store, cfg: cfg}
}

// SeatView is one seat on a ticket view.
type SeatView struct {
	ID        uint64 `json:"id"`
	Label     string `json:"label"`
	SeatClass string `json:"seat_class"`
}

// View is the read-only ticket projection returned to cashiers. Status
// is the effective status after applying the derived-expiry rule;
// IsRedeemable is true iff it is active.
type View struct {
	TicketNumber  string     `json:"ticket_number"`
	Status        string     `json:"status"`
	IsRedeemable  bool       `json:"is_redeemable"`
	UsedAt        *time.Time `json:"used_at,omitempty"`
	BookingID     uint64     `json:"booking_id"`
	ScheduleID    uint64     `json:"schedule_id"`
	MovieTitle    string     `json:"movie"`
	StudioName    string     `json:"studio"`
	ShowDate      string     `json:"show_date"`
	StartTime     string     `json:"start_time"`
	Seats         []SeatView `json:"seats"`
	CustomerID    *uint64    `json:"customer_id,omitempty"`
	CustomerName  *string    `json:"customer_name,omitempty"`
	CustomerPhone *string    `json:"customer_phone,omitempty"`
	TotalPrice    int64      `json:"total_price"`
}

// effectiveStatus applies the derived-expiry rule: a ticket stored
// active whose schedule passed beyond the redemption window reads as
// expired without any write.
func (s *Service) effectiveStatus(d *repository.TicketDetail, now time.Time) (string, error) {
	switch d.Ticket.Status {
	case model.TicketUsed:
		if d.Ticket.UsedAt == nil {
			log.Printf("ticket: %s is used but has no used_at", d.Ticket.TicketNumber)
			return "", ErrIntegrity
		}
		return model.TicketUsed, nil
	case model.TicketCancelled, model.TicketExpired:
		return d.Ticket.Status, nil
	case model.TicketActive:
		if !now.Before(d.Schedule.StartsAt().Add(s.cfg.RedeemWindow)) {
			return model.TicketExpired, nil
		}
		return model.TicketActive, nil
	}
	log.Printf("ticket: %s has unknown status %q", d.Ticket.TicketNumber, d.Ticket.Status)
	return "", ErrIntegrity
}

func (s *Service) view(d *repository.TicketDetail, now time.Time) (*View, error) {
	status, err := s.effectiveStatus(d, now)
	if err != nil {
		return nil, err
	}
	seats := make([]SeatView, 0, len(d.Seats))
	for _, seat := range d.Seats {
		seats = append(seats, SeatView{ID: seat.ID, Label: seat.Label(), SeatClass: seat.SeatClass})
	}
	return &View{
		TicketNumber:  d.Ticket.TicketNumber,
		Status:        status,
		IsRedeemable:  status == model.TicketActive,
		UsedAt:        d.Ticket.UsedAt,
		BookingID:     d.Booking.ID,
		ScheduleID:    d.Schedule.ID,
		MovieTitle:    d.MovieTitle,
		StudioName:    d.StudioName,
		ShowDate:      d.Schedule.ShowDate.UTC().Format("2006-01-02"),
		StartTime:     d.Schedule.StartTime,
		Seats:         seats,
		CustomerID:    d.Booking.CustomerID,
		CustomerName:  d.Booking.CustomerName,
		CustomerPhone: d.Booking.CustomerPhone,
		TotalPrice:    d.Booking.TotalPrice,
	}, nil
}

// Verify returns the read-only view for a ticket number. It never
// mutates: a stored-active ticket past its window reports expired and
// not redeemable while storage keeps status active and used_at null.
func (s *Service) Verify(ctx context.Context, rawNumber string) (*View, error) {
	number := Normalize(rawNumber)
	if !ValidNumber(number) {
		return nil, ErrNotFound
	}
	d, err := s.store.GetDetailByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.view(d, s.cfg.Now().UTC())
}

// Redeem attempts the active→used transition. Exactly one concurrent
// caller succeeds; every other receives AlreadyUsedError with the
// winning used_at. Redemption is refused once the schedule has passed
// beyond the redemption window, and used_at, once set, is never
// changed.
func (s *Service) Redeem(ctx context.Context, rawNumber string) (time.Time, error) {
	number := Normalize(rawNumber)
	if !ValidNumber(number) {
		return time.Time{}, ErrNotFound
	}
	d, err := s.store.GetDetailByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, err
	}
	now := s.cfg.Now().UTC()
	status, err := s.effectiveStatus(d, now)
	if err != nil {
		return time.Time{}, err
	}
	switch status {
	case model.TicketUsed:
		return time.Time{}, &AlreadyUsedError{UsedAt: *d.Ticket.UsedAt}
	case model.TicketCancelled:
		return time.Time{}, ErrCancelled
	case model.TicketExpired:
		return time.Time{}, ErrExpired
	}

	won, err := s.store.MarkUsed(ctx, number, now)
	if err != nil {
		return time.Time{}, err
	}
	if !won {
		// Lost the race: another scan flipped the ticket between our
		// read and the conditional write. Re-read to classify.
		d, err = s.store.GetDetailByNumber(ctx, number)
		if err != nil {
			return time.Time{}, err
		}
		switch d.Ticket.Status {
		case model.TicketUsed:
			if d.Ticket.UsedAt == nil {
				return time.Time{}, ErrIntegrity
			}
			return time.Time{}, &AlreadyUsedError{UsedAt: *d.Ticket.UsedAt}
		case model.TicketCancelled:
			return time.Time{}, ErrCancelled
		default:
			return time.Time{}, ErrExpired
		}
	}
	return now, nil
}

// ListBySchedule returns the views of every ticket issued for a
// schedule, for cashier reconciliation. Derived expiry applies to each
// entry individually.
func (s *Service) ListBySchedule(ctx context.Context, scheduleID uint64) ([]View, error) {
	details, err := s.store.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	now := s.cfg.Now().UTC()
	views := make([]View, 0, len(details))
	for i := range details {
		v, err := s.view(&details[i], now)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}
