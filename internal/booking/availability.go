package booking

import (
	"time"

	"github.com/adityarizkyr/cinetix/internal/model"
)

// Availability is the result of evaluating whether a schedule can
// still accept reservations.
type Availability int

const (
	// Bookable means the schedule is active and has not started yet.
	Bookable Availability = iota
	// PastShowtime means the current instant is at or after the
	// schedule's effective start. There is no grace window.
	PastShowtime
	// AdminDisabled means administration flagged the schedule
	// inactive. It wins over any time-based state.
	AdminDisabled
)

func (a Availability) String() string {
	switch a {
	case Bookable:
		return "bookable"
	case PastShowtime:
		return "past_showtime"
	case AdminDisabled:
		return "admin_disabled"
	}
	return "unknown"
}

// Evaluate determines whether a schedule can accept reservations at
// the given instant. It is a pure function with no side effects, which
// is why callers re-run it at both seat-listing time and
// booking-commit time: the clock may have crossed the showtime in
// between.
func Evaluate(s model.Schedule, now time.Time) Availability {
	if !s.IsActive {
		return AdminDisabled
	}
	if !now.Before(s.StartsAt()) {
		return PastShowtime
	}
	return Bookable
}
