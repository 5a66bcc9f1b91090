package booking

import (
	"errors"
	"fmt"
)

// ErrScheduleNotFound is returned when the requested schedule does not
// exist.
var ErrScheduleNotFound = errors.New("schedule not found")

// ErrInvalidPayer is returned when a booking request carries neither a
// customer identity nor an offline customer name and phone.
var ErrInvalidPayer = errors.New("payer must be a customer id or an offline name and phone")

// ScheduleUnavailableError rejects a booking because the schedule can
// no longer accept reservations. Reason distinguishes a started
// showtime from an administratively disabled schedule so the client
// can choose between picking a new schedule and giving up.
type ScheduleUnavailableError struct {
	Reason Availability
}

func (e *ScheduleUnavailableError) Error() string {
	return fmt.Sprintf("schedule unavailable: %s", e.Reason)
}

// InvalidSeatSelectionError rejects a booking whose seat set is empty,
// contains duplicates, or names seats outside the schedule's studio.
type InvalidSeatSelectionError struct {
	Detail  string
	SeatIDs []uint64
}

func (e *InvalidSeatSelectionError) Error() string {
	return fmt.Sprintf("invalid seat selection: %s", e.Detail)
}

// SeatsUnavailableError rejects a booking because at least one
// requested seat is already occupied. SeatIDs names every conflicting
// seat, not just the first, so the client can re-render seat state
// without a second round trip. No seat from the request was taken.
type SeatsUnavailableError struct {
	SeatIDs []uint64
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("%d requested seats already taken", len(e.SeatIDs))
}
