// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking and ticket services to distinguish between different failure
// scenarios without inspecting driver-specific errors.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, such as cancelling another customer's
// booking. Handlers should translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state, such as cancelling a booking whose ticket has
// already been scanned. Handlers should translate this into an HTTP
// 409 response.
var ErrConflict = errors.New("conflict")

// ErrDuplicateOccupancy is returned when the unique (schedule, seat)
// key rejects an occupancy insert that passed the locking read. The
// reservation is aborted; callers re-read the occupied set and report
// the seats as taken rather than guessing which row won.
var ErrDuplicateOccupancy = errors.New("duplicate occupancy record")
