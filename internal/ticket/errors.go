package ticket

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no ticket exists for the given number,
// including malformed numbers that cannot possibly match.
var ErrNotFound = errors.New("ticket not found")

// ErrExpired is returned when the ticket's schedule has passed beyond
// the redemption window. An expired ticket is never redeemable.
var ErrExpired = errors.New("ticket expired")

// ErrCancelled is returned when the ticket was cancelled with its
// booking before redemption.
var ErrCancelled = errors.New("ticket cancelled")

// ErrIntegrity marks a ticket row that violates the lifecycle
// invariants, such as a used ticket with no used_at. The operation is
// aborted and logged; the state is never silently repaired because
// that could mask a double redemption.
var ErrIntegrity = errors.New("ticket state integrity violation")

// AlreadyUsedError rejects a redemption because another scan already
// won the active→used transition. UsedAt reports when, so the cashier
// can show it.
type AlreadyUsedError struct {
	UsedAt time.Time
}

func (e *AlreadyUsedError) Error() string {
	return fmt.Sprintf("ticket already used at %s", e.UsedAt.UTC().Format(time.RFC3339))
}
