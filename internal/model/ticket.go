package model

import "time"

// Ticket statuses. Active is the only initial status; used, expired
// and cancelled are terminal. Expiry is usually derived at read time
// from the schedule rather than written to storage, so a stored
// "active" ticket may still be effectively expired.
const (
	TicketActive    = "active"
	TicketUsed      = "used"
	TicketExpired   = "expired"
	TicketCancelled = "cancelled"
)

// Ticket is the redeemable artifact issued for a confirmed booking.
// One ticket covers every seat of its booking. The ticket number is
// globally unique and human-typable (TKT-YYYYMMDD-NNNNNN).
//
// Fields:
//  ID           – primary key identifier.
//  TicketNumber – unique external identifier printed on the ticket.
//  BookingID    – booking this ticket redeems.
//  Status       – one of active, used, expired, cancelled.
//  UsedAt       – set exactly once when the ticket is scanned.
//  CreatedAt    – issuance timestamp.
type Ticket struct {
	ID           uint64     // tickets.id
	TicketNumber string     // tickets.ticket_number
	BookingID    uint64     // tickets.booking_id
	Status       string     // tickets.status
	UsedAt       *time.Time // tickets.used_at (nullable)
	CreatedAt    time.Time  // tickets.created_at
}
