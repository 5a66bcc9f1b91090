package model

import (
	"strconv"
	"time"
)

// Seat classes supported by the seating layout. The class is purely
// descriptive to this core; pricing is per schedule, not per class.
const (
	SeatClassRegular = "regular"
	SeatClassVIP     = "vip"
	SeatClassPremium = "premium"
)

// Seat describes a physical seat in a studio. Seats are uniquely
// identified by their studio, row label and seat number. Seats are
// created by administration and never deleted while referenced by an
// active booking.
//
// Fields:
//  ID         – primary key identifier.
//  StudioID   – studio to which this seat belongs.
//  RowLabel   – letter or string designating the row.
//  SeatNumber – number of the seat within the row.
//  SeatClass  – one of regular, vip, premium.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Seat struct {
	ID         uint64    // seats.id
	StudioID   uint64    // seats.studio_id
	RowLabel   string    // seats.row_label
	SeatNumber uint32    // seats.seat_number
	SeatClass  string    // seats.seat_class
	CreatedAt  time.Time // seats.created_at
	UpdatedAt  time.Time // seats.updated_at
}

// Label renders the human-readable seat label, e.g. "A1".
func (s Seat) Label() string {
	return s.RowLabel + strconv.FormatUint(uint64(s.SeatNumber), 10)
}
