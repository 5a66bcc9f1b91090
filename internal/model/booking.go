package model

import "time"

// Booking records a confirmed claim over one or more seats for a
// single schedule. The unit price is captured at booking time and does
// not follow later schedule price changes. Online bookings carry the
// customer's user ID; offline bookings made by a cashier carry a
// free-text customer name and phone instead.
//
// Fields:
//  ID            – primary key identifier.
//  ScheduleID    – schedule being booked.
//  CustomerID    – user who booked online (nil for offline bookings).
//  CustomerName  – offline customer name (nil for online bookings).
//  CustomerPhone – offline customer phone (nil for online bookings).
//  UnitPrice     – price per seat captured at booking time.
//  TotalPrice    – UnitPrice multiplied by the seat count.
//  PaymentRef    – opaque external settlement reference, if any.
//  CreatedAt     – creation timestamp.
type Booking struct {
	ID            uint64    // bookings.id
	ScheduleID    uint64    // bookings.schedule_id
	CustomerID    *uint64   // bookings.customer_id (nullable)
	CustomerName  *string   // bookings.customer_name (nullable)
	CustomerPhone *string   // bookings.customer_phone (nullable)
	UnitPrice     int64     // bookings.unit_price
	TotalPrice    int64     // bookings.total_price
	PaymentRef    *string   // bookings.payment_ref (nullable)
	CreatedAt     time.Time // bookings.created_at
}

// Occupancy binds a seat to a schedule as taken by a booking. At most
// one occupancy may exist per (schedule, seat) pair at any time; the
// database enforces this with a unique key and the whole reservation
// path depends on it.
//
// Fields:
//  ID         – primary key identifier.
//  ScheduleID – schedule for which the seat is taken.
//  SeatID     – seat that is taken.
//  BookingID  – booking that owns the seat.
//  CreatedAt  – creation timestamp.
type Occupancy struct {
	ID         uint64    // occupancies.id
	ScheduleID uint64    // occupancies.schedule_id
	SeatID     uint64    // occupancies.seat_id
	BookingID  uint64    // occupancies.booking_id
	CreatedAt  time.Time // occupancies.created_at
}
