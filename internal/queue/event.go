package queue

// BookingConfirmedEvent is published when a booking is confirmed and
// its ticket issued. It carries enough information for downstream
// consumers to log, notify, or feed analytics without querying the
// primary database.
type BookingConfirmedEvent struct {
	BookingID    uint64   `json:"booking_id"`
	ScheduleID   uint64   `json:"schedule_id"`
	TicketNumber string   `json:"ticket_number"`
	MovieTitle   string   `json:"movie_title"`
	StudioName   string   `json:"studio_name"`
	ShowDate     string   `json:"show_date"`
	StartTime    string   `json:"start_time"`
	SeatLabels   []string `json:"seats"`
	UnitPrice    int64    `json:"unit_price"`
	TotalPrice   int64    `json:"total_price"`
	Customer     string   `json:"customer"`
	Offline      bool     `json:"offline"`
	ConfirmedAt  string   `json:"confirmed_at"`
}

// TicketScannedEvent is published when a ticket is redeemed at the
// point of entry.
type TicketScannedEvent struct {
	TicketNumber string `json:"ticket_number"`
	BookingID    uint64 `json:"booking_id"`
	ScheduleID   uint64 `json:"schedule_id"`
	ScannedAt    string `json:"scanned_at"`
}
