package model

import "time"

// Schedule represents one scheduled screening of a movie in a studio.
// The calendar date and start time-of-day are fixed at creation and
// combine into the effective start instant; the reservation core never
// mutates them. Prices are stored in integer minor units (Rupiah) so
// multiplying by a seat count cannot accumulate rounding drift.
//
// Fields:
//  ID           – primary key identifier.
//  MovieID      – movie being screened.
//  StudioID     – studio hosting the screening.
//  ShowDate     – calendar date of the screening (midnight UTC).
//  StartTime    – start time-of-day in "HH:MM:SS" form.
//  PriceWeekday – unit price applied Monday through Friday.
//  PriceWeekend – unit price applied Saturday and Sunday.
//  IsActive     – availability flag set by administration.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Schedule struct {
	ID           uint64    // schedules.id
	MovieID      uint64    // schedules.movie_id
	StudioID     uint64    // schedules.studio_id
	ShowDate     time.Time // schedules.show_date
	StartTime    string    // schedules.start_time
	PriceWeekday int64     // schedules.price_weekday
	PriceWeekend int64     // schedules.price_weekend
	IsActive     bool      // schedules.is_active
	CreatedAt    time.Time // schedules.created_at
	UpdatedAt    time.Time // schedules.updated_at
}

// StartsAt combines the calendar date and the start time-of-day into
// the effective start instant in UTC. A malformed StartTime yields the
// date at midnight, which only makes the schedule unbookable earlier.
func (s Schedule) StartsAt() time.Time {
	t, err := time.Parse("15:04:05", s.StartTime)
	if err != nil {
		return s.ShowDate.UTC()
	}
	d := s.ShowDate.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
