package booking

import (
	"time"

	"github.com/adityarizkyr/cinetix/internal/model"
)

// UnitPrice returns the per-seat price for a schedule. Weekend pricing
// is selected by the schedule's own calendar date, never by the moment
// of the call: a Saturday screening costs the weekend price even when
// booked on a Tuesday. Prices are integer minor units throughout so
// multiplying by a seat count stays exact.
func UnitPrice(s model.Schedule) int64 {
	switch s.ShowDate.UTC().Weekday() {
	case time.Saturday, time.Sunday:
		return s.PriceWeekend
	default:
		return s.PriceWeekday
	}
}
