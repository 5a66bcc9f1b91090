package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/adityarizkyr/cinetix/internal/model"
)

func TestUnitPrice(t *testing.T) {
	base := model.Schedule{
		PriceWeekday: 35000,
		PriceWeekend: 50000,
	}
	tests := []struct {
		name string
		date time.Time
		want int64
	}{
		{"monday", time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), 35000},
		{"friday", time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), 35000},
		{"saturday", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), 50000},
		{"sunday", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), 50000},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := base
			s.ShowDate = tc.date
			assert.Equal(t, tc.want, UnitPrice(s))
		})
	}
}

// The price depends on the schedule's own date, not on when the
// booking is made.
func TestUnitPriceIgnoresBookingDay(t *testing.T) {
	s := model.Schedule{
		ShowDate:     time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), // Saturday
		PriceWeekday: 35000,
		PriceWeekend: 50000,
	}
	assert.Equal(t, int64(50000), UnitPrice(s))
}
