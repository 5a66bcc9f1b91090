package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/adityarizkyr/cinetix/internal/booking"
)

// SeatHandler serves the per-schedule seat map. The seat map is never
// cached: clients must always observe the current occupancy snapshot.
type SeatHandler struct {
	svc *booking.Service
}

// NewSeatHandler returns a SeatHandler bound to the booking service.
func NewSeatHandler(svc *booking.Service) *SeatHandler { return &SeatHandler{svc: svc} }

type seatStatusResponse struct {
	ID         uint64 `json:"id"`
	Label      string `json:"label"`
	SeatClass  string `json:"seat_class"`
	IsOccupied bool   `json:"is_occupied"`
}

// GetSeatMap returns every seat of the schedule's studio annotated with
// occupancy, together with the schedule's availability state and the
// unit price its date selects. An unbookable schedule still renders,
// flagged with its state, so clients can explain why booking is off.
func (h *SeatHandler) GetSeatMap(c echo.Context) error {
	scheduleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	sm, err := h.svc.ListSeats(c.Request().Context(), scheduleID)
	if err != nil {
		if errors.Is(err, booking.ErrScheduleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load seat map"})
	}
	seats := make([]seatStatusResponse, 0, len(sm.Seats))
	for _, st := range sm.Seats {
		seats = append(seats, seatStatusResponse{
			ID:         st.Seat.ID,
			Label:      st.Seat.Label(),
			SeatClass:  st.Seat.SeatClass,
			IsOccupied: st.IsOccupied,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"schedule_id": sm.Schedule.ID,
		"show_date":   sm.Schedule.ShowDate.UTC().Format("2006-01-02"),
		"start_time":  sm.Schedule.StartTime,
		"state":       sm.State.String(),
		"unit_price":  sm.UnitPrice,
		"seats":       seats,
	})
}
