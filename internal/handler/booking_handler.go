package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adityarizkyr/cinetix/internal/booking"
	"github.com/adityarizkyr/cinetix/internal/queue"
	"github.com/adityarizkyr/cinetix/internal/repository"
	queue_publisher "github.com/adityarizkyr/cinetix/internal/service"
)

// BookingHandler exposes the customer booking flow: create, inspect and
// cancel bookings.
type BookingHandler struct {
	svc         *booking.Service
	tickets     *repository.TicketRepo
	occupancies *repository.OccupancyRepo
	schedules   *repository.ScheduleRepo
	movies      *repository.MovieRepo
	studios     *repository.StudioRepo
}

// NewBookingHandler returns a BookingHandler wired to the booking
// service and the repositories it needs for read-backs and events.
func NewBookingHandler(svc *booking.Service, tickets *repository.TicketRepo, occupancies *repository.OccupancyRepo,
	schedules *repository.ScheduleRepo, movies *repository.MovieRepo, studios *repository.StudioRepo) *BookingHandler {
	return &BookingHandler{svc: svc, tickets: tickets, occupancies: occupancies,
		schedules: schedules, movies: movies, studios: studios}
}

type createBookingRequest struct {
	ScheduleID uint64   `json:"schedule_id"`
	SeatIDs    []uint64 `json:"seat_ids"`
	PaymentRef *string  `json:"payment_ref"`
}

type bookingSeatResponse struct {
	ID        uint64 `json:"id"`
	Label     string `json:"label"`
	SeatClass string `json:"seat_class"`
}

type bookingResponse struct {
	BookingID    uint64                `json:"booking_id"`
	ScheduleID   uint64                `json:"schedule_id"`
	TicketNumber string                `json:"ticket_number"`
	Seats        []bookingSeatResponse `json:"seats"`
	UnitPrice    int64                 `json:"unit_price"`
	TotalPrice   int64                 `json:"total_price"`
	CreatedAt    time.Time             `json:"created_at"`
}

func toBookingResponse(res *booking.Result) bookingResponse {
	seats := make([]bookingSeatResponse, 0, len(res.Seats))
	for _, s := range res.Seats {
		seats = append(seats, bookingSeatResponse{ID: s.ID, Label: s.Label(), SeatClass: s.SeatClass})
	}
	return bookingResponse{
		BookingID:    res.Booking.ID,
		ScheduleID:   res.Booking.ScheduleID,
		TicketNumber: res.Ticket.TicketNumber,
		Seats:        seats,
		UnitPrice:    res.Booking.UnitPrice,
		TotalPrice:   res.Booking.TotalPrice,
		CreatedAt:    res.Booking.CreatedAt,
	}
}

// writeBookingError maps the booking service's typed rejections onto
// HTTP responses. Each rejection carries the detail the client needs
// for recovery in a single round trip.
func writeBookingError(c echo.Context, err error) error {
	var unavailable *booking.ScheduleUnavailableError
	var invalidSeats *booking.InvalidSeatSelectionError
	var seatsTaken *booking.SeatsUnavailableError
	switch {
	case errors.Is(err, booking.ErrScheduleNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
	case errors.Is(err, booking.ErrInvalidPayer):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid payer", "message": err.Error()})
	case errors.As(err, &unavailable):
		// A started showtime is permanently gone; a disabled schedule
		// may come back, so it reports as a conflict instead.
		status := http.StatusGone
		if unavailable.Reason == booking.AdminDisabled {
			status = http.StatusConflict
		}
		return c.JSON(status, echo.Map{
			"error":  "schedule unavailable",
			"reason": unavailable.Reason.String(),
		})
	case errors.As(err, &invalidSeats):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":    "invalid seat selection",
			"message":  invalidSeats.Detail,
			"seat_ids": invalidSeats.SeatIDs,
		})
	case errors.As(err, &seatsTaken):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":    "seats unavailable",
			"seat_ids": seatsTaken.SeatIDs,
		})
	}
	log.Printf("booking: unexpected error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
}

// publishConfirmed emits a booking.confirmed event for a fresh booking.
// Enrichment lookups and the publish run off the request path; a
// failure is logged and never surfaces to the client.
func (h *BookingHandler) publishConfirmed(res *booking.Result, offline bool) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		ev := queue.BookingConfirmedEvent{
			BookingID:    res.Booking.ID,
			ScheduleID:   res.Booking.ScheduleID,
			TicketNumber: res.Ticket.TicketNumber,
			UnitPrice:    res.Booking.UnitPrice,
			TotalPrice:   res.Booking.TotalPrice,
			Offline:      offline,
			ConfirmedAt:  time.Now().UTC().Format(time.RFC3339),
		}
		for _, s := range res.Seats {
			ev.SeatLabels = append(ev.SeatLabels, s.Label())
		}
		switch {
		case res.Booking.CustomerName != nil:
			ev.Customer = *res.Booking.CustomerName
		case res.Booking.CustomerID != nil:
			ev.Customer = "user:" + strconv.FormatUint(*res.Booking.CustomerID, 10)
		}
		if sched, err := h.schedules.GetByID(ctx, res.Booking.ScheduleID); err == nil {
			ev.ShowDate = sched.ShowDate.UTC().Format("2006-01-02")
			ev.StartTime = sched.StartTime
			if m, err := h.movies.GetByID(ctx, sched.MovieID); err == nil {
				ev.MovieTitle = m.Title
			}
			if st, err := h.studios.GetByID(ctx, sched.StudioID); err == nil {
				ev.StudioName = st.Name
			}
		}
		if err := queue_publisher.PublishBookingConfirmed(ctx, ev); err != nil {
			log.Printf("booking: publish booking.confirmed failed for %s: %v", res.Ticket.TicketNumber, err)
		}
	}()
}

// Create books seats for the authenticated customer and returns the
// confirmed booking with its ticket.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid user identity"})
	}
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	payer := booking.Payer{CustomerID: &userID, PaymentRef: req.PaymentRef}
	res, err := h.svc.CreateBooking(c.Request().Context(), req.ScheduleID, req.SeatIDs, payer)
	if err != nil {
		return writeBookingError(c, err)
	}
	h.publishConfirmed(res, false)
	return c.JSON(http.StatusCreated, toBookingResponse(res))
}

// Get returns a booking with its ticket and seats. Customers can only
// read their own bookings; cashiers and admins can read any.
func (h *BookingHandler) Get(c echo.Context) error {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	userID, ok := currentUserID(c)
	if !ok && !isStaff(c) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid user identity"})
	}
	ctx := c.Request().Context()
	b, err := h.svc.GetBooking(ctx, bookingID, userID, isStaff(c))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}

	resp := echo.Map{
		"booking_id":  b.ID,
		"schedule_id": b.ScheduleID,
		"unit_price":  b.UnitPrice,
		"total_price": b.TotalPrice,
		"created_at":  b.CreatedAt,
	}
	if t, err := h.tickets.GetByBookingID(ctx, b.ID); err == nil {
		resp["ticket_number"] = t.TicketNumber
		resp["ticket_status"] = t.Status
		if t.UsedAt != nil {
			resp["used_at"] = t.UsedAt
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load ticket"})
	}
	if seatIDs, err := h.occupancies.SeatIDsByBooking(ctx, b.ID); err == nil {
		resp["seat_ids"] = seatIDs
	}
	return c.JSON(http.StatusOK, resp)
}

// Cancel cancels a booking before its ticket is used, releasing its
// seats for rebooking.
func (h *BookingHandler) Cancel(c echo.Context) error {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	userID, ok := currentUserID(c)
	if !ok && !isStaff(c) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid user identity"})
	}
	err = h.svc.Cancel(c.Request().Context(), bookingID, userID, isStaff(c))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "ticket already used or cancelled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancellation failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "booking cancelled"})
}
