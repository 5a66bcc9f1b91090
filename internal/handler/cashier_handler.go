package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adityarizkyr/cinetix/internal/booking"
	"github.com/adityarizkyr/cinetix/internal/queue"
	queue_publisher "github.com/adityarizkyr/cinetix/internal/service"
	"github.com/adityarizkyr/cinetix/internal/ticket"
)

// CashierHandler exposes the point-of-sale and point-of-entry flows:
// offline bookings for walk-in customers, ticket verification, ticket
// scanning, and per-schedule reconciliation.
type CashierHandler struct {
	bookings *BookingHandler
	tickets  *ticket.Service
}

// NewCashierHandler returns a CashierHandler. It reuses the booking
// handler's orchestration and event plumbing for offline sales.
func NewCashierHandler(bookings *BookingHandler, tickets *ticket.Service) *CashierHandler {
	return &CashierHandler{bookings: bookings, tickets: tickets}
}

type offlineBookingRequest struct {
	ScheduleID    uint64   `json:"schedule_id"`
	SeatIDs       []uint64 `json:"seat_ids"`
	CustomerName  string   `json:"customer_name"`
	CustomerPhone string   `json:"customer_phone"`
	PaymentRef    *string  `json:"payment_ref"`
}

// CreateOffline books seats for a walk-in customer identified by name
// and phone. The booking runs through the same gates as an online one.
func (h *CashierHandler) CreateOffline(c echo.Context) error {
	var req offlineBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	payer := booking.Payer{Name: req.CustomerName, Phone: req.CustomerPhone, PaymentRef: req.PaymentRef}
	res, err := h.bookings.svc.CreateBooking(c.Request().Context(), req.ScheduleID, req.SeatIDs, payer)
	if err != nil {
		return writeBookingError(c, err)
	}
	h.bookings.publishConfirmed(res, true)
	return c.JSON(http.StatusCreated, toBookingResponse(res))
}

// writeTicketError maps ticket lifecycle rejections onto HTTP
// responses. An already-used ticket reports the original used_at so the
// cashier can show when the first scan happened.
func writeTicketError(c echo.Context, err error) error {
	var used *ticket.AlreadyUsedError
	switch {
	case errors.Is(err, ticket.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	case errors.As(err, &used):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":   "ticket already used",
			"used_at": used.UsedAt.UTC(),
		})
	case errors.Is(err, ticket.ErrExpired):
		return c.JSON(http.StatusGone, echo.Map{"error": "ticket expired"})
	case errors.Is(err, ticket.ErrCancelled):
		return c.JSON(http.StatusGone, echo.Map{"error": "ticket cancelled"})
	case errors.Is(err, ticket.ErrIntegrity):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ticket state inconsistent"})
	}
	log.Printf("ticket: unexpected error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ticket operation failed"})
}

// Verify returns the read-only ticket view for a ticket number. It
// never changes ticket state; an expired or used ticket still renders
// with is_redeemable false.
func (h *CashierHandler) Verify(c echo.Context) error {
	view, err := h.tickets.Verify(c.Request().Context(), c.Param("number"))
	if err != nil {
		return writeTicketError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// Scan redeems a ticket at the point of entry. Exactly one concurrent
// scan of the same ticket succeeds.
func (h *CashierHandler) Scan(c echo.Context) error {
	number := ticket.Normalize(c.Param("number"))
	usedAt, err := h.tickets.Redeem(c.Request().Context(), number)
	if err != nil {
		return writeTicketError(c, err)
	}
	h.publishScanned(c.Request().Context(), number, usedAt)
	return c.JSON(http.StatusOK, echo.Map{
		"ticket_number": number,
		"status":        "used",
		"used_at":       usedAt,
	})
}

// publishScanned emits a ticket.scanned event off the request path.
func (h *CashierHandler) publishScanned(reqCtx context.Context, number string, usedAt time.Time) {
	view, err := h.tickets.Verify(reqCtx, number)
	if err != nil {
		log.Printf("ticket: load for scan event failed for %s: %v", number, err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		ev := queue.TicketScannedEvent{
			TicketNumber: number,
			BookingID:    view.BookingID,
			ScheduleID:   view.ScheduleID,
			ScannedAt:    usedAt.UTC().Format(time.RFC3339),
		}
		if err := queue_publisher.PublishTicketScanned(ctx, ev); err != nil {
			log.Printf("ticket: publish ticket.scanned failed for %s: %v", number, err)
		}
	}()
}

// ListScheduleTickets returns every ticket issued for a schedule for
// cashier reconciliation.
func (h *CashierHandler) ListScheduleTickets(c echo.Context) error {
	scheduleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	views, err := h.tickets.ListBySchedule(c.Request().Context(), scheduleID)
	if err != nil {
		return writeTicketError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"schedule_id": scheduleID,
		"tickets":     views,
	})
}
