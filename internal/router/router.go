// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/adityarizkyr/cinetix/internal/config"
	"github.com/adityarizkyr/cinetix/internal/handler"
	"github.com/adityarizkyr/cinetix/internal/middleware"
)

// Handlers groups every handler the router mounts.
type Handlers struct {
	Health  *handler.HealthHandler
	Catalog *handler.CatalogHandler
	Seats   *handler.SeatHandler
	Booking *handler.BookingHandler
	Cashier *handler.CashierHandler
}

// Register mounts all routes on the Echo instance.
//
// The catalog listing routes sit behind the response cache; the seat
// map does not, because clients must always see current occupancy.
// Every mutating route sits behind the rate limiter, and the cashier
// group additionally requires the CASHIER or ADMIN role.
func Register(e *echo.Echo, h Handlers, cfg *config.Config, rdb *redis.Client) {
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.ResponseCache(config.LoadCacheConfig(), rdb)
	auth := middleware.JWTAuth(cfg.JWTSecret)

	e.GET("/healthz", h.Health.Check)

	api := e.Group("/api/v1")

	api.GET("/movies", h.Catalog.ListMovies, cache)
	api.GET("/movies/:id/schedules", h.Catalog.ListSchedules, cache)
	api.GET("/schedules/:id/seats", h.Seats.GetSeatMap)

	bookings := api.Group("/bookings", auth)
	bookings.POST("", h.Booking.Create,
		middleware.RequireRole(middleware.RoleCustomer, middleware.RoleCashier, middleware.RoleAdmin), rateLimit)
	bookings.GET("/:id", h.Booking.Get)
	bookings.DELETE("/:id", h.Booking.Cancel, rateLimit)

	cashier := api.Group("/cashier", auth,
		middleware.RequireRole(middleware.RoleCashier, middleware.RoleAdmin))
	cashier.POST("/bookings", h.Cashier.CreateOffline, rateLimit)
	cashier.GET("/tickets/:number/verify", h.Cashier.Verify)
	cashier.POST("/tickets/:number/scan", h.Cashier.Scan, rateLimit)
	cashier.GET("/schedules/:id/tickets", h.Cashier.ListScheduleTickets)
}
