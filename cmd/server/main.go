package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/adityarizkyr/cinetix/internal/booking"
	"github.com/adityarizkyr/cinetix/internal/config"
	"github.com/adityarizkyr/cinetix/internal/database"
	"github.com/adityarizkyr/cinetix/internal/handler"
	"github.com/adityarizkyr/cinetix/internal/queue"
	"github.com/adityarizkyr/cinetix/internal/repository"
	"github.com/adityarizkyr/cinetix/internal/router"
	"github.com/adityarizkyr/cinetix/internal/ticket"
)

func main() {
	// .env is optional; real deployments inject variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	movieRepo := repository.NewMovieRepo(db)
	studioRepo := repository.NewStudioRepo(db)
	scheduleRepo := repository.NewScheduleRepo(db)
	seatRepo := repository.NewSeatRepo(db)
	occupancyRepo := repository.NewOccupancyRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	ticketRepo := repository.NewTicketRepo(db)

	bookingSvc := booking.New(scheduleRepo, seatRepo, occupancyRepo, bookingRepo, ticketRepo, booking.Config{
		TicketPrefix: cfg.TicketPrefix,
	})
	ticketSvc := ticket.New(ticketRepo, ticket.Config{
		RedeemWindow: time.Duration(cfg.RedeemWindowMin) * time.Minute,
	})

	bookingHandler := handler.NewBookingHandler(bookingSvc, ticketRepo, occupancyRepo, scheduleRepo, movieRepo, studioRepo)
	h := router.Handlers{
		Health:  handler.NewHealthHandler(db),
		Catalog: handler.NewCatalogHandler(movieRepo, scheduleRepo),
		Seats:   handler.NewSeatHandler(bookingSvc),
		Booking: bookingHandler,
		Cashier: handler.NewCashierHandler(bookingHandler, ticketSvc),
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, h, &cfg, rdb)

	// The audit consumer reconnects forever on its own; a broker outage
	// must not block serving requests.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	log.Printf("starting cinetix on :%s (env=%s)", cfg.Port, cfg.Env)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
