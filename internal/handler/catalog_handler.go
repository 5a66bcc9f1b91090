package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/adityarizkyr/cinetix/internal/booking"
	"github.com/adityarizkyr/cinetix/internal/model"
	"github.com/adityarizkyr/cinetix/internal/repository"
)

// CatalogHandler serves the read-only movie and schedule listings that
// front the booking flow.
type CatalogHandler struct {
	movies    *repository.MovieRepo
	schedules *repository.ScheduleRepo
}

// NewCatalogHandler returns a CatalogHandler bound to the given repositories.
func NewCatalogHandler(movies *repository.MovieRepo, schedules *repository.ScheduleRepo) *CatalogHandler {
	return &CatalogHandler{movies: movies, schedules: schedules}
}

type movieResponse struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	DurationMin *uint32 `json:"duration_min,omitempty"`
}

type scheduleResponse struct {
	ID           uint64 `json:"id"`
	MovieID      uint64 `json:"movie_id"`
	StudioID     uint64 `json:"studio_id"`
	ShowDate     string `json:"show_date"`
	StartTime    string `json:"start_time"`
	PriceWeekday int64  `json:"price_weekday"`
	PriceWeekend int64  `json:"price_weekend"`
	UnitPrice    int64  `json:"unit_price"`
	State        string `json:"state"`
}

func toScheduleResponse(s model.Schedule, now time.Time) scheduleResponse {
	return scheduleResponse{
		ID:           s.ID,
		MovieID:      s.MovieID,
		StudioID:     s.StudioID,
		ShowDate:     s.ShowDate.UTC().Format("2006-01-02"),
		StartTime:    s.StartTime,
		PriceWeekday: s.PriceWeekday,
		PriceWeekend: s.PriceWeekend,
		UnitPrice:    booking.UnitPrice(s),
		State:        booking.Evaluate(s, now).String(),
	}
}

// ListMovies returns the full movie catalog.
func (h *CatalogHandler) ListMovies(c echo.Context) error {
	movies, err := h.movies.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list movies"})
	}
	out := make([]movieResponse, 0, len(movies))
	for _, m := range movies {
		out = append(out, movieResponse{ID: m.ID, Title: m.Title, Description: m.Description, DurationMin: m.Duration})
	}
	return c.JSON(http.StatusOK, echo.Map{"movies": out})
}

// ListSchedules returns every schedule for a movie, each annotated with
// its availability state and effective unit price so clients need not
// reimplement the weekend rule.
func (h *CatalogHandler) ListSchedules(c echo.Context) error {
	movieID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx := c.Request().Context()
	movie, err := h.movies.GetByID(ctx, movieID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load movie"})
	}
	schedules, err := h.schedules.ListByMovie(ctx, movieID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list schedules"})
	}
	now := time.Now().UTC()
	out := make([]scheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, toScheduleResponse(s, now))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"movie":     movieResponse{ID: movie.ID, Title: movie.Title, Description: movie.Description, DurationMin: movie.Duration},
		"schedules": out,
	})
}
