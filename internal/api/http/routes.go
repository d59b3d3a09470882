package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/brightsky-weather/internal/store"
	"github.com/i474232898/brightsky-weather/internal/weather"
)

var validate = validator.New()

// Coordinator is what the HTTP layer reads from.
type Coordinator interface {
	Location() weather.Location
	Snapshot() (weather.Snapshot, bool)
	Status() weather.Status
	Refresh(ctx context.Context) (weather.Snapshot, error)
	HourlyForecast(hours int) []weather.Record
	DailyForecast(days int) []weather.DailySummary
	History(from, to time.Time) ([]weather.Snapshot, error)
}

// Defaults are used when a query parameter is omitted.
type Defaults struct {
	HourlyLimit  int
	DailyLimit   int
	ForecastMode string
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, coord Coordinator, defaults Defaults) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		snap, ok := coord.Snapshot()
		if !ok {
			return fiber.NewError(fiber.StatusServiceUnavailable, "weather data not available yet")
		}
		if snap.Current == nil {
			return fiber.NewError(fiber.StatusNotFound, "no current weather for location")
		}

		condition, ok := weather.PresentCondition(snap.Current)
		if !ok {
			slog.Warn("no condition or icon in current weather, reporting sunny", "location", snap.Location.Key())
		}
		return c.JSON(fiber.Map{
			"location":   snap.Location,
			"fetched_at": snap.FetchedAt,
			"condition":  condition,
			"weather":    snap.Current,
		})
	})

	v1.Get("/weather/hourly", func(c *fiber.Ctx) error {
		q, err := bindLimits(c, defaults)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if _, ok := coord.Snapshot(); !ok {
			return fiber.NewError(fiber.StatusServiceUnavailable, "weather data not available yet")
		}
		return c.JSON(fiber.Map{
			"hours":   q.Hours,
			"weather": coord.HourlyForecast(q.Hours),
		})
	})

	v1.Get("/weather/daily", func(c *fiber.Ctx) error {
		q, err := bindLimits(c, defaults)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if _, ok := coord.Snapshot(); !ok {
			return fiber.NewError(fiber.StatusServiceUnavailable, "weather data not available yet")
		}
		return c.JSON(fiber.Map{
			"days":    q.Days,
			"weather": coord.DailyForecast(q.Days),
		})
	})

	v1.Get("/weather/forecast", func(c *fiber.Ctx) error {
		q, err := bindLimits(c, defaults)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if _, ok := coord.Snapshot(); !ok {
			return fiber.NewError(fiber.StatusServiceUnavailable, "weather data not available yet")
		}

		var forecast []Forecast
		if q.Mode == modeHourly {
			for _, h := range coord.HourlyForecast(q.Hours) {
				forecast = append(forecast, hourlyForecast(h))
			}
		} else {
			for _, d := range coord.DailyForecast(q.Days) {
				forecast = append(forecast, dailyForecast(d))
			}
		}
		if forecast == nil {
			forecast = []Forecast{}
		}
		return c.JSON(fiber.Map{
			"mode":     q.Mode,
			"forecast": forecast,
		})
	})

	v1.Get("/weather/status", func(c *fiber.Ctx) error {
		return c.JSON(coord.Status())
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshots, err := coord.History(req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
		}

		entries := make([]fiber.Map, 0, len(snapshots))
		for _, s := range snapshots {
			entries = append(entries, fiber.Map{
				"fetched_at": s.FetchedAt,
				"current":    s.Current,
				"hourly":     len(s.Hourly),
			})
		}

		return c.JSON(fiber.Map{
			"location":  coord.Location(),
			"from":      req.From,
			"to":        req.To,
			"snapshots": entries,
		})
	})

	v1.Post("/weather/refresh", func(c *fiber.Ctx) error {
		snap, err := coord.Refresh(c.UserContext())
		if err != nil {
			if errors.Is(err, weather.ErrRefreshInProgress) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return c.JSON(fiber.Map{
			"fetched_at": snap.FetchedAt,
			"hourly":     len(snap.Hourly),
		})
	})

	v1.Get("/sensors", func(c *fiber.Ctx) error {
		var current *weather.Record
		if snap, ok := coord.Snapshot(); ok {
			current = snap.Current
		}
		return c.JSON(fiber.Map{
			"location": coord.Location(),
			"sensors":  weather.Sensors(current),
		})
	})
}

const (
	modeHourly = "hourly"
	modeDaily  = "daily"
)

// limitsQuery holds the optional forecast window parameters.
type limitsQuery struct {
	Hours int    `validate:"gte=1,lte=192"`
	Days  int    `validate:"gte=1,lte=8"`
	Mode  string `validate:"oneof=hourly daily"`
}

func bindLimits(c *fiber.Ctx, defaults Defaults) (limitsQuery, error) {
	q := limitsQuery{
		Hours: defaults.HourlyLimit,
		Days:  defaults.DailyLimit,
		Mode:  defaults.ForecastMode,
	}
	if q.Mode == "" {
		q.Mode = modeDaily
	}

	var err error
	if v := c.Query("hours"); v != "" {
		if q.Hours, err = strconv.Atoi(v); err != nil {
			return q, errors.New("hours must be an integer")
		}
	}
	if v := c.Query("days"); v != "" {
		if q.Days, err = strconv.Atoi(v); err != nil {
			return q, errors.New("days must be an integer")
		}
	}
	if v := c.Query("mode"); v != "" {
		q.Mode = v
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
