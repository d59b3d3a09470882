package weather

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultRefreshTimeout bounds one refresh, both requests included.
	DefaultRefreshTimeout = 60 * time.Second

	// ForecastWindowDays is how far past today the forecast request reaches.
	ForecastWindowDays = 7

	DefaultHourlyLimit = 48
	DefaultDailyLimit  = 7
)

// Refresh outcomes reported to a RefreshObserver.
const (
	ResultSuccess         = "success"
	ResultTransportError  = "transport_error"
	ResultUnexpectedError = "unexpected_error"
	ResultSkipped         = "skipped"
)

// RefreshObserver receives the outcome of every refresh attempt.
type RefreshObserver interface {
	ObserveRefresh(result string, duration time.Duration, hourlyEntries int, at time.Time)
}

// CoordinatorOptions configures a Coordinator. Zero values pick defaults.
type CoordinatorOptions struct {
	Timeout  time.Duration
	Logger   *slog.Logger
	Observer RefreshObserver
	Now      func() time.Time
}

// Status describes the outcome of the most recent refreshes.
type Status struct {
	Location          Location  `json:"location"`
	LastUpdateSuccess bool      `json:"last_update_success"`
	LastAttempt       time.Time `json:"last_attempt,omitempty"`
	LastSuccess       time.Time `json:"last_success,omitempty"`
	LastError         string    `json:"last_error,omitempty"`
}

// Coordinator owns the single weather snapshot for one location. It fetches
// current conditions and the hourly forecast on demand and replaces the stored
// snapshot only when both succeed.
type Coordinator struct {
	fetcher  Fetcher
	store    Store
	loc      Location
	timeout  time.Duration
	logger   *slog.Logger
	observer RefreshObserver
	now      func() time.Time
	tracer   trace.Tracer

	// refreshMu serializes refreshes; a busy coordinator rejects new ones.
	refreshMu sync.Mutex

	mu         sync.RWMutex
	listeners  map[uuid.UUID]func(Update)
	status     Status
	connectErr bool
	lastKind   string
}

// NewCoordinator creates a Coordinator for loc.
func NewCoordinator(fetcher Fetcher, store Store, loc Location, opts CoordinatorOptions) *Coordinator {
	c := &Coordinator{
		fetcher:   fetcher,
		store:     store,
		loc:       loc,
		timeout:   opts.Timeout,
		logger:    opts.Logger,
		observer:  opts.Observer,
		now:       opts.Now,
		tracer:    otel.Tracer("github.com/i474232898/brightsky-weather/internal/weather"),
		listeners: make(map[uuid.UUID]func(Update)),
		status:    Status{Location: loc},
	}
	if c.timeout <= 0 {
		c.timeout = DefaultRefreshTimeout
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Location returns the tracked location.
func (c *Coordinator) Location() Location {
	return c.loc
}

// FirstRefresh performs the eager startup refresh. Callers must treat an error
// as a setup failure.
func (c *Coordinator) FirstRefresh(ctx context.Context) error {
	if _, err := c.Refresh(ctx); err != nil {
		return err
	}
	return nil
}

// Refresh fetches fresh data and, on success, replaces the stored snapshot.
// A failed refresh leaves the previous snapshot untouched. Subscribers are
// notified after the refresh lock is released.
func (c *Coordinator) Refresh(ctx context.Context) (Snapshot, error) {
	if !c.refreshMu.TryLock() {
		c.observe(ResultSkipped, 0, 0)
		return Snapshot{}, ErrRefreshInProgress
	}
	u := func() Update {
		defer c.refreshMu.Unlock()
		return c.refresh(ctx)
	}()

	c.notify(u)
	if u.Err != nil {
		return Snapshot{}, u.Err
	}
	return u.Snapshot, nil
}

// refresh runs one attempt. The caller holds refreshMu.
func (c *Coordinator) refresh(ctx context.Context) Update {
	ctx, span := c.tracer.Start(ctx, "coordinator.refresh",
		trace.WithAttributes(attribute.String("location", c.loc.Key())))
	defer span.End()

	start := c.now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	snap, err := c.fetch(ctx, start)
	elapsed := c.now().Sub(start)
	if err != nil {
		result, failure := c.fail(err)
		span.RecordError(failure)
		span.SetStatus(codes.Error, failure.Error())
		c.observe(result, elapsed, 0)

		prev, hasPrev := c.Snapshot()
		return Update{Snapshot: prev, HasData: hasPrev, Err: failure}
	}

	c.store.SaveSnapshot(snap)

	c.mu.Lock()
	c.connectErr = false
	c.lastKind = ""
	c.status.LastUpdateSuccess = true
	c.status.LastAttempt = start
	c.status.LastSuccess = snap.FetchedAt
	c.status.LastError = ""
	c.mu.Unlock()

	span.SetAttributes(attribute.Int("hourly_entries", len(snap.Hourly)))
	c.observe(ResultSuccess, elapsed, len(snap.Hourly))
	c.logger.Debug("weather data refreshed",
		"location", c.loc.Key(),
		"hourly", len(snap.Hourly),
		"has_current", snap.Current != nil,
		"duration", elapsed,
	)

	return Update{Snapshot: snap, HasData: true}
}

// fetch runs both requests under the shared deadline in ctx.
func (c *Coordinator) fetch(ctx context.Context, now time.Time) (Snapshot, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	last := today.AddDate(0, 0, ForecastWindowDays)

	var (
		current  CurrentPayload
		forecast ForecastPayload
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = c.fetcher.FetchCurrent(gctx, c.loc)
		return err
	})
	g.Go(func() error {
		var err error
		forecast, err = c.fetcher.FetchForecast(gctx, c.loc, today, last)
		return err
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil && !isTransport(err) {
			return Snapshot{}, &TransportError{Kind: KindTimeout, Err: ctx.Err()}
		}
		return Snapshot{}, err
	}

	if current.Weather.Shape == ShapeOther {
		c.logger.Warn("unexpected shape for current weather data", "shape", current.Weather.Shape.String())
	}

	hourly := forecast.Weather
	if hourly == nil {
		hourly = []Record{}
	}

	return Snapshot{
		Location:  c.loc,
		FetchedAt: c.now(),
		Current:   Normalize(current),
		Hourly:    hourly,
	}, nil
}

func isTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// fail classifies err, logs it and records the failure. Repeated transport
// errors of the same kind are logged once per streak.
func (c *Coordinator) fail(err error) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status.LastUpdateSuccess = false
	c.status.LastAttempt = c.now()

	var te *TransportError
	if errors.As(err, &te) {
		if !c.connectErr || c.lastKind != te.Kind {
			c.logger.Error("error communicating with BrightSky API",
				"location", c.loc.Key(),
				"kind", te.Kind,
				"error", err,
			)
		}
		c.connectErr = true
		c.lastKind = te.Kind

		failure := &UpdateFailedError{Reason: "error communicating with API", Err: err}
		c.status.LastError = failure.Error()
		return ResultTransportError, failure
	}

	c.logger.Error("unexpected error fetching BrightSky data",
		"location", c.loc.Key(),
		"error", err,
	)
	failure := &UpdateFailedError{Reason: "unexpected error", Err: err}
	c.status.LastError = failure.Error()
	return ResultUnexpectedError, failure
}

func (c *Coordinator) observe(result string, d time.Duration, hourly int) {
	if c.observer != nil {
		c.observer.ObserveRefresh(result, d, hourly, c.now())
	}
}

// Snapshot returns the last successfully stored snapshot.
func (c *Coordinator) Snapshot() (Snapshot, bool) {
	snap, err := c.store.GetLatest()
	if err != nil {
		return Snapshot{}, false
	}
	return snap, true
}

// Status returns the refresh status.
func (c *Coordinator) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Subscribe registers fn to be called after every refresh attempt.
func (c *Coordinator) Subscribe(fn func(Update)) func() {
	id := uuid.New()

	c.mu.Lock()
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Coordinator) notify(u Update) {
	c.mu.RLock()
	fns := make([]func(Update), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.RUnlock()

	for _, fn := range fns {
		fn(u)
	}
}

// CurrentWeather returns the normalized current record, or nil.
func (c *Coordinator) CurrentWeather() *Record {
	snap, ok := c.Snapshot()
	if !ok {
		c.logger.Debug("no data available in coordinator")
		return nil
	}
	return snap.Current
}

// HourlyForecast returns a copy of up to hours hourly entries.
func (c *Coordinator) HourlyForecast(hours int) []Record {
	snap, ok := c.Snapshot()
	if !ok || hours <= 0 {
		return []Record{}
	}
	if len(snap.Hourly) < hours {
		hours = len(snap.Hourly)
	}
	out := make([]Record, hours)
	copy(out, snap.Hourly)
	return out
}

// DailyForecast aggregates the first days*24 hourly entries into at most days
// daily summaries.
func (c *Coordinator) DailyForecast(days int) []DailySummary {
	daily := AggregateDaily(c.HourlyForecast(days*24), days)
	if daily == nil {
		return []DailySummary{}
	}
	return daily
}

// History delegates to the underlying store.
func (c *Coordinator) History(from, to time.Time) ([]Snapshot, error) {
	return c.store.GetRange(from, to)
}
