package weather

import (
	"context"
	"time"
)

// Fetcher abstracts the remote weather service.
type Fetcher interface {
	// FetchCurrent returns the current_weather payload for loc.
	FetchCurrent(ctx context.Context, loc Location) (CurrentPayload, error)
	// FetchForecast returns hourly entries for the calendar dates from..to inclusive.
	FetchForecast(ctx context.Context, loc Location, from, to time.Time) (ForecastPayload, error)
}

// Store is the contract the in-memory snapshot store must satisfy.
type Store interface {
	SaveSnapshot(snapshot Snapshot)
	GetLatest() (Snapshot, error)
	GetRange(from, to time.Time) ([]Snapshot, error)
}

// Update is delivered to subscribers after every refresh attempt. On failure
// Snapshot is the previously stored one (zero if none) and Err is set.
type Update struct {
	Snapshot Snapshot
	HasData  bool
	Err      error
}
