package brightsky

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/i474232898/brightsky-weather/internal/weather"
)

// DefaultEndpoint is the public BrightSky API.
const DefaultEndpoint = "https://api.brightsky.dev"

// Client implements weather.Fetcher for the BrightSky API.
type Client struct {
	endpoint string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	tracer   trace.Tracer
}

// NewClient creates a BrightSky client. An empty endpoint selects DefaultEndpoint.
func NewClient(client *http.Client, endpoint string, maxRetries int) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "brightsky",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      maxRetries,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
		tracer:  otel.Tracer("github.com/i474232898/brightsky-weather/internal/weather/brightsky"),
	}
}

// FetchCurrent calls GET /current_weather.
func (c *Client) FetchCurrent(ctx context.Context, loc weather.Location) (weather.CurrentPayload, error) {
	values := coordinates(loc)

	var payload weather.CurrentPayload
	if err := c.getJSON(ctx, "/current_weather", values, &payload); err != nil {
		return weather.CurrentPayload{}, err
	}
	slog.Debug("BrightSky current weather fetched", "shape", payload.Weather.Shape.String())
	return payload, nil
}

// FetchForecast calls GET /weather for the dates from..to inclusive.
func (c *Client) FetchForecast(ctx context.Context, loc weather.Location, from, to time.Time) (weather.ForecastPayload, error) {
	values := coordinates(loc)
	values.Set("date", from.Format(time.DateOnly))
	values.Set("last_date", to.Format(time.DateOnly))

	var payload weather.ForecastPayload
	if err := c.getJSON(ctx, "/weather", values, &payload); err != nil {
		return weather.ForecastPayload{}, err
	}
	slog.Debug("BrightSky forecast fetched", "entries", len(payload.Weather))
	return payload, nil
}

func coordinates(loc weather.Location) url.Values {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	return values
}

func (c *Client) getJSON(ctx context.Context, path string, values url.Values, out any) error {
	ctx, span := c.tracer.Start(ctx, "brightsky.get",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.route", path)))
	defer span.End()

	u := fmt.Sprintf("%s%s?%s", c.endpoint, path, values.Encode())
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
