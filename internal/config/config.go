package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelvins/geocoder"

	"github.com/i474232898/brightsky-weather/internal/weather"
)

const (
	// MinRefreshInterval is the lower bound applied to REFRESH_INTERVAL.
	MinRefreshInterval = 60 * time.Second

	DefaultRefreshInterval = 30 * time.Minute
	DefaultName            = "BrightSky Weather"
	DefaultEndpoint        = "https://api.brightsky.dev"

	ForecastModeHourly = "hourly"
	ForecastModeDaily  = "daily"
)

type AppConfig struct {
	Name     string `validate:"required"`
	Endpoint string `validate:"required,url"`

	Location weather.Location

	// RefreshInterval controls how often the coordinator refreshes; never below MinRefreshInterval.
	RefreshInterval time.Duration `validate:"gte=1m"`
	// RefreshTimeout bounds a whole refresh, both requests included.
	RefreshTimeout time.Duration `validate:"gt=0s"`
	HTTPTimeout    time.Duration `validate:"gt=0s"`
	MaxRetries     int           `validate:"gte=0,lte=10"`

	ForecastMode string `validate:"oneof=hourly daily"`
	HourlyLimit  int    `validate:"gte=1,lte=192"`
	DailyLimit   int    `validate:"gte=1,lte=8"`

	// In-memory store retention.
	StoreMaxHistory int           // max number of snapshots kept (0 = unlimited)
	StoreMaxAge     time.Duration // max age of snapshots (0 = unlimited)

	Port string `validate:"required,numeric"`

	MQTTBrokerURL   string `validate:"omitempty,url"`
	MQTTTopicPrefix string `validate:"required"`

	RedisURL string        `validate:"omitempty,url"`
	RedisTTL time.Duration `validate:"gte=0s"`

	OTLPEndpoint string `validate:"omitempty,url"`

	LogLevel slog.Level
}

var validate = validator.New()

// geocode resolves an address to coordinates.
var geocode = geocoder.Geocoding

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	cfg := &AppConfig{}

	cfg.Name = getenvDefault("WEATHER_NAME", DefaultName)
	cfg.Endpoint = strings.TrimRight(getenvDefault("BRIGHTSKY_ENDPOINT", DefaultEndpoint), "/")

	interval, err := parseInterval(getenvDefault("REFRESH_INTERVAL", DefaultRefreshInterval.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = ClampRefreshInterval(interval)

	if cfg.RefreshTimeout, err = getenvDuration("REFRESH_TIMEOUT", weather.DefaultRefreshTimeout); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	cfg.MaxRetries = getenvInt("BRIGHTSKY_MAX_RETRIES", 0)

	cfg.ForecastMode = strings.ToLower(getenvDefault("FORECAST_MODE", ForecastModeDaily))
	cfg.HourlyLimit = getenvInt("HOURLY_FORECAST_HOURS", weather.DefaultHourlyLimit)
	cfg.DailyLimit = getenvInt("DAILY_FORECAST_DAYS", weather.DefaultDailyLimit)

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 48) // roughly 24h at 30-minute intervals
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}
	cfg.Port = getenvDefault("PORT", "8080")

	cfg.MQTTBrokerURL = os.Getenv("MQTT_BROKER_URL")
	cfg.MQTTTopicPrefix = getenvDefault("MQTT_TOPIC_PREFIX", "brightsky")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	if cfg.RedisTTL, err = getenvDuration("REDIS_TTL", 2*time.Hour); err != nil {
		return nil, err
	}
	cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

	if err := cfg.LogLevel.UnmarshalText([]byte(getenvDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	loc, err := loadLocation()
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ClampRefreshInterval enforces MinRefreshInterval.
func ClampRefreshInterval(d time.Duration) time.Duration {
	if d < MinRefreshInterval {
		return MinRefreshInterval
	}
	return d
}

// parseInterval accepts a Go duration ("15m") or plain seconds ("900").
func parseInterval(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// loadLocation prefers explicit coordinates and falls back to geocoding the
// configured city.
func loadLocation() (weather.Location, error) {
	latStr := os.Getenv("WEATHER_LATITUDE")
	lonStr := os.Getenv("WEATHER_LONGITUDE")

	if latStr != "" || lonStr != "" {
		if latStr == "" || lonStr == "" {
			return weather.Location{}, errors.New("WEATHER_LATITUDE and WEATHER_LONGITUDE must be set together")
		}
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return weather.Location{}, fmt.Errorf("invalid WEATHER_LATITUDE: %w", err)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return weather.Location{}, fmt.Errorf("invalid WEATHER_LONGITUDE: %w", err)
		}
		return weather.Location{Latitude: lat, Longitude: lon}, nil
	}

	city := os.Getenv("WEATHER_LOCATION_CITY")
	if city == "" {
		return weather.Location{}, errors.New("no location configured: set WEATHER_LATITUDE/WEATHER_LONGITUDE or WEATHER_LOCATION_CITY")
	}
	apiKey := os.Getenv("GEOCODER_API_KEY")
	if apiKey == "" {
		return weather.Location{}, errors.New("GEOCODER_API_KEY is required to resolve WEATHER_LOCATION_CITY")
	}
	geocoder.ApiKey = apiKey

	res, err := geocode(geocoder.Address{
		City:    city,
		Country: os.Getenv("WEATHER_LOCATION_COUNTRY"),
	})
	if err != nil {
		return weather.Location{}, fmt.Errorf("geocode %q: %w", city, err)
	}
	slog.Info("resolved location", "city", city, "latitude", res.Latitude, "longitude", res.Longitude)

	return weather.Location{Latitude: res.Latitude, Longitude: res.Longitude}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
