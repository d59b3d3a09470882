package statecache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/i474232898/brightsky-weather/internal/weather"
)

// Mirror writes every successful snapshot to Redis for other consumers. It is
// write-only: the coordinator never reads it back.
type Mirror struct {
	rdb     redis.Cmdable
	key     string
	ttl     time.Duration
	timeout time.Duration
	logger  *slog.Logger
}

// Key returns the Redis key holding the snapshot for loc.
func Key(loc weather.Location) string {
	return "brightsky:snapshot:" + loc.Key()
}

// NewMirror creates a Mirror for loc. A ttl of 0 keeps the key forever.
func NewMirror(rdb redis.Cmdable, loc weather.Location, ttl time.Duration, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{rdb: rdb, key: Key(loc), ttl: ttl, timeout: 5 * time.Second, logger: logger}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// Set stores snap.
func (m *Mirror) Set(ctx context.Context, snap weather.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return m.rdb.Set(ctx, m.key, data, m.ttl).Err()
}

// Handle is a coordinator subscriber; failed refreshes are ignored.
func (m *Mirror) Handle(u weather.Update) {
	if u.Err != nil || !u.HasData {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if err := m.Set(ctx, u.Snapshot); err != nil {
		m.logger.Warn("redis mirror write failed", "key", m.key, "error", err)
	}
}
