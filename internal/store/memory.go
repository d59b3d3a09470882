package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/brightsky-weather/internal/weather"
)

var (
	// ErrNotFound is returned when no snapshot has been stored yet.
	ErrNotFound = errors.New("no weather data available")
)

// MemoryStore is a concurrency-safe in-memory snapshot store. The latest
// snapshot is replaced wholesale, so readers never see a partial update.
// Older snapshots are kept as a bounded history.
type MemoryStore struct {
	mu sync.RWMutex

	// time-ordered, latest last
	snapshots []weather.Snapshot

	// retention configuration
	maxHistory int           // max number of snapshots kept
	maxAge     time.Duration // optional max age for snapshots
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveSnapshot appends a snapshot and enforces retention. The latest snapshot
// is never evicted.
func (s *MemoryStore) SaveSnapshot(snapshot weather.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy on write so slices handed out by GetRange stay valid.
	next := make([]weather.Snapshot, 0, len(s.snapshots)+1)
	next = append(next, s.snapshots...)
	next = append(next, snapshot)

	if s.maxHistory > 0 && len(next) > s.maxHistory {
		next = next[len(next)-s.maxHistory:]
	}

	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(next)-1; i++ {
			if !next[i].FetchedAt.Before(cutoff) {
				break
			}
		}
		next = next[i:]
	}

	s.snapshots = next
}

// GetLatest returns the most recent snapshot.
func (s *MemoryStore) GetLatest() (weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshots) == 0 {
		return weather.Snapshot{}, ErrNotFound
	}
	return s.snapshots[len(s.snapshots)-1], nil
}

// GetRange returns all snapshots fetched between from and to (inclusive).
func (s *MemoryStore) GetRange(from, to time.Time) ([]weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshots) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.Snapshot
	for _, snap := range s.snapshots {
		if !snap.FetchedAt.Before(from) && !snap.FetchedAt.After(to) {
			result = append(result, snap)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
