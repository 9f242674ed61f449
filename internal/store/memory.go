package store

import (
	"errors"
	"time"

	"github.com/i474232898/co2-offset-dashboard/internal/environment"
)

// ErrNotFound is returned when no data is available for a given location.
var ErrNotFound = errors.New("no environment data for location")

// MemoryStore keeps recent environment snapshots per location.
type MemoryStore struct {
	series *Series[environment.Snapshot]
}

// NewMemoryStore creates a MemoryStore keeping at most maxHistory snapshots
// no older than maxAge per location. Zero disables either limit.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		series: NewSeries(maxHistory, maxAge, func(s environment.Snapshot) time.Time { return s.Timestamp }),
	}
}

// SaveSnapshot records a snapshot for loc.
func (m *MemoryStore) SaveSnapshot(loc environment.Location, snapshot environment.Snapshot) {
	m.series.Append(loc.Key(), snapshot)
}

// GetLatest returns the most recent snapshot for loc.
func (m *MemoryStore) GetLatest(loc environment.Location) (environment.Snapshot, error) {
	snap, ok := m.series.Latest(loc.Key())
	if !ok {
		return environment.Snapshot{}, ErrNotFound
	}
	return snap, nil
}

// GetRange returns the snapshots for loc between from and to (inclusive).
func (m *MemoryStore) GetRange(loc environment.Location, from, to time.Time) ([]environment.Snapshot, error) {
	snaps := m.series.Range(loc.Key(), from, to)
	if len(snaps) == 0 {
		return nil, ErrNotFound
	}
	return snaps, nil
}
