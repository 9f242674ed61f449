package environment

import (
	"context"
	"time"
)

// ProviderReading is a single provider's normalized reading.
// Providers fill only the fields they measure.
type ProviderReading struct {
	ProviderName string
	Timestamp    time.Time

	SunHours    *float64
	FlowRateM3S *float64
	CloudPct    *float64
	Condition   Condition
}

// Provider abstracts an environmental data source (weather API, hydrology API).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (ProviderReading, error)
}

// Store is the contract the in-memory store must satisfy.
type Store interface {
	SaveSnapshot(loc Location, snapshot Snapshot)
	GetLatest(loc Location) (Snapshot, error)
	GetRange(loc Location, from, to time.Time) ([]Snapshot, error)
}
