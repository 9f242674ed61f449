package environment

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Service orchestrates fetching from multiple providers and persisting snapshots.
type Service struct {
	store     Store
	providers []Provider
}

// NewService creates a new Service.
func NewService(store Store, providers []Provider) *Service {
	return &Service{
		store:     store,
		providers: providers,
	}
}

// FetchAndStore fetches from all providers concurrently for the given location,
// aggregates the successful readings, and stores a snapshot. A failing provider
// does not fail the pass; when every provider fails the last good snapshot is kept.
func (s *Service) FetchAndStore(ctx context.Context, loc Location) error {
	if len(s.providers) == 0 {
		log.Error().Str("location", loc.Key()).Msg("no providers available to fetch environment data")
		return ErrNoProviders
	}

	var (
		mu       sync.Mutex
		readings []ProviderReading
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range s.providers {
		p := p // per-iteration copy; go directive is 1.21 for the local toolchain
		g.Go(func() error {
			r, err := p.Fetch(gctx, loc)
			if err != nil {
				// Log and continue; partial success is fine.
				log.Warn().Err(err).Str("provider", p.Name()).Str("location", loc.Key()).Msg("provider fetch failed")
				return nil
			}

			mu.Lock()
			readings = append(readings, r)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(readings) == 0 {
		log.Warn().Str("location", loc.Key()).Msg("no successful provider readings; keeping last good snapshot")
		return nil
	}

	snapshot := AggregateReadings(loc, readings)
	s.store.SaveSnapshot(loc, snapshot)
	log.Debug().
		Str("location", loc.Key()).
		Int("providers", len(readings)).
		Str("condition", string(snapshot.Condition)).
		Msg("stored environment snapshot")
	return nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(loc Location) (Snapshot, error) {
	return s.store.GetLatest(loc)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(loc Location, from, to time.Time) ([]Snapshot, error) {
	return s.store.GetRange(loc, from, to)
}
