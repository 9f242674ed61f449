package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/co2-offset-dashboard/internal/environment"
)

// Fetcher refreshes environment readings for a location.
type Fetcher interface {
	FetchAndStore(ctx context.Context, loc environment.Location) error
}

// Purger drops finished or abandoned simulation sessions.
type Purger interface {
	Purge(maxAge time.Duration) int
}

// Scheduler periodically refreshes readings and cleans up simulation sessions.
type Scheduler struct {
	scheduler     *gocron.Scheduler
	fetcher       Fetcher
	purger        Purger
	location      environment.Location
	interval      time.Duration
	sessionMaxAge time.Duration
}

// New creates a new Scheduler. purger may be nil.
func New(loc environment.Location, interval time.Duration, fetcher Fetcher, purger Purger, sessionMaxAge time.Duration) *Scheduler {
	return &Scheduler{
		scheduler:     gocron.NewScheduler(time.UTC),
		fetcher:       fetcher,
		purger:        purger,
		location:      loc,
		interval:      interval,
		sessionMaxAge: sessionMaxAge,
	}
}

// Start schedules the jobs and starts the underlying scheduler.
// The first refresh runs immediately so readings exist before the first request.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	if _, err := s.scheduler.Every(minutes).Minutes().Do(s.refresh); err != nil {
		return err
	}

	if s.purger != nil {
		_, err := s.scheduler.Every(1).Minute().Do(func() {
			if n := s.purger.Purge(s.sessionMaxAge); n > 0 {
				log.Debug().Int("sessions", n).Msg("scheduler: purged simulation sessions")
			}
		})
		if err != nil {
			return err
		}
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) refresh() {
	log.Info().Str("location", s.location.Key()).Msg("scheduler: running environment fetch job")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.fetcher.FetchAndStore(ctx, s.location); err != nil {
		log.Error().Err(err).Str("location", s.location.Key()).Msg("scheduler: fetch failed")
		return
	}
	log.Info().Str("location", s.location.Key()).Msg("scheduler: completed environment fetch job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
