package compensation

import (
	"context"
	"time"
)

// Run drives the schedule at its tick interval until it completes, is cancelled,
// or ctx is done. Every tick waits first and then advances all sequences once,
// so no sequence gets ahead of the shared clock. onTick may be nil.
func Run(ctx context.Context, s *Schedule, onTick func(Progress)) Progress {
	if p := s.Snapshot(); p.Done {
		return p
	}

	timer := time.NewTimer(s.TickInterval)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			s.Cancel()
			return s.Snapshot()
		}

		select {
		case <-ctx.Done():
			s.Cancel()
			return s.Snapshot()
		case <-timer.C:
		}

		p := s.Advance()
		if onTick != nil {
			onTick(p)
		}
		if p.Done {
			return p
		}
		timer.Reset(s.TickInterval)
	}
}
