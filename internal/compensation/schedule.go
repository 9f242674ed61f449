package compensation

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/i474232898/co2-offset-dashboard/internal/offset"
)

// State is the lifecycle position of a Schedule.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

// Terminal reports whether no further ticks will change the progress.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// Duration is the time a method needs to offset the emission.
// Unavailable methods keep Days at zero and carry the reason.
type Duration struct {
	Method    offset.Method `json:"method"`
	Days      float64       `json:"days"`
	Available bool          `json:"available"`
	Reason    string        `json:"reason,omitempty"`
}

// Progress is the displayed state of all sequences after a tick.
type Progress struct {
	State       State                 `json:"state"`
	Tick        int                   `json:"tick"`
	ElapsedDays float64               `json:"elapsedDays"`
	Elapsed     string                `json:"elapsed"`
	Percent     map[offset.Method]int `json:"percent"`
	Done        bool                  `json:"done"`
}

// Err returns ErrCancelled for a cancelled schedule and nil otherwise.
func (p Progress) Err() error {
	if p.State == StateCancelled {
		return ErrCancelled
	}
	return nil
}

// Schedule is one simulation session: the elapsed-time counter plus one
// percent counter per available method, all advanced by a shared tick.
//
// Everything except the tick counter and state is fixed at Build time.
type Schedule struct {
	EmissionKg   float64       `json:"emissionKg"`
	Durations    []Duration    `json:"durations"`
	MaxDays      float64       `json:"maxDays"`
	TickInterval time.Duration `json:"tickInterval"`

	mu      sync.Mutex
	state   State
	claimed bool
	tick    int
	elapsed float64
	percent map[offset.Method]int
}

// DurationDays returns emissionKg / rate, or ErrUndefinedDuration when rate is not positive.
func DurationDays(emissionKg, rate float64) (float64, error) {
	if !(rate > 0) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("%w: offset rate %v kg/day", ErrUndefinedDuration, rate)
	}
	return emissionKg / rate, nil
}

// Build computes per-method durations and pacing for a fresh schedule.
//
// A zero emission yields ErrNothingToCompensate and no schedule. A method with an
// undefined duration is marked unavailable; the others still build.
func Build(emissionKg float64, rates offset.Rates, pacing Pacing) (*Schedule, error) {
	if math.IsNaN(emissionKg) || math.IsInf(emissionKg, 0) || emissionKg < 0 {
		return nil, fmt.Errorf("%w: emission %v kg", ErrInvalidInput, emissionKg)
	}
	if emissionKg == 0 {
		return nil, ErrNothingToCompensate
	}
	if err := pacing.Validate(); err != nil {
		return nil, err
	}

	s := &Schedule{
		EmissionKg: emissionKg,
		state:      StatePending,
		percent:    make(map[offset.Method]int),
	}

	for _, m := range offset.Methods() {
		days, err := DurationDays(emissionKg, rates[m])
		if err != nil {
			s.Durations = append(s.Durations, Duration{Method: m, Reason: err.Error()})
			continue
		}
		s.Durations = append(s.Durations, Duration{Method: m, Days: days, Available: true})
		s.percent[m] = 0
		if days > s.MaxDays {
			s.MaxDays = days
		}
	}

	if len(s.percent) == 0 {
		return nil, ErrNoMethodAvailable
	}

	s.TickInterval = pacing.TickInterval(s.MaxDays)
	return s, nil
}

// Skipped returns the methods excluded from the animation.
func (s *Schedule) Skipped() []Duration {
	var out []Duration
	for _, d := range s.Durations {
		if !d.Available {
			out = append(out, d)
		}
	}
	return out
}

// State returns the current lifecycle state.
func (s *Schedule) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Claim hands the schedule to a single pacing driver and moves it from Pending
// to Running. Only the first claim succeeds; later ones get ErrAlreadyDriven.
func (s *Schedule) Claim() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.claimed {
		return ErrAlreadyDriven
	}
	s.claimed = true
	if s.state == StatePending {
		s.state = StateRunning
	}
	return nil
}

// Claimed reports whether a driver owns the schedule.
func (s *Schedule) Claimed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claimed
}

// Step is Advance for callers that do not own the schedule. It fails with
// ErrAlreadyDriven while a claimed driver is pacing it.
func (s *Schedule) Step() (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.claimed {
		return s.snapshotLocked(), ErrAlreadyDriven
	}
	return s.advanceLocked(), nil
}

// Advance runs one tick of every sequence and returns the resulting progress.
// Once the schedule is completed or cancelled the frozen progress is returned.
func (s *Schedule) Advance() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked()
}

func (s *Schedule) advanceLocked() Progress {
	switch s.state {
	case StateCompleted, StateCancelled:
		return s.snapshotLocked()
	case StatePending:
		s.state = StateRunning
	}

	s.tick++
	t := float64(s.tick)

	for _, d := range s.Durations {
		if !d.Available || s.percent[d.Method] >= 100 {
			continue
		}
		pct := int(math.Round(t / d.Days * 100))
		if pct > 100 || t >= d.Days {
			pct = 100
		}
		s.percent[d.Method] = pct
	}

	s.elapsed = t
	if t >= s.MaxDays {
		s.elapsed = s.MaxDays
		for m := range s.percent {
			s.percent[m] = 100
		}
		s.state = StateCompleted
	}

	return s.snapshotLocked()
}

// Cancel stops all sequences at their current progress.
// It returns false if the schedule had already finished.
func (s *Schedule) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return false
	}
	s.state = StateCancelled
	return true
}

// Snapshot returns the current progress without advancing.
func (s *Schedule) Snapshot() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Schedule) snapshotLocked() Progress {
	percent := make(map[offset.Method]int, len(s.percent))
	for m, v := range s.percent {
		percent[m] = v
	}
	return Progress{
		State:       s.state,
		Tick:        s.tick,
		ElapsedDays: s.elapsed,
		Elapsed:     FormatDays(s.elapsed),
		Percent:     percent,
		Done:        s.state.Terminal(),
	}
}
