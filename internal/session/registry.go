package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/co2-offset-dashboard/internal/compensation"
)

// ErrNotFound is returned for unknown or already discarded sessions.
var ErrNotFound = errors.New("simulation session not found")

// Session binds a schedule to the product it was started for.
type Session struct {
	ID        string                 `json:"id"`
	ProductID int64                  `json:"productId"`
	CreatedAt time.Time              `json:"createdAt"`
	Schedule  *compensation.Schedule `json:"schedule"`
}

// Registry is a concurrency-safe in-memory set of running simulations.
// Sessions are never resumed across runs; a new start always creates a new one.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create registers the schedule and returns its new session.
func (r *Registry) Create(productID int64, schedule *compensation.Schedule) *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		ProductID: productID,
		CreatedAt: r.now().UTC(),
		Schedule:  schedule,
	}

	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()
	return sess
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Cancel stops the session's schedule. The session stays readable with its
// frozen progress until the next Purge.
func (r *Registry) Cancel(id string) (compensation.Progress, error) {
	sess, err := r.Get(id)
	if err != nil {
		return compensation.Progress{}, err
	}
	sess.Schedule.Cancel()
	return sess.Schedule.Snapshot(), nil
}

// Remove discards a session without touching its schedule.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Purge drops finished sessions and sessions older than maxAge (0 = no age limit).
// Stale running schedules are cancelled. It returns the number of sessions removed.
func (r *Registry) Purge(maxAge time.Duration) int {
	cutoff := r.now().UTC().Add(-maxAge)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, sess := range r.sessions {
		stale := maxAge > 0 && sess.CreatedAt.Before(cutoff)
		if !stale && !sess.Schedule.State().Terminal() {
			continue
		}
		sess.Schedule.Cancel()
		delete(r.sessions, id)
		removed++
	}
	return removed
}
