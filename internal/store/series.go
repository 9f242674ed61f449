package store

import (
	"sort"
	"sync"
	"time"
)

// Series is a concurrency-safe set of time-ordered histories, one per key,
// bounded by length and age.
type Series[T any] struct {
	mu sync.RWMutex

	data  map[string][]T
	stamp func(T) time.Time

	maxLen int           // <= 0 means unlimited
	maxAge time.Duration // <= 0 means unlimited
	now    func() time.Time
}

// NewSeries creates a Series that orders entries by stamp.
func NewSeries[T any](maxLen int, maxAge time.Duration, stamp func(T) time.Time) *Series[T] {
	return &Series[T]{
		data:   make(map[string][]T),
		stamp:  stamp,
		maxLen: maxLen,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Append inserts v into the key's history and enforces retention.
// Entries arriving out of order are placed by their timestamp.
func (s *Series[T]) Append(key string, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hist := s.data[key]
	ts := s.stamp(v)
	i := sort.Search(len(hist), func(i int) bool { return s.stamp(hist[i]).After(ts) })
	hist = append(hist, v)
	copy(hist[i+1:], hist[i:])
	hist[i] = v

	s.data[key] = s.trim(hist)
}

func (s *Series[T]) trim(hist []T) []T {
	if s.maxLen > 0 && len(hist) > s.maxLen {
		hist = hist[len(hist)-s.maxLen:]
	}
	// The newest entry survives age retention.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(hist)-1; i++ {
			if !s.stamp(hist[i]).Before(cutoff) {
				break
			}
		}
		hist = hist[i:]
	}
	return hist
}

// Latest returns the newest entry for key.
func (s *Series[T]) Latest(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hist := s.data[key]
	if len(hist) == 0 {
		var zero T
		return zero, false
	}
	return hist[len(hist)-1], true
}

// Range returns the entries for key stamped between from and to (inclusive),
// oldest first.
func (s *Series[T]) Range(key string, from, to time.Time) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []T
	for _, v := range s.data[key] {
		ts := s.stamp(v)
		if !ts.Before(from) && !ts.After(to) {
			out = append(out, v)
		}
	}
	return out
}

// Len returns the number of entries kept for key.
func (s *Series[T]) Len(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[key])
}
