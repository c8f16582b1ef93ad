package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/bluecarbon/registry-api/application/port/inbound"
)

type window struct {
	count int
	start time.Time
}

// memoryService keeps fixed windows in a mutex-guarded map. Counters live
// for the process uptime only; it is the single-replica stand-in for the
// Redis backend.
type memoryService struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewMemoryService returns an in-process limiter.
func NewMemoryService() inbound.RateLimitService {
	return &memoryService{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// NewMemoryServiceWithClock is used by tests to control time.
func NewMemoryServiceWithClock(now func() time.Time) inbound.RateLimitService {
	return &memoryService{
		windows: make(map[string]*window),
		now:     now,
	}
}

func (s *memoryService) Allow(_ context.Context, key string, limit int, windowSize time.Duration) (bool, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || now.Sub(w.start) >= windowSize {
		s.windows[key] = &window{count: 1, start: now}
		return true, 0, nil
	}

	w.count++
	if w.count <= limit {
		return true, 0, nil
	}

	retryAfter := windowSize - now.Sub(w.start)
	if retryAfter < time.Second {
		retryAfter = time.Second
	}
	return false, retryAfter, nil
}
