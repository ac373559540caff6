package ratelimit

import (
	"context"
	"sync"
	"time"
)

// ring holds the last limit request times for one key, oldest at next once
// the buffer is full.
type ring struct {
	stamps []time.Time
	next   int
	count  int
}

func (r *ring) newest() time.Time {
	return r.stamps[(r.next-1+len(r.stamps))%len(r.stamps)]
}

func (r *ring) push(t time.Time) {
	r.stamps[r.next] = t
	r.next = (r.next + 1) % len(r.stamps)
	if r.count < len(r.stamps) {
		r.count++
	}
}

func (r *ring) active(now time.Time, window time.Duration) int {
	n := 0
	for i := 0; i < r.count; i++ {
		if now.Sub(r.stamps[i]) < window {
			n++
		}
	}
	return n
}

type MemoryLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	keys map[string]*ring
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	if limit < 1 {
		limit = 1
	}
	return &MemoryLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		keys:   make(map[string]*ring),
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.keys[key]
	if !ok {
		r = &ring{stamps: make([]time.Time, m.limit)}
		m.keys[key] = r
	}

	if r.count == m.limit {
		oldest := r.stamps[r.next]
		if now.Sub(oldest) < m.window {
			return Decision{
				Allowed:    false,
				Limit:      m.limit,
				Remaining:  0,
				RetryAfter: oldest.Add(m.window).Sub(now),
			}, nil
		}
	}

	r.push(now)
	return Decision{
		Allowed:   true,
		Limit:     m.limit,
		Remaining: m.limit - r.active(now, m.window),
	}, nil
}

// Sweep drops keys with no request inside the window and returns how many
// were removed.
func (m *MemoryLimiter) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, r := range m.keys {
		if r.count == 0 || now.Sub(r.newest()) >= m.window {
			delete(m.keys, key)
			removed++
		}
	}
	return removed
}
