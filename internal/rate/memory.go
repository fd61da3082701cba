package rate

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter: la misma ventana fija que RedisLimiter pero in-process.
// Solo sirve para deploys de una instancia; con varias réplicas el límite
// efectivo se multiplica.
type MemoryLimiter struct {
	Max    int64
	Window time.Duration

	mu      sync.Mutex
	windows map[string]*memWindow
	lastGC  time.Time
}

type memWindow struct {
	start time.Time
	hits  int64
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		Max:     int64(max),
		Window:  window,
		windows: make(map[string]*memWindow),
		lastGC:  time.Now(),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !w.start.Equal(winStart) {
		w = &memWindow{start: winStart}
		l.windows[key] = w
	}
	w.hits++

	// GC oportunista de ventanas viejas, a lo sumo una vez por ventana.
	if now.Sub(l.lastGC) > l.Window {
		for k, win := range l.windows {
			if now.Sub(win.start) > 2*l.Window {
				delete(l.windows, k)
			}
		}
		l.lastGC = now
	}

	windowEnd := winStart.Add(l.Window)
	ttl := windowEnd.Sub(now)

	allowed := w.hits <= l.Max
	remaining := l.Max - w.hits
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:     allowed,
		Remaining:   remaining,
		CurrentHits: w.hits,
		WindowTTL:   ttl,
	}
	if !allowed {
		res.RetryAfter = ttl
	}
	return res, nil
}
