package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps per-key attempt timestamps in process memory.
type MemoryLimiter struct {
	mu      sync.Mutex
	history map[string][]time.Time
	cfg     Config
	now     func() time.Time
}

func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{
		history: make(map[string][]time.Time),
		cfg:     cfg,
		now:     time.Now,
	}
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.cfg.Interval)

	attempts := rl.history[key]
	fresh := attempts[:0]
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.cfg.Limit {
		rl.history[key] = fresh
		return false, nil
	}
	rl.history[key] = append(fresh, now)
	return true, nil
}

// Sweep forgets keys with no attempts inside the window.
func (rl *MemoryLimiter) Sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	windowStart := rl.now().Add(-rl.cfg.Interval)
	for key, attempts := range rl.history {
		if len(attempts) == 0 || !attempts[len(attempts)-1].After(windowStart) {
			delete(rl.history, key)
		}
	}
}

// RunSweeper calls Sweep every interval until ctx is done.
func (rl *MemoryLimiter) RunSweeper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Sweep()
		}
	}
}
