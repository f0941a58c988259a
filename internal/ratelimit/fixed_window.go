package ratelimit

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// counter tracks admissions for one client key within the current window.
// The count never decreases until the window resets.
type counter struct {
	count       int
	windowStart time.Time
}

// Decision is the outcome of an admission check. A rejected request
// carries the time remaining until the window resets.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// FixedWindow is a per-key fixed-window request limiter. Each running
// instance enforces its own limit; state is process-local.
type FixedWindow struct {
	mu          sync.Mutex
	counters    map[string]*counter
	maxRequests int
	window      time.Duration
	logger      *zap.Logger
	stopCh      chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
}

// NewFixedWindow creates a limiter admitting maxRequests per key per
// window and starts a sweep that drops long-idle counters.
func NewFixedWindow(maxRequests int, window time.Duration, logger *zap.Logger) *FixedWindow {
	fw := &FixedWindow{
		counters:    make(map[string]*counter),
		maxRequests: maxRequests,
		window:      window,
		logger:      logger,
		stopCh:      make(chan struct{}),
		now:         time.Now,
	}

	go fw.sweep()

	return fw
}

// Admit checks and counts one request for the given client key. The
// counter mutation is atomic per key: concurrent admissions neither
// double-count below the threshold nor race past it.
func (fw *FixedWindow) Admit(key string) Decision {
	now := fw.now()

	fw.mu.Lock()
	defer fw.mu.Unlock()

	c, ok := fw.counters[key]
	if !ok || now.Sub(c.windowStart) >= fw.window {
		fw.counters[key] = &counter{count: 1, windowStart: now}
		return Decision{Allowed: true}
	}

	c.count++
	if c.count > fw.maxRequests {
		retryAfter := fw.window - now.Sub(c.windowStart)
		fw.logger.Warn("Rate limit exceeded",
			zap.String("client", key),
			zap.Int("count", c.count),
			zap.Duration("retry_after", retryAfter))
		return Decision{Allowed: false, RetryAfter: retryAfter}
	}

	return Decision{Allowed: true}
}

// sweep drops counters whose window ended several windows ago so clients
// that stop sending do not pin memory.
func (fw *FixedWindow) sweep() {
	ticker := time.NewTicker(fw.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fw.mu.Lock()
			cutoff := fw.now().Add(-3 * fw.window)
			for key, c := range fw.counters {
				if c.windowStart.Before(cutoff) {
					delete(fw.counters, key)
				}
			}
			fw.mu.Unlock()
		case <-fw.stopCh:
			return
		}
	}
}

// Stop halts the background sweep.
func (fw *FixedWindow) Stop() {
	fw.stopOnce.Do(func() {
		close(fw.stopCh)
	})
}
