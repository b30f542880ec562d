// Package resilience guards calls to external model providers.
//
// [Breaker] is a three-state circuit breaker (closed, open, half-open). The
// synthesis engine routes every model round trip through one so that a
// provider outage fails requests fast instead of stacking slow timeouts; the
// HTTP layer then reports the service unavailable while the breaker probes
// for recovery.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned without invoking the call when the breaker is open.
var ErrOpen = errors.New("resilience: circuit open")

// Config tunes a [Breaker]. Zero fields take the documented defaults.
type Config struct {
	// Name labels the breaker in log output.
	Name string

	// Threshold is how many consecutive failures open the breaker.
	// Default 5.
	Threshold int

	// Cooldown is how long the breaker stays open before probing.
	// Default 30s.
	Cooldown time.Duration

	// Probes is how many consecutive probe calls must succeed while
	// half-open before the breaker closes again. A single probe failure
	// re-opens it. Default 3.
	Probes int
}

// Breaker is safe for concurrent use.
type Breaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	probes    int

	mu           sync.Mutex
	open         bool
	failures     int
	openedAt     time.Time
	probeSuccess int
}

// NewBreaker creates a closed [Breaker] from cfg.
func NewBreaker(cfg Config) *Breaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.Probes <= 0 {
		cfg.Probes = 3
	}
	return &Breaker{
		name:      cfg.Name,
		threshold: cfg.Threshold,
		cooldown:  cfg.Cooldown,
		probes:    cfg.Probes,
	}
}

// Execute runs fn unless the breaker is open and still cooling down, in
// which case it returns [ErrOpen] immediately. While half-open, calls run as
// probes: enough consecutive successes close the breaker, any failure
// re-opens it for a full cooldown.
func (b *Breaker) Execute(fn func() error) error {
	b.mu.Lock()
	if b.open && time.Since(b.openedAt) < b.cooldown {
		b.mu.Unlock()
		return ErrOpen
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.onFailure()
	} else {
		b.onSuccess()
	}
	return err
}

// onFailure must be called with b.mu held.
func (b *Breaker) onFailure() {
	b.probeSuccess = 0
	if b.open {
		// A failed probe restarts the cooldown.
		b.openedAt = time.Now()
		slog.Warn("circuit re-opened by failed probe", "name", b.name)
		return
	}
	b.failures++
	if b.failures >= b.threshold {
		b.open = true
		b.openedAt = time.Now()
		slog.Warn("circuit opened", "name", b.name, "consecutive_failures", b.failures)
	}
}

// onSuccess must be called with b.mu held.
func (b *Breaker) onSuccess() {
	if !b.open {
		b.failures = 0
		return
	}
	b.probeSuccess++
	if b.probeSuccess >= b.probes {
		b.open = false
		b.failures = 0
		b.probeSuccess = 0
		slog.Info("circuit closed after successful probes", "name", b.name)
	}
}

// Open reports whether the breaker is currently rejecting calls.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open && time.Since(b.openedAt) < b.cooldown
}
