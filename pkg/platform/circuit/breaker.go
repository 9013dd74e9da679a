// Package circuit provides the per-node health tracking used by the pool client.
package circuit

import (
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the node is healthy and requests flow normally.
	StateClosed State = iota
	// StateOpen means the node failed repeatedly and is skipped until the
	// cooldown elapses, after which one probe request is let through.
	StateOpen
	// StateBlacklisted is terminal: the node returned a reply that failed
	// verification and is excluded for the breaker's lifetime.
	StateBlacklisted
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateBlacklisted:
		return "blacklisted"
	}
	return "unknown"
}

// StateChange represents a circuit breaker state transition.
type StateChange struct {
	Opened bool
	Closed bool
}

// Breaker tracks consecutive transient failures of one node.
// After FailureThreshold consecutive failures the circuit opens. While open,
// Allow returns false until the cooldown has passed; a success in that probe
// window closes the circuit again.
type Breaker struct {
	mu               sync.Mutex
	state            State
	name             string
	failureCount     int
	failureThreshold int
	cooldown         time.Duration
	openedAt         time.Time
	now              func() time.Time
}

// Option configures a Breaker instance.
type Option func(*Breaker)

// WithFailureThreshold sets the number of consecutive failures to open the circuit.
// Default is 3.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithCooldown sets how long an open circuit rejects requests. Default is 30s.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// New creates a circuit breaker with the given name and options.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		state:            StateClosed,
		failureThreshold: 3,
		cooldown:         30 * time.Second,
		now:              time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Name returns the node alias the breaker guards.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current circuit state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether a request may be sent to the node now.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		return b.now().Sub(b.openedAt) >= b.cooldown
	default:
		return false
	}
}

// RecordFailure records a transient failure (network error, timeout).
func (b *Breaker) RecordFailure() StateChange {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateBlacklisted {
		return StateChange{}
	}
	b.failureCount++
	if b.state == StateOpen {
		b.openedAt = b.now()
		return StateChange{}
	}
	if b.failureCount >= b.failureThreshold {
		b.state = StateOpen
		b.openedAt = b.now()
		return StateChange{Opened: true}
	}
	return StateChange{}
}

// RecordSuccess records a successful exchange with the node.
func (b *Breaker) RecordSuccess() StateChange {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		b.state = StateClosed
		b.failureCount = 0
		return StateChange{Closed: true}
	case StateClosed:
		b.failureCount = 0
	}
	return StateChange{}
}

// Blacklist excludes the node permanently. It reports whether this call
// performed the transition.
func (b *Breaker) Blacklist() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateBlacklisted {
		return false
	}
	b.state = StateBlacklisted
	return true
}
