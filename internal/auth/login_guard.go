package auth

import (
	"strings"
	"sync"
	"time"
)

// GuardConfig tunes the login throttle.
type GuardConfig struct {
	LockoutThreshold int
	LockoutDuration  time.Duration
	FailureWindow    time.Duration
	Clock            func() time.Time
}

type guardState struct {
	attempts      int
	lastFailureAt time.Time
	lockedUntil   time.Time
}

// LoginGuard throttles repeated failed sign-in attempts per email address.
// Failures inside the window accumulate; crossing the threshold locks the
// account out for the lockout duration. A successful login resets the state.
type LoginGuard struct {
	mu     sync.Mutex
	states map[string]*guardState

	threshold int
	lockout   time.Duration
	window    time.Duration
	now       func() time.Time
}

// NewLoginGuard builds a LoginGuard with the provided configuration.
func NewLoginGuard(cfg GuardConfig) *LoginGuard {
	threshold := cfg.LockoutThreshold
	if threshold <= 0 {
		threshold = 5
	}
	lockout := cfg.LockoutDuration
	if lockout <= 0 {
		lockout = 5 * time.Minute
	}
	window := cfg.FailureWindow
	if window <= 0 {
		window = 10 * time.Minute
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &LoginGuard{
		states:    make(map[string]*guardState),
		threshold: threshold,
		lockout:   lockout,
		window:    window,
		now:       now,
	}
}

// Locked reports whether the email is currently locked out and, if so, for how long.
func (g *LoginGuard) Locked(email string) (bool, time.Duration) {
	key := normaliseEmail(email)

	g.mu.Lock()
	defer g.mu.Unlock()

	state, ok := g.states[key]
	if !ok {
		return false, 0
	}

	now := g.now()
	if state.lockedUntil.After(now) {
		return true, state.lockedUntil.Sub(now)
	}
	return false, 0
}

// RecordFailure registers a failed attempt and returns true when the account
// just transitioned into the locked state.
func (g *LoginGuard) RecordFailure(email string) bool {
	key := normaliseEmail(email)
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	state, ok := g.states[key]
	if !ok {
		state = &guardState{}
		g.states[key] = state
	}

	// Failures outside the window start a fresh streak.
	if now.Sub(state.lastFailureAt) > g.window {
		state.attempts = 0
	}

	state.attempts++
	state.lastFailureAt = now

	if state.attempts >= g.threshold {
		state.lockedUntil = now.Add(g.lockout)
		return true
	}
	return false
}

// RecordSuccess clears any accumulated failure state for the email.
func (g *LoginGuard) RecordSuccess(email string) {
	key := normaliseEmail(email)

	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.states, key)
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
