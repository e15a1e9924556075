package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoginGuardLocksAfterThreshold(t *testing.T) {
	current := time.Now()
	guard := NewLoginGuard(GuardConfig{
		LockoutThreshold: 3,
		LockoutDuration:  5 * time.Minute,
		FailureWindow:    10 * time.Minute,
		Clock:            func() time.Time { return current },
	})

	require.False(t, guard.RecordFailure("alice@example.com"))
	require.False(t, guard.RecordFailure("alice@example.com"))
	require.True(t, guard.RecordFailure("alice@example.com"))

	locked, remaining := guard.Locked("Alice@Example.com")
	require.True(t, locked)
	require.Greater(t, remaining, time.Duration(0))
}

func TestLoginGuardUnlocksAfterDuration(t *testing.T) {
	current := time.Now()
	guard := NewLoginGuard(GuardConfig{
		LockoutThreshold: 2,
		LockoutDuration:  time.Minute,
		Clock:            func() time.Time { return current },
	})

	guard.RecordFailure("bob@example.com")
	guard.RecordFailure("bob@example.com")

	locked, _ := guard.Locked("bob@example.com")
	require.True(t, locked)

	current = current.Add(2 * time.Minute)
	locked, _ = guard.Locked("bob@example.com")
	require.False(t, locked)
}

func TestLoginGuardWindowResetsStreak(t *testing.T) {
	current := time.Now()
	guard := NewLoginGuard(GuardConfig{
		LockoutThreshold: 3,
		FailureWindow:    time.Minute,
		Clock:            func() time.Time { return current },
	})

	guard.RecordFailure("carol@example.com")
	guard.RecordFailure("carol@example.com")

	// Old failures fall outside the window; the streak restarts.
	current = current.Add(5 * time.Minute)
	require.False(t, guard.RecordFailure("carol@example.com"))
	require.False(t, guard.RecordFailure("carol@example.com"))
	require.True(t, guard.RecordFailure("carol@example.com"))
}

func TestLoginGuardSuccessClearsState(t *testing.T) {
	guard := NewLoginGuard(GuardConfig{LockoutThreshold: 2})

	guard.RecordFailure("dan@example.com")
	guard.RecordSuccess("dan@example.com")
	require.False(t, guard.RecordFailure("dan@example.com"))
}
