package app

import (
	"time"

	"github.com/sitedesk/sitedesk/internal/auth"
)

const (
	defaultLockoutThreshold = 5
	defaultLockoutDuration  = 5 * time.Minute
	defaultFailureWindow    = 10 * time.Minute
)

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}

	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: ttl,
	}
}

// LoginGuardConfig converts AuthConfig into login throttle parameters.
func (c AuthConfig) LoginGuardConfig() auth.GuardConfig {
	threshold := c.Local.LockoutThreshold
	if threshold <= 0 {
		threshold = defaultLockoutThreshold
	}

	duration := c.Local.LockoutDuration
	if duration <= 0 {
		duration = defaultLockoutDuration
	}

	window := c.Local.FailureWindow
	if window <= 0 {
		window = defaultFailureWindow
	}

	return auth.GuardConfig{
		LockoutThreshold: threshold,
		LockoutDuration:  duration,
		FailureWindow:    window,
	}
}
