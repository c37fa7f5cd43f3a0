package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/you/accountsvc/domain"
)

// Janitor periodically drops expired verification codes and sessions.
// Expiry itself is data-driven at read time; the sweep only reclaims space,
// so it is safe to run concurrently with in-flight requests.
type Janitor struct {
	otpRepo     domain.OTPRepository
	sessionRepo domain.SessionRepository
	interval    time.Duration
}

// NewJanitor creates a cleanup janitor
func NewJanitor(otpRepo domain.OTPRepository, sessionRepo domain.SessionRepository, interval time.Duration) *Janitor {
	return &Janitor{
		otpRepo:     otpRepo,
		sessionRepo: sessionRepo,
		interval:    interval,
	}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep removes all expired codes and sessions once. Failures are logged and
// retried on the next tick.
func (j *Janitor) Sweep(ctx context.Context) {
	if err := j.otpRepo.DeleteExpired(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to sweep expired verification codes")
	}
	if err := j.sessionRepo.DeleteExpired(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to sweep expired sessions")
	}
}
