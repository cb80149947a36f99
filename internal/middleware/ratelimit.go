package middleware

import (
	"github.com/aurix-ai/aurix/internal/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RateLimiter interface for rate limiting
type RateLimiter interface {
	Allow() bool
}

// RequestLimiter throttles the single request path. The assistant is a
// single-user system, so one token bucket covers all input sources (typed
// and voice) feeding the pipeline.
type RequestLimiter struct {
	enabled bool
	limiter *rate.Limiter
	logger  *logrus.Logger
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg *config.Config, logger *logrus.Logger) RateLimiter {
	if !cfg.RateLimit.Enabled {
		return &RequestLimiter{enabled: false}
	}

	rps := float64(cfg.RateLimit.RequestsPerMinute) / 60.0
	return &RequestLimiter{
		enabled: true,
		limiter: rate.NewLimiter(rate.Limit(rps), cfg.RateLimit.Burst),
		logger:  logger,
	}
}

// Allow checks if another request may start now
func (r *RequestLimiter) Allow() bool {
	if !r.enabled {
		return true
	}

	allowed := r.limiter.Allow()
	if !allowed {
		r.logger.Warn("Rate limit exceeded")
	}

	return allowed
}
