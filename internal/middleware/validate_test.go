package middleware

import (
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/aurix-ai/aurix/internal/config"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestValidateAcceptsNormalInput(t *testing.T) {
	v := NewInputValidator(testLogger())

	assert.True(t, v.Validate("hello"))
	assert.True(t, v.Validate("  padded but fine  "))
	assert.True(t, v.Validate(strings.Repeat("x", MaxInputLength)))
}

func TestValidateRejectsEmptyInput(t *testing.T) {
	v := NewInputValidator(testLogger())

	assert.False(t, v.Validate(""))
	assert.False(t, v.Validate("   "))
	assert.False(t, v.Validate("\t\n"))
}

func TestValidateRejectsOversizedInput(t *testing.T) {
	v := NewInputValidator(testLogger())

	assert.False(t, v.Validate(strings.Repeat("x", MaxInputLength+1)))
}

func TestRateLimiterDisabledAlwaysAllows(t *testing.T) {
	cfg := &config.Config{}
	limiter := NewRateLimiter(cfg, testLogger())

	for i := 0; i < 100; i++ {
		assert.True(t, limiter.Allow())
	}
}

func TestRateLimiterBurstThenThrottle(t *testing.T) {
	cfg := &config.Config{
		RateLimit: config.RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 60,
			Burst:             3,
		},
	}
	limiter := NewRateLimiter(cfg, testLogger())

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow(), "request %d within burst", i)
	}
	assert.False(t, limiter.Allow(), "burst exhausted")
}
