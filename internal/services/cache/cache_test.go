package cache

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurix-ai/aurix/internal/config"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func enabledCache() Service {
	return NewCache(&config.CacheConfig{Enabled: true, TTL: time.Minute, MaxSize: 100}, testLogger())
}

func TestCacheSetGet(t *testing.T) {
	c := enabledCache()

	c.Set("capital of France?", "llama3.2", "Paris")

	answer, found := c.Get("capital of France?", "llama3.2")
	require.True(t, found)
	assert.Equal(t, "Paris", answer)
}

func TestCacheMiss(t *testing.T) {
	c := enabledCache()

	_, found := c.Get("never asked", "llama3.2")
	assert.False(t, found)
}

func TestCacheKeyedByModel(t *testing.T) {
	c := enabledCache()

	c.Set("question", "llama3.2", "answer from llama")

	_, found := c.Get("question", "tinyllama")
	assert.False(t, found, "a different model must not see another model's answer")
}

func TestCacheClear(t *testing.T) {
	c := enabledCache()

	c.Set("q", "m", "a")
	c.Clear()

	_, found := c.Get("q", "m")
	assert.False(t, found)
}

func TestCacheDisabledPassthrough(t *testing.T) {
	c := NewCache(&config.CacheConfig{Enabled: false}, testLogger())

	c.Set("q", "m", "a")
	_, found := c.Get("q", "m")
	assert.False(t, found)

	// Clear on a disabled cache must not panic
	c.Clear()
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(&config.CacheConfig{Enabled: true, TTL: 20 * time.Millisecond, MaxSize: 10}, testLogger())

	c.Set("q", "m", "a")
	time.Sleep(40 * time.Millisecond)

	_, found := c.Get("q", "m")
	assert.False(t, found)
}
