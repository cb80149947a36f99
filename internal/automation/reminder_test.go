package automation

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurix-ai/aurix/internal/models"
	"github.com/aurix-ai/aurix/internal/services/storage"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestScheduler(t *testing.T, store storage.Store, callback ReminderCallback) *ReminderScheduler {
	t.Helper()
	s, err := NewReminderScheduler(store, callback, time.Second, testLogger())
	require.NoError(t, err)
	return s
}

func TestSchedulerAddAndList(t *testing.T) {
	s := newTestScheduler(t, storage.NewMemoryStore(), nil)

	when := time.Now().Add(time.Hour).Truncate(time.Second)
	text, err := s.Add("call mom", when)
	require.NoError(t, err)
	assert.Equal(t, "Reminder set for "+when.Format(models.ReminderTimeLayout)+": call mom", text)

	listing := s.List()
	require.Len(t, listing, 1)
	assert.Equal(t, when.Format(models.ReminderTimeLayout)+": call mom", listing[0])
	assert.Equal(t, 1, s.Count())
}

func TestSchedulerClear(t *testing.T) {
	s := newTestScheduler(t, storage.NewMemoryStore(), nil)

	_, err := s.Add("one", time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = s.Add("two", time.Now().Add(2*time.Hour))
	require.NoError(t, err)

	text, err := s.Clear()
	require.NoError(t, err)
	assert.Equal(t, "Cleared 2 reminders", text)
	assert.Zero(t, s.Count())
	assert.Empty(t, s.List())
}

func TestSchedulerPersistsOnEveryMutation(t *testing.T) {
	store := storage.NewMemoryStore()
	s := newTestScheduler(t, store, nil)
	ctx := context.Background()

	_, err := s.Add("call mom", time.Now().Add(time.Hour))
	require.NoError(t, err)

	persisted, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, persisted, 1, "Add writes through to storage")

	_, err = s.Clear()
	require.NoError(t, err)

	persisted, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, persisted, "Clear writes through to storage")
}

func TestSchedulerLoadsPersistedReminders(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), []models.Reminder{
		{Message: "survivor", FireAt: time.Now().Add(time.Hour)},
	}))

	s := newTestScheduler(t, store, nil)
	assert.Equal(t, 1, s.Count())
}

func TestSchedulerFiresDueReminderExactlyOnce(t *testing.T) {
	var mu sync.Mutex
	var fired []string

	s := newTestScheduler(t, storage.NewMemoryStore(), func(message string) {
		mu.Lock()
		fired = append(fired, message)
		mu.Unlock()
	})

	_, err := s.Add("due now", time.Now().Add(-time.Second))
	require.NoError(t, err)
	_, err = s.Add("not yet", time.Now().Add(time.Hour))
	require.NoError(t, err)

	s.checkDue(time.Now())
	s.checkDue(time.Now())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"due now"}, fired, "due reminders fire once and are removed")
	assert.Equal(t, 1, s.Count())
}

func TestSchedulerStartStop(t *testing.T) {
	var mu sync.Mutex
	var fired []string

	s, err := NewReminderScheduler(storage.NewMemoryStore(), func(message string) {
		mu.Lock()
		fired = append(fired, message)
		mu.Unlock()
	}, 10*time.Millisecond, testLogger())
	require.NoError(t, err)

	_, err = s.Add("soon", time.Now().Add(30*time.Millisecond))
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(fired) == 1
	}, 2*time.Second, 10*time.Millisecond)
	s.Stop()

	assert.Zero(t, s.Count())
}

func TestSchedulerFlush(t *testing.T) {
	store := storage.NewMemoryStore()
	s := newTestScheduler(t, store, nil)

	_, err := s.Add("kept", time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, s.Flush())

	persisted, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, persisted, 1)
}
