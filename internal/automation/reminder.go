package automation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aurix-ai/aurix/internal/models"
	"github.com/aurix-ai/aurix/internal/services/storage"
	"github.com/sirupsen/logrus"
)

// ReminderCallback receives the message of a fired reminder.
type ReminderCallback func(message string)

// ReminderScheduler owns the reminder list. All mutation goes through its
// mutex; the background checker is the only other goroutine touching the
// list. The full list is persisted on every mutation.
type ReminderScheduler struct {
	mu        sync.Mutex
	reminders []models.Reminder

	store    storage.Store
	callback ReminderCallback
	interval time.Duration
	logger   *logrus.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewReminderScheduler loads persisted reminders (dropping expired entries)
// and returns a scheduler. Call Start to begin the due-check loop.
func NewReminderScheduler(store storage.Store, callback ReminderCallback, interval time.Duration, logger *logrus.Logger) (*ReminderScheduler, error) {
	if interval <= 0 {
		interval = time.Second
	}

	loaded, err := store.Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load reminders: %w", err)
	}

	s := &ReminderScheduler{
		reminders: loaded,
		store:     store,
		callback:  callback,
		interval:  interval,
		logger:    logger,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}

	logger.WithField("count", len(loaded)).Info("Reminder scheduler initialized")
	return s, nil
}

// Start launches the periodic due-check loop
func (s *ReminderScheduler) Start() {
	go s.run()
}

// Stop halts the checker and waits for it to exit
func (s *ReminderScheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *ReminderScheduler) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.checkDue(time.Now())
		}
	}
}

// checkDue fires and removes every reminder whose time has passed
func (s *ReminderScheduler) checkDue(now time.Time) {
	s.mu.Lock()
	var due []models.Reminder
	remaining := s.reminders[:0]
	for _, r := range s.reminders {
		if !r.FireAt.After(now) {
			due = append(due, r)
		} else {
			remaining = append(remaining, r)
		}
	}
	s.reminders = remaining
	if len(due) > 0 {
		s.persistLocked()
	}
	s.mu.Unlock()

	// Callbacks run outside the lock so a slow handler cannot block Add/Clear
	for _, r := range due {
		s.logger.WithField("message", r.Message).Info("Triggered reminder")
		if s.callback != nil {
			s.callback(r.Message)
		}
	}
}

// Add schedules a reminder and persists the list
func (s *ReminderScheduler) Add(message string, when time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reminders = append(s.reminders, models.Reminder{Message: message, FireAt: when})
	s.persistLocked()

	s.logger.WithFields(logrus.Fields{
		"message": message,
		"fire_at": when.Format(models.ReminderTimeLayout),
	}).Info("Added reminder")

	return fmt.Sprintf("Reminder set for %s: %s", when.Format(models.ReminderTimeLayout), message), nil
}

// List returns the active reminders as display strings
func (s *ReminderScheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.reminders))
	for _, r := range s.reminders {
		out = append(out, fmt.Sprintf("%s: %s", r.FireAt.Format(models.ReminderTimeLayout), r.Message))
	}
	return out
}

// Clear removes all reminders and persists the empty list
func (s *ReminderScheduler) Clear() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.reminders)
	s.reminders = nil
	s.persistLocked()

	s.logger.WithField("count", count).Info("Cleared reminders")
	return fmt.Sprintf("Cleared %d reminders", count), nil
}

// Count returns the number of scheduled reminders
func (s *ReminderScheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reminders)
}

// Flush writes the current list to storage; used on shutdown
func (s *ReminderScheduler) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Save(context.Background(), append([]models.Reminder(nil), s.reminders...))
}

func (s *ReminderScheduler) persistLocked() {
	snapshot := append([]models.Reminder(nil), s.reminders...)
	if err := s.store.Save(context.Background(), snapshot); err != nil {
		s.logger.WithError(err).Error("Failed to save reminders")
	}
}
