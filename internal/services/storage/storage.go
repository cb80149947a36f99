package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aurix-ai/aurix/internal/config"
	"github.com/aurix-ai/aurix/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Store persists the reminder list. Implementations rewrite the whole list
// on every save; Load drops entries whose fire time has already passed.
type Store interface {
	Load(ctx context.Context) ([]models.Reminder, error)
	Save(ctx context.Context, reminders []models.Reminder) error
}

// NewStore creates a reminder store for the configured backend
func NewStore(cfg *config.StorageConfig, logger *logrus.Logger) (Store, error) {
	switch cfg.Type {
	case "", "file":
		return NewFileStore(cfg.File.Path, logger), nil
	case "redis":
		return NewRedisStore(cfg, logger)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// persistedReminder matches the on-disk pair format: [message, timestamp]
type persistedReminder [2]string

func encodeReminders(reminders []models.Reminder) ([]byte, error) {
	pairs := make([]persistedReminder, 0, len(reminders))
	for _, r := range reminders {
		pairs = append(pairs, persistedReminder{r.Message, r.FireAt.Format(models.ReminderTimeLayout)})
	}
	return json.Marshal(pairs)
}

func decodeReminders(data []byte, logger *logrus.Logger) ([]models.Reminder, error) {
	var pairs []persistedReminder
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("failed to decode reminders: %w", err)
	}

	now := time.Now()
	reminders := make([]models.Reminder, 0, len(pairs))
	for _, p := range pairs {
		fireAt, err := time.ParseInLocation(models.ReminderTimeLayout, p[1], time.Local)
		if err != nil {
			logger.WithField("timestamp", p[1]).Warn("Skipping reminder with bad timestamp")
			continue
		}
		// Expired entries are dropped silently on load
		if fireAt.After(now) {
			reminders = append(reminders, models.Reminder{Message: p[0], FireAt: fireAt})
		}
	}
	return reminders, nil
}

// FileStore persists reminders as a JSON file
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *logrus.Logger
}

// NewFileStore creates a file-backed reminder store
func NewFileStore(path string, logger *logrus.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) Load(ctx context.Context) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read reminders file: %w", err)
	}

	reminders, err := decodeReminders(data, s.logger)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"count": len(reminders),
		"path":  s.path,
	}).Debug("Loaded reminders")
	return reminders, nil
}

func (s *FileStore) Save(ctx context.Context, reminders []models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := encodeReminders(reminders)
	if err != nil {
		return fmt.Errorf("failed to encode reminders: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write reminders file: %w", err)
	}

	s.logger.WithField("count", len(reminders)).Debug("Saved reminders")
	return nil
}

// RedisStore persists reminders under a single Redis key
type RedisStore struct {
	client *redis.Client
	key    string
	logger *logrus.Logger
}

// NewRedisStore creates a Redis-backed reminder store
func NewRedisStore(cfg *config.StorageConfig, logger *logrus.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{
		client: client,
		key:    cfg.Redis.Key,
		logger: logger,
	}, nil
}

func (s *RedisStore) Load(ctx context.Context) ([]models.Reminder, error) {
	data, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return decodeReminders([]byte(data), s.logger)
}

func (s *RedisStore) Save(ctx context.Context, reminders []models.Reminder) error {
	data, err := encodeReminders(reminders)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, s.key, data, 0).Err()
}

// MemoryStore keeps reminders in memory only; used in tests and when no
// durable backend is configured.
type MemoryStore struct {
	mu        sync.Mutex
	reminders []models.Reminder
}

// NewMemoryStore creates an in-memory reminder store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	out := make([]models.Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		if r.FireAt.After(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, reminders []models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reminders = append([]models.Reminder(nil), reminders...)
	return nil
}
