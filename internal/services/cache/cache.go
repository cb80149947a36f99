package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/aurix-ai/aurix/internal/config"
	"github.com/aurix-ai/aurix/internal/models"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// Service defines answer cache operations
type Service interface {
	Get(question, model string) (string, bool)
	Set(question, model, answer string)
	Clear()
}

// Cache stores model answers keyed by question and model. Automation
// responses are never cached; only generated answers pass through here.
type Cache struct {
	enabled bool
	cache   *cache.Cache
	logger  *logrus.Logger
	maxSize int
}

// NewCache creates a new answer cache
func NewCache(cfg *config.CacheConfig, logger *logrus.Logger) Service {
	if !cfg.Enabled {
		return &Cache{enabled: false}
	}

	return &Cache{
		enabled: true,
		cache:   cache.New(cfg.TTL, cfg.TTL*2),
		logger:  logger,
		maxSize: cfg.MaxSize,
	}
}

// Get retrieves a cached answer
func (c *Cache) Get(question, model string) (string, bool) {
	if !c.enabled {
		return "", false
	}

	key := c.generateKey(question, model)
	if val, found := c.cache.Get(key); found {
		entry := val.(*models.CacheEntry)
		c.logger.WithFields(logrus.Fields{
			"model": model,
			"age":   time.Since(entry.CreatedAt),
		}).Debug("Answer cache hit")
		return entry.Answer, true
	}

	return "", false
}

// Set stores an answer in the cache
func (c *Cache) Set(question, model, answer string) {
	if !c.enabled {
		return
	}

	if c.cache.ItemCount() >= c.maxSize {
		c.logger.Warn("Answer cache size limit reached, clearing expired entries")
		c.cache.DeleteExpired()
	}

	key := c.generateKey(question, model)
	c.cache.SetDefault(key, &models.CacheEntry{
		Question:  question,
		Answer:    answer,
		Model:     model,
		CreatedAt: time.Now(),
	})
}

// Clear removes all cached answers
func (c *Cache) Clear() {
	if !c.enabled {
		return
	}

	c.cache.Flush()
	c.logger.Info("Answer cache cleared")
}

func (c *Cache) generateKey(question, model string) string {
	data := fmt.Sprintf("%s:%s", model, question)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
