package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Assistant  AssistantConfig  `mapstructure:"assistant"`
	Models     ModelsConfig     `mapstructure:"models"`
	Automation AutomationConfig `mapstructure:"automation"`
	Reminders  RemindersConfig  `mapstructure:"reminders"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	I18n       I18nConfig       `mapstructure:"i18n"`
}

type AssistantConfig struct {
	Name         string `mapstructure:"name"`
	SystemPrompt string `mapstructure:"system_prompt"`
}

// ModelsConfig holds the primary model and an optional fallback.
type ModelsConfig struct {
	Primary  ModelConfig  `mapstructure:"primary"`
	Fallback *ModelConfig `mapstructure:"fallback"`
}

// ModelConfig is the full configuration of one inference backend slot.
// It is immutable once the client owning it has been constructed.
type ModelConfig struct {
	BaseURL            string        `mapstructure:"base_url"`
	Model              string        `mapstructure:"model"`
	Style              string        `mapstructure:"style"` // "chat" or "completion"
	ContextLength      int           `mapstructure:"context_length"`
	MaxTokens          int           `mapstructure:"max_tokens"`
	Temperature        float64       `mapstructure:"temperature"`
	RetryAttempts      int           `mapstructure:"retry_attempts"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	HistoryLimit       int           `mapstructure:"history_limit"`
	MemoryOptimization bool          `mapstructure:"memory_optimization"`
}

type AutomationConfig struct {
	AppAliases     map[string]string `mapstructure:"app_aliases"`
	DefaultBrowser string            `mapstructure:"default_browser"`
	WebTimeout     time.Duration     `mapstructure:"web_timeout"`
	SearchResults  int               `mapstructure:"search_results"`
}

type RemindersConfig struct {
	Storage       StorageConfig `mapstructure:"storage"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
}

type StorageConfig struct {
	Type  string      `mapstructure:"type"` // "file", "redis" or "memory"
	File  FileStore   `mapstructure:"file"`
	Redis RedisConfig `mapstructure:"redis"`
}

type FileStore struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
	MaxSize int           `mapstructure:"max_size"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level  string     `mapstructure:"level"`
	Format string     `mapstructure:"format"`
	Output string     `mapstructure:"output"`
	File   FileConfig `mapstructure:"file"`
}

type FileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

type MonitoringConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

type I18nConfig struct {
	DefaultLanguage string   `mapstructure:"default_language"`
	Directory       string   `mapstructure:"directory"`
	Languages       []string `mapstructure:"languages"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	viper.BindEnv("models.primary.base_url", "OLLAMA_BASE_URL")
	viper.BindEnv("models.primary.model", "OLLAMA_MODEL")
	viper.BindEnv("reminders.storage.redis.addr", "REDIS_ADDR")
	viper.BindEnv("reminders.storage.redis.password", "REDIS_PASSWORD")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	applyModelDefaults(&config.Models.Primary)
	if config.Models.Fallback != nil {
		applyModelDefaults(config.Models.Fallback)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("assistant.name", "Aurix")
	viper.SetDefault("assistant.system_prompt", "You are a helpful AI desktop assistant.")
	viper.SetDefault("automation.default_browser", "chrome")
	viper.SetDefault("automation.web_timeout", 10*time.Second)
	viper.SetDefault("automation.search_results", 5)
	viper.SetDefault("reminders.storage.type", "file")
	viper.SetDefault("reminders.storage.file.path", "data/reminders.json")
	viper.SetDefault("reminders.storage.redis.key", "aurix:reminders")
	viper.SetDefault("reminders.check_interval", time.Second)
	viper.SetDefault("cache.ttl", 10*time.Minute)
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.output", "stdout")
	viper.SetDefault("monitoring.metrics.path", "/metrics")
	viper.SetDefault("i18n.default_language", "en")
	viper.SetDefault("i18n.directory", "configs/i18n")
	viper.SetDefault("i18n.languages", []string{"en"})
}

func applyModelDefaults(m *ModelConfig) {
	if m.Style == "" {
		m.Style = "chat"
	}
	if m.ContextLength == 0 {
		m.ContextLength = 4096
	}
	if m.MaxTokens == 0 {
		m.MaxTokens = 512
	}
	if m.Temperature == 0 {
		m.Temperature = 0.7
	}
	if m.RetryAttempts == 0 {
		m.RetryAttempts = 3
	}
	if m.RequestTimeout == 0 {
		m.RequestTimeout = 45 * time.Second
	}
	if m.HistoryLimit == 0 {
		m.HistoryLimit = 10
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Models.Primary.BaseURL == "" {
		return fmt.Errorf("primary model base_url is required")
	}
	if cfg.Models.Primary.Model == "" {
		return fmt.Errorf("primary model name is required")
	}
	if s := cfg.Models.Primary.Style; s != "" && s != "chat" && s != "completion" {
		return fmt.Errorf("unsupported payload style: %s", s)
	}
	if cfg.Models.Fallback != nil {
		if cfg.Models.Fallback.BaseURL == "" || cfg.Models.Fallback.Model == "" {
			return fmt.Errorf("fallback model requires base_url and model")
		}
	}
	switch cfg.Reminders.Storage.Type {
	case "", "file", "redis", "memory":
	default:
		return fmt.Errorf("unsupported reminder storage type: %s", cfg.Reminders.Storage.Type)
	}
	return nil
}
