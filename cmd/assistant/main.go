package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/aurix-ai/aurix/internal/automation"
	"github.com/aurix-ai/aurix/internal/config"
	"github.com/aurix-ai/aurix/internal/handlers"
	"github.com/aurix-ai/aurix/internal/i18n"
	"github.com/aurix-ai/aurix/internal/middleware"
	"github.com/aurix-ai/aurix/internal/router"
	"github.com/aurix-ai/aurix/internal/services/ai"
	"github.com/aurix-ai/aurix/internal/services/cache"
	"github.com/aurix-ai/aurix/internal/services/storage"
	"github.com/aurix-ai/aurix/pkg/logger"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	envFile := flag.String("env", ".env", "Path to .env file")
	flag.Parse()

	// Load .env file if exists
	if err := godotenv.Load(*envFile); err != nil {
		// It's okay if .env doesn't exist
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithField("name", cfg.Assistant.Name).Info("Starting assistant...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize metrics
	metrics := middleware.NewMetrics()

	// Start metrics server if enabled
	if cfg.Monitoring.Metrics.Enabled {
		go func() {
			log.WithFields(logrus.Fields{
				"port": cfg.Monitoring.Metrics.Port,
				"path": cfg.Monitoring.Metrics.Path,
			}).Info("Starting metrics server")

			if err := middleware.StartMetricsServer(cfg.Monitoring.Metrics.Port, cfg.Monitoring.Metrics.Path); err != nil {
				log.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	// Initialize reminder storage and scheduler
	reminderStore, err := storage.NewStore(&cfg.Reminders.Storage, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize reminder storage")
	}

	scheduler, err := automation.NewReminderScheduler(reminderStore, func(message string) {
		fmt.Printf("\nREMINDER: %s\n> ", message)
		metrics.RecordReminderTriggered()
	}, cfg.Reminders.CheckInterval, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize reminder scheduler")
	}
	scheduler.Start()
	metrics.SetActiveReminders(float64(scheduler.Count()))

	// Initialize automation providers
	providers := router.Providers{
		Apps:      automation.NewAppLauncher(cfg.Automation.AppAliases, log),
		Reminders: scheduler,
		System:    automation.NewSystemControl(log),
		Web:       automation.NewWebClient(cfg.Automation.WebTimeout, cfg.Automation.SearchResults, log),
	}

	intentRouter := router.NewRouter(providers, cfg.Automation.DefaultBrowser, log)

	// Initialize AI clients
	primary, err := ai.NewClient(cfg.Models.Primary, cfg.Assistant.SystemPrompt, intentRouter, metrics, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize primary model client")
	}

	var fallback *ai.Client
	if cfg.Models.Fallback != nil {
		// Automation is resolved by the primary before inference; the
		// fallback client runs inference only
		fallback, err = ai.NewClient(*cfg.Models.Fallback, cfg.Assistant.SystemPrompt, nil, metrics, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize fallback model client")
		}
	}

	selector := ai.NewSelector(primary, fallback, metrics, log)

	if primary.Ping(ctx) {
		logger.WithModel(log, primary.Model(), "primary").Info("Model service reachable")
	} else {
		logger.WithModel(log, primary.Model(), "primary").Warn("Model service unreachable, responses will fail until it comes up")
	}
	if fallback != nil && fallback.Ping(ctx) {
		logger.WithModel(log, fallback.Model(), "fallback").Info("Fallback model service reachable")
	}

	// Initialize cache
	cacheService := cache.NewCache(&cfg.Cache, log)

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(cfg, log)

	// Initialize i18n
	localizer, err := i18n.NewLocalizer(&cfg.I18n)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize i18n")
	}

	validator := middleware.NewInputValidator(log)

	handler := handlers.NewInputHandler(validator, rateLimiter, intentRouter, selector, cacheService, localizer, metrics, log)

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	fmt.Println(localizer.Get(i18n.MsgWelcome, map[string]interface{}{"Name": cfg.Assistant.Name}))

	lines := readLines(os.Stdin)
	saidGoodbye := false

loop:
	for {
		fmt.Print("> ")
		select {
		case <-sigChan:
			fmt.Println()
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			result := handler.Handle(ctx, line)
			fmt.Println(result.Text)
			metrics.SetActiveReminders(float64(scheduler.Count()))
			if result.Exit {
				saidGoodbye = true
				break loop
			}
		}
	}

	log.Info("Shutting down")

	scheduler.Stop()
	if err := scheduler.Flush(); err != nil {
		log.WithError(err).Error("Failed to persist reminders on shutdown")
	}

	cancel()

	if !saidGoodbye {
		fmt.Println(localizer.Get(i18n.MsgFarewell, nil))
	}
	log.Info("Assistant stopped")
}

// readLines pumps stdin into a channel so the main loop can also wait on
// shutdown signals. The channel closes on EOF.
func readLines(r *os.File) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			out <- strings.TrimRight(scanner.Text(), "\r\n")
		}
	}()
	return out
}
