package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Routing metrics
	inputsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_inputs_received_total",
		Help: "Total number of user inputs received",
	}, []string{"outcome"}) // automation, inference, rejected, rate_limited, exit

	commandsRouted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_commands_routed_total",
		Help: "Total number of automation commands routed",
	}, []string{"category"})

	// Model metrics
	modelRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_model_request_duration_seconds",
		Help:    "Duration of inference requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"model", "status"})

	modelAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_model_attempts_total",
		Help: "Total number of inference attempts, including retries",
	}, []string{"model"})

	fallbacksUsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_model_fallbacks_total",
		Help: "Total number of times the fallback model was consulted",
	}, []string{"reason"})

	// Cache metrics
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assistant_cache_hits_total",
		Help: "Total number of answer cache hits",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assistant_cache_misses_total",
		Help: "Total number of answer cache misses",
	})

	// Reminder metrics
	activeReminders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "assistant_active_reminders",
		Help: "Number of reminders currently scheduled",
	})

	remindersTriggered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assistant_reminders_triggered_total",
		Help: "Total number of reminders fired",
	})
)

// Metrics provides methods to record metrics
type Metrics struct{}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordInput records the outcome class of a user input
func (m *Metrics) RecordInput(outcome string) {
	inputsReceived.WithLabelValues(outcome).Inc()
}

// RecordCommandRouted records a routed automation command
func (m *Metrics) RecordCommandRouted(category string) {
	commandsRouted.WithLabelValues(category).Inc()
}

// RecordModelRequest records a completed inference request
func (m *Metrics) RecordModelRequest(model, status string, duration time.Duration) {
	modelRequestDuration.WithLabelValues(model, status).Observe(duration.Seconds())
}

// RecordModelAttempt records one inference attempt
func (m *Metrics) RecordModelAttempt(model string) {
	modelAttempts.WithLabelValues(model).Inc()
}

// RecordFallback records a fallback to the secondary model
func (m *Metrics) RecordFallback(reason string) {
	fallbacksUsed.WithLabelValues(reason).Inc()
}

// RecordCacheHit records an answer cache hit
func (m *Metrics) RecordCacheHit() {
	cacheHits.Inc()
}

// RecordCacheMiss records an answer cache miss
func (m *Metrics) RecordCacheMiss() {
	cacheMisses.Inc()
}

// SetActiveReminders sets the scheduled reminder gauge
func (m *Metrics) SetActiveReminders(count float64) {
	activeReminders.Set(count)
}

// RecordReminderTriggered records a fired reminder
func (m *Metrics) RecordReminderTriggered() {
	remindersTriggered.Inc()
}

// StartMetricsServer starts the metrics HTTP server
func StartMetricsServer(port int, path string) error {
	router := mux.NewRouter()
	router.Handle(path, promhttp.Handler())

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
