package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aurix-ai/aurix/internal/config"
	"github.com/aurix-ai/aurix/internal/middleware"
	"github.com/aurix-ai/aurix/internal/models"
	"github.com/aurix-ai/aurix/internal/router"
	"github.com/sirupsen/logrus"
)

// degradedMaxTokens caps num_predict on retry attempts.
const degradedMaxTokens = 256

// Client is one self-contained inference slot: it owns its configuration,
// its conversation history and its own routing pass, so automation commands
// are intercepted whichever slot the input reaches.
type Client struct {
	cfg          config.ModelConfig
	systemPrompt string
	history      *History
	router       *router.Router
	codec        codec
	httpClient   *http.Client
	metrics      *middleware.Metrics
	logger       *logrus.Logger

	// serializes Respond so concurrent callers cannot corrupt the
	// request/history ordering
	mu sync.Mutex
}

// NewClient creates an inference client for one configured model
func NewClient(cfg config.ModelConfig, systemPrompt string, rt *router.Router, metrics *middleware.Metrics, logger *logrus.Logger) (*Client, error) {
	c, err := codecFor(cfg.Style)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"model":    cfg.Model,
		"base_url": cfg.BaseURL,
		"style":    cfg.Style,
	}).Info("Inference client initialized")

	return &Client{
		cfg:          cfg,
		systemPrompt: systemPrompt,
		history:      NewHistory(cfg.HistoryLimit, cfg.MemoryOptimization),
		router:       rt,
		codec:        c,
		// Per-attempt timeouts come from the request context
		httpClient: &http.Client{},
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.cfg.Model
}

// ClearHistory empties the conversation history
func (c *Client) ClearHistory() {
	c.history.Clear()
}

// Ping probes the backend root endpoint; 200 means reachable
func (c *Client) Ping(ctx context.Context) bool {
	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, strings.TrimSuffix(c.cfg.BaseURL, "/")+"/", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("model", c.cfg.Model).Warn("Service unreachable")
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Respond routes input through the automation rules and, when no rule
// matches, asks the model. Failures come back as a typed *Error; nothing
// escapes this boundary as a panic or an untyped error.
func (c *Client) Respond(ctx context.Context, userInput string) (string, error) {
	if strings.TrimSpace(userInput) == "" || len(userInput) > middleware.MaxInputLength {
		return "", newError(KindInvalidInput, "invalid input provided", nil)
	}

	// Automation short-circuit: each client re-applies the rule table
	if c.router != nil {
		if outcome := c.router.Route(ctx, userInput); outcome.Handled {
			return outcome.Text, nil
		}
	}

	return c.generate(ctx, userInput)
}

func (c *Client) generate(ctx context.Context, userInput string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.history.Append(models.Message{Role: "user", Content: userInput})
	window := c.history.WorkingWindow()

	opts := requestOptions{
		Temperature: c.cfg.Temperature,
		NumPredict:  c.cfg.MaxTokens,
		NumCtx:      c.cfg.ContextLength,
	}

	start := time.Now()
	var lastErr *Error

	for attempt := 0; attempt < c.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			// Degrade parameters so a struggling backend gets an easier request
			if opts.NumPredict > degradedMaxTokens {
				opts.NumPredict = degradedMaxTokens
			}
			opts.Temperature = c.cfg.Temperature - 0.2
			if opts.Temperature < 0.1 {
				opts.Temperature = 0.1
			}
			c.logger.WithFields(logrus.Fields{
				"attempt":     attempt,
				"num_predict": opts.NumPredict,
				"temperature": opts.Temperature,
			}).Warn("Retrying with reduced parameters")
		}

		content, attemptErr := c.attempt(ctx, window, opts, attempt)
		if attemptErr == nil {
			c.history.Append(models.Message{Role: "assistant", Content: content})
			c.recordRequest("success", start)
			return content, nil
		}

		lastErr = attemptErr
		switch attemptErr.Kind {
		case KindTimeout, KindUpstreamError:
			// Retryable: timeout and HTTP errors escalate to the next attempt
			c.logger.WithError(attemptErr).WithField("attempt", attempt).Warn("Inference attempt failed")
			continue
		default:
			// Unreachable service, bad bodies and empty answers are terminal
			c.recordRequest(attemptErr.Kind.String(), start)
			c.logger.WithError(attemptErr).Error("Inference request failed")
			return "", attemptErr
		}
	}

	c.recordRequest(lastErr.Kind.String(), start)
	c.logger.WithError(lastErr).WithField("attempts", c.cfg.RetryAttempts).Error("Inference attempts exhausted")
	return "", lastErr
}

// attempt performs a single HTTP call with a timeout budget that grows
// linearly with the attempt index
func (c *Client) attempt(ctx context.Context, window []models.Message, opts requestOptions, attempt int) (string, *Error) {
	if c.metrics != nil {
		c.metrics.RecordModelAttempt(c.cfg.Model)
	}

	body, err := c.codec.build(c.cfg.Model, c.systemPrompt, window, opts)
	if err != nil {
		return "", newError(KindMalformedResponse, "failed to build request", err)
	}

	timeout := time.Duration(float64(c.cfg.RequestTimeout) * (1 + float64(attempt)*0.5))
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + c.codec.path
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", newError(KindServiceUnreachable, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.WithFields(logrus.Fields{
		"model":   c.cfg.Model,
		"url":     url,
		"attempt": attempt,
		"timeout": timeout,
	}).Debug("Sending inference request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() == context.DeadlineExceeded {
			return "", newError(KindTimeout, "request timed out", err)
		}
		return "", newError(KindServiceUnreachable, "failed to reach inference backend", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newError(KindMalformedResponse, "failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", newError(KindUpstreamError,
			fmt.Sprintf("backend returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200)), nil)
	}

	content, err := c.codec.parse(respBody)
	if err != nil {
		return "", newError(KindMalformedResponse, "undecodable response body", err)
	}
	if strings.TrimSpace(content) == "" {
		return "", newError(KindEmptyResult, "empty response from model", nil)
	}

	return content, nil
}

func (c *Client) recordRequest(status string, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordModelRequest(c.cfg.Model, status, time.Since(start))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
