package handlers

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/aurix-ai/aurix/internal/i18n"
	"github.com/aurix-ai/aurix/internal/middleware"
	"github.com/aurix-ai/aurix/internal/router"
	"github.com/aurix-ai/aurix/internal/services/ai"
	"github.com/aurix-ai/aurix/internal/services/cache"
)

// Result is what one processed input produces. Exit signals that the user
// asked to leave and the caller should shut down after printing Text.
type Result struct {
	Text string
	Exit bool
}

var clearCommands = map[string]bool{
	"clear conversation": true,
	"new conversation":   true,
	"reset conversation": true,
}

// InputHandler runs each input through the full pipeline: validation, rate
// limiting, intent routing, the answer cache, and finally model inference.
type InputHandler struct {
	validator *middleware.InputValidator
	limiter   middleware.RateLimiter
	router    *router.Router
	selector  *ai.Selector
	cache     cache.Service
	localizer *i18n.Localizer
	metrics   *middleware.Metrics
	logger    *logrus.Logger
}

// NewInputHandler creates an input handler
func NewInputHandler(
	validator *middleware.InputValidator,
	limiter middleware.RateLimiter,
	rt *router.Router,
	selector *ai.Selector,
	answerCache cache.Service,
	localizer *i18n.Localizer,
	metrics *middleware.Metrics,
	logger *logrus.Logger,
) *InputHandler {
	return &InputHandler{
		validator: validator,
		limiter:   limiter,
		router:    rt,
		selector:  selector,
		cache:     answerCache,
		localizer: localizer,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handle processes one line of user input and returns the response text.
func (h *InputHandler) Handle(ctx context.Context, input string) Result {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Result{Text: h.localizer.Get(i18n.MsgEmptyInput, nil)}
	}

	if !h.validator.Validate(trimmed) {
		h.metrics.RecordInput("rejected")
		return Result{Text: h.localizer.Get(i18n.MsgInvalidInput, nil)}
	}

	if !h.limiter.Allow() {
		h.metrics.RecordInput("rate_limited")
		h.logger.WithField("input_length", len(trimmed)).Warn("Input dropped by rate limiter")
		return Result{Text: h.localizer.Get(i18n.MsgRateLimitExceeded, nil)}
	}

	outcome := h.router.Route(ctx, trimmed)
	if outcome.Exit {
		h.metrics.RecordInput("exit")
		return Result{Text: outcome.Text, Exit: true}
	}
	if outcome.Handled {
		h.metrics.RecordInput("automation")
		h.metrics.RecordCommandRouted(outcome.Category)
		return Result{Text: outcome.Text}
	}

	if clearCommands[strings.ToLower(trimmed)] {
		h.selector.ClearHistories()
		h.cache.Clear()
		h.metrics.RecordInput("automation")
		h.metrics.RecordCommandRouted("conversation")
		return Result{Text: "Conversation history cleared."}
	}

	h.metrics.RecordInput("inference")

	model := h.selector.Primary().Model()
	if answer, ok := h.cache.Get(trimmed, model); ok {
		h.metrics.RecordCacheHit()
		return Result{Text: answer}
	}
	h.metrics.RecordCacheMiss()

	answer, ok := h.selector.TryGenerate(ctx, trimmed)
	if answer == "" {
		return Result{Text: h.localizer.Get(i18n.MsgNoResponse, nil)}
	}
	if ok {
		h.cache.Set(trimmed, model, answer)
	}
	return Result{Text: answer}
}
