package ai

import (
	"context"

	"github.com/aurix-ai/aurix/internal/middleware"
	"github.com/sirupsen/logrus"
)

// Selector owns the primary and optional fallback inference clients and
// applies the fallback policy. Generate never returns an error; every path
// terminates in user-displayable text.
type Selector struct {
	primary  *Client
	fallback *Client
	metrics  *middleware.Metrics
	logger   *logrus.Logger
}

// NewSelector creates a model selector. fallback may be nil.
func NewSelector(primary, fallback *Client, metrics *middleware.Metrics, logger *logrus.Logger) *Selector {
	return &Selector{
		primary:  primary,
		fallback: fallback,
		metrics:  metrics,
		logger:   logger,
	}
}

// Primary returns the primary inference client
func (s *Selector) Primary() *Client {
	return s.primary
}

// Fallback returns the fallback inference client, or nil
func (s *Selector) Fallback() *Client {
	return s.fallback
}

// ClearHistories empties the conversation history of both slots
func (s *Selector) ClearHistories() {
	if s.primary != nil {
		s.primary.ClearHistory()
	}
	if s.fallback != nil {
		s.fallback.ClearHistory()
	}
}

// Generate produces a response for userInput. The fallback is consulted only
// when the primary's outcome classifies as a service failure; an answer that
// is merely short or generic is still a success.
func (s *Selector) Generate(ctx context.Context, userInput string) string {
	text, _ := s.TryGenerate(ctx, userInput)
	return text
}

// TryGenerate is Generate with a success flag, so callers can avoid caching
// failure text
func (s *Selector) TryGenerate(ctx context.Context, userInput string) (string, bool) {
	if userInput == "" {
		return "I didn't receive any input.", false
	}

	if s.primary == nil {
		return UserMessage(KindUnknown), false
	}

	response, err := s.primary.Respond(ctx, userInput)
	if err == nil && response != "" {
		return response, true
	}

	kind := KindOf(err)
	if kind == KindInvalidInput {
		// Rejected before reaching any model; the fallback would reject too
		return UserMessage(kind), false
	}

	s.logger.WithFields(logrus.Fields{
		"model": s.primary.Model(),
		"kind":  kind.String(),
	}).Warn("Primary model failed to generate response, trying fallback")

	if s.fallback == nil {
		return UserMessage(kind), false
	}

	if s.metrics != nil {
		s.metrics.RecordFallback(kind.String())
	}

	response, err = s.fallback.Respond(ctx, userInput)
	if err != nil {
		fbKind := KindOf(err)
		s.logger.WithFields(logrus.Fields{
			"model": s.fallback.Model(),
			"kind":  fbKind.String(),
		}).Error("Fallback model failed to generate response")
		return UserMessage(fbKind), false
	}
	if response == "" {
		return UserMessage(KindUnknown), false
	}
	return response, true
}
