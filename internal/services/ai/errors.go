package ai

import (
	"errors"
	"fmt"
)

// ErrorKind classifies inference failures. The selector's fallback decision
// is made on this classification, never on response text.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindInvalidInput means the input failed validation; never falls back.
	KindInvalidInput
	// KindServiceUnreachable means connection refused or DNS failure.
	KindServiceUnreachable
	// KindTimeout means every attempt exceeded its budget.
	KindTimeout
	// KindMalformedResponse means a 200 body that could not be decoded.
	KindMalformedResponse
	// KindUpstreamError means a non-200 status from the backend.
	KindUpstreamError
	// KindEmptyResult means a 200 status with blank content.
	KindEmptyResult
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindServiceUnreachable:
		return "service_unreachable"
	case KindTimeout:
		return "timeout"
	case KindMalformedResponse:
		return "malformed_response"
	case KindUpstreamError:
		return "upstream_error"
	case KindEmptyResult:
		return "empty_result"
	default:
		return "unknown"
	}
}

// Error is the typed failure returned by an inference client
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the classification from an inference error
func KindOf(err error) ErrorKind {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr.Kind
	}
	return KindUnknown
}

// UserMessage renders an error kind as user-displayable text. Each kind gets
// a distinct message so the human can tell "service down" from "timed out"
// from "bad answer" without seeing internal diagnostics.
func UserMessage(kind ErrorKind) string {
	switch kind {
	case KindInvalidInput:
		return "I didn't receive any usable input. Please try again."
	case KindServiceUnreachable:
		return "I can't connect to the AI service. Please make sure Ollama is running."
	case KindTimeout:
		return "The AI model is taking too long to respond. It might be overloaded or still loading. Please try again in a moment."
	case KindMalformedResponse:
		return "I received an invalid response from the AI service. This might be a temporary issue."
	case KindUpstreamError:
		return "I encountered an error connecting to the AI service. Please check if Ollama is running correctly."
	case KindEmptyResult:
		return "The AI model returned an empty answer. Please try rephrasing your question."
	default:
		return "Sorry, I'm unable to generate a response at the moment."
	}
}
