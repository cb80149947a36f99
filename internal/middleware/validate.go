package middleware

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// MaxInputLength bounds accepted user input.
const MaxInputLength = 10000

// InputValidator is the sanity gate applied before any routing.
type InputValidator struct {
	logger *logrus.Logger
}

// NewInputValidator creates a new input validator
func NewInputValidator(logger *logrus.Logger) *InputValidator {
	return &InputValidator{logger: logger}
}

// Validate reports whether input is acceptable. Empty or whitespace-only
// input and input over MaxInputLength characters are rejected. Callers must
// treat false as "reply with a fixed rejection message", not as an error.
func (v *InputValidator) Validate(input string) bool {
	if strings.TrimSpace(input) == "" {
		return false
	}
	if len(input) > MaxInputLength {
		v.logger.WithField("length", len(input)).Warn("User input too long")
		return false
	}
	return true
}
