package server

import (
	"fmt"
	"unicode/utf8"
)

// Prompt length bounds, in characters.
const (
	MinPromptLen = 10
	MaxPromptLen = 1000
)

// ValidationError indicates a malformed prompt, rejected before the relay runs.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidatePrompt enforces the inbound prompt contract: non-empty and
// 10-1000 characters inclusive. Lengths are counted in characters, not bytes.
func ValidatePrompt(prompt string) error {
	if prompt == "" {
		return &ValidationError{Field: "prompt", Message: "must not be empty"}
	}
	n := utf8.RuneCountInString(prompt)
	if n < MinPromptLen {
		return &ValidationError{
			Field:   "prompt",
			Message: fmt.Sprintf("must be at least %d characters, got %d", MinPromptLen, n),
		}
	}
	if n > MaxPromptLen {
		return &ValidationError{
			Field:   "prompt",
			Message: fmt.Sprintf("must be at most %d characters, got %d", MaxPromptLen, n),
		}
	}
	return nil
}
