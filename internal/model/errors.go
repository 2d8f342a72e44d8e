package model

import "strings"

// ValidationError carries the full list of human-readable field messages
// accumulated during validation. It never short-circuits: every failed rule
// contributes its own message.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// NewValidationError wraps a list of messages. Callers must ensure the list
// is non-empty.
func NewValidationError(messages []string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// Token error codes surfaced to API callers. Both map to 401; neither reveals
// which verification step failed beyond expiry.
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)
