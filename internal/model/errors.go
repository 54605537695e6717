package model

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Decision outcomes (BLOCK, low verdicts)
// are results, never errors.
var (
	ErrValidation      = errors.New("invalid input")
	ErrRateLimited     = errors.New("rate limited")
	ErrPaymentRequired = errors.New("payment required")
	ErrUpstream        = errors.New("upstream unavailable")
)

// StageError is the single opaque failure a stage returns when one of its
// collaborators fails. errors.Is matches both Kind and the wrapped cause.
type StageError struct {
	Stage   string
	Kind    error
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// KindOf classifies an error into one of the sentinel kinds
func KindOf(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation):
		return ErrValidation
	case errors.Is(err, ErrRateLimited):
		return ErrRateLimited
	case errors.Is(err, ErrPaymentRequired):
		return ErrPaymentRequired
	default:
		return ErrUpstream
	}
}

// UserMessage is the human-readable text shown for an error kind
func UserMessage(err error) string {
	switch KindOf(err) {
	case ErrValidation:
		return "News content is required"
	case ErrRateLimited:
		return "Rate limits exceeded, please try again later."
	case ErrPaymentRequired:
		return "Payment required, please add funds to your workspace."
	default:
		return "Failed to verify news content"
	}
}
