package view

import (
	"errors"
	"fmt"

	"github.com/hongminglow/wayfarer/internal/api"
	"github.com/hongminglow/wayfarer/internal/guard"
	"github.com/hongminglow/wayfarer/internal/session"
)

// ErrCancelled is returned when a destructive action was not confirmed.
// No request is issued.
var ErrCancelled = errors.New("view: action cancelled")

// ErrEmptyInput is returned when a submit has nothing to send.
var ErrEmptyInput = errors.New("view: nothing to submit")

// DeniedError is returned when the guard blocks an action before any
// request is issued.
type DeniedError struct {
	Action guard.Action
	Reason string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s not allowed: %s", e.Action, e.Reason)
}

// Confirm asks the user to approve a destructive action.
type Confirm func(prompt string) bool

func confirmed(confirm Confirm, prompt string) bool {
	return confirm != nil && confirm(prompt)
}

// authorize checks the guard against the session's current identity.
func authorize(sessions *session.Context, action guard.Action) error {
	identity, ok := sessions.Current()
	decision := guard.Check(identity, ok, action)
	if !decision.Allowed {
		return &DeniedError{Action: action, Reason: decision.Reason}
	}
	return nil
}

// Describe renders err for inline display next to the affected control.
func Describe(err error, fallback string) string {
	var denied *DeniedError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &denied):
		return denied.Reason
	case errors.Is(err, ErrCancelled):
		return "Cancelled."
	case errors.Is(err, ErrEmptyInput):
		return "Nothing to send."
	}
	return api.Message(err, fallback)
}
