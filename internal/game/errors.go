package game

import (
	"errors"
	"fmt"
)

// ValidationError is a malformed request, rejected before any state access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid action: " + e.Reason
	}
	return fmt.Sprintf("invalid action: %s: %s", e.Field, e.Reason)
}

// RuleViolation is a well-formed action that the rules do not allow.
// State is left unchanged.
type RuleViolation struct {
	Reason string
}

func (e *RuleViolation) Error() string { return "rule violation: " + e.Reason }

// TerminalStateError is returned for any action against a finished game.
type TerminalStateError struct {
	WinnerID string
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("game is over (winner %s)", e.WinnerID)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Violation builds a RuleViolation with a formatted reason.
func Violation(format string, args ...any) error {
	return &RuleViolation{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsRuleViolation reports whether err wraps a *RuleViolation.
func IsRuleViolation(err error) bool {
	var target *RuleViolation
	return errors.As(err, &target)
}

// IsTerminal reports whether err wraps a *TerminalStateError.
func IsTerminal(err error) bool {
	var target *TerminalStateError
	return errors.As(err, &target)
}
