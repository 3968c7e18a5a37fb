// Package apperr defines the error taxonomy reported to callers. Every
// error carries enough detail to render a corrective message; none are
// retried by the engine.
package apperr

import "fmt"

// ValidationError marks malformed or inconsistent input the caller can fix.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError marks a referenced resource that does not exist.
type NotFoundError struct {
	Resource string
	Ref      any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.Ref)
}

func NotFound(resource string, ref any) *NotFoundError {
	return &NotFoundError{Resource: resource, Ref: ref}
}

// ConflictError marks a double-booking attempt; the caller can retry with
// different dates.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func Conflict(format string, args ...any) *ConflictError {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError marks a status edge outside the lifecycle graph.
type InvalidTransitionError struct {
	From, To string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid booking status transition: %s -> %s", e.From, e.To)
}

func InvalidTransition(from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}

// AuthorizationError marks an operation the actor may not perform.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

func Authorization(format string, args ...any) *AuthorizationError {
	return &AuthorizationError{Msg: fmt.Sprintf(format, args...)}
}
