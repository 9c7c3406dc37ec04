// Package errors provides custom error types for the authorgraph system.
// Per-unit failures (ambiguous matches, unresolvable records, network
// failures) are recoverable and reported as skipped outcomes; configuration
// errors stop a run.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is, As and Join are re-exported so callers need a single errors import.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Common sentinel errors for the authorgraph system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrAmbiguousMatch indicates more than one equally plausible candidate
	ErrAmbiguousMatch = errors.New("ambiguous match")

	// ErrUnresolvable indicates a record without enough signal to find or create a node
	ErrUnresolvable = errors.New("unresolvable")

	// ErrNetwork indicates a failed collaborator call (load, search, apply, source fetch)
	ErrNetwork = errors.New("network failure")

	// ErrEmptyDiff indicates that reconciliation produced no net change
	ErrEmptyDiff = errors.New("no changes")

	// ErrConfiguration indicates a fatal configuration problem
	ErrConfiguration = errors.New("configuration error")

	// ErrRateLimited indicates that a rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ScoredCandidate is one candidate considered during an ambiguous decision.
type ScoredCandidate struct {
	ID    string
	Label string
	Score int
}

// String renders the candidate for logs. A zero score means the candidate
// came from a search and was never scored.
func (c ScoredCandidate) String() string {
	switch {
	case c.Score == 0 && c.Label == "":
		return c.ID
	case c.Score == 0:
		return fmt.Sprintf("%s (%s)", c.ID, c.Label)
	case c.Label != "":
		return fmt.Sprintf("%s (%s, score %d)", c.ID, c.Label, c.Score)
	default:
		return fmt.Sprintf("%s (score %d)", c.ID, c.Score)
	}
}

// AmbiguousMatchError is returned when several candidates are equally likely.
// Candidates carry enough context for manual review.
type AmbiguousMatchError struct {
	Subject    string
	Candidates []ScoredCandidate
}

// Error implements the error interface
func (e *AmbiguousMatchError) Error() string {
	parts := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		parts = append(parts, c.String())
	}
	return fmt.Sprintf("ambiguous match for %q: %d candidates [%s]", e.Subject, len(e.Candidates), strings.Join(parts, ", "))
}

// Is implements errors.Is support
func (e *AmbiguousMatchError) Is(target error) bool {
	return target == ErrAmbiguousMatch
}

// NewAmbiguousMatchError creates a new AmbiguousMatchError
func NewAmbiguousMatchError(subject string, candidates []ScoredCandidate) *AmbiguousMatchError {
	return &AmbiguousMatchError{Subject: subject, Candidates: candidates}
}

// UnresolvableError is returned for records that cannot be linked to a node.
type UnresolvableError struct {
	Subject string
	Reason  string
}

// Error implements the error interface
func (e *UnresolvableError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("unresolvable author: %s", e.Reason)
	}
	return fmt.Sprintf("unresolvable author %q: %s", e.Subject, e.Reason)
}

// Is implements errors.Is support
func (e *UnresolvableError) Is(target error) bool {
	return target == ErrUnresolvable
}

// NewUnresolvableError creates a new UnresolvableError
func NewUnresolvableError(subject, reason string) *UnresolvableError {
	return &UnresolvableError{Subject: subject, Reason: reason}
}

// NetworkError represents a failed call to the graph or a source.
type NetworkError struct {
	Operation string // "load", "search", "create", "apply", "fetch"
	Resource  string
	Err       error
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s %s failed: %v", e.Operation, e.Resource, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation, resource string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Resource: resource, Err: err}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", etc.
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "open"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "create", "update", "load", "reconcile"
	Resource  string // "publication", "author", "source"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsAmbiguous checks if an error is an ambiguous match
func IsAmbiguous(err error) bool {
	return errors.Is(err, ErrAmbiguousMatch)
}

// IsUnresolvable checks if an error is an unresolvable record
func IsUnresolvable(err error) bool {
	return errors.Is(err, ErrUnresolvable)
}

// IsNetwork checks if an error is a collaborator failure
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsFatal reports whether err should stop all further work.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsRateLimited checks if an error is a rate limit rejection
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsTimeout checks if an error is a timeout
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapNetwork wraps an error as a NetworkError. Configuration errors
// pass through untouched so they stay fatal.
func WrapNetwork(operation, resource string, err error) error {
	if err == nil {
		return nil
	}
	if IsFatal(err) {
		return err
	}
	return NewNetworkError(operation, resource, err)
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
