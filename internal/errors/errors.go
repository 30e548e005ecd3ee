// Package errors provides a lightweight structured error type (BuildError)
// for category-based classification across pipeline stages and the CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a build error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryContent    ErrorCategory = "content"

	// Pipeline stage errors
	CategoryPermalink  ErrorCategory = "permalink"
	CategoryPagination ErrorCategory = "pagination"
	CategoryFeed       ErrorCategory = "feed"
	CategoryRender     ErrorCategory = "render"

	// External system and infrastructure errors
	CategoryGit        ErrorCategory = "git"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryRuntime    ErrorCategory = "runtime"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops the build
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded output
)

// BuildError is a structured error with category, severity, and context
type BuildError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for BuildError
type ContextFields map[string]any

// Error implements the error interface
func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *BuildError) WithContext(key string, value any) *BuildError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// IsFatal reports whether the error should abort the whole build.
func (e *BuildError) IsFatal() bool {
	return e.Severity == SeverityFatal
}

// New creates a new BuildError
func New(category ErrorCategory, severity ErrorSeverity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new BuildError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// Fatal creates a new fatal BuildError
func Fatal(category ErrorCategory, message string) *BuildError {
	return New(category, SeverityFatal, message)
}

// WrapFatal wraps an existing error as a fatal BuildError
func WrapFatal(err error, category ErrorCategory, message string) *BuildError {
	return Wrap(err, category, SeverityFatal, message)
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if be, ok := err.(*BuildError); ok {
		return be.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal
// if the error is not a BuildError
func GetCategory(err error) ErrorCategory {
	if be, ok := err.(*BuildError); ok {
		return be.Category
	}
	return CategoryInternal
}

// ValidationError creates a new validation error
func ValidationError(message string) *BuildError {
	return &BuildError{
		Category: CategoryValidation,
		Severity: SeverityWarning,
		Message:  message,
	}
}
