package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard error types that can be used to categorize errors
var (
	// ErrConfiguration indicates an error in the user's configuration
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidCriteria indicates selection criteria that can never be
	// satisfied or are malformed
	ErrInvalidCriteria = errors.New("invalid criteria")

	// ErrSourceUnavailable indicates the buildbot master could not be
	// reached or returned an unusable response
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrBuilderNotFound indicates a named builder does not exist on the
	// master
	ErrBuilderNotFound = errors.New("builder not found")

	// ErrInternal indicates an internal error in the CLI
	ErrInternal = errors.New("internal error")

	// ErrUserAborted indicates the user has canceled an operation
	ErrUserAborted = errors.New("user aborted")
)

// Error represents a CLI error with context
type Error struct {
	// Original is the underlying error
	Original error

	// Category is the broad category of the error
	Category error

	// Builder is the name of the builder being processed when the error
	// occurred, if any
	Builder string

	// Details contains additional detail about the error
	Details string

	// Suggestions provides hints on how to fix the error
	Suggestions []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var msg strings.Builder

	if e.Category != nil {
		msg.WriteString(e.Category.Error())
		msg.WriteString(": ")
	}

	if e.Builder != "" {
		fmt.Fprintf(&msg, "builder %q: ", e.Builder)
	}

	// First include the original error, if present
	if e.Original != nil {
		msg.WriteString(e.Original.Error())
	}

	// Then include details if present, regardless of whether Original is present
	if e.Details != "" {
		// Only add a separator if we've already written something
		if e.Original != nil {
			msg.WriteString(" (")
			msg.WriteString(e.Details)
			msg.WriteString(")")
		} else {
			msg.WriteString(e.Details)
		}
	}

	return msg.String()
}

// FormattedError returns a formatted multi-line error message suitable for display
func (e *Error) FormattedError() string {
	var msg strings.Builder

	// Build the main error message
	if e.Category != nil {
		// Write category with uppercase first letter
		category := e.Category.Error()
		if len(category) > 0 {
			msg.WriteString(strings.ToUpper(category[:1]) + category[1:])
			msg.WriteString(": ")
		}
	}

	if e.Builder != "" {
		fmt.Fprintf(&msg, "builder %q: ", e.Builder)
	}

	if e.Original != nil {
		msg.WriteString(e.Original.Error())
	} else if e.Details != "" {
		msg.WriteString(e.Details)
	}

	// Add detailed suggestions if available
	if len(e.Suggestions) > 0 {
		msg.WriteString("\n\n")
		for i, suggestion := range e.Suggestions {
			if i > 0 {
				msg.WriteString("\n")
			}
			msg.WriteString("• ")
			msg.WriteString(suggestion)
		}
	}

	return msg.String()
}

// Unwrap implements the errors.Unwrap interface to allow using errors.Is and errors.As
func (e *Error) Unwrap() error {
	if e.Original != nil {
		return e.Original
	}
	return e.Category
}

// Is implements the errors.Is interface to allow checking error types
func (e *Error) Is(target error) bool {
	return errors.Is(e.Category, target) || (e.Original != nil && errors.Is(e.Original, target))
}

// NewError creates a new Error with the given attributes
func NewError(original error, category error, details string, suggestions ...string) *Error {
	return &Error{
		Original:    original,
		Category:    category,
		Details:     details,
		Suggestions: suggestions,
	}
}

// WithSuggestions adds suggestions to an existing error. The passed error is
// left untouched; the suggestions land on a copy.
func WithSuggestions(err error, suggestions ...string) error {
	if cliErr, ok := err.(*Error); ok {
		tagged := *cliErr
		tagged.Suggestions = append(append([]string(nil), cliErr.Suggestions...), suggestions...)
		return &tagged
	}

	// If it's not already a CLI error, create a new one
	return NewError(err, nil, "", suggestions...)
}

// WithDetails adds details to an existing error. The passed error is left
// untouched; the details land on a copy.
func WithDetails(err error, details string) error {
	if cliErr, ok := err.(*Error); ok {
		tagged := *cliErr
		if cliErr.Details == "" {
			tagged.Details = details
		} else {
			tagged.Details = fmt.Sprintf("%s: %s", cliErr.Details, details)
		}
		return &tagged
	}

	// If it's not already a CLI error, create a new one
	return NewError(err, nil, details)
}

// ForBuilder tags an error with the builder that was being processed when it
// occurred. Errors raised while fetching from the master always pass through
// here so callers can attribute failures to a specific builder. An error
// already carrying a builder name keeps the original name. The passed error
// is never modified; the tag lands on a copy.
func ForBuilder(err error, builder string) error {
	if err == nil {
		return nil
	}
	if cliErr, ok := err.(*Error); ok {
		if cliErr.Builder != "" {
			return cliErr
		}
		tagged := *cliErr
		tagged.Builder = builder
		return &tagged
	}
	return &Error{Original: err, Builder: builder}
}

// BuilderName returns the builder name an error is tagged with, or "" if the
// error carries no builder context.
func BuilderName(err error) string {
	var cliErr *Error
	if errors.As(err, &cliErr) {
		return cliErr.Builder
	}
	return ""
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(err error, details string, suggestions ...string) error {
	return NewError(err, ErrConfiguration, details, suggestions...)
}

// NewInvalidCriteriaError creates a new invalid criteria error
func NewInvalidCriteriaError(err error, details string, suggestions ...string) error {
	return NewError(err, ErrInvalidCriteria, details, suggestions...)
}

// NewSourceUnavailableError creates a new source unavailable error
func NewSourceUnavailableError(err error, details string, suggestions ...string) error {
	return NewError(err, ErrSourceUnavailable, details, suggestions...)
}

// NewBuilderNotFoundError creates a new builder not found error for the named builder
func NewBuilderNotFoundError(err error, builder string, suggestions ...string) error {
	return &Error{
		Original:    err,
		Category:    ErrBuilderNotFound,
		Builder:     builder,
		Suggestions: suggestions,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(err error, details string, suggestions ...string) error {
	return NewError(err, ErrInternal, details, suggestions...)
}

// NewUserAbortedError creates a new user aborted error
func NewUserAbortedError(err error, details string, suggestions ...string) error {
	return NewError(err, ErrUserAborted, details, suggestions...)
}

// IsInvalidCriteria returns true if the error indicates unsatisfiable or malformed criteria
func IsInvalidCriteria(err error) bool {
	return errors.Is(err, ErrInvalidCriteria)
}

// IsSourceUnavailable returns true if the error indicates the master could not be queried
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

// IsBuilderNotFound returns true if the error indicates a named builder does not exist
func IsBuilderNotFound(err error) bool {
	return errors.Is(err, ErrBuilderNotFound)
}

// IsConfigurationError returns true if the error indicates a configuration issue
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsUserAborted returns true if the error indicates the user aborted the operation
func IsUserAborted(err error) bool {
	return errors.Is(err, ErrUserAborted)
}
