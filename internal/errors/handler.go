package errors

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit codes for different error types
const (
	ExitCodeSuccess           = 0
	ExitCodeGenericError      = 1
	ExitCodeInvalidCriteria   = 2
	ExitCodeSourceUnavailable = 3
	ExitCodeBuilderNotFound   = 4
	ExitCodeConfigError       = 6
	ExitCodeInternalError     = 8
	ExitCodeUserAbortedError  = 130 // Same as Ctrl+C in bash
)

// Handler processes errors from commands and formats them appropriately
type Handler struct {
	// Writer is where error messages will be written
	Writer io.Writer
	// ExitFunc is the function called to exit the program with a specific code
	ExitFunc func(int)
	// Verbose enables more detailed error messages
	Verbose bool
}

// NewHandler creates a new Handler with default settings
func NewHandler() *Handler {
	return &Handler{
		Writer:   os.Stderr,
		ExitFunc: os.Exit,
		Verbose:  false,
	}
}

// WithWriter sets the writer for error output
func (h *Handler) WithWriter(w io.Writer) *Handler {
	h.Writer = w
	return h
}

// WithExitFunc sets the exit function
func (h *Handler) WithExitFunc(f func(int)) *Handler {
	h.ExitFunc = f
	return h
}

// WithVerbose sets the verbose flag
func (h *Handler) WithVerbose(v bool) *Handler {
	h.Verbose = v
	return h
}

// Handle processes an error and outputs it appropriately
func (h *Handler) Handle(err error) {
	if err == nil {
		return
	}

	// Get the exit code based on error type
	exitCode := h.getExitCode(err)

	// Format the error message
	message := h.formatError(err)

	// Write the error message
	fmt.Fprintln(h.Writer, message)

	// Call the exit function with the appropriate code
	if h.ExitFunc != nil {
		h.ExitFunc(exitCode)
	}
}

// getExitCode determines the appropriate exit code based on the error type
func (h *Handler) getExitCode(err error) int {
	switch {
	case IsInvalidCriteria(err):
		return ExitCodeInvalidCriteria
	case IsSourceUnavailable(err):
		return ExitCodeSourceUnavailable
	case IsBuilderNotFound(err):
		return ExitCodeBuilderNotFound
	case IsConfigurationError(err):
		return ExitCodeConfigError
	case IsUserAborted(err):
		return ExitCodeUserAbortedError
	case errors.Is(err, ErrInternal):
		return ExitCodeInternalError
	default:
		return ExitCodeGenericError
	}
}

// formatError creates a formatted error message based on the error type
func (h *Handler) formatError(err error) string {
	prefix := "Error:"

	if cliErr, ok := err.(*Error); ok {
		// For CLI errors, use the formatted error message
		var message string

		if cliErr.Category != nil {
			// Get a more specific prefix based on the error category
			prefix = h.getCategoryPrefix(cliErr.Category)
		}

		// If verbose mode is enabled, include more details
		if h.Verbose {
			message = cliErr.FormattedError()
		} else {
			// In non-verbose mode, include the main error message and the first suggestion
			message = cliErr.Error()
			if len(cliErr.Suggestions) > 0 {
				message = fmt.Sprintf("%s\nTip: %s", message, cliErr.Suggestions[0])
			}
		}

		return fmt.Sprintf("%s %s", prefix, message)
	}

	// For regular errors, just return the error message
	return fmt.Sprintf("%s %s", prefix, err.Error())
}

// getCategoryPrefix returns an appropriate prefix for the error category
func (h *Handler) getCategoryPrefix(category error) string {
	switch category {
	case ErrInvalidCriteria:
		return "Criteria Error:"
	case ErrSourceUnavailable:
		return "Source Error:"
	case ErrBuilderNotFound:
		return "Not Found:"
	case ErrConfiguration:
		return "Configuration Error:"
	case ErrUserAborted:
		return "Aborted:"
	case ErrInternal:
		return "Internal Error:"
	default:
		return "Error:"
	}
}

// PrintWarning prints a warning message
func (h *Handler) PrintWarning(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	fmt.Fprintf(h.Writer, "Warning: %s\n", message)
}

// MessageForError returns a formatted message for an error without exiting
func MessageForError(err error) string {
	if err == nil {
		return ""
	}

	handler := NewHandler()
	return handler.formatError(err)
}

// GetExitCodeForError returns the exit code for a given error
func GetExitCodeForError(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	handler := NewHandler()
	return handler.getExitCode(err)
}
