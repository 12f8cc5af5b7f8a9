package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorInterface(t *testing.T) {
	t.Parallel()

	t.Run("implements error interface", func(t *testing.T) {
		t.Parallel()

		originalErr := fmt.Errorf("original error")
		err := NewError(originalErr, ErrSourceUnavailable, "additional details")

		// Check that Error() returns a non-empty string
		if err.Error() == "" {
			t.Error("Error() should return a non-empty string")
		}

		// Check that the error string contains both the category and original error
		errStr := err.Error()
		if !strings.Contains(errStr, "source unavailable") {
			t.Errorf("Error string %q should contain category 'source unavailable'", errStr)
		}
		if !strings.Contains(errStr, "original error") {
			t.Errorf("Error string %q should contain original error message", errStr)
		}
	})

	t.Run("error string names the builder when tagged", func(t *testing.T) {
		t.Parallel()

		err := ForBuilder(NewSourceUnavailableError(fmt.Errorf("connection refused"), "could not fetch builds"), "trunk-osx")

		errStr := err.Error()
		if !strings.Contains(errStr, `builder "trunk-osx"`) {
			t.Errorf("Error string %q should name the builder", errStr)
		}
	})

	t.Run("formatted error includes suggestions", func(t *testing.T) {
		t.Parallel()

		originalErr := fmt.Errorf("no such builder")
		suggestions := []string{"Check the builder name", "Run 'bbinfo builder list'"}
		err := NewError(originalErr, ErrBuilderNotFound, "failed to fetch builds", suggestions...)

		formatted := err.FormattedError()
		for _, suggestion := range suggestions {
			if !strings.Contains(formatted, suggestion) {
				t.Errorf("Formatted error should contain suggestion %q, got: %q", suggestion, formatted)
			}
		}
	})
}

func TestErrorCategorization(t *testing.T) {
	t.Parallel()

	t.Run("errors.Is works with standard error types", func(t *testing.T) {
		t.Parallel()

		sourceErr := NewSourceUnavailableError(nil, "master unreachable")
		if !errors.Is(sourceErr, ErrSourceUnavailable) {
			t.Error("errors.Is should identify source unavailable category")
		}

		criteriaErr := NewInvalidCriteriaError(nil, "max builds must be positive")
		if !errors.Is(criteriaErr, ErrInvalidCriteria) {
			t.Error("errors.Is should identify invalid criteria category")
		}
	})

	t.Run("error type checking functions work", func(t *testing.T) {
		t.Parallel()

		sourceErr := NewSourceUnavailableError(nil, "master unreachable")
		if !IsSourceUnavailable(sourceErr) {
			t.Error("IsSourceUnavailable should return true for source errors")
		}

		criteriaErr := NewInvalidCriteriaError(nil, "malformed pattern")
		if !IsInvalidCriteria(criteriaErr) {
			t.Error("IsInvalidCriteria should return true for criteria errors")
		}

		notFoundErr := NewBuilderNotFoundError(nil, "trunk-osx")
		if !IsBuilderNotFound(notFoundErr) {
			t.Error("IsBuilderNotFound should return true for unknown builder errors")
		}
	})
}

func TestErrorWrapping(t *testing.T) {
	t.Parallel()

	t.Run("WithSuggestions adds suggestions", func(t *testing.T) {
		t.Parallel()

		originalErr := NewInvalidCriteriaError(nil, "malformed pattern")
		errWithSuggestions := WithSuggestions(originalErr, "Try this instead", "Or this")

		// Verify that it's still a criteria error
		if !IsInvalidCriteria(errWithSuggestions) {
			t.Error("Error category should be preserved when adding suggestions")
		}

		// Verify suggestions were added
		cliErr, ok := errWithSuggestions.(*Error)
		if !ok {
			t.Fatal("WithSuggestions should return a *Error")
		}
		if len(cliErr.Suggestions) != 2 {
			t.Errorf("Expected 2 suggestions, got %d", len(cliErr.Suggestions))
		}
	})

	t.Run("WithDetails adds details", func(t *testing.T) {
		t.Parallel()

		originalErr := NewSourceUnavailableError(nil, "master unreachable")
		errWithDetails := WithDetails(originalErr, "Additional context")

		// Verify that it's still a source error
		if !IsSourceUnavailable(errWithDetails) {
			t.Error("Error category should be preserved when adding details")
		}

		// Verify details were added
		cliErr, ok := errWithDetails.(*Error)
		if !ok {
			t.Fatal("WithDetails should return a *Error")
		}
		if !strings.Contains(cliErr.Details, "Additional context") {
			t.Errorf("Details should contain added context, got %q", cliErr.Details)
		}
	})

	t.Run("Unwrap returns original error", func(t *testing.T) {
		t.Parallel()

		originalErr := fmt.Errorf("original error")
		wrappedErr := NewSourceUnavailableError(originalErr, "master unreachable")

		unwrappedErr := errors.Unwrap(wrappedErr)
		if unwrappedErr != originalErr {
			t.Errorf("Unwrap should return original error, got %v", unwrappedErr)
		}
	})

	t.Run("Unwrap with nil original returns category", func(t *testing.T) {
		t.Parallel()

		wrappedErr := NewSourceUnavailableError(nil, "master unreachable")

		unwrappedErr := errors.Unwrap(wrappedErr)
		if unwrappedErr != ErrSourceUnavailable {
			t.Errorf("Unwrap should return category when original is nil, got %v", unwrappedErr)
		}
	})

	t.Run("errors.Is works with original error", func(t *testing.T) {
		t.Parallel()

		originalErr := fmt.Errorf("no such builder: trunk-osx")
		wrappedErr := NewBuilderNotFoundError(originalErr, "trunk-osx")

		// Should match both the category and the original error
		if !errors.Is(wrappedErr, ErrBuilderNotFound) {
			t.Error("errors.Is should match error category")
		}
		if !errors.Is(wrappedErr, originalErr) {
			t.Error("errors.Is should match original error")
		}
	})
}

func TestBuilderTagging(t *testing.T) {
	t.Parallel()

	t.Run("ForBuilder tags plain errors", func(t *testing.T) {
		t.Parallel()

		err := ForBuilder(fmt.Errorf("connection reset"), "trunk-osx")

		if got, want := BuilderName(err), "trunk-osx"; got != want {
			t.Errorf("BuilderName() = %q, want %q", got, want)
		}
	})

	t.Run("ForBuilder keeps an existing tag", func(t *testing.T) {
		t.Parallel()

		err := ForBuilder(NewBuilderNotFoundError(nil, "trunk-osx"), "stable-gentoo-x86")

		if got, want := BuilderName(err), "trunk-osx"; got != want {
			t.Errorf("BuilderName() = %q, want %q", got, want)
		}
	})

	t.Run("ForBuilder passes nil through", func(t *testing.T) {
		t.Parallel()

		if err := ForBuilder(nil, "trunk-osx"); err != nil {
			t.Errorf("ForBuilder(nil) = %v, want nil", err)
		}
	})

	t.Run("ForBuilder leaves the passed error untouched", func(t *testing.T) {
		t.Parallel()

		held := NewError(fmt.Errorf("connection reset"), ErrSourceUnavailable, "could not fetch builds")
		tagged := ForBuilder(held, "trunk-osx")

		if held.Builder != "" {
			t.Errorf("held error was tagged in place with %q", held.Builder)
		}
		if got, want := BuilderName(tagged), "trunk-osx"; got != want {
			t.Errorf("BuilderName() = %q, want %q", got, want)
		}
	})

	t.Run("WithSuggestions and WithDetails leave the passed error untouched", func(t *testing.T) {
		t.Parallel()

		held := NewError(nil, ErrInvalidCriteria, "bad pattern", "Check the glob")

		_ = WithSuggestions(held, "Or quote it")
		if len(held.Suggestions) != 1 {
			t.Errorf("held error grew suggestions in place: %v", held.Suggestions)
		}

		_ = WithDetails(held, "while validating")
		if held.Details != "bad pattern" {
			t.Errorf("held error's details changed in place: %q", held.Details)
		}
	})

	t.Run("BuilderName is empty for untagged errors", func(t *testing.T) {
		t.Parallel()

		if got := BuilderName(fmt.Errorf("plain error")); got != "" {
			t.Errorf("BuilderName() = %q, want empty", got)
		}

		if got := BuilderName(NewSourceUnavailableError(nil, "master unreachable")); got != "" {
			t.Errorf("BuilderName() = %q, want empty", got)
		}
	})

	t.Run("NewBuilderNotFoundError carries the builder name", func(t *testing.T) {
		t.Parallel()

		err := NewBuilderNotFoundError(fmt.Errorf("fault 8002"), "trunk-osx", "Run 'bbinfo builder list'")

		if got, want := BuilderName(err), "trunk-osx"; got != want {
			t.Errorf("BuilderName() = %q, want %q", got, want)
		}
		if !IsBuilderNotFound(err) {
			t.Error("IsBuilderNotFound should return true")
		}
	})
}

func TestErrorCreationHelpers(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		createFunc func(error, string, ...string) error
		errorType  error
		checkFunc  func(error) bool
	}{
		{
			name:       "NewConfigurationError",
			createFunc: NewConfigurationError,
			errorType:  ErrConfiguration,
			checkFunc:  IsConfigurationError,
		},
		{
			name:       "NewInvalidCriteriaError",
			createFunc: NewInvalidCriteriaError,
			errorType:  ErrInvalidCriteria,
			checkFunc:  IsInvalidCriteria,
		},
		{
			name:       "NewSourceUnavailableError",
			createFunc: NewSourceUnavailableError,
			errorType:  ErrSourceUnavailable,
			checkFunc:  IsSourceUnavailable,
		},
		{
			name:       "NewUserAbortedError",
			createFunc: NewUserAbortedError,
			errorType:  ErrUserAborted,
			checkFunc:  IsUserAborted,
		},
	}

	for _, tc := range testCases {
		tc := tc // Capture test case value
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			originalErr := fmt.Errorf("some error")
			details := "detailed error message"
			suggestion := "helpful suggestion"

			err := tc.createFunc(originalErr, details, suggestion)

			// Check that the error has the right category
			if !errors.Is(err, tc.errorType) {
				t.Errorf("Error should be of type %v", tc.errorType)
			}

			// Check that the error type check function works
			if !tc.checkFunc(err) {
				t.Errorf("Type check function should return true")
			}

			// Check that details and suggestions are included
			cliErr, ok := err.(*Error)
			if !ok {
				t.Fatal("Error should be a *Error")
			}
			if cliErr.Details != details {
				t.Errorf("Expected details %q, got %q", details, cliErr.Details)
			}
			if len(cliErr.Suggestions) != 1 || cliErr.Suggestions[0] != suggestion {
				t.Errorf("Expected suggestion %q, got %v", suggestion, cliErr.Suggestions)
			}
		})
	}
}
