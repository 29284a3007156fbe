package textgen

import (
	"errors"
	"fmt"
	"strings"

	"lumen/internal/services"
)

// ErrGenerationUnavailable reports that neither the primary nor the fallback
// provider produced usable text. The request may be retried later.
var ErrGenerationUnavailable = fmt.Errorf("%w: text generation", services.ErrUnavailable)

// Attempt records the outcome of a single provider call.
type Attempt struct {
	Provider string
	Err      error
}

// UnavailableError carries the per-provider failures behind
// ErrGenerationUnavailable.
type UnavailableError struct {
	Attempts []Attempt
}

func (e *UnavailableError) Error() string {
	if e == nil || len(e.Attempts) == 0 {
		return ErrGenerationUnavailable.Error()
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, attempt := range e.Attempts {
		name := attempt.Provider
		if name == "" {
			name = "unconfigured"
		}
		parts = append(parts, fmt.Sprintf("%s: %v", name, attempt.Err))
	}
	return fmt.Sprintf("%s (%s)", ErrGenerationUnavailable.Error(), strings.Join(parts, "; "))
}

// ErrorKind classifies the error for API responses.
func (e *UnavailableError) ErrorKind() string { return "unavailable" }

// Retryable is always true; provider outages are expected to be transient.
func (e *UnavailableError) Retryable() bool { return true }

func (e *UnavailableError) Unwrap() []error {
	errs := []error{ErrGenerationUnavailable}
	if e == nil {
		return errs
	}
	for _, attempt := range e.Attempts {
		if attempt.Err != nil {
			errs = append(errs, attempt.Err)
		}
	}
	return errs
}

// IsUnavailable reports whether err signals exhausted generation providers.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrGenerationUnavailable)
}
