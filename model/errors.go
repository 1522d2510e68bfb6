package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition  = errors.New("transition not allowed from current step")
	ErrSubmissionInFlight = errors.New("registration is already being submitted")
	ErrWizardCompleted    = errors.New("registration already completed")
	ErrStepInvalid        = errors.New("step has invalid fields")
	ErrInvalidOption      = errors.New("value is not one of the allowed options")
	ErrUnknownField       = errors.New("unknown registration field")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
)

// SubmissionError is a transport or server-reported failure of the registration request.
type SubmissionError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("registration failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("registration failed: %s", e.Message)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// FetchError is a failed dashboard read or write.
type FetchError struct {
	Resource   string
	Message    string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("error fetching %s (status %d): %s", e.Resource, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("error fetching %s: %s", e.Resource, e.Message)
}

func (e *FetchError) Unwrap() error { return e.Err }
