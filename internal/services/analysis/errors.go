package analysis

import (
	"errors"
	"net/http"
)

// Kind classifies pipeline failures by how they surface to the caller.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
	KindForecast     Kind = "forecast"
	KindCommentary   Kind = "commentary"
	KindInsight      Kind = "insight"
	KindInternal     Kind = "internal"
)

// ServerErrorMessage is returned for any failure without a specific message.
const ServerErrorMessage = "Server error occurred"

// Error is a classified pipeline failure. Message is safe to show to clients;
// Err carries the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so wrapped sentinels compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Status returns the HTTP status for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrCompanyNameRequired  = &Error{Kind: KindInvalidInput, Message: "Company name is required"}
	ErrCompanyNotFound      = &Error{Kind: KindNotFound, Message: "Company not found in FMP"}
	ErrForecast             = &Error{Kind: KindForecast, Message: "Forecast generation failed."}
	ErrCommentaryGeneration = &Error{Kind: KindCommentary, Message: "Failed to generate valid comments."}
	ErrInsightGeneration    = &Error{Kind: KindInsight, Message: "Insight generation failed."}
)

// wrap attaches a cause to a sentinel, keeping its kind and message.
func wrap(sentinel *Error, err error) *Error {
	return &Error{Kind: sentinel.Kind, Message: sentinel.Message, Err: err}
}

// StatusAndMessage maps any error to the HTTP status and client message.
// Unclassified errors never leak their detail.
func StatusAndMessage(err error) (int, string) {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Status(), e.Message
	}
	return http.StatusInternalServerError, ServerErrorMessage
}

// Outcome labels an Analyze result for metrics.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	var e *Error
	if errors.As(err, &e) {
		return string(e.Kind)
	}
	return string(KindInternal)
}
