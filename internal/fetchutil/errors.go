package fetchutil

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error that occurred during a fetch operation
type ErrorType string

const (
	// ErrorTypeRateLimited indicates the request was rejected due to rate limiting (HTTP 429)
	ErrorTypeRateLimited ErrorType = "rate_limited"
	// ErrorTypeSourceUnavailable indicates a non-2xx status or connection-level failure
	ErrorTypeSourceUnavailable ErrorType = "source_unavailable"
	// ErrorTypeExtraction indicates the document was retrieved but no strategy located the required fields
	ErrorTypeExtraction ErrorType = "extraction_failed"
	// ErrorTypeNormalization indicates a located value could not be parsed into its typed form
	ErrorTypeNormalization ErrorType = "normalization_failed"
)

// FetchError represents a structured error from a fetch operation
type FetchError struct {
	Type       ErrorType
	Retryable  bool
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// NewRateLimitError creates a rate limit error; the only retryable category
func NewRateLimitError(statusCode int) *FetchError {
	return &FetchError{
		Type:       ErrorTypeRateLimited,
		Retryable:  true,
		StatusCode: statusCode,
		Message:    "rate limit exceeded",
	}
}

// NewSourceUnavailableError creates an error for a failed connection or non-2xx response
func NewSourceUnavailableError(statusCode int, cause error) *FetchError {
	msg := "source unavailable"
	if cause != nil {
		msg = cause.Error()
	}
	return &FetchError{
		Type:       ErrorTypeSourceUnavailable,
		Retryable:  false,
		StatusCode: statusCode,
		Message:    msg,
		Cause:      cause,
	}
}

// NewExtractionError creates an error for a document with no recoverable fields
func NewExtractionError(message string) *FetchError {
	return &FetchError{
		Type:      ErrorTypeExtraction,
		Retryable: false,
		Message:   message,
	}
}

// NewNormalizationError creates a per-field parse error; never fatal to the ticker
func NewNormalizationError(field string, cause error) *FetchError {
	return &FetchError{
		Type:      ErrorTypeNormalization,
		Retryable: false,
		Message:   fmt.Sprintf("could not normalize %s", field),
		Cause:     cause,
	}
}

// ClassifyHTTPStatus classifies a non-2xx HTTP status into an appropriate FetchError
func ClassifyHTTPStatus(statusCode int) *FetchError {
	if statusCode == 429 {
		return NewRateLimitError(statusCode)
	}
	return &FetchError{
		Type:       ErrorTypeSourceUnavailable,
		Retryable:  false,
		StatusCode: statusCode,
		Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
	}
}

// IsRateLimited reports whether err is (or wraps) a rate limit error
func IsRateLimited(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Type == ErrorTypeRateLimited
}
