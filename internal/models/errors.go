package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRetryPolicy indicates a retry policy that cannot be executed
	ErrInvalidRetryPolicy = errors.New("invalid retry policy")

	// ErrDatasetNotFound indicates that the upstream has no such dataset
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrUnknownDataset indicates a dataset key the service does not serve
	ErrUnknownDataset = errors.New("unknown dataset")

	// ErrFetchTimeout indicates that fetching from the upstream timed out
	ErrFetchTimeout = errors.New("timeout while fetching dataset")

	// ErrRateLimitExceeded indicates that rate limit has been exceeded
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidCacheConfig indicates a cache that cannot hold any entry
	ErrInvalidCacheConfig = errors.New("invalid cache configuration")

	// ErrCacheMiss indicates that the key is absent or its entry is stale
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidPayload indicates that a dataset payload is malformed
	ErrInvalidPayload = errors.New("invalid dataset payload")

	// ErrSourceUnavailable is returned by the mock source when it simulates an outage
	ErrSourceUnavailable = errors.New("data source temporarily unavailable")
)

// APIError is the single error shape that leaves the fetch client once
// every attempt has failed. Message is the last underlying failure's message.
type APIError struct {
	Message    string `json:"message"`
	StatusCode *int   `json:"status_code,omitempty"`

	cause error
}

func (e *APIError) Error() string {
	if e.StatusCode != nil {
		return fmt.Sprintf("api error (status %d): %s", *e.StatusCode, e.Message)
	}
	return e.Message
}

// NewAPIError creates a normalized error. statusCode may be nil.
func NewAPIError(message string, statusCode *int) *APIError {
	if message == "" {
		message = "unknown error"
	}
	return &APIError{
		Message:    message,
		StatusCode: statusCode,
	}
}

// WrapAPIError normalizes cause, keeping it reachable through errors.Is/As.
// statusCode may be nil.
func WrapAPIError(cause error, statusCode *int) *APIError {
	apiErr := NewAPIError(cause.Error(), statusCode)
	apiErr.cause = cause
	return apiErr
}

// Unwrap returns the failure the error was built from, if any
func (e *APIError) Unwrap() error {
	return e.cause
}

// AsAPIError reports whether err is (or wraps) an APIError and returns it
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// DatasetError represents an error specific to a dataset operation
type DatasetError struct {
	Dataset string
	Message string
	Err     error
}

func (e *DatasetError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dataset %s: %s: %v", e.Dataset, e.Message, e.Err)
	}
	return fmt.Sprintf("dataset %s: %s", e.Dataset, e.Message)
}

func (e *DatasetError) Unwrap() error {
	return e.Err
}

// NewDatasetError creates a new dataset-specific error
func NewDatasetError(dataset, message string, err error) *DatasetError {
	return &DatasetError{
		Dataset: dataset,
		Message: message,
		Err:     err,
	}
}
