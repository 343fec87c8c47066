package helpers

import (
	"fmt"
	"time"

	"azt-exchange/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type ExchangeError struct {
	Message string
	Cause   error
}

func (e *ExchangeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExchangeError) Unwrap() error {
	return e.Cause
}

// Distinct error types for type assertions where callers care.
// StorageError is the one class that must propagate out of a simulation
// tick; feed and validation errors are contained locally.
type FeedError struct{ ExchangeError }
type StorageError struct{ ExchangeError }
type ValidationError struct{ ExchangeError }

// -----------------------------------------------------------------------------

func NewFeedError(msg string, cause error) *FeedError {
	return &FeedError{ExchangeError{Message: msg, Cause: cause}}
}

func NewStorageError(msg string, cause error) *StorageError {
	return &StorageError{ExchangeError{Message: msg, Cause: cause}}
}

func NewValidationError(msg string, cause error) *ValidationError {
	return &ValidationError{ExchangeError{Message: msg, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times
// with exponential backoff.
func RetryWithBackoff(log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries, operation, err, delay)
		time.Sleep(delay)
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, maxRetries, lastErr)
}
