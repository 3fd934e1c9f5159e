package domain

import (
	"errors"
	"fmt"
)

// ErrRetrievalUnavailable is returned when both the vector and keyword search
// paths fail for the same query.
var ErrRetrievalUnavailable = errors.New("retrieval unavailable: both search paths failed")

// ErrServiceUnavailable is returned when a circuit breaker is open and calls
// to the guarded service are being short-circuited.
var ErrServiceUnavailable = errors.New("service unavailable: circuit open")

// ValidationError marks structural or configuration problems. It is surfaced
// immediately, before any external call, and is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a named field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ServiceError marks a failure of a named external service after local retry
// budget exhaustion. The failing service is always identified.
type ServiceError struct {
	Service string // "embedding", "vector_store", "keyword_index", "rerank"
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service: %v", e.Service, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// NewServiceError wraps err with the name of the failing service.
func NewServiceError(service string, err error) *ServiceError {
	return &ServiceError{Service: service, Err: err}
}

// Retryable reports whether an error is worth retrying. Validation errors and
// an open circuit are terminal; everything else is treated as transient.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if IsValidation(err) {
		return false
	}
	return !errors.Is(err, ErrServiceUnavailable)
}
