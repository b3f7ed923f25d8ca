package pos

import (
	"errors"
	"fmt"
)

// OpError represents a failed POS operation.
//
// Error categories:
//   - Concurrent modification: a revision-checked write lost the race.
//     Recoverable: reload and retry, or surface to the user.
//   - Invalid state: the operation is illegal for the current order,
//     item or request state. Never retried.
//   - Not found: the referenced order, item, ingredient or request is
//     missing.
//   - Allocation exhausted: the sequence allocator ran out of retries.
//   - Validation: a required field is missing; detected before any write.
//   - Not authorized: the caller's role may not perform the operation.
type OpError struct {
	// Code identifies the error category.
	Code OpErrorCode

	// Message is a human-readable description.
	Message string

	// OrderID identifies the affected order, when applicable.
	OrderID string

	// RequestID identifies the affected cancellation request.
	RequestID string

	// ItemIndex identifies the affected item (-1 when not applicable).
	ItemIndex int

	// Err is the underlying cause, when one exists.
	Err error
}

// OpErrorCode categorizes operation errors.
type OpErrorCode string

const (
	ErrCodeConcurrentModification OpErrorCode = "CONCURRENT_MODIFICATION"
	ErrCodeInvalidState           OpErrorCode = "INVALID_STATE"
	ErrCodeNotFound               OpErrorCode = "NOT_FOUND"
	ErrCodeAllocationExhausted    OpErrorCode = "ALLOCATION_EXHAUSTED"
	ErrCodeValidation             OpErrorCode = "VALIDATION_ERROR"
	ErrCodeNotAuthorized          OpErrorCode = "NOT_AUTHORIZED"
)

// Error implements the error interface.
func (e *OpError) Error() string {
	switch {
	case e.OrderID != "" && e.ItemIndex >= 0:
		return fmt.Sprintf("%s: %s (orden=%s, item=%d)", e.Code, e.Message, e.OrderID, e.ItemIndex)
	case e.OrderID != "":
		return fmt.Sprintf("%s: %s (orden=%s)", e.Code, e.Message, e.OrderID)
	case e.RequestID != "":
		return fmt.Sprintf("%s: %s (anulacion=%s)", e.Code, e.Message, e.RequestID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause.
func (e *OpError) Unwrap() error { return e.Err }

func hasCode(err error, code OpErrorCode) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Code == code
	}
	return false
}

// IsConflict reports whether err is a concurrent-modification error.
func IsConflict(err error) bool { return hasCode(err, ErrCodeConcurrentModification) }

// IsInvalidState reports whether err is an invalid-state error.
func IsInvalidState(err error) bool { return hasCode(err, ErrCodeInvalidState) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsAllocationExhausted reports whether the sequence allocator gave up.
func IsAllocationExhausted(err error) bool { return hasCode(err, ErrCodeAllocationExhausted) }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return hasCode(err, ErrCodeValidation) }

// IsNotAuthorized reports whether err is a role-gate error.
func IsNotAuthorized(err error) bool { return hasCode(err, ErrCodeNotAuthorized) }

func newConflictError(orderID string, err error) *OpError {
	return &OpError{
		Code:      ErrCodeConcurrentModification,
		Message:   "document changed since it was read; reload and retry",
		OrderID:   orderID,
		ItemIndex: -1,
		Err:       err,
	}
}

func newInvalidStateError(orderID string, itemIndex int, message string) *OpError {
	return &OpError{
		Code:      ErrCodeInvalidState,
		Message:   message,
		OrderID:   orderID,
		ItemIndex: itemIndex,
		Err:       nil,
	}
}

func newNotFoundError(message string, err error) *OpError {
	return &OpError{
		Code:      ErrCodeNotFound,
		Message:   message,
		ItemIndex: -1,
		Err:       err,
	}
}

func newValidationError(message string) *OpError {
	return &OpError{
		Code:      ErrCodeValidation,
		Message:   message,
		ItemIndex: -1,
	}
}

func newNotAuthorizedError(message string) *OpError {
	return &OpError{
		Code:      ErrCodeNotAuthorized,
		Message:   message,
		ItemIndex: -1,
	}
}
