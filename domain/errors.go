package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeInvalid       ErrorCode = "INVALID"
	ErrCodeUnavailable   ErrorCode = "STORAGE_UNAVAILABLE"
	ErrCodeQuotaExceeded ErrorCode = "QUOTA_EXCEEDED"
	ErrCodeInternal      ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrTodoNotFound     = NewError(ErrCodeNotFound, "todo not found")
	ErrCategoryNotFound = NewError(ErrCodeNotFound, "category not found")
	ErrInvalidPayload   = NewError(ErrCodeInvalid, "invalid payload")

	ErrEmptyTitle          = NewError(ErrCodeInvalid, "title cannot be empty")
	ErrTitleTooLong        = NewError(ErrCodeInvalid, "title exceeds maximum length")
	ErrEmptyCategoryName   = NewError(ErrCodeInvalid, "category name cannot be empty")
	ErrCategoryNameTooLong = NewError(ErrCodeInvalid, "category name exceeds maximum length")
	ErrInvalidPriority     = NewError(ErrCodeInvalid, "priority must be one of high, medium, low")
	ErrInvalidDeadline     = NewError(ErrCodeInvalid, "deadline must be an RFC 3339 time or a YYYY-MM-DD date")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// CodeOf returns the classification of err, or ErrCodeInternal when err carries none.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return ErrCodeInternal
}
