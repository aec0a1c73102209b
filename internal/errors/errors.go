package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with code, message, and metadata
type Error struct {
	Code    Code                   `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code
func (e *Error) Is(target error) bool {
	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// WithMeta adds metadata to the error
func (e *Error) WithMeta(key string, value interface{}) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]interface{})
	}
	e.Meta[key] = value
	return e
}

// New creates a new error with the given code and message
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new error with a formatted message
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error, preserving its code if it is an Error
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Code:    existingErr.Code,
			Message: message,
			Cause:   err,
			Meta:    existingErr.Meta,
		}
	}

	return &Error{
		Code:    CodeInternal,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with a formatted message
func Wrapf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error with a specific code
func WrapWithCode(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Constructor functions for the codes this engine actually returns

// InvalidArgument creates an invalid argument error
func InvalidArgument(message string) *Error {
	return New(CodeInvalidArgument, message)
}

// InvalidArgumentf creates an invalid argument error with formatted message
func InvalidArgumentf(format string, args ...interface{}) *Error {
	return Newf(CodeInvalidArgument, format, args...)
}

// NotFound creates a not found error
func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

// NotFoundf creates a not found error with formatted message
func NotFoundf(format string, args ...interface{}) *Error {
	return Newf(CodeNotFound, format, args...)
}

// AlreadyExists creates an already exists error
func AlreadyExists(message string) *Error {
	return New(CodeAlreadyExists, message)
}

// Internal creates an internal error
func Internal(message string) *Error {
	return New(CodeInternal, message)
}

// Internalf creates an internal error with formatted message
func Internalf(format string, args ...interface{}) *Error {
	return Newf(CodeInternal, format, args...)
}

// Unavailable creates an unavailable error
func Unavailable(message string) *Error {
	return New(CodeUnavailable, message)
}

// UnknownTileCharacter creates an unknown tile character error
func UnknownTileCharacter(message string) *Error {
	return New(CodeUnknownTileCharacter, message)
}

// UnknownTileCharacterf creates an unknown tile character error with formatted message
func UnknownTileCharacterf(format string, args ...interface{}) *Error {
	return Newf(CodeUnknownTileCharacter, format, args...)
}

// MalformedFloorGrid creates a malformed floor grid error
func MalformedFloorGrid(message string) *Error {
	return New(CodeMalformedFloorGrid, message)
}

// MalformedFloorGridf creates a malformed floor grid error with formatted message
func MalformedFloorGridf(format string, args ...interface{}) *Error {
	return Newf(CodeMalformedFloorGrid, format, args...)
}

// MissingRequiredSection creates a missing required section error
func MissingRequiredSection(message string) *Error {
	return New(CodeMissingRequiredSection, message)
}

// MissingRequiredSectionf creates a missing required section error with formatted message
func MissingRequiredSectionf(format string, args ...interface{}) *Error {
	return Newf(CodeMissingRequiredSection, format, args...)
}

// EntityNotFound creates an entity not found error
func EntityNotFound(message string) *Error {
	return New(CodeEntityNotFound, message)
}

// EntityNotFoundf creates an entity not found error with formatted message
func EntityNotFoundf(format string, args ...interface{}) *Error {
	return Newf(CodeEntityNotFound, format, args...)
}

// InvalidMove creates an invalid move error
func InvalidMove(message string) *Error {
	return New(CodeInvalidMove, message)
}

// InvalidMovef creates an invalid move error with formatted message
func InvalidMovef(format string, args ...interface{}) *Error {
	return Newf(CodeInvalidMove, format, args...)
}

// PositionOccupied creates a position occupied error
func PositionOccupied(message string) *Error {
	return New(CodePositionOccupied, message)
}

// PositionOccupiedf creates a position occupied error with formatted message
func PositionOccupiedf(format string, args ...interface{}) *Error {
	return Newf(CodePositionOccupied, format, args...)
}

// InconsistentLedger creates an inconsistent ledger error
func InconsistentLedger(message string) *Error {
	return New(CodeInconsistentLedger, message)
}

// InconsistentLedgerf creates an inconsistent ledger error with formatted message
func InconsistentLedgerf(format string, args ...interface{}) *Error {
	return Newf(CodeInconsistentLedger, format, args...)
}
