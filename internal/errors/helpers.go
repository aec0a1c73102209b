package errors

import (
	"errors"
)

// As is a wrapper around errors.As that works with our Error type
func As(err error, target **Error) bool {
	return errors.As(err, target)
}

// Is checks if an error matches a target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// GetCode extracts the error code from an error
func GetCode(err error) Code {
	if err == nil {
		return CodeOK
	}

	var customErr *Error
	if errors.As(err, &customErr) {
		return customErr.Code
	}

	return CodeInternal
}

// GetMeta extracts metadata from an error
func GetMeta(err error) map[string]interface{} {
	if err == nil {
		return nil
	}

	var customErr *Error
	if errors.As(err, &customErr) {
		return customErr.Meta
	}

	return nil
}

// hasCode reports whether err carries the given code
func hasCode(err error, code Code) bool {
	return GetCode(err) == code
}

// IsNotFound checks for generic not found errors
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsInvalidArgument checks for invalid argument errors
func IsInvalidArgument(err error) bool {
	return hasCode(err, CodeInvalidArgument)
}

// IsUnknownTileCharacter checks for unknown tile character errors
func IsUnknownTileCharacter(err error) bool {
	return hasCode(err, CodeUnknownTileCharacter)
}

// IsMalformedFloorGrid checks for malformed floor grid errors
func IsMalformedFloorGrid(err error) bool {
	return hasCode(err, CodeMalformedFloorGrid)
}

// IsMissingRequiredSection checks for missing required section errors
func IsMissingRequiredSection(err error) bool {
	return hasCode(err, CodeMissingRequiredSection)
}

// IsEntityNotFound checks for entity not found errors
func IsEntityNotFound(err error) bool {
	return hasCode(err, CodeEntityNotFound)
}

// IsInvalidMove checks for invalid move errors
func IsInvalidMove(err error) bool {
	return hasCode(err, CodeInvalidMove)
}

// IsPositionOccupied checks for position occupied errors
func IsPositionOccupied(err error) bool {
	return hasCode(err, CodePositionOccupied)
}

// IsInconsistentLedger checks for inconsistent ledger errors
func IsInconsistentLedger(err error) bool {
	return hasCode(err, CodeInconsistentLedger)
}
