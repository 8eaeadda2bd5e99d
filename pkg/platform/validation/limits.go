package validation

import (
	"fmt"
	"unicode/utf8"

	dErrors "idcard/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize is the maximum allowed request body size (1 MiB).
	// Biometric fields carry references, not image bytes.
	MaxBodySize = 1 << 20
)

// Slice element count limits
const (
	// MaxBulkIDs is the maximum number of record ids accepted by one bulk request.
	MaxBulkIDs = 500
)

// String element length limits
const (
	MaxCitizenIDLength    = 64
	MaxNameLength         = 100
	MaxPhoneLength        = 32
	MaxAddressPartLength  = 100
	MaxBiometricRefLength = 2048
	MaxUsernameLength     = 100
)

// CheckSliceCount validates that a slice does not exceed the maximum count.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length in characters.
// Amharic fields are multi-byte, so the limit counts runes.
func CheckStringLength(fieldName, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckEachStringLength validates that each string in a slice does not exceed the maximum length.
func CheckEachStringLength(fieldName string, values []string, max int) error {
	for _, v := range values {
		if err := CheckStringLength(fieldName, v, max); err != nil {
			return err
		}
	}
	return nil
}
