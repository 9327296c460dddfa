// Package errors provides structured error handling for tmbliss.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Path and marker errors
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryPath indicates filesystem path and exclusion marker errors.
	CategoryPath Category = "PATH"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Path errors (200-299)
	ErrCodePathNotFound       = "ERR_201_PATH_NOT_FOUND"
	ErrCodePathInaccessible   = "ERR_202_PATH_INACCESSIBLE"
	ErrCodeCanonicalizeFailed = "ERR_203_CANONICALIZE_FAILED"
	ErrCodeListFailed         = "ERR_204_LIST_FAILED"
	ErrCodeMarkerUnknown      = "ERR_299_MARKER_UNKNOWN"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"

	// Internal errors (500-599)
	ErrCodeInternal      = "ERR_501_INTERNAL"
	ErrCodeServiceLocked = "ERR_502_SERVICE_LOCKED"
	ErrCodePreflight     = "ERR_503_PREFLIGHT_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// "101" from "ERR_101_CONFIG_NOT_FOUND"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryPath
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}
