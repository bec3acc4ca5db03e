// Package errors provides structured error handling for CorpusDB.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Storage errors (SQLite, disk)
//   - 3XX: Not-found errors (library, document, chunk)
//   - 4XX: Bad-request errors (unknown index, dimension mismatch)
//   - 5XX: Validation errors (payload shape and field constraints)
//   - 9XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryStorage indicates database and disk errors.
	CategoryStorage Category = "STORAGE"
	// CategoryNotFound indicates a referenced entity that does not exist.
	CategoryNotFound Category = "NOT_FOUND"
	// CategoryRequest indicates a malformed or unsatisfiable request.
	CategoryRequest Category = "REQUEST"
	// CategoryValidation indicates payload validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Storage errors (200-299)
	ErrCodeStorage         = "ERR_201_STORAGE"
	ErrCodeStoreBusy       = "ERR_202_STORE_BUSY"
	ErrCodeMigrationFailed = "ERR_203_MIGRATION_FAILED"

	// Not-found errors (300-399)
	ErrCodeLibraryNotFound  = "ERR_301_LIBRARY_NOT_FOUND"
	ErrCodeDocumentNotFound = "ERR_302_DOCUMENT_NOT_FOUND"
	ErrCodeChunkNotFound    = "ERR_303_CHUNK_NOT_FOUND"

	// Bad-request errors (400-499)
	ErrCodeUnknownIndex      = "ERR_401_UNKNOWN_INDEX"
	ErrCodeDimensionMismatch = "ERR_402_DIMENSION_MISMATCH"
	ErrCodeInvalidQuery      = "ERR_403_INVALID_QUERY"

	// Validation errors (500-599)
	ErrCodeValidation   = "ERR_501_VALIDATION"
	ErrCodeEmptyText    = "ERR_502_EMPTY_TEXT"
	ErrCodeInvalidPage  = "ERR_503_INVALID_PAGE"
	ErrCodeInvalidField = "ERR_504_INVALID_FIELD"

	// Internal errors (900-999)
	ErrCodeInternal        = "ERR_901_INTERNAL"
	ErrCodeEmbeddingFailed = "ERR_902_EMBEDDING_FAILED"
	ErrCodeIndexFailed     = "ERR_903_INDEX_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Numeric portion, e.g. "301" from "ERR_301_LIBRARY_NOT_FOUND".
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryStorage
	case '3':
		return CategoryNotFound
	case '4':
		return CategoryRequest
	case '5':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch {
	case code == ErrCodeMigrationFailed:
		return SeverityFatal
	case isRetryableCode(code):
		return SeverityWarning
	default:
		return SeverityError
	}
}

// isRetryableCode checks if an error code represents a retryable error.
// Only transient store contention qualifies.
func isRetryableCode(code string) bool {
	return code == ErrCodeStoreBusy
}

// httpStatusForCategory maps a category to the HTTP status the API layer
// responds with.
func httpStatusForCategory(c Category) int {
	switch c {
	case CategoryNotFound:
		return 404
	case CategoryRequest:
		return 400
	case CategoryValidation:
		return 422
	default:
		return 500
	}
}
