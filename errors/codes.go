// Package errors provides the error taxonomy used across green-lib.
// It extends Go's standard error handling with structured error codes, retry classification
// and diagnostic context (paths, URLs, digests) attached to every failure.
package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates a requested resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates a resource already exists and cannot be created again.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// CodeSchemaFailed indicates a document failed to decode or validate.
	CodeSchemaFailed ErrorCode = "SCHEMA_VALIDATION_FAILED"

	// Transfer errors.

	// CodeNetwork indicates a transport-level failure: the request could not be made.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeUnavailable indicates the remote is temporarily unavailable.
	CodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// CodeProtocol indicates a request completed but the response was unusable.
	CodeProtocol ErrorCode = "PROTOCOL_ERROR"

	// CodeRetryExhausted indicates a retried operation ran out of attempts.
	CodeRetryExhausted ErrorCode = "RETRY_EXHAUSTED"

	// CodeIntegrity indicates content did not match its declared digest.
	CodeIntegrity ErrorCode = "INTEGRITY_CHECK_FAILED"

	// Local errors.

	// CodeFilesystem indicates a local file or directory operation failed.
	CodeFilesystem ErrorCode = "FILESYSTEM_ERROR"

	// CodeCanceled indicates the operation was aborted before completion.
	CodeCanceled ErrorCode = "CANCELED"

	// System errors.

	// CodeInternal indicates an internal error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// retryableCodes are the codes that describe transient conditions.
var retryableCodes = map[ErrorCode]bool{
	CodeNetwork:     true,
	CodeTimeout:     true,
	CodeUnavailable: true,
}

// IsRetryableCode reports whether errors with the given code are transient by default.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
