package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"sort"
	"strings"
)

// PlatformError is the structured error returned by green-lib packages.
// Use errors.As to extract it from a wrapped chain.
type PlatformError interface {
	error

	// Code returns the error classification.
	Code() ErrorCode

	// Message returns the human readable message without the cause.
	Message() string

	// Context returns diagnostic key/value pairs (path, url, expected, actual, ...).
	Context() map[string]interface{}

	// Retryable reports whether the operation may succeed if attempted again.
	Retryable() bool

	// Unwrap returns the underlying cause, if any.
	Unwrap() error
}

type platformError struct {
	code      ErrorCode
	message   string
	context   map[string]interface{}
	retryable bool
	cause     error
}

func (e *platformError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.code))
	b.WriteString(": ")
	b.WriteString(e.message)

	if len(e.context) > 0 {
		keys := make([]string, 0, len(e.context))
		for k := range e.context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.context[k])
		}
		b.WriteString(")")
	}

	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *platformError) Code() ErrorCode { return e.code }
func (e *platformError) Message() string { return e.message }
func (e *platformError) Context() map[string]interface{} { return maps.Clone(e.context) }
func (e *platformError) Retryable() bool { return e.retryable }
func (e *platformError) Unwrap() error { return e.cause }

// New creates a PlatformError with the given code and message.
//
//nolint:ireturn // PlatformError is the package's public error contract.
func New(code ErrorCode, message string) PlatformError {
	return &platformError{
		code:      code,
		message:   message,
		retryable: IsRetryableCode(code),
	}
}

// Wrap wraps err with a code and message. A nil err still produces an error.
//
//nolint:ireturn // PlatformError is the package's public error contract.
func Wrap(err error, code ErrorCode, message string) PlatformError {
	return WrapWithContext(err, code, message, nil)
}

// WrapWithContext wraps err with a code, message and diagnostic context.
//
//nolint:ireturn // PlatformError is the package's public error contract.
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]interface{}) PlatformError {
	return &platformError{
		code:      code,
		message:   message,
		context:   maps.Clone(ctx),
		retryable: IsRetryableCode(code),
		cause:     err,
	}
}

// GetCode returns the code of the outermost PlatformError in err's chain,
// or CodeUnknown if there is none.
func GetCode(err error) ErrorCode {
	var pe PlatformError
	if stderrors.As(err, &pe) {
		return pe.Code()
	}
	return CodeUnknown
}

// HasCode reports whether any PlatformError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if pe, ok := err.(PlatformError); ok && pe.Code() == code { //nolint:errorlint // walking the chain manually
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// IsRetryable reports whether the outermost PlatformError in err's chain is retryable.
func IsRetryable(err error) bool {
	var pe PlatformError
	if stderrors.As(err, &pe) {
		return pe.Retryable()
	}
	return false
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return stderrors.As(err, target) }

// Join returns an error that wraps the given errors.
func Join(errs ...error) error { return stderrors.Join(errs...) }
