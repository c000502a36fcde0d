// Package errors defines the error taxonomy for stellarkit.
//
// All library errors are represented as StellarKitError, which provides:
//   - Code: Machine-readable error identifier
//   - Message: Human-readable error description
//   - Layer: Which component layer produced the error (codec, key, model, signing, network, observer)
//   - Cause: Underlying error, if any
//   - Context: Additional error details (discriminant, account address, etc.)
//
// Errors compare by code, so callers can test against the exported sentinels:
//
//	if errors.Is(err, skerrors.ErrPrematureEndOfData) { ... }
//
// Use the provided constructor functions (NewCodecError, NewKeyError, etc.)
// to create properly typed errors with automatic layer assignment.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code is a machine-readable error identifier.
type Code string

// Error codes - Codec Layer
const (
	PREMATURE_END_OF_DATA Code = "PREMATURE_END_OF_DATA"
	INVALID_ENCODING      Code = "INVALID_ENCODING"
	UNKNOWN_VARIANT       Code = "UNKNOWN_VARIANT"
	INVALID_LENGTH        Code = "INVALID_LENGTH"
)

// Error codes - Key Layer
const (
	CHECKSUM_MISMATCH Code = "CHECKSUM_MISMATCH"
	UNKNOWN_KEY_TYPE  Code = "UNKNOWN_KEY_TYPE"
)

// Error codes - Model Layer
const (
	MEMO_TOO_LONG       Code = "MEMO_TOO_LONG"
	INVALID_ASSET       Code = "INVALID_ASSET"
	INVALID_AMOUNT      Code = "INVALID_AMOUNT"
	BUILDER_STAGE       Code = "BUILDER_STAGE"
	NO_OPERATIONS       Code = "NO_OPERATIONS"
	TOO_MANY_OPERATIONS Code = "TOO_MANY_OPERATIONS"
	NETWORK_REQUIRED    Code = "NETWORK_REQUIRED"
)

// Error codes - Signing Layer
const (
	MISSING_SIGN_CLOSURE Code = "MISSING_SIGN_CLOSURE"
	SIGNING_FAILED       Code = "SIGNING_FAILED"
)

// Error codes - Network Layer
const (
	NETWORK_ERROR       Code = "NETWORK_ERROR"
	ACCOUNT_NOT_FOUND   Code = "ACCOUNT_NOT_FOUND"
	MISSING_BALANCE     Code = "MISSING_BALANCE"
	SUBMISSION_REJECTED Code = "SUBMISSION_REJECTED"
	TOML_FETCH_FAILED   Code = "TOML_FETCH_FAILED"
	TOML_INVALID        Code = "TOML_INVALID"
	CONFIG_INVALID      Code = "CONFIG_INVALID"
)

// Error codes - Observer Layer
const (
	STREAM_ERROR       Code = "STREAM_ERROR"
	CURSOR_SAVE_FAILED Code = "CURSOR_SAVE_FAILED"
)

// Sentinels for errors.Is matching. Only the Code is compared.
var (
	ErrPrematureEndOfData = &StellarKitError{Code: PREMATURE_END_OF_DATA, Layer: "codec"}
	ErrInvalidEncoding    = &StellarKitError{Code: INVALID_ENCODING, Layer: "codec"}
	ErrUnknownVariant     = &StellarKitError{Code: UNKNOWN_VARIANT, Layer: "codec"}
	ErrInvalidLength      = &StellarKitError{Code: INVALID_LENGTH, Layer: "codec"}
	ErrChecksumMismatch   = &StellarKitError{Code: CHECKSUM_MISMATCH, Layer: "key"}
	ErrUnknownKeyType     = &StellarKitError{Code: UNKNOWN_KEY_TYPE, Layer: "key"}
	ErrMemoTooLong        = &StellarKitError{Code: MEMO_TOO_LONG, Layer: "model"}
	ErrMissingSignClosure = &StellarKitError{Code: MISSING_SIGN_CLOSURE, Layer: "signing"}
	ErrSigningFailed      = &StellarKitError{Code: SIGNING_FAILED, Layer: "signing"}
	ErrSubmissionRejected = &StellarKitError{Code: SUBMISSION_REJECTED, Layer: "network"}
)

// StellarKitError is the base error type for all library errors.
type StellarKitError struct {
	Code    Code
	Message string
	Layer   string // "codec", "key", "model", "signing", "network", "observer"
	Cause   error
	Context map[string]any
}

// Error returns a formatted error string.
func (e *StellarKitError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Layer, e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause error, enabling error chain inspection.
func (e *StellarKitError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error is a StellarKitError with the same code.
func (e *StellarKitError) Is(target error) bool {
	if target == nil {
		return false
	}
	other, ok := target.(*StellarKitError)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// With attaches a context value and returns the receiver for chaining.
func (e *StellarKitError) With(key string, value any) *StellarKitError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func newError(layer string, code Code, message string, cause error) *StellarKitError {
	return &StellarKitError{
		Code:    code,
		Message: message,
		Layer:   layer,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// NewCodecError creates a codec layer error.
func NewCodecError(code Code, message string, cause error) *StellarKitError {
	return newError("codec", code, message, cause)
}

// NewKeyError creates a key layer error.
func NewKeyError(code Code, message string, cause error) *StellarKitError {
	return newError("key", code, message, cause)
}

// NewModelError creates a model layer error.
func NewModelError(code Code, message string, cause error) *StellarKitError {
	return newError("model", code, message, cause)
}

// NewSigningError creates a signing layer error.
func NewSigningError(code Code, message string, cause error) *StellarKitError {
	return newError("signing", code, message, cause)
}

// NewNetworkError creates a network layer error.
func NewNetworkError(code Code, message string, cause error) *StellarKitError {
	return newError("network", code, message, cause)
}

// NewObserverError creates an observer layer error.
func NewObserverError(code Code, message string, cause error) *StellarKitError {
	return newError("observer", code, message, cause)
}

// As finds the first StellarKitError in err's chain and assigns it to target.
func As(err error, target **StellarKitError) bool {
	return stderrors.As(err, target)
}

// CodeOf returns the Code of the first StellarKitError in err's chain, or "".
func CodeOf(err error) Code {
	var e *StellarKitError
	if As(err, &e) {
		return e.Code
	}
	return ""
}
