// Package derrors defines the coded error type shared by all ledger layers.
//
// Services and domain models return these errors directly; stores return
// pkg/platform/sentinel errors which services translate into coded errors at
// the boundary. Transport layers map codes to HTTP statuses with ToHTTPStatus
// and must never invent their own status mapping.
package derrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a failure for callers. The protocol codes mirror the ledger
// error taxonomy; the remaining codes cover infrastructure plumbing.
type Code string

const (
	// Protocol codes.
	CodeUnauthorized          Code = "unauthorized"           // caller lacks the required role
	CodeInvalidAsset          Code = "invalid_asset"          // asset id does not reference an existing asset
	CodeInvalidParameters     Code = "invalid_parameters"     // malformed or out-of-range input
	CodeComplianceViolation   Code = "compliance_violation"   // recipient not approved for the asset
	CodeInsufficientOwnership Code = "insufficient_ownership" // sender balance too low
	CodeTransferRejected      Code = "transfer_rejected"      // certificate mint or transfer step failed

	// Infrastructure codes.
	CodeNotFound Code = "not_found"
	CodeConflict Code = "conflict"
	CodeInternal Code = "internal"
	CodeTimeout  Code = "timeout"
)

// Error carries a code, a caller-safe message, and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in this package.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to the HTTP status used by the transport facade.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeInvalidAsset, CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidParameters:
		return http.StatusBadRequest
	case CodeComplianceViolation:
		return http.StatusForbidden
	case CodeInsufficientOwnership:
		return http.StatusUnprocessableEntity
	case CodeTransferRejected, CodeConflict:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
