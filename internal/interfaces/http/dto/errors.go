package dto

import (
	"errors"
	"net/http"
	"strings"

	"github.com/finops/backend/internal/domain/shared"
)

// Error code constants
// Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	ErrCodeInternal   = "ERR_INTERNAL"
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeNotFound   = "ERR_NOT_FOUND"
	ErrCodeConflict   = "ERR_CONFLICT"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed path or query input
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Conflict codes raised by the ledger and the delete guards
const (
	ErrCodeInvalidState     = "ERR_INVALID_STATE"
	ErrCodeHasDependents    = "ERR_HAS_DEPENDENTS"
	ErrCodeDuplicateRequest = "ERR_DUPLICATE_REQUEST"
)

// KindHTTPStatus maps error kinds to HTTP status codes
var KindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation: http.StatusBadRequest,
	shared.KindNotFound:   http.StatusNotFound,
	shared.KindConflict:   http.StatusConflict,
	shared.KindStorage:    http.StatusInternalServerError,
}

// domainCodeMapping maps domain error codes to API codes
var domainCodeMapping = map[string]string{
	"INVALID_INPUT":     ErrCodeValidation,
	"NOT_FOUND":         ErrCodeNotFound,
	"STORAGE_ERROR":     ErrCodeInternal,
	"INVALID_STATE":     ErrCodeInvalidState,
	"HAS_DEPENDENTS":    ErrCodeHasDependents,
	"DUPLICATE_REQUEST": ErrCodeDuplicateRequest,
}

// GetHTTPStatus returns the HTTP status for an error kind.
// Unknown kinds are internal errors.
func GetHTTPStatus(kind shared.ErrorKind) int {
	if status, ok := KindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode converts a domain error code to its API form
func NormalizeErrorCode(code string) string {
	if normalized, ok := domainCodeMapping[code]; ok {
		return normalized
	}
	if code == "" {
		return ErrCodeInternal
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}

// FromError converts err into a status and error body. Storage and unknown
// errors never expose their message; with debug set the cause chain is
// attached for local troubleshooting.
func FromError(err error, requestID string, debug bool) (int, *ErrorInfo) {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		info := &ErrorInfo{
			Code:      ErrCodeInternal,
			Message:   "An unexpected error occurred",
			RequestID: requestID,
		}
		if debug && err != nil {
			info.Cause = causeChain(err)
		}
		return http.StatusInternalServerError, info
	}

	status := GetHTTPStatus(de.Kind)
	info := &ErrorInfo{
		Code:      NormalizeErrorCode(de.Code),
		Message:   de.Message,
		RequestID: requestID,
		Details:   de.Details,
	}
	if status >= http.StatusInternalServerError {
		info.Code = ErrCodeInternal
		if debug {
			info.Cause = causeChain(err)
		}
	}
	return status, info
}

func causeChain(err error) []string {
	var chain []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		chain = append(chain, e.Error())
	}
	return chain
}
