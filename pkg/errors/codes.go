package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
)

// Chemistry core error codes. These are the four failure categories the
// structure model and its converters report.
const (
	// ErrCodeChemValidation marks an invariant violation on mutation: unknown
	// endpoint atom, duplicate id, containment cycle.
	ErrCodeChemValidation ErrorCode = "CHEM_001"
	// ErrCodeChemReference marks a path or id that does not resolve.
	ErrCodeChemReference ErrorCode = "CHEM_002"
	// ErrCodeChemGeometry marks degenerate geometry (coincident points) fed
	// into an angle or intersection computation. Always fatal.
	ErrCodeChemGeometry ErrorCode = "CHEM_003"
	// ErrCodeChemFormat marks malformed external-format input.
	ErrCodeChemFormat ErrorCode = "CHEM_004"
)

// Structure library error codes.
const (
	ErrCodeStructureNotFound      ErrorCode = "LIB_001"
	ErrCodeStructureFormatUnknown ErrorCode = "LIB_002"
	ErrCodeDocumentStorageFailed  ErrorCode = "LIB_003"
	ErrCodeEventPublishFailed     ErrorCode = "LIB_004"
	ErrCodeSearchIndexFailed      ErrorCode = "LIB_005"
	ErrCodeGraphProjectionFailed  ErrorCode = "LIB_006"
)

// Aliases kept short for call sites.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")

	CodeValidation = ErrCodeChemValidation
	CodeReference  = ErrCodeChemReference
	CodeGeometry   = ErrCodeChemGeometry
	CodeFormat     = ErrCodeChemFormat
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeChemValidation: http.StatusUnprocessableEntity,
	ErrCodeChemReference:  http.StatusNotFound,
	ErrCodeChemGeometry:   http.StatusUnprocessableEntity,
	ErrCodeChemFormat:     http.StatusBadRequest,

	ErrCodeStructureNotFound:      http.StatusNotFound,
	ErrCodeStructureFormatUnknown: http.StatusBadRequest,
	ErrCodeDocumentStorageFailed:  http.StatusInternalServerError,
	ErrCodeEventPublishFailed:     http.StatusInternalServerError,
	ErrCodeSearchIndexFailed:      http.StatusInternalServerError,
	ErrCodeGraphProjectionFailed:  http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeChemValidation: "structure validation failed",
	ErrCodeChemReference:  "structure reference not resolved",
	ErrCodeChemGeometry:   "degenerate geometry",
	ErrCodeChemFormat:     "malformed structure format",

	ErrCodeStructureNotFound:      "structure not found",
	ErrCodeStructureFormatUnknown: "unknown structure format",
	ErrCodeDocumentStorageFailed:  "document storage failed",
	ErrCodeEventPublishFailed:     "event publish failed",
	ErrCodeSearchIndexFailed:      "search indexing failed",
	ErrCodeGraphProjectionFailed:  "graph projection failed",
}

// HTTPStatusForCode returns the HTTP status for code, 500 when unmapped.
func HTTPStatusForCode(code ErrorCode) int {
	if s, ok := ErrorCodeHTTPStatus[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for code.
func DefaultMessageForCode(code ErrorCode) string {
	if m, ok := ErrorCodeMessage[code]; ok {
		return m
	}
	return "unknown error"
}

// IsClientError reports whether code maps to a 4xx status.
func IsClientError(code ErrorCode) bool {
	s := HTTPStatusForCode(code)
	return s >= 400 && s < 500
}

// IsServerError reports whether code maps to a 5xx status.
func IsServerError(code ErrorCode) bool {
	return HTTPStatusForCode(code) >= 500
}

// ModuleForCode returns the module prefix of code ("COMMON", "CHEM", "LIB").
func ModuleForCode(code ErrorCode) string {
	s := string(code)
	if i := strings.Index(s, "_"); i > 0 {
		return s[:i]
	}
	return s
}

//Personal.AI order the ending
