package common

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// Ingestion errors. PDF parse failures never leave the extractor.
var (
	ErrBadContentType     = errors.New("content type is not multipart/form-data")
	ErrBadBoundary        = errors.New("invalid boundary in multipart/form-data")
	ErrBadLength          = errors.New("missing or invalid content-length")
	ErrPayloadTooLarge    = fmt.Errorf("%w: payload exceeds upload limit", ErrBadLength)
	ErrNoFileFound        = errors.New("no file found in form data")
	ErrMissingBoundary    = errors.New("boundary token missing")
	ErrMalformedHeaders   = errors.New("malformed part headers")
	ErrUnreadable         = errors.New("payload unreadable")
	ErrPDFParse           = errors.New("pdf parse failed")
	ErrTimeout            = errors.New("operation timed out")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Error codes carried by AppError.
const (
	CodeBadContentType     = "BAD_CONTENT_TYPE"
	CodeBadBoundary        = "BAD_BOUNDARY"
	CodeBadLength          = "BAD_LENGTH"
	CodeNoFileFound        = "NO_FILE_FOUND"
	CodeMissingBoundary    = "MISSING_BOUNDARY"
	CodeMalformedHeaders   = "MALFORMED_HEADERS"
	CodeUnreadable         = "UNREADABLE"
	CodePDFParseFailed     = "PDF_PARSE_FAILED"
	CodeTimeout            = "TIMEOUT"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeConfig             = "CONFIG_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrorCode returns the AppError code found in err's chain, or CodeInternal.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// HTTPStatus maps an error to the status code a client should see.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrTimeout):
		return http.StatusRequestTimeout
	case errors.Is(err, ErrBadContentType),
		errors.Is(err, ErrBadBoundary),
		errors.Is(err, ErrBadLength),
		errors.Is(err, ErrNoFileFound),
		errors.Is(err, ErrMissingBoundary),
		errors.Is(err, ErrMalformedHeaders),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnreadable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to return to a client. Internal errors are
// redacted when redact is set.
func PublicMessage(err error, redact bool) string {
	if HTTPStatus(err) >= http.StatusInternalServerError && redact {
		return "internal server error"
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
