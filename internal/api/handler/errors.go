package handler

import (
	"net/http"

	"github.com/MdMahbub-h/RabbleGamePenaltyShootout/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest = apierr.CodeInvalidRequest
	CodeUnauthorized   = apierr.CodeUnauthorized
	CodeAdminDisabled  = apierr.CodeAdminDisabled
	CodePlayerNotFound = apierr.CodePlayerNotFound
	CodeUnknownLevel   = apierr.CodeUnknownLevel
	CodeInternalError  = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewUnknownLevelError creates an unknown point level error
func NewUnknownLevelError(level string) error {
	return apierr.NewUnknownLevelError(level)
}
