package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error kinds returned at the contract boundary. Callers branch on the kind,
// never on message text.
const (
	KindNotFound        = "NOT_FOUND"
	KindInvalidArgument = "INVALID_ARGUMENT"
	KindConflict        = "CONFLICT"
	KindForbidden       = "FORBIDDEN"
	KindUnauthorized    = "UNAUTHORIZED"
	KindInternal        = "INTERNAL_ERROR"
)

// APIError represents a standardized error response
type APIError struct {
	Kind    string      `json:"kind"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(kind, message string) *APIError {
	return &APIError{
		Kind:    kind,
		Message: message,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// Helper functions for common error responses

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(KindNotFound, message))
}

// BadRequest sends a 400 response with the InvalidArgument kind
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(KindInvalidArgument, message))
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Resource conflict"
	}
	RespondWithError(c, http.StatusConflict, NewAPIError(KindConflict, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, NewAPIError(KindForbidden, message))
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Caller identity required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(KindUnauthorized, message))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(KindInternal, message))
}
