package utils

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// Standardized APIError response
type APIError struct {
	StatusCode int    `json:"-"` // HTTP status code, not included in JSON response body for error itself
	Code       string `json:"code,omitempty"` // Application-specific error code
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
}

// NewAPIError creates a new APIError instance
func NewAPIError(statusCode int, code string, message string, details string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Details:    details,
	}
}

// RespondWithError sends the standardized JSON error envelope:
// {"ok": false, "error": {...}}. User-facing messages are French, matching
// the terminals the association runs.
func RespondWithError(c *gin.Context, err *APIError) {
	c.JSON(err.StatusCode, gin.H{"ok": false, "error": err})
	c.Abort()
}

// Common Error Constants
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeCSRF                = "CSRF_FAILED"
)

// Validation functions

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsValidEmail checks if a string is a valid email format.
var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(strings.ToLower(email))
}

// IsValidPasswordLength checks if password meets minimum length requirement.
func IsValidPasswordLength(password string, minLength int) bool {
	return len(password) >= minLength
}
