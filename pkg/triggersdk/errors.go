package triggersdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Error codes returned by the service.
const (
	ErrorCodeInvalidRequest    = "invalid_request"
	ErrorCodeInvalidToken      = "invalid_token"
	ErrorCodeDuplicateDevice   = "duplicate_device"
	ErrorCodeUnknownDevice     = "unknown_device"
	ErrorCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrorCodeServerError       = "server_error"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Code is the machine readable error code (e.g., "duplicate_device")
	Code string

	// Description is a human-readable description of the error
	Description string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("%s (status %d)", e.Code, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches another *APIError by code, so callers can write
// errors.Is(err, triggersdk.ErrDuplicateDevice).
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrInvalidRequest  = &APIError{StatusCode: http.StatusBadRequest, Code: ErrorCodeInvalidRequest}
	ErrInvalidToken    = &APIError{StatusCode: http.StatusUnauthorized, Code: ErrorCodeInvalidToken}
	ErrDuplicateDevice = &APIError{StatusCode: http.StatusConflict, Code: ErrorCodeDuplicateDevice}
	ErrUnknownDevice   = &APIError{StatusCode: http.StatusNotFound, Code: ErrorCodeUnknownDevice}
	ErrRateLimited     = &APIError{StatusCode: http.StatusTooManyRequests, Code: ErrorCodeRateLimitExceeded}
	ErrServerError     = &APIError{StatusCode: http.StatusInternalServerError, Code: ErrorCodeServerError}
)

// parseErrorResponse parses an HTTP error response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	// Fallback: generic error from status code
	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        strings.ReplaceAll(strings.ToLower(http.StatusText(resp.StatusCode)), " ", "_"),
		Description: strings.TrimSpace(string(body)),
	}
}
