package directory

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError represents an error response from the directory.
type APIError struct {
	StatusCode int
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// IsAuthError returns true if the request was rejected for credentials.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsNotFound returns true if the object does not exist.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsThrottled returns true if the directory asked us to back off.
func (e *APIError) IsThrottled() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// decodeAPIError unpacks the directory's error envelope, falling back
// to the raw body when it is not the expected shape.
func decodeAPIError(statusCode int, body []byte) *APIError {
	var envelope struct {
		Error APIError `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		envelope.Error.StatusCode = statusCode
		return &envelope.Error
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    strings.TrimSpace(string(body)),
	}
}
