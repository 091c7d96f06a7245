package signupsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/firststore/pkg/httpx"
)

const (
	ErrorCodeInvalidRequest    = httpx.ErrCodeInvalidRequest
	ErrorCodeNotFound          = httpx.ErrCodeNotFound
	ErrorCodeInvalidStep       = httpx.ErrCodeInvalidStep
	ErrorCodeRateLimitExceeded = httpx.ErrCodeRateLimitExceeded
	ErrorCodeServerError       = httpx.ErrCodeServerError
)

// APIError is an error response from the signup service. Handlers use it to
// write responses and the client returns it for every non-2xx status.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches on status and code so that errors.Is works against the
// predefined values below regardless of description.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Code == t.Code
}

// WriteError writes this error to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Code, e.Description)
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	ErrSessionNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "signup session not found",
	}

	// ErrInvalidStep is returned when an operation does not apply to the
	// session's current step.
	ErrInvalidStep = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeInvalidStep,
		Description: "operation not allowed in the current step",
	}

	ErrRateLimited = &APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        ErrorCodeRateLimitExceeded,
		Description: "Too many requests. Please try again later.",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// WithDescription returns a copy of e carrying a request-specific description.
// The copy still matches e under errors.Is.
func (e *APIError) WithDescription(description string) *APIError {
	c := *e
	c.Description = description
	return &c
}

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
