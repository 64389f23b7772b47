package scheduler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired        = errors.New("config is required")
	ErrEndpointRequired      = errors.New("scheduler endpoint is required")
	ErrSkipTLSOnlyInDev      = errors.New("skipTLS is only allowed in development environments")
	ErrRootInfoRequestFailed = errors.New("root info request failed")
	ErrNoUAAOrLoginURL       = errors.New("no UAA or login URL found in API root response")
	ErrAPIEndpointRequired   = errors.New("API endpoint is required to discover the token URL")
	ErrMissingField          = errors.New("missing required field")
	ErrUnknownExpressionType = errors.New("unknown expression type")
	ErrFetcherRequired       = errors.New("page fetcher is required")
	ErrNilPage               = errors.New("page fetcher returned no page")
	ErrNoMoreItems           = errors.New("no more items")
)

// ErrorDetail is a single entry of a scheduler error payload.
type ErrorDetail struct {
	Resource string   `json:"resource" yaml:"resource"`
	Messages []string `json:"messages" yaml:"messages"`
}

// ResponseError is a 4xx or 5xx response with a well-formed scheduler error payload.
type ResponseError struct {
	StatusCode  int           `json:"-"`
	Description string        `json:"description"`
	Errors      []ErrorDetail `json:"errors"`
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	description := e.Description
	if description == "" {
		description = http.StatusText(e.StatusCode)
	}

	if len(e.Errors) == 0 {
		return fmt.Sprintf("%s (status: %d)", description, e.StatusCode)
	}

	details := make([]string, 0, len(e.Errors))
	for _, detail := range e.Errors {
		details = append(details, fmt.Sprintf("%s: %s", detail.Resource, strings.Join(detail.Messages, ", ")))
	}

	return fmt.Sprintf("%s (status: %d): %s", description, e.StatusCode, strings.Join(details, "; "))
}

// UnknownError is a 4xx or 5xx response whose payload could not be interpreted.
type UnknownError struct {
	StatusCode int
	Payload    string
}

// Error implements the error interface.
func (e *UnknownError) Error() string {
	return fmt.Sprintf("unknown scheduler error (status: %d)", e.StatusCode)
}

// PageError reports the page whose fetch failed during aggregation.
type PageError struct {
	Page int
	Err  error
}

// Error implements the error interface.
func (e *PageError) Error() string {
	return fmt.Sprintf("fetching page %d: %v", e.Page, e.Err)
}

// Unwrap returns the underlying fetch error.
func (e *PageError) Unwrap() error {
	return e.Err
}

// ParseResponseError maps an error response body to a ResponseError, or to an
// UnknownError when the body is empty or not a scheduler error payload.
func ParseResponseError(statusCode int, body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return &UnknownError{StatusCode: statusCode}
	}

	var payload struct {
		Description string         `json:"description"`
		Errors      *[]ErrorDetail `json:"errors"`
	}

	err := json.Unmarshal(body, &payload)
	if err != nil || payload.Errors == nil {
		return &UnknownError{StatusCode: statusCode, Payload: string(body)}
	}

	return &ResponseError{
		StatusCode:  statusCode,
		Description: payload.Description,
		Errors:      *payload.Errors,
	}
}

// StatusCode returns the HTTP status carried by a scheduler error, or 0.
func StatusCode(err error) int {
	respErr := &ResponseError{}
	if errors.As(err, &respErr) {
		return respErr.StatusCode
	}

	unknownErr := &UnknownError{}
	if errors.As(err, &unknownErr) {
		return unknownErr.StatusCode
	}

	return 0
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}
