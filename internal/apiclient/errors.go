package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the typed failure returned by every backend call. The client
// never performs redirects or session mutation itself — callers inspect the
// error and decide (the HTTP layer owns the 401 logout-and-redirect).
type APIError struct {
	// Status is the HTTP status code, or 0 for transport failures.
	Status int
	// Role is set for 401 responses: the session the failure invalidates,
	// classified from the page path the request was issued for.
	Role string
	// Message is the backend's human-readable message when it sent one.
	Message string
	// Err is the underlying transport error, if any.
	Err error
}

func (e *APIError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("backend request failed: %v", e.Err)
	case e.Message != "":
		return e.Message
	default:
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Unauthorized reports whether this is an authentication failure.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// Transport reports whether the request never produced a response.
func (e *APIError) Transport() bool {
	return e.Status == 0
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
