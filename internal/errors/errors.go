package errors

import (
	stderrors "errors"
	"fmt"
)

// GenericDetail is the fallback message used when an error response body
// cannot be parsed into the expected {detail} shape.
const GenericDetail = "Unknown error"

// ErrUnauthenticated signals that the session is absent, expired, or was
// rejected by the server with a 401. It is deliberately distinct from
// APIError: callers must treat it as "re-authenticate", never as a
// retryable business error. Detection clears the session store as a side
// effect before this error is returned.
var ErrUnauthenticated = stderrors.New("unauthenticated")

// APIError represents a non-success HTTP response from the backend,
// carrying the status code and the server-provided detail message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// NewAPIError creates an APIError, substituting the generic fallback
// message when the server provided none.
func NewAPIError(status int, message string) *APIError {
	if message == "" {
		message = GenericDetail
	}
	return &APIError{Status: status, Message: message}
}

// SchemaViolation represents a payload that failed shape or constraint
// validation: either a successful response whose body does not match the
// expected schema, or an outbound request body rejected before any network
// call. No partial value is ever returned alongside it.
type SchemaViolation struct {
	Shape  string
	Reason string
	Err    error
}

func (e *SchemaViolation) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("schema violation in %s: %s", e.Shape, e.Reason)
	}
	return fmt.Sprintf("schema violation in %s", e.Shape)
}

func (e *SchemaViolation) Unwrap() error {
	return e.Err
}

// AsAPIError extracts an APIError from an error chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsSchemaViolation reports whether the error chain contains a schema violation.
func IsSchemaViolation(err error) bool {
	var sv *SchemaViolation
	return stderrors.As(err, &sv)
}
