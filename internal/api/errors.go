package api

import (
	"errors"
	"fmt"
	"net/http"
)

// DefaultMessage is shown when a failed response carries no message of its own.
const DefaultMessage = "Oops, something went wrong"

var (
	// Authentication-class failure. Triggers the refresh-and-retry protocol.
	ErrUnauthorized = errors.New("unauthorized")

	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("conflict")

	// Transport level failure, the backend could not be reached.
	ErrUnreachable = errors.New("backend unreachable")
	// The backend answered with a body that is not the expected envelope.
	ErrMalformedResponse = errors.New("malformed response")
)

// statusErrors maps HTTP status codes to sentinel errors
var statusErrors = map[int]error{
	http.StatusUnauthorized: ErrUnauthorized,
	http.StatusForbidden:    ErrForbidden,
	http.StatusNotFound:     ErrNotFound,
	http.StatusConflict:     ErrConflict,
}

// RequestError is a failed call. Message is the server supplied message, if any.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, http.StatusText(e.StatusCode))
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func newStatusError(method, path string, status int, message string) *RequestError {
	return &RequestError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Message:    message,
		Err:        statusErrors[status],
	}
}

// IsAuthError reports whether err is an authentication-class failure.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// Message extracts the text to show a user for err. The server supplied
// message wins; otherwise fallback, or DefaultMessage when none is given.
func Message(err error, fallback ...string) string {
	msg := DefaultMessage
	if len(fallback) > 0 && fallback[0] != "" {
		msg = fallback[0]
	}
	if err == nil {
		return msg
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return msg
}
