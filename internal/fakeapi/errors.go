package fakeapi

import (
	"errors"
	"net/http"
)

// HTTPError represents an error with an associated HTTP status code and user message
type HTTPError struct {
	Err        error  // The underlying error
	StatusCode int    // HTTP status code
	Message    string // User-friendly message
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(statusCode int, err error, message string) *HTTPError {
	return &HTTPError{
		Err:        err,
		StatusCode: statusCode,
		Message:    message,
	}
}

var (
	// Authentication errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSession          = errors.New("no session")

	// Authorization errors
	ErrForbidden = errors.New("forbidden")

	// Lookup errors
	ErrUserNotFound    = errors.New("user not found")
	ErrRoomNotFound    = errors.New("meeting room not found")
	ErrBookingNotFound = errors.New("booking not found")

	// Conflicts
	ErrUserExists       = errors.New("user already exists")
	ErrRoomBooked       = errors.New("meeting room already booked")
	ErrAlreadyCancelled = errors.New("booking already cancelled")

	// Validation errors
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidTimeRange  = errors.New("invalid time range")
	ErrInvalidResetToken = errors.New("invalid reset token")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrWrongPassword     = errors.New("wrong current password")

	// Internal errors
	ErrInternalServer = errors.New("internal server error")
)

// errorStatusMap maps errors to HTTP status codes
var errorStatusMap = map[error]int{
	// 400 Bad Request
	ErrInvalidRequest:     http.StatusBadRequest,
	ErrInvalidTimeRange:   http.StatusBadRequest,
	ErrInvalidResetToken:  http.StatusBadRequest,
	ErrPasswordMismatch:   http.StatusBadRequest,
	ErrWrongPassword:      http.StatusBadRequest,
	ErrInvalidCredentials: http.StatusBadRequest,
	ErrAlreadyCancelled:   http.StatusBadRequest,

	// 401 Unauthorized
	ErrUnauthorized: http.StatusUnauthorized,
	ErrTokenExpired: http.StatusUnauthorized,
	ErrNoSession:    http.StatusUnauthorized,

	// 403 Forbidden
	ErrForbidden: http.StatusForbidden,

	// 404 Not Found
	ErrUserNotFound:    http.StatusNotFound,
	ErrRoomNotFound:    http.StatusNotFound,
	ErrBookingNotFound: http.StatusNotFound,

	// 409 Conflict
	ErrUserExists: http.StatusConflict,
	ErrRoomBooked: http.StatusConflict,

	// 500 Internal Server Error
	ErrInternalServer: http.StatusInternalServerError,
}

// errorMessages maps errors to the message sent to clients
var errorMessages = map[error]string{
	ErrUnauthorized:       "Unauthorized",
	ErrTokenExpired:       "Access token has expired",
	ErrNoSession:          "Session expired, please log in again",
	ErrInvalidCredentials: "Invalid email or password",
	ErrForbidden:          "Access denied",
	ErrUserNotFound:       "User not found",
	ErrRoomNotFound:       "Meeting room not found",
	ErrBookingNotFound:    "Booking not found",
	ErrUserExists:         "User already exists",
	ErrRoomBooked:         "Meeting room is already booked for this time",
	ErrAlreadyCancelled:   "Booking is already cancelled",
	ErrInvalidRequest:     "Invalid request format",
	ErrInvalidTimeRange:   "End time must be after start time",
	ErrInvalidResetToken:  "Invalid or expired reset token",
	ErrPasswordMismatch:   "Passwords do not match",
	ErrWrongPassword:      "Current password is incorrect",
	ErrInternalServer:     "An internal error occurred",
}

// GetErrorStatus returns the HTTP status code for an error
func GetErrorStatus(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}

	if status, ok := errorStatusMap[err]; ok {
		return status
	}

	for knownErr, status := range errorStatusMap {
		if errors.Is(err, knownErr) {
			return status
		}
	}

	return http.StatusInternalServerError
}

// GetErrorMessage returns a user-friendly message for an error
func GetErrorMessage(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}

	if msg, ok := errorMessages[err]; ok {
		return msg
	}

	for knownErr, msg := range errorMessages {
		if errors.Is(err, knownErr) {
			return msg
		}
	}

	if GetErrorStatus(err) >= 500 {
		return errorMessages[ErrInternalServer]
	}
	return err.Error()
}
