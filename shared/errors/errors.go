package errors

import "net/http"

// ErrorWithStatusCode is an error a handler can answer with directly.
// Anything else is reported as 500.
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func New(statusCode int, message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: statusCode}
}

func BadRequest(message string) error {
	return New(http.StatusBadRequest, message)
}
