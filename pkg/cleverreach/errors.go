package cleverreach

import (
	"errors"
	"net/http"
	"strconv"
)

const (
	// CodeRequestFailed tags transport failures and remote error payloads.
	CodeRequestFailed = "423"
	// CodeInvalidClient tags a rejected token exchange.
	CodeInvalidClient = "invalid_client"

	unknownErrorMessage = "Unknown Error"
)

// ErrNoToken is returned when no access token has been stored yet.
var ErrNoToken = errors.New("cleverreach: no access token stored")

// Error is a tagged failure reported by the CleverReach API or by the
// transport underneath it. Message carries the remote text verbatim.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the numeric form of Code, or 0 for symbolic codes.
func (e *Error) StatusCode() int {
	n, err := strconv.Atoi(e.Code)
	if err != nil {
		return 0
	}
	return n
}

func requestFailed(message string, err error) *Error {
	return &Error{Code: strconv.Itoa(http.StatusLocked), Message: message, Err: err}
}

func invalidClient(message string) *Error {
	return &Error{Code: CodeInvalidClient, Message: message}
}

// Message extracts the human readable message of err.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsCode reports whether err is an *Error tagged with code.
func IsCode(err error, code string) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}
