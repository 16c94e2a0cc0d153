package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable      = errors.New("server unavailable")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidServerURL = errors.New("invalid server url")
)

// Kind classifies a failure for retry policy and for the message a screen shows.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindAuthentication
	KindAuthorization
	KindValidation
	KindForbidden
	KindNotFound
	KindConflict
	KindUnprocessable
	KindServer
	KindNetwork
	KindRPC
)

var kindNames = map[Kind]string{
	KindUnknown:        "unknown",
	KindConfig:         "config",
	KindAuthentication: "authentication",
	KindAuthorization:  "authorization",
	KindValidation:     "validation",
	KindForbidden:      "forbidden",
	KindNotFound:       "not_found",
	KindConflict:       "conflict",
	KindUnprocessable:  "unprocessable",
	KindServer:         "server",
	KindNetwork:        "network",
	KindRPC:            "rpc",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the only error type that crosses the client's public boundary.
// Message carries the server's own text when there is one; UserMessage is
// what screens render. Err keeps the underlying cause.
type Error struct {
	Kind        Kind
	Status      int
	Message     string
	UserMessage string
	Err         error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets callers match an Error against the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Kind == KindNetwork
	case ErrUnauthorized:
		return e.Kind == KindAuthorization
	case ErrInvalidServerURL:
		return e.Kind == KindConfig
	}
	return false
}

// AsError extracts an *Error from err, wrapping foreign errors as KindUnknown.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindUnknown, Message: err.Error(), UserMessage: MsgUnexpected, Err: err}
}

// User-facing message templates.
const (
	MsgInvalidRequest = "Invalid request. Please check the entered data."
	MsgForbidden      = "You do not have permission to perform this action."
	MsgNotFound       = "The requested resource was not found."
	MsgServerError    = "Server error. Please try again later."
	MsgNetwork        = "Unable to reach the server. Please check your network connection."
	MsgSessionExpired = "Your session has expired. Please log in again."
	MsgUnexpected     = "An unexpected error occurred."
	MsgInvalidURL     = "Invalid server URL. It must start with http:// or https://."
	MsgUnreachable    = "Unable to connect to the server. Please check the URL."
	MsgAuthFailed     = "Authentication failed. Please check your credentials."
	MsgMissingFields  = "Database, username and password are required."
)

// KindForStatus maps an HTTP status to an error kind.
func KindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindAuthorization
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusUnprocessableEntity:
		return KindUnprocessable
	}
	if status >= 500 {
		return KindServer
	}
	return KindUnknown
}

// statusUserMessage picks the template for status; any other status passes
// the server's own message through.
func statusUserMessage(status int, serverMsg string) string {
	switch status {
	case http.StatusBadRequest:
		return MsgInvalidRequest
	case http.StatusUnauthorized:
		return MsgSessionExpired
	case http.StatusForbidden:
		return MsgForbidden
	case http.StatusNotFound:
		return MsgNotFound
	case http.StatusInternalServerError:
		return MsgServerError
	}
	if serverMsg != "" {
		return serverMsg
	}
	return MsgUnexpected
}
