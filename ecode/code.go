package ecode

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// Error codes shared by every layer of the client.
const (
	OK                 = 0
	NoLogin            = -101
	AuthFailed         = -104
	ParamErr           = -401
	NotFound           = -404
	Conflict           = -409
	ServerErr          = -500
	ServiceUnavailable = -503
	Deadline           = -504
)

var (
	mu       sync.RWMutex
	messages = map[int]string{
		OK:                 "ok",
		NoLogin:            "Account not logged in",
		AuthFailed:         "Invalid email or password.",
		ParamErr:           "Invalid parameters",
		NotFound:           "Resource not found",
		Conflict:           "Resource conflict",
		ServerErr:          "Internal error",
		ServiceUnavailable: "Store unavailable, please try again",
		Deadline:           "Request timed out",
	}
)

// Register sets the message for a code, overriding any existing one.
func Register(code int, message string) {
	mu.Lock()
	defer mu.Unlock()
	messages[code] = message
}

// Text returns the registered message for code.
func Text(code int) string {
	mu.RLock()
	defer mu.RUnlock()
	if m, ok := messages[code]; ok {
		return m
	}
	return messages[ServerErr]
}

// Error is the typed error surfaced to the shell.
type Error struct {
	Code    int
	Message string
	// Fields holds per-field messages of a validation failure.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = Text(e.Code)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, e.Fields[k])
		}
		msg += ": " + strings.Join(parts, "; ")
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// New returns an *Error with code and message.
func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches code to err.
func Wrap(code int, err error) *Error {
	return &Error{Code: code, Err: err}
}

// CodeOf reports the code carried by err, OK for nil and ServerErr for
// untyped errors.
func CodeOf(err error) int {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ServerErr
}

// Sentinels for errors.Is checks.
var (
	ErrNoLogin          = New(NoLogin, "")
	ErrAuthFailed       = New(AuthFailed, "")
	ErrValidation       = New(ParamErr, "")
	ErrNotFound         = New(NotFound, "")
	ErrConflict         = New(Conflict, "")
	ErrStoreUnavailable = New(ServiceUnavailable, "")
	ErrDeadline         = New(Deadline, "")
)

// AuthError reports an identity-provider sign-in or sign-up failure.
func AuthError(message string, err error) *Error {
	if message == "" {
		message = Text(AuthFailed)
	}
	return &Error{Code: AuthFailed, Message: message, Err: err}
}

// StoreUnavailable reports a document-store read or write failure.
func StoreUnavailable(err error) *Error {
	return &Error{Code: ServiceUnavailable, Err: err}
}

// ValidationError reports locally rejected input with per-field messages.
func ValidationError(fields map[string]string) *Error {
	return &Error{Code: ParamErr, Fields: fields}
}

// NotFoundError reports a missing resource.
func NotFoundError(what string) *Error {
	return &Error{Code: NotFound, Message: NotExist(what)}
}
