package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindUser ErrorKind = iota + 1
	KindServer
	KindAuth
)

func (k ErrorKind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindServer:
		return "server"
	case KindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// GenericMessage replaces the message of any error that is not a *Error.
const GenericMessage = "something went wrong"

// Error is the error type shared by every layer that talks to the HTTP
// boundary. Message is safe to show to the caller; Err is logged only.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func NewUserError(message string) *Error {
	return &Error{Kind: KindUser, Message: message}
}

func NewServerError(message string) *Error {
	return &Error{Kind: KindServer, Message: message}
}

func NewAuthError(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind and message so a sentinel still matches after WithCause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// WithCause returns a copy of e carrying cause.
func (e *Error) WithCause(cause error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: cause}
}

func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return GenericMessage
}
