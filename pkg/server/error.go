package server

import (
	"errors"
	"fmt"
)

type ErrorCode uint

const (
	ErrUnknown ErrorCode = iota
	ErrInternalServerError
	ErrNotFound
	ErrBadParamInput
	ErrTooBig
	ErrNoRoute
	ErrInvalidRequest
	ErrIndexNotReady
)

func (c ErrorCode) String() string {
	switch c {
	case ErrInternalServerError:
		return "InternalError"
	case ErrNotFound:
		return "NotFound"
	case ErrBadParamInput:
		return "InvalidInput"
	case ErrTooBig:
		return "TooBig"
	case ErrNoRoute:
		return "NoRoute"
	case ErrInvalidRequest:
		return "InvalidRequest"
	case ErrIndexNotReady:
		return "IndexNotReady"
	}
	return "Unknown"
}

// Error carries an ErrorCode and a user facing message next to the wrapped
// low level error.
type Error struct {
	orig error
	msg  string
	code ErrorCode
}

func WrapErrorf(orig error, code ErrorCode, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

func NewErrorf(code ErrorCode, format string, a ...interface{}) error {
	return WrapErrorf(nil, code, format, a...)
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

func (e *Error) Code() ErrorCode {
	return e.code
}

// Message is the text without the wrapped error.
func (e *Error) Message() string {
	return e.msg
}

// CodeOf returns the code of the first *Error in err's chain, ErrUnknown if
// there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return ErrUnknown
}
