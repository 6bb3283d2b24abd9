package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindInvalidArgument   Kind = "INVALID_ARGUMENT"
	KindIllegalTransition Kind = "ILLEGAL_TRANSITION"
	KindNotFound          Kind = "NOT_FOUND"
	KindInternal          Kind = "INTERNAL"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == e.Message || t.Message == "")
}

// New creates a new Error
func New(code int, kind Kind, message string, err error) *Error {
	return &Error{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Kind sentinels; compare with errors.Is.
var (
	ErrInvalidArgument   = New(http.StatusBadRequest, KindInvalidArgument, "", nil)
	ErrIllegalTransition = New(http.StatusConflict, KindIllegalTransition, "", nil)
	ErrNotFound          = New(http.StatusNotFound, KindNotFound, "", nil)
	ErrInternal          = New(http.StatusInternalServerError, KindInternal, "", nil)
)

func InvalidArgument(message string) *Error {
	return New(http.StatusBadRequest, KindInvalidArgument, message, nil)
}

func InvalidArgumentf(format string, args ...any) *Error {
	return InvalidArgument(fmt.Sprintf(format, args...))
}

func IllegalTransition(message string) *Error {
	return New(http.StatusConflict, KindIllegalTransition, message, nil)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, KindNotFound, message, nil)
}

func Internal(message string, err error) *Error {
	return New(http.StatusInternalServerError, KindInternal, message, err)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// StatusCode returns the HTTP status carried by err, defaulting to 500.
func StatusCode(err error) int {
	var appErr *Error
	if stderrors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
