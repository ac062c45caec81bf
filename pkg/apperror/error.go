package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies a failure independently of the transport that reports it.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindInvalidState    Kind = "invalid_state"
	KindInvalidArgument Kind = "invalid_argument"
	KindForbidden       Kind = "forbidden"
	KindUnauthorized    Kind = "unauthorized"
	KindInternal        Kind = "internal"
)

// statusByKind is the HTTP status each kind is reported with.
var statusByKind = map[Kind]int{
	KindNotFound:        http.StatusNotFound,
	KindConflict:        http.StatusConflict,
	KindInvalidState:    http.StatusUnprocessableEntity,
	KindInvalidArgument: http.StatusBadRequest,
	KindForbidden:       http.StatusForbidden,
	KindUnauthorized:    http.StatusUnauthorized,
	KindInternal:        http.StatusInternalServerError,
}

type AppError struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string, err error) *AppError {
	code, ok := statusByKind[kind]
	if !ok {
		code = http.StatusInternalServerError
	}
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func NotFound(message string) *AppError {
	return New(KindNotFound, message, nil)
}

func Conflict(message string) *AppError {
	return New(KindConflict, message, nil)
}

func InvalidState(message string) *AppError {
	return New(KindInvalidState, message, nil)
}

func InvalidArgument(message string) *AppError {
	return New(KindInvalidArgument, message, nil)
}

// BadRequest is kept for transport-level parsing failures; it is an InvalidArgument.
func BadRequest(message string) *AppError {
	return InvalidArgument(message)
}

func Forbidden(message string) *AppError {
	return New(KindForbidden, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(KindUnauthorized, message, nil)
}

func Internal(err error) *AppError {
	return New(KindInternal, "Internal Server Error", err)
}

// KindOf reports the kind carried by err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
