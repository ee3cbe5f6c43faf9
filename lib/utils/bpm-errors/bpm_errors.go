package bpmerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind string

const (
	KindUnauthorized    Kind = "UNAUTHORIZED"
	KindForbidden       Kind = "FORBIDDEN"
	KindNotFound        Kind = "NOT_FOUND"
	KindValidation      Kind = "VALIDATION"
	KindInvalidState    Kind = "INVALID_STATE"
	KindConfiguration   Kind = "CONFIGURATION"
	KindExternalService Kind = "EXTERNAL_SERVICE"
)

// Error ошибка бизнес-правила, сообщение показывается вызывающему как есть
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Cause() error {
	return e.cause
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func Unauthorized(format string, args ...any) error {
	return newError(KindUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) error {
	return newError(KindForbidden, format, args...)
}

func NotFound(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

func Validation(format string, args ...any) error {
	return newError(KindValidation, format, args...)
}

func InvalidState(format string, args ...any) error {
	return newError(KindInvalidState, format, args...)
}

func Configuration(format string, args ...any) error {
	return newError(KindConfiguration, format, args...)
}

// ExternalService оборачивает ошибку внешнего сервиса (хранилище файлов, почта)
func ExternalService(cause error, format string, args ...any) error {
	e := newError(KindExternalService, format, args...)
	e.cause = cause
	return e
}

// KindOf вид ошибки, пустая строка для ошибок вне таксономии
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message текст для ответа клиенту, без внутренних подробностей причины
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
