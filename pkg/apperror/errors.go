// Package apperror is the error taxonomy shared by every service: each failure
// carries a Kind that decides how HTTP handlers and consumers react to it.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindInvalidState
	KindPublish
	KindDeserialization
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindInvalidState:
		return "INVALID_STATE_TRANSITION"
	case KindPublish:
		return "PUBLISH_FAILURE"
	case KindDeserialization:
		return "DESERIALIZATION_FAILURE"
	default:
		return "UNKNOWN_ERROR"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Kinded is implemented by domain errors that know their own kind without
// depending on this package's concrete type.
type Kinded interface {
	ErrorKind() Kind
}

func Validation(msg string) error { return &Error{Kind: KindValidation, Message: msg} }

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

func InvalidState(msg string) error { return &Error{Kind: KindInvalidState, Message: msg} }

func Publish(err error) error {
	return &Error{Kind: KindPublish, Message: "publish failed", Err: err}
}

func Deserialization(err error) error {
	return &Error{Kind: KindDeserialization, Message: "deserialization failed", Err: err}
}

func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf walks the chain and returns the first kind found.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	var k Kinded
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindDeserialization:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
