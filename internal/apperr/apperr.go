// Package apperr holds the error kinds the services return. Anything that is
// not one of these is treated as an I/O failure.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Validation is returned for bad input, before anything is written.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict is returned when the request is valid but the record is not in a
// state that allows it (already verified, duplicate parent bill, ...).
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Status maps an error to an HTTP status code. ok is false for I/O errors.
func Status(err error) (code int, msg string, ok bool) {
	var e *Error
	if !errors.As(err, &e) {
		return fiber.StatusInternalServerError, "", false
	}
	switch e.Kind {
	case KindValidation:
		return fiber.StatusBadRequest, e.Message, true
	case KindNotFound:
		return fiber.StatusNotFound, e.Message, true
	case KindConflict:
		return fiber.StatusConflict, e.Message, true
	}
	return fiber.StatusInternalServerError, "", false
}
