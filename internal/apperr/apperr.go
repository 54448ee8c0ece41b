// Package apperr is the error taxonomy shared by the services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindUnauthorized
	KindInvalidState
	KindInsufficientStock
	KindValidation
)

// Messages shown to clients for the expected failure modes.
const (
	MsgInsufficientStock = "Insufficient stock available. Cannot approve until restocked."
	MsgForbidden         = "Access denied"
	MsgUnauthorized      = "Authentication required"
	MsgInternal          = "Internal server error"
	MsgOrderNotFound     = "Order not found"
	MsgProductNotFound   = "Product not found"
	MsgTicketNotFound    = "Ticket not found"
	MsgReviewNotFound    = "Review not found"
	MsgReasonRequired    = "A reason is required to reject an order"
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindForbidden:
		return "FORBIDDEN"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindInvalidState:
		return "INVALID_STATE"
	case KindInsufficientStock:
		return "INSUFFICIENT_STOCK"
	case KindValidation:
		return "VALIDATION_ERROR"
	default:
		return "INTERNAL"
	}
}

// HTTPStatus is the response code the kind maps to at the request boundary.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInvalidState, KindInsufficientStock:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a Kind, a client-safe Message and an optional cause.
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

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func InvalidState(message string) *Error {
	return &Error{Kind: KindInvalidState, Message: message}
}

func InvalidStatef(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func InsufficientStock() *Error {
	return &Error{Kind: KindInsufficientStock, Message: MsgInsufficientStock}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an infrastructure failure. The cause is logged, never shown.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: MsgInternal, Err: err}
}

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
