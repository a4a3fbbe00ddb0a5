// Package apierror provides standardized error response structures for the API
// and the typed failures raised by the inventory and order workflows.
// All errors returned to clients go through this package so internals
// (SQL errors, stack traces) never reach the wire.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Code    string   `json:"code,omitempty"`
	Detail  string   `json:"detail"`
	Details []string `json:"details,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Code   string            `json:"code"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Code: string(KindInvalidArgument), Detail: "validation failed", Fields: fields}
}

// ── Typed failures ────────────────────────────────────────────────────────────

// Kind is the stable machine-readable code of a failure.
type Kind string

const (
	KindNotFound               Kind = "NOT_FOUND"
	KindInvalidArgument        Kind = "INVALID_ARGUMENT"
	KindInvalidStateTransition Kind = "INVALID_STATE_TRANSITION"
	KindInsufficientStock      Kind = "INSUFFICIENT_STOCK"
	KindNoEffectivePrice       Kind = "NO_EFFECTIVE_PRICE"
	KindAlreadySent            Kind = "ALREADY_SENT"
	KindUnauthorized           Kind = "UNAUTHORIZED"
	KindGateway                Kind = "GATEWAY_ERROR"
)

// Error is a workflow failure carrying a Kind and a human-readable message.
// Details lists every offending item for batch operations.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	cause   error
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(entity string, id any) *Error {
	return newError(KindNotFound, "%s %v not found", entity, id)
}

// InventoryNotFound is raised when a decrement targets a product without an inventory row.
func InventoryNotFound(productID any) *Error {
	return newError(KindNotFound, "inventory for product %v not found", productID)
}

func CustomerNotFound(phone string) *Error {
	return newError(KindNotFound, "customer with phone %s not found", phone)
}

func InvalidArgument(format string, args ...any) *Error {
	return newError(KindInvalidArgument, format, args...)
}

// InvalidArguments reports every violation of a batch at once.
func InvalidArguments(msg string, violations []string) *Error {
	e := newError(KindInvalidArgument, "%s", msg)
	e.Details = violations
	return e
}

func InvalidStateTransition(current, target string) *Error {
	return newError(KindInvalidStateTransition, "cannot move from %s to %s", current, target)
}

func InsufficientStock(product string, available, requested int) *Error {
	return newError(KindInsufficientStock, "insufficient stock for %s: available %d, requested %d", product, available, requested)
}

func NoEffectivePrice(productID any) *Error {
	return newError(KindNoEffectivePrice, "no effective price for product %v", productID)
}

func AlreadySent(orderNumbers []string) *Error {
	e := newError(KindAlreadySent, "purchase orders already emailed")
	e.Details = orderNumbers
	return e
}

func Unauthorized(msg string) *Error {
	return newError(KindUnauthorized, "%s", msg)
}

// Gateway wraps a failure of an external collaborator (payment gateway, mail server).
func Gateway(msg string, cause error) *Error {
	e := newError(KindGateway, "%s", msg)
	e.cause = cause
	return e
}

// KindOf returns the Kind of err, or "" when err is not a typed failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err is a typed failure of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

var statusByKind = map[Kind]int{
	KindNotFound:               http.StatusNotFound,
	KindInvalidArgument:        http.StatusUnprocessableEntity,
	KindInvalidStateTransition: http.StatusConflict,
	KindInsufficientStock:      http.StatusConflict,
	KindNoEffectivePrice:       http.StatusUnprocessableEntity,
	KindAlreadySent:            http.StatusConflict,
	KindUnauthorized:           http.StatusUnauthorized,
	KindGateway:                http.StatusBadGateway,
}

// HTTPStatus maps err to a response status. Untyped errors are 500.
func HTTPStatus(err error) int {
	if status, ok := statusByKind[KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// From converts err into a status code and a safe response envelope.
func From(err error) (int, *APIError) {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, &APIError{Code: "INTERNAL", Detail: "internal server error"}
	}
	return HTTPStatus(err), &APIError{Code: string(e.Kind), Detail: e.Message, Details: e.Details}
}
