package domain

import (
	"errors"
	"sort"
	"strings"
)

// ErrorCode is the machine-readable error kind returned to API clients.
type ErrorCode string

const (
	CodeUnauthenticated     ErrorCode = "UNAUTHENTICATED"
	CodeValidation          ErrorCode = "VALIDATION_ERROR"
	CodeInsufficientFunds   ErrorCode = "INSUFFICIENT_FUNDS"
	CodeRecipientNotFound   ErrorCode = "RECIPIENT_NOT_FOUND"
	CodeInvalidRecipient    ErrorCode = "INVALID_RECIPIENT"
	CodeIdempotencyConflict ErrorCode = "IDEMPOTENCY_CONFLICT"
	CodeIdempotencyReused   ErrorCode = "IDEMPOTENCY_KEY_REUSED"
	CodePersistence         ErrorCode = "PERSISTENCE_FAILURE"
)

type Error struct {
	Code    ErrorCode
	Message string
	// Fields holds per-field messages for validation errors.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + e.Fields[k]
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match when target is a *Error with the same code, so callers
// can write errors.Is(err, domain.ErrInsufficientFunds).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrUnauthenticated     = &Error{Code: CodeUnauthenticated, Message: "authentication required"}
	ErrInsufficientFunds   = &Error{Code: CodeInsufficientFunds, Message: "insufficient funds"}
	ErrRecipientNotFound   = &Error{Code: CodeRecipientNotFound, Message: "recipient not found"}
	ErrInvalidRecipient    = &Error{Code: CodeInvalidRecipient, Message: "cannot send money to yourself"}
	ErrIdempotencyConflict = &Error{Code: CodeIdempotencyConflict, Message: "a request with this idempotency key is already in progress"}
	ErrIdempotencyReused   = &Error{Code: CodeIdempotencyReused, Message: "this idempotency key was used with a different request"}
)

// Storage-level sentinels; services translate these into API errors.
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateAccount = errors.New("an account with this phone or email already exists")
	ErrRecordNotFound   = errors.New("record not found")
)

func NewValidationError(fields map[string]string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: "invalid request",
		Fields:  fields,
	}
}

func NewPersistenceError(err error) *Error {
	return &Error{
		Code:    CodePersistence,
		Message: "internal server error",
		Err:     err,
	}
}

// CodeOf returns the error kind of err, treating anything untyped as a
// persistence failure.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodePersistence
}
