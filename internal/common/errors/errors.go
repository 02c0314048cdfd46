package commonerrors

import (
	"errors"
	"fmt"
)

type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "VALIDATION"
	CategoryNotFound   ErrorCategory = "NOT_FOUND"
	CategoryInternal   ErrorCategory = "INTERNAL"
	CategoryExternal   ErrorCategory = "EXTERNAL"
)

type DomainError interface {
	error
	Code() string
	Category() ErrorCategory
	Message() string
	Unwrap() error
	WithCause(cause error) DomainError

	// Extensions is picked up by the GraphQL executor and attached to the
	// error entry in the response.
	Extensions() map[string]interface{}
}

type domainError struct {
	code     string
	category ErrorCategory
	message  string
	cause    error
}

func (e *domainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *domainError) Code() string            { return e.code }
func (e *domainError) Category() ErrorCategory { return e.category }
func (e *domainError) Message() string         { return e.message }
func (e *domainError) Unwrap() error           { return e.cause }

func (e *domainError) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code":     e.code,
		"category": string(e.category),
	}
}

func (e *domainError) WithCause(cause error) DomainError {
	return &domainError{
		code:     e.code,
		category: e.category,
		message:  e.message,
		cause:    cause,
	}
}

func NewDomainError(code string, category ErrorCategory, message string) DomainError {
	return &domainError{
		code:     code,
		category: category,
		message:  message,
	}
}

// NewInvalidInput builds a validation error whose message is shown to the
// caller verbatim.
func NewInvalidInput(message string) DomainError {
	return NewDomainError("INVALID_INPUT", CategoryValidation, message)
}

func NewNotFound(message string) DomainError {
	return NewDomainError("NOT_FOUND", CategoryNotFound, message)
}

func IsCategory(err error, category ErrorCategory) bool {
	de, ok := AsDomainError(err)
	return ok && de.Category() == category
}

func AsDomainError(err error) (DomainError, bool) {
	var de DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

var (
	ErrUserNotFound = NewDomainError(
		"USER_NOT_FOUND",
		CategoryNotFound,
		"user not found",
	)

	ErrMessageOwnerMissing = NewDomainError(
		"MESSAGE_OWNER_MISSING",
		CategoryNotFound,
		"message owner not found",
	)

	ErrInternalError = NewDomainError(
		"INTERNAL_ERROR",
		CategoryInternal,
		"internal server error",
	)

	ErrDatabaseError = NewDomainError(
		"DATABASE_ERROR",
		CategoryInternal,
		"database operation failed",
	)

	ErrNetworkFailure = NewDomainError(
		"NETWORK_FAILURE",
		CategoryExternal,
		"request failed before reaching the server",
	)
)
