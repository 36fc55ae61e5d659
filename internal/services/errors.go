package services

import "errors"

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorForbidden    ErrorCode = "forbidden"
	ErrorNotFound     ErrorCode = "not_found"
	ErrorConflict     ErrorCode = "conflict"
	ErrorUnauthorized ErrorCode = "unauthorized"
	ErrorBadGateway   ErrorCode = "bad_gateway"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
	// Err is the upstream failure behind a bad_gateway error.
	Err error
}

func (e *ServiceError) Error() string { return e.Message }
func (e *ServiceError) Unwrap() error { return e.Err }

func NewInvalidError(msg string) error   { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewForbiddenError(msg string) error { return &ServiceError{Code: ErrorForbidden, Message: msg} }
func NewNotFoundError(msg string) error  { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error  { return &ServiceError{Code: ErrorConflict, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func NewBadGatewayError(msg string, cause error) error {
	return &ServiceError{Code: ErrorBadGateway, Message: msg, Err: cause}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

var (
	// ErrSessionNotFound is returned for unknown or deleted session ids.
	ErrSessionNotFound = NewNotFoundError("session not found")
	// ErrNoPendingPoint is returned by views that need a point under adjustment.
	ErrNoPendingPoint = NewConflictError("no pending point")
	// ErrPersistenceUnavailable means submit had nowhere to hand the entry.
	ErrPersistenceUnavailable = errors.New("entry persister not configured")
)
