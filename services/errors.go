package services

import "net/http"

// ErrorKind classifies a ServiceError.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindPrecondition ErrorKind = "precondition"
	KindForbidden    ErrorKind = "forbidden"
	KindConflict     ErrorKind = "conflict"
	KindIntegration  ErrorKind = "integration"
	KindPersistence  ErrorKind = "persistence"
)

// ServiceError is a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
	Kind       ErrorKind
	Err        error
}

func (e *ServiceError) Error() string { return e.Message }

func (e *ServiceError) Unwrap() error { return e.Err }

func ValidationError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: msg, Kind: KindValidation}
}

func NotFoundError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Message: msg, Kind: KindNotFound}
}

func PreconditionError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: msg, Kind: KindPrecondition}
}

func ForbiddenError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusForbidden, Message: msg, Kind: KindForbidden}
}

func ConflictError(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusConflict, Message: msg, Kind: KindConflict}
}

// IntegrationError reports a failed call to an outside system. status is 500
// for collaborators inside a write path and 502 for pure lookups.
func IntegrationError(status int, msg string, err error) *ServiceError {
	return &ServiceError{StatusCode: status, Message: msg, Kind: KindIntegration, Err: err}
}

func PersistenceError(msg string, err error) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Message: msg, Kind: KindPersistence, Err: err}
}

// Actor is the authenticated caller as seen by the services.
type Actor struct {
	UserID  string
	Email   string
	IsAdmin bool
}

// CanAccess reports whether the actor may see data owned by ownerID.
func (a Actor) CanAccess(ownerID string) bool {
	return a.IsAdmin || (a.UserID != "" && a.UserID == ownerID)
}
