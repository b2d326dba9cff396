package services

import (
	"errors"
	"net/http"
)

// Sentinel kinds. A ServiceError matches the sentinel with the same status
// through errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStoreWrite   = errors.New("store write failed")
)

type ServiceError struct {
	Status  int
	Message string
	Err     error
}

func (e ServiceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e ServiceError) Unwrap() error {
	return e.Err
}

func (e ServiceError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Status == http.StatusBadRequest
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrStoreWrite:
		return e.Status == http.StatusInternalServerError
	}
	return false
}

func NotFound(msg string) error {
	return ServiceError{Status: http.StatusNotFound, Message: msg}
}

func BadRequest(msg string) error {
	return ServiceError{Status: http.StatusBadRequest, Message: msg}
}

func Unauthorized(msg string) error {
	return ServiceError{Status: http.StatusUnauthorized, Message: msg}
}

// StoreFailure reports a failed persistence step. The cause stays reachable
// through errors.As.
func StoreFailure(err error) error {
	return ServiceError{Status: http.StatusInternalServerError, Message: "Failed to save", Err: err}
}
