// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// ValidationError rejects a request before anything happens.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError is returned when an entity does not exist.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %v not found", e.Entity, e.ID)
}

func NewNotFound(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports a uniqueness violation, e.g. a duplicate email.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflict(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// UnavailableError marks a collaborator (storage, mailer, content API) that
// could not serve the request at all.
type UnavailableError struct {
	Collaborator string
	Err          error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return e.Collaborator + " unavailable"
	}
	return fmt.Sprintf("%s unavailable: %v", e.Collaborator, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func NewUnavailable(collaborator string, err error) error {
	return &UnavailableError{Collaborator: collaborator, Err: err}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsUnavailable(err error) bool {
	var target *UnavailableError
	return errors.As(err, &target)
}
