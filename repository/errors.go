package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrAmbiguous        = errors.New("more than one record matches id")
	ErrInvalidReference = errors.New("referenced record does not exist")
	ErrAuditFailed      = errors.New("audit record could not be written")
)

// NotFoundError names the entity kind and id that could not be found.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id: %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ReferenceError reports a foreign key that points at a missing row.
type ReferenceError struct {
	Field  string
	Entity string
	ID     string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: %s with id: %s not found", e.Field, e.Entity, e.ID)
}

func (e *ReferenceError) Is(target error) bool {
	return target == ErrInvalidReference
}
