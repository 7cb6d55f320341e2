// Package apperr holds the error types surfaced to the admin screens.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError collects one message per failing form field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ReferentialError means a foreign key points to a row that does not exist.
type ReferentialError struct {
	Field string
	ID    uint
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("%s: record %d does not exist", e.Field, e.ID)
}

// StorageError means the media store refused or failed to persist a file.
type StorageError struct {
	Field string
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: could not store file: %v", e.Field, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NotFoundError means the record being edited or deleted is gone.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func NotFound(resource string, id uint) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// FieldErrors flattens any field-level error into a field -> message map.
// It returns nil for errors that block the whole operation.
func FieldErrors(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	var re *ReferentialError
	if errors.As(err, &re) {
		return map[string]string{re.Field: "The selected record does not exist."}
	}
	var se *StorageError
	if errors.As(err, &se) {
		return map[string]string{se.Field: se.Err.Error()}
	}
	return nil
}
