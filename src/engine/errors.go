package engine

import (
	"errors"
	"fmt"

	"github.com/pranubaita/photoshare/src/models"
)

var (
	// ErrInvalidSchema is returned for malformed collection or property definitions.
	ErrInvalidSchema = models.ErrInvalidSchema
	// ErrValidation is returned when a record does not conform to its collection.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned by strict lookups, updates and deletes of a missing key.
	ErrNotFound = errors.New("record not found")
	// ErrStorage is returned when a collection file cannot be read, decoded or written.
	ErrStorage = errors.New("storage failure")
	// ErrUnknownCollection is returned for collections the store was not opened with.
	ErrUnknownCollection = errors.New("unknown collection")
)

// Validation rules reported in ValidationError.Rule.
const (
	RuleFields   = "fields"
	RuleType     = "type"
	RuleRequired = "required"
	RuleUnique   = "unique"
	RulePrimary  = "primary"
)

// ValidationError describes which rule a record broke, and on which field.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Collection string
	Field      string
	Rule       string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func validationErrorf(collection, field, rule, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Collection: collection,
		Field:      field,
		Rule:       rule,
		Reason:     fmt.Sprintf(format, args...),
	}
}

func notFound(collection *models.Collection, id string) error {
	return fmt.Errorf("%w: no %s %s exists", ErrNotFound, collection.Name(), id)
}
