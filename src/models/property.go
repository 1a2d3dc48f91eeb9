package models

import (
	"errors"
	"fmt"
)

// ErrInvalidSchema is returned when a Property or Collection definition breaks
// one of its structural rules. These are configuration errors and are not
// expected to be recovered from at runtime.
var ErrInvalidSchema = errors.New("invalid schema")

// FieldType is the primitive kind stored in a property.
type FieldType string

const (
	StringType  FieldType = "string"
	NumberType  FieldType = "number"
	BooleanType FieldType = "boolean"
)

// SupportedTypes lists every FieldType a Property may declare.
var SupportedTypes = []FieldType{StringType, NumberType, BooleanType}

// IsSupported reports whether t is one of the SupportedTypes.
func (t FieldType) IsSupported() bool {
	for _, supported := range SupportedTypes {
		if t == supported {
			return true
		}
	}
	return false
}

// PropertyOptions are the constraint flags of a Property. All flags default to false.
type PropertyOptions struct {
	// Optional allows the value to be empty.
	Optional bool
	// Unique forbids two records from holding the same value. Implied by Primary.
	Unique bool
	// Multiple stores an array of values of the property type.
	Multiple bool
	// Autoincrement lets the store assign max+1 on create.
	Autoincrement bool
	// Primary marks the field whose value identifies the record.
	Primary bool
}

// Property is one field definition of a Collection. A Property is immutable
// once built; use NewProperty to construct one.
type Property struct {
	name          string
	fieldType     FieldType
	optional      bool
	unique        bool
	multiple      bool
	autoincrement bool
	primary       bool
}

// NewProperty builds and validates a Property.
func NewProperty(name string, fieldType FieldType, opts PropertyOptions) (Property, error) {
	p := Property{
		name:          name,
		fieldType:     fieldType,
		optional:      opts.Optional,
		unique:        opts.Unique || opts.Primary,
		multiple:      opts.Multiple,
		autoincrement: opts.Autoincrement,
		primary:       opts.Primary,
	}

	if err := p.validate(); err != nil {
		return Property{}, err
	}
	return p, nil
}

// MustProperty is like NewProperty but panics on an invalid definition.
// It is meant for package level schema declarations.
func MustProperty(name string, fieldType FieldType, opts PropertyOptions) Property {
	p, err := NewProperty(name, fieldType, opts)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Property) validate() error {
	if p.name == "" {
		return fmt.Errorf("%w: property name cannot be empty", ErrInvalidSchema)
	}

	if p.primary && p.optional {
		return fmt.Errorf("%w: property %s cannot be both primary and optional", ErrInvalidSchema, p.name)
	}

	if p.multiple && p.unique {
		return fmt.Errorf("%w: property %s cannot be both multiple and unique", ErrInvalidSchema, p.name)
	}

	if !p.fieldType.IsSupported() {
		return fmt.Errorf("%w: property %s is of type %q, but only %v are supported",
			ErrInvalidSchema, p.name, p.fieldType, SupportedTypes)
	}

	if p.autoincrement && p.multiple {
		return fmt.Errorf("%w: property %s cannot be both multiple and autoincremented", ErrInvalidSchema, p.name)
	}

	if p.autoincrement && p.fieldType != NumberType {
		return fmt.Errorf("%w: property %s must be of type %s to be autoincremented", ErrInvalidSchema, p.name, NumberType)
	}

	return nil
}

func (p Property) Name() string          { return p.name }
func (p Property) Type() FieldType       { return p.fieldType }
func (p Property) IsOptional() bool      { return p.optional }
func (p Property) IsUnique() bool        { return p.unique }
func (p Property) IsMultiple() bool      { return p.multiple }
func (p Property) IsAutoincrement() bool { return p.autoincrement }
func (p Property) IsPrimary() bool       { return p.primary }

// IsRequired reports whether a value for this property must be non-empty when present.
// Autoincremented values are assigned by the store and are never required from callers.
func (p Property) IsRequired() bool {
	return !p.optional && !p.autoincrement
}

func (p Property) String() string {
	return fmt.Sprintf("%s(%s)", p.name, p.fieldType)
}
