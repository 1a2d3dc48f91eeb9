package engine

import (
	"math"
	"sort"
	"strings"

	"github.com/pranubaita/photoshare/src/models"
)

// RecordSource lists the records currently stored in a collection. The
// validator calls it at most once per Validate call, and only when a unique
// field has to be checked.
type RecordSource func() ([]models.Record, error)

// Validator checks records against the schema of their collection before
// they are written. Validation never mutates anything.
type Validator interface {
	Validate(record models.Record, collection *models.Collection, existing RecordSource, partial bool) error
}

// IntegrityValidator is the default Validator. It runs, in order:
//   - field set: exactly the non-autoincremented fields, or a subset of the
//     known fields when partial
//   - type: each value, or each array element for multiple properties
//   - required: non-optional values must not be empty
//   - unique: no existing record may hold the same value
type IntegrityValidator struct{}

func (IntegrityValidator) Validate(record models.Record, collection *models.Collection, existing RecordSource, partial bool) error {
	var err error
	if partial {
		err = checkFieldsSubset(record, collection)
	} else {
		err = checkFieldsExact(record, collection)
	}
	if err != nil {
		return err
	}

	var all []models.Record
	loaded := false

	// sorted so the reported error does not depend on map order
	fields := make([]string, 0, len(record))
	for field := range record {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		prop, _ := collection.Property(field)

		if err := checkType(record, prop, collection); err != nil {
			return err
		}
		if err := checkRequired(record, prop, collection); err != nil {
			return err
		}

		if prop.IsUnique() {
			if !loaded {
				if all, err = existing(); err != nil {
					return err
				}
				loaded = true
			}
			if err := checkUnique(record, field, all, collection); err != nil {
				return err
			}
		}
	}

	return nil
}

func checkFieldsExact(record models.Record, collection *models.Collection) error {
	var relevant []string
	for _, prop := range collection.Properties() {
		if !prop.IsAutoincrement() {
			relevant = append(relevant, prop.Name())
		}
	}

	if len(record) != len(relevant) {
		return validationErrorf(collection.Name(), "", RuleFields,
			"%s must have the following fields: %s", collection.Name(), strings.Join(relevant, ","))
	}
	for _, name := range relevant {
		if _, ok := record[name]; !ok {
			return validationErrorf(collection.Name(), name, RuleFields,
				"%s must have the following fields: %s", collection.Name(), strings.Join(relevant, ","))
		}
	}
	return nil
}

func checkFieldsSubset(record models.Record, collection *models.Collection) error {
	for field := range record {
		if !collection.Has(field) {
			return validationErrorf(collection.Name(), field, RuleFields,
				"unknown field %s for %s", field, collection.Name())
		}
	}
	return nil
}

func checkType(record models.Record, prop models.Property, collection *models.Collection) error {
	value := record[prop.Name()]

	valid := false
	if prop.IsMultiple() {
		if items, ok := value.([]interface{}); ok {
			valid = true
			for _, item := range items {
				if !isOfType(item, prop.Type()) {
					valid = false
					break
				}
			}
		}
	} else {
		valid = isOfType(value, prop.Type())
	}

	if !valid {
		kind := string(prop.Type())
		if prop.IsMultiple() {
			kind = "array of " + kind
		}
		return validationErrorf(collection.Name(), prop.Name(), RuleType,
			"%s must be of type %s", prop.Name(), kind)
	}
	return nil
}

// isOfType reports whether value is a scalar of fieldType. Numbers must be
// finite, since NaN and ±Inf cannot be persisted.
func isOfType(value interface{}, fieldType models.FieldType) bool {
	switch v := value.(type) {
	case string:
		return fieldType == models.StringType
	case float64:
		return fieldType == models.NumberType && !math.IsNaN(v) && !math.IsInf(v, 0)
	case bool:
		return fieldType == models.BooleanType
	}
	return false
}

// checkRequired rejects empty values of required properties. Empty means
// nil, "", 0 or false; an empty array is a value.
func checkRequired(record models.Record, prop models.Property, collection *models.Collection) error {
	if !prop.IsRequired() || !isEmpty(record[prop.Name()]) {
		return nil
	}
	return validationErrorf(collection.Name(), prop.Name(), RuleRequired,
		"missing value for %s", prop.Name())
}

func isEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case float64:
		return v == 0
	case bool:
		return !v
	}
	return false
}

func checkUnique(record models.Record, field string, all []models.Record, collection *models.Collection) error {
	value := record[field]
	for _, existing := range all {
		if other, ok := existing[field]; ok && other == value {
			return validationErrorf(collection.Name(), field, RuleUnique,
				"%s %v is already taken", field, value)
		}
	}
	return nil
}
