package models

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
)

// Record is one stored object of a Collection: a mapping from field name to value.
// Values are string, float64, bool, or []interface{} of one of those for
// multiple-valued properties.
type Record map[string]interface{}

// Document is the full persisted content of one Collection, keyed by the
// string form of each record's primary value.
type Document map[string]Record

// Clone returns a copy of the record. Array values are copied too, so that
// mutating the clone never changes the original.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	clone := make(Record, len(r))
	for field, value := range r {
		if items, ok := value.([]interface{}); ok {
			value = append([]interface{}(nil), items...)
		}
		clone[field] = value
	}
	return clone
}

// Clone returns a copy of the document with every record cloned.
func (d Document) Clone() Document {
	clone := make(Document, len(d))
	for key, record := range d {
		clone[key] = record.Clone()
	}
	return clone
}

// Keys returns the document keys ordered so that numeric keys sort by value
// and come before other keys, which sort lexically.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for key := range d {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aNumeric := numericKey(keys[i])
		b, bNumeric := numericKey(keys[j])
		switch {
		case aNumeric && bNumeric:
			if a != b {
				return a < b
			}
			return keys[i] < keys[j]
		case aNumeric:
			return true
		case bNumeric:
			return false
		}
		return keys[i] < keys[j]
	})
	return keys
}

// decimalKey matches the keys KeyOf renders for numbers.
var decimalKey = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

func numericKey(key string) (float64, bool) {
	if !decimalKey.MatchString(key) {
		return 0, false
	}
	f, err := strconv.ParseFloat(key, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Records returns the records of the document in Keys order.
func (d Document) Records() []Record {
	records := make([]Record, 0, len(d))
	for _, key := range d.Keys() {
		records = append(records, d[key])
	}
	return records
}

// NormalizeRecord returns a copy of r with every value passed through NormalizeValue.
func NormalizeRecord(r Record) Record {
	if r == nil {
		return nil
	}
	normalized := make(Record, len(r))
	for field, value := range r {
		normalized[field] = NormalizeValue(value)
	}
	return normalized
}

// NormalizeValue converts Go numeric kinds to float64, typed slices to
// []interface{} and string keyed maps to map[string]interface{}, recursively.
// It makes a value supplied by a caller equal to the same value after a
// round trip through storage. Values of other kinds are returned unchanged.
func NormalizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case nil, string, bool, float64:
		return v
	case []interface{}:
		items := make([]interface{}, len(v))
		for i, item := range v {
			items[i] = NormalizeValue(item)
		}
		return items
	case map[string]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, item := range v {
			m[k] = NormalizeValue(item)
		}
		return m
	case Record:
		return map[string]interface{}(NormalizeRecord(v))
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Slice, reflect.Array:
		items := make([]interface{}, rv.Len())
		for i := range items {
			items[i] = NormalizeValue(rv.Index(i).Interface())
		}
		return items
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return value
		}
		m := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = NormalizeValue(iter.Value().Interface())
		}
		return m
	}
	return value
}

// KeyOf renders a primary value as the document key it is stored under.
// Numbers use their shortest decimal form, so 1 is stored under "1".
func KeyOf(value interface{}) (string, error) {
	switch v := NormalizeValue(value).(type) {
	case string:
		return v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", fmt.Errorf("cannot use %v as a key", v)
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	return "", fmt.Errorf("cannot use value of type %T as a key", value)
}
