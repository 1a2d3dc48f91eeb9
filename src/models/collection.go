package models

import (
	"fmt"
	"regexp"
)

var collectionNamePattern = regexp.MustCompile(`^\w+$`)

// Collection is a named, schema-described category of records, similar to a
// table. Its name doubles as the base name of the storage file. A Collection
// is immutable once built; use NewCollection to construct one.
type Collection struct {
	name       string
	properties []Property
	byName     map[string]Property
	primary    string
}

// NewCollection builds and validates a Collection from an ordered list of properties.
func NewCollection(name string, properties ...Property) (*Collection, error) {
	c := &Collection{
		name:       name,
		properties: append([]Property(nil), properties...),
		byName:     make(map[string]Property, len(properties)),
	}

	if !collectionNamePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: collection name %q must be a single word built of alphanumeric characters",
			ErrInvalidSchema, name)
	}

	primaryCount := 0
	for _, prop := range c.properties {
		if prop.primary {
			primaryCount++
			c.primary = prop.name
		}
	}
	if primaryCount != 1 {
		return nil, fmt.Errorf("%w: %s must have 1 primary field, but %d were given",
			ErrInvalidSchema, name, primaryCount)
	}

	for _, prop := range c.properties {
		if _, exists := c.byName[prop.name]; exists {
			return nil, fmt.Errorf("%w: duplicate property %s in %s", ErrInvalidSchema, prop.name, name)
		}
		c.byName[prop.name] = prop
	}

	return c, nil
}

// MustCollection is like NewCollection but panics on an invalid definition.
func MustCollection(name string, properties ...Property) *Collection {
	c, err := NewCollection(name, properties...)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Properties returns the properties in declaration order.
func (c *Collection) Properties() []Property {
	return append([]Property(nil), c.properties...)
}

// PrimaryField returns the name of the primary property.
func (c *Collection) PrimaryField() string {
	return c.primary
}

// FieldNames returns the names of all properties in declaration order.
func (c *Collection) FieldNames() []string {
	names := make([]string, 0, len(c.properties))
	for _, prop := range c.properties {
		names = append(names, prop.name)
	}
	return names
}

// Schema returns a name -> Property lookup. The returned map is a copy.
func (c *Collection) Schema() map[string]Property {
	schema := make(map[string]Property, len(c.byName))
	for name, prop := range c.byName {
		schema[name] = prop
	}
	return schema
}

// Property looks up a single property by name.
func (c *Collection) Property(name string) (Property, bool) {
	prop, ok := c.byName[name]
	return prop, ok
}

// Autoincremented returns the properties whose values the store assigns.
func (c *Collection) Autoincremented() []Property {
	var props []Property
	for _, prop := range c.properties {
		if prop.autoincrement {
			props = append(props, prop)
		}
	}
	return props
}

// Has reports whether the collection declares a field with the given name.
func (c *Collection) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

func (c *Collection) String() string {
	return c.name
}
