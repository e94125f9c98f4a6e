// Package collection describes the indexed schema of a model: its name and
// the hash fields the search index covers.
package collection

import (
	"fmt"
	"regexp"

	"github.com/kailas-cloud/vecscope/internal/domain/search/filter"
)

// FieldType is how a hash field is indexed.
type FieldType string

const (
	// Tag fields match exactly (terms, nil-as-missing).
	Tag FieldType = "tag"
	// Numeric fields back ranges and sorting.
	Numeric FieldType = "numeric"
	// Text fields are matched by the free-text query.
	Text FieldType = "text"
)

const (
	maxNameLen = 64
	maxFields  = 64
)

var nameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Field is one indexed hash field.
type Field struct {
	Name     string
	Type     FieldType
	Sortable bool
}

func (f Field) validate() error {
	switch {
	case f.Name == "":
		return fmt.Errorf("field name is required")
	case len(f.Name) > maxNameLen:
		return fmt.Errorf("field name %q too long (max %d)", f.Name, maxNameLen)
	case f.Name == "__key" || f.Name == "__score":
		// collides with the pseudo-fields of FT.AGGREGATE replies
		return fmt.Errorf("field name %q is reserved", f.Name)
	}
	if err := filter.ValidateKey(f.Name); err != nil {
		return err
	}
	switch f.Type {
	case Tag, Numeric, Text:
		return nil
	}
	return fmt.Errorf("field %q: invalid type %q", f.Name, f.Type)
}

// Collection is a validated, immutable model schema.
type Collection struct {
	name   string
	fields []Field
}

// New validates name and fields. Field names must be unique.
func New(name string, fields ...Field) (Collection, error) {
	if err := ValidateName(name); err != nil {
		return Collection{}, err
	}
	if len(fields) == 0 {
		return Collection{}, fmt.Errorf("collection %s: at least one indexed field is required", name)
	}
	if len(fields) > maxFields {
		return Collection{}, fmt.Errorf("collection %s: too many fields (max %d)", name, maxFields)
	}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if err := f.validate(); err != nil {
			return Collection{}, fmt.Errorf("collection %s: %w", name, err)
		}
		if _, dup := seen[f.Name]; dup {
			return Collection{}, fmt.Errorf("collection %s: duplicate field %q", name, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return Collection{name: name, fields: append([]Field(nil), fields...)}, nil
}

// ValidateName checks a collection name: 1-64 chars of [a-zA-Z0-9_-].
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("collection name is required")
	case len(name) > maxNameLen:
		return fmt.Errorf("collection name too long (max %d)", maxNameLen)
	case !nameRe.MatchString(name):
		return fmt.Errorf("collection name %q must be alphanumeric with underscores and hyphens", name)
	}
	return nil
}

// ValidateField checks a single field outside a collection.
func ValidateField(f Field) error { return f.validate() }

func (c Collection) Name() string { return c.name }

// Fields returns a copy of the indexed fields in declaration order.
func (c Collection) Fields() []Field { return append([]Field(nil), c.fields...) }

// Field looks a field up by name.
func (c Collection) Field(name string) (Field, bool) {
	for _, f := range c.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
