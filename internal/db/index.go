package db

import (
	"errors"
	"fmt"
	"regexp"
)

// FieldType is an FT.CREATE SCHEMA type keyword.
type FieldType string

const (
	FieldTag     FieldType = "TAG"
	FieldNumeric FieldType = "NUMERIC"
	FieldText    FieldType = "TEXT"
)

// StorageType is the ON clause of FT.CREATE.
type StorageType string

// StorageHash indexes hash keys.
const StorageHash StorageType = "HASH"

// IndexField is one SCHEMA entry.
type IndexField struct {
	Name     string
	Alias    string
	Type     FieldType
	Sortable bool
	// IndexMissing lets ismissing(@field) match documents lacking the field.
	IndexMissing bool

	// TAG only.
	TagSeparator     string
	TagCaseSensitive bool
}

// TagField returns a TAG schema entry.
func TagField(name string) IndexField { return IndexField{Name: name, Type: FieldTag} }

// NumericField returns a NUMERIC schema entry.
func NumericField(name string) IndexField { return IndexField{Name: name, Type: FieldNumeric} }

// TextField returns a TEXT schema entry.
func TextField(name string) IndexField { return IndexField{Name: name, Type: FieldText} }

// IndexDefinition is everything FT.CREATE needs.
type IndexDefinition struct {
	Name        string
	StorageType StorageType
	Prefixes    []string
	Fields      []IndexField
}

// NewHashIndex returns a validated HASH index over keys starting with prefix.
func NewHashIndex(name, prefix string, fields ...IndexField) (*IndexDefinition, error) {
	def := &IndexDefinition{
		Name:        name,
		StorageType: StorageHash,
		Prefixes:    []string{prefix},
		Fields:      fields,
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

var identRe = regexp.MustCompile(`^[a-zA-Z0-9_:-]+$`)

// Validate reports the first problem with the definition.
func (idx *IndexDefinition) Validate() error {
	if !identRe.MatchString(idx.Name) {
		return fmt.Errorf("index name %q must match %s", idx.Name, identRe)
	}
	if len(idx.Fields) == 0 {
		return fmt.Errorf("index %s: at least one field is required", idx.Name)
	}

	seen := make(map[string]struct{}, len(idx.Fields))
	for i, f := range idx.Fields {
		if f.Name == "" {
			return fmt.Errorf("index %s: field %d has no name", idx.Name, i)
		}
		switch f.Type {
		case FieldTag, FieldNumeric, FieldText:
		default:
			return fmt.Errorf("index %s: field %s has unknown type %q", idx.Name, f.Name, f.Type)
		}
		// the alias is what queries address
		attr := f.Name
		if f.Alias != "" {
			attr = f.Alias
		}
		if _, dup := seen[attr]; dup {
			return errors.New("index " + idx.Name + ": duplicate field " + attr)
		}
		seen[attr] = struct{}{}
	}
	return nil
}
