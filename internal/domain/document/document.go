// Package document is the stored form of a model item: an id and the flat
// string fields written to its hash.
package document

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

const (
	MaxIDLength  = 256
	MaxFieldSize = 160 << 10
)

// ErrInvalid wraps every validation failure of New.
var ErrInvalid = errors.New("invalid document")

// Document is immutable; accessors hand out copies.
type Document struct {
	id     string
	fields map[string]string
}

// New validates id and fields. Ids may hold letters, digits, '_', '.' and '-'
// so that they never clash with the ':'-separated key layout.
func New(id string, fields map[string]string) (Document, error) {
	if err := validateID(id); err != nil {
		return Document{}, err
	}
	if len(fields) == 0 {
		return Document{}, fmt.Errorf("%w %q: no fields", ErrInvalid, id)
	}
	for name, value := range fields {
		switch {
		case name == "":
			return Document{}, fmt.Errorf("%w %q: empty field name", ErrInvalid, id)
		case len(value) > MaxFieldSize:
			return Document{}, fmt.Errorf("%w %q: field %q too large (%d > %d bytes)",
				ErrInvalid, id, name, len(value), MaxFieldSize)
		}
	}
	return Document{id: id, fields: maps.Clone(fields)}, nil
}

func validateID(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: id is required", ErrInvalid)
	case len(id) > MaxIDLength:
		return fmt.Errorf("%w: id too long (%d > %d)", ErrInvalid, len(id), MaxIDLength)
	}
	if i := strings.IndexFunc(id, func(r rune) bool { return !idRune(r) }); i >= 0 {
		return fmt.Errorf("%w: id %q: character %q not allowed", ErrInvalid, id, id[i])
	}
	return nil
}

func idRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return r == '_' || r == '.' || r == '-'
}

func (d Document) ID() string { return d.id }

// Fields returns a copy of the stored fields.
func (d Document) Fields() map[string]string { return maps.Clone(d.fields) }

// Len is the number of stored fields.
func (d Document) Len() int { return len(d.fields) }
