package collection

import (
	"fmt"

	"github.com/kailas-cloud/vecscope/internal/db"
	"github.com/kailas-cloud/vecscope/internal/domain"
	domcol "github.com/kailas-cloud/vecscope/internal/domain/collection"
)

var schemaFields = map[domcol.FieldType]func(string) db.IndexField{
	domcol.Tag:     db.TagField,
	domcol.Numeric: db.NumericField,
	domcol.Text:    db.TextField,
}

// indexFor maps a collection onto its hash index. Every field indexes
// missing values so that nil terms can match documents lacking the field.
func indexFor(prefix string, col domcol.Collection) (*db.IndexDefinition, error) {
	cols := col.Fields()
	fields := make([]db.IndexField, len(cols))
	for i, f := range cols {
		mk, ok := schemaFields[f.Type]
		if !ok {
			return nil, fmt.Errorf("collection %s: field %s has unknown type %q", col.Name(), f.Name, f.Type)
		}
		fields[i] = mk(f.Name)
		fields[i].Sortable = f.Sortable
		fields[i].IndexMissing = true
	}

	def, err := db.NewHashIndex(
		domain.IndexName(prefix, col.Name()),
		domain.CollectionPrefix(prefix, col.Name()),
		fields...,
	)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", col.Name(), err)
	}
	return def, nil
}
