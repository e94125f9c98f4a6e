package redis

import (
	"cmp"
	"context"
	"errors"
	"strconv"

	"github.com/kailas-cloud/vecscope/internal/db"
)

// CreateIndex issues FT.CREATE. An existing index yields db.ErrIndexExists.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := createArgs(def, s.flavor)
	if err != nil {
		return err
	}
	return wrap(db.OpCreateIndex, s.do(ctx, s.b().Arbitrary("FT.CREATE").Args(args...).Build()).Error())
}

// DropIndex removes an index and keeps its documents.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	return wrap(db.OpDropIndex, s.do(ctx, s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()).Error())
}

// IndexExists asks FT.INFO; a missing-index reply means false.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	err := wrap(db.OpIndexInfo, s.do(ctx, s.b().Arbitrary("FT.INFO").Args(name).Build()).Error())
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, db.ErrIndexNotFound):
		return false, nil
	}
	return false, err
}

// createArgs renders def as FT.CREATE arguments:
//
//	name ON HASH PREFIX n p... SCHEMA field [AS alias] TYPE [options]...
func createArgs(def *db.IndexDefinition, flavor Flavor) ([]string, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	args := []string{def.Name, "ON", string(cmp.Or(def.StorageType, db.StorageHash))}
	if n := len(def.Prefixes); n > 0 {
		args = append(args, "PREFIX", strconv.Itoa(n))
		args = append(args, def.Prefixes...)
	}
	args = append(args, "SCHEMA")
	for i := range def.Fields {
		args = appendField(args, &def.Fields[i], flavor)
	}
	return args, nil
}

func appendField(args []string, f *db.IndexField, flavor Flavor) []string {
	args = append(args, f.Name)
	if f.Alias != "" {
		args = append(args, "AS", f.Alias)
	}
	args = append(args, string(f.Type))

	if f.Type == db.FieldTag {
		if f.TagSeparator != "" {
			args = append(args, "SEPARATOR", f.TagSeparator)
		}
		if f.TagCaseSensitive {
			args = append(args, "CASESENSITIVE")
		}
	}
	// valkey-search has no INDEXMISSING and no ismissing()
	if f.IndexMissing && flavor == FlavorRedis {
		args = append(args, "INDEXMISSING")
	}
	if f.Sortable {
		args = append(args, "SORTABLE")
	}
	return args
}
