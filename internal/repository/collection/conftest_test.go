package collection

import (
	"context"
	"testing"

	"github.com/kailas-cloud/vecscope/internal/db"
	domcol "github.com/kailas-cloud/vecscope/internal/domain/collection"
)

// fakeStore keeps indexes in memory. Set the error fields to fail a call.
type fakeStore struct {
	indexes map[string]*db.IndexDefinition

	createErr error
	dropErr   error
	probeErr  error
	creates   int
}

func newFakeStore(names ...string) *fakeStore {
	fs := &fakeStore{indexes: map[string]*db.IndexDefinition{}}
	for _, n := range names {
		fs.indexes[n] = &db.IndexDefinition{Name: n}
	}
	return fs
}

func (f *fakeStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	f.indexes[def.Name] = def
	return nil
}

func (f *fakeStore) DropIndex(_ context.Context, name string) error {
	if f.dropErr != nil {
		return f.dropErr
	}
	if _, ok := f.indexes[name]; !ok {
		return db.ErrIndexNotFound
	}
	delete(f.indexes, name)
	return nil
}

func (f *fakeStore) IndexExists(_ context.Context, name string) (bool, error) {
	if f.probeErr != nil {
		return false, f.probeErr
	}
	_, ok := f.indexes[name]
	return ok, nil
}

func products(t *testing.T) domcol.Collection {
	t.Helper()
	col, err := domcol.New("products",
		domcol.Field{Name: "color", Type: domcol.Tag},
		domcol.Field{Name: "price", Type: domcol.Numeric, Sortable: true},
		domcol.Field{Name: "title", Type: domcol.Text},
	)
	if err != nil {
		t.Fatal(err)
	}
	return col
}
