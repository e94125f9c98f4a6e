// Package document writes model documents as hashes under the collection's key prefix.
package document

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/vecscope/internal/db"
	"github.com/kailas-cloud/vecscope/internal/domain"
	domdoc "github.com/kailas-cloud/vecscope/internal/domain/document"
)

type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, keys ...string) (int, error)
}

// Repo persists documents.
type Repo struct {
	store  store
	prefix string
}

// New creates a document repository. An empty keyPrefix means domain.DefaultKeyPrefix.
func New(s store, keyPrefix string) *Repo {
	if keyPrefix == "" {
		keyPrefix = domain.DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: keyPrefix}
}

// Upsert writes docs in one pipelined round-trip. Existing fields not present
// in a document are kept.
func (r *Repo) Upsert(ctx context.Context, collection string, docs ...domdoc.Document) error {
	if len(docs) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(docs))
	for i, d := range docs {
		items[i] = db.HashSetItem{
			Key:    domain.DocumentKey(r.prefix, collection, d.ID()),
			Fields: d.Fields(),
		}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %s: %w", collection, err)
	}
	return nil
}

// Delete removes documents by id and reports how many existed. Absent ids
// are not an error.
func (r *Repo) Delete(ctx context.Context, collection string, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = domain.DocumentKey(r.prefix, collection, id)
	}
	n, err := r.store.Del(ctx, keys...)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", collection, err)
	}
	return n, nil
}
