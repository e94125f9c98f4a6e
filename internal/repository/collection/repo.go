// Package collection manages the search index behind each model.
package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/vecscope/internal/db"
	"github.com/kailas-cloud/vecscope/internal/domain"
	domcol "github.com/kailas-cloud/vecscope/internal/domain/collection"
)

type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo creates, probes and drops collection indexes under one key prefix.
type Repo struct {
	store  store
	prefix string
}

// New returns a repository; an empty keyPrefix means domain.DefaultKeyPrefix.
func New(s store, keyPrefix string) *Repo {
	if keyPrefix == "" {
		keyPrefix = domain.DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: keyPrefix}
}

// Ensure creates the index unless it exists and reports whether it did.
// Losing a creation race to another process counts as not created.
func (r *Repo) Ensure(ctx context.Context, col domcol.Collection) (bool, error) {
	def, err := indexFor(r.prefix, col)
	if err != nil {
		return false, err
	}

	exists, err := r.store.IndexExists(ctx, def.Name)
	switch {
	case err != nil:
		return false, fmt.Errorf("probe index %s: %w", def.Name, err)
	case exists:
		return false, nil
	}

	err = r.store.CreateIndex(ctx, def)
	switch {
	case errors.Is(err, db.ErrIndexExists):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return true, nil
}

// Drop removes the index of the named collection and keeps its documents.
func (r *Repo) Drop(ctx context.Context, name string) error {
	idx := domain.IndexName(r.prefix, name)
	if err := r.store.DropIndex(ctx, idx); err != nil {
		return fmt.Errorf("drop index %s: %w", idx, err)
	}
	return nil
}

func (r *Repo) Exists(ctx context.Context, name string) (bool, error) {
	idx := domain.IndexName(r.prefix, name)
	ok, err := r.store.IndexExists(ctx, idx)
	if err != nil {
		return false, fmt.Errorf("probe index %s: %w", idx, err)
	}
	return ok, nil
}
