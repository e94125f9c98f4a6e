package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/vecscope/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	searchFn       func(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	searchCountFn  func(ctx context.Context, q *db.SearchQuery) (int, error)
	searchScanFn   func(ctx context.Context, q *db.SearchQuery, fn func(*db.SearchResult) error) error
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(ctx context.Context, q *db.SearchQuery) (int, error) {
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, q)
	}
	return 0, nil
}

func (m *mockStore) SearchScan(ctx context.Context, q *db.SearchQuery, fn func(*db.SearchResult) error) error {
	if m.searchScanFn != nil {
		return m.searchScanFn(ctx, q, fn)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, "")
	return repo, ms
}
