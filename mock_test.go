package vecscope

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecscope/internal/db"
	"github.com/kailas-cloud/vecscope/internal/domain/search/result"
	"github.com/kailas-cloud/vecscope/internal/domain/spec"
	collectionrepo "github.com/kailas-cloud/vecscope/internal/repository/collection"
	documentrepo "github.com/kailas-cloud/vecscope/internal/repository/document"
	searchuc "github.com/kailas-cloud/vecscope/internal/usecase/search"
)

type execCall struct {
	op         string
	collection string
	req        spec.Request
}

// mockExecutor records every call and replays canned answers.
type mockExecutor struct {
	calls []execCall

	fetchSet  result.Set
	searchSet result.Set
	total     int
	batches   []result.Set
	err       error
}

func (m *mockExecutor) FetchByIDs(_ context.Context, col string, req *spec.Request) (result.Set, error) {
	m.calls = append(m.calls, execCall{"fetch", col, *req})
	return m.fetchSet, m.err
}

func (m *mockExecutor) Search(_ context.Context, col string, req *spec.Request) (result.Set, error) {
	m.calls = append(m.calls, execCall{"search", col, *req})
	return m.searchSet, m.err
}

func (m *mockExecutor) Scan(_ context.Context, col string, req *spec.Request, fn func(result.Set) error) error {
	m.calls = append(m.calls, execCall{"scan", col, *req})
	if m.err != nil {
		return m.err
	}
	for _, b := range m.batches {
		if err := fn(b); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockExecutor) Count(_ context.Context, col string, req *spec.Request) (int, error) {
	m.calls = append(m.calls, execCall{"count", col, *req})
	return m.total, m.err
}

func (m *mockExecutor) ops() []string {
	out := make([]string, 0, len(m.calls))
	for _, c := range m.calls {
		out = append(out, c.op)
	}
	return out
}

// mockStore covers the index and hash writes models issue.
type mockStore struct {
	created []*db.IndexDefinition
	dropped []string
	written []db.HashSetItem
	deleted []string
	exists  bool
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.created = append(m.created, def)
	return nil
}

func (m *mockStore) DropIndex(_ context.Context, name string) error {
	m.dropped = append(m.dropped, name)
	return nil
}

func (m *mockStore) IndexExists(context.Context, string) (bool, error) { return m.exists, nil }

func (m *mockStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	m.written = append(m.written, items...)
	return nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) (int, error) {
	m.deleted = append(m.deleted, keys...)
	return len(keys), nil
}

func newTestClient(t *testing.T, exec *mockExecutor, templates Templates) (*Client, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return &Client{
		search:      searchuc.New(exec),
		collections: collectionrepo.New(ms, ""),
		documents:   documentrepo.New(ms, ""),
		templates:   templates,
		logger:      zap.NewNop(),
	}, ms
}

type Product struct {
	ID    string   `vecscope:"id,id"`
	Title string   `vecscope:"title,text"`
	Color string   `vecscope:"color,tag"`
	Price float64  `vecscope:"price,numeric,sortable"`
	Stock *int     `vecscope:"stock,numeric"`
	Notes string   `vecscope:"notes"`
	Skip  string   `vecscope:"-"`
	Extra struct{} // untagged
}

func newProducts(t *testing.T, exec *mockExecutor, opts ...ModelOption) (*Model[Product], *mockStore) {
	t.Helper()
	c, ms := newTestClient(t, exec, nil)
	m, err := NewModel[Product](c, "products", opts...)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m, ms
}

func hit(id string, fields map[string]string) result.Result {
	return result.New(id, 1, fields)
}
