package search

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/kailas-cloud/vecscope/internal/domain"
	"github.com/kailas-cloud/vecscope/internal/domain/search/result"
	"github.com/kailas-cloud/vecscope/internal/domain/spec"
)

// --- Mocks ---

type call struct {
	op  string
	req spec.Request
}

type mockExecutor struct {
	calls []call

	fetchSet  result.Set
	searchSet result.Set
	total     int
	batches   []result.Set
	err       error
}

func (m *mockExecutor) FetchByIDs(_ context.Context, _ string, req *spec.Request) (result.Set, error) {
	m.calls = append(m.calls, call{"fetch", *req})
	return m.fetchSet, m.err
}

func (m *mockExecutor) Search(_ context.Context, _ string, req *spec.Request) (result.Set, error) {
	m.calls = append(m.calls, call{"search", *req})
	return m.searchSet, m.err
}

func (m *mockExecutor) Scan(_ context.Context, _ string, req *spec.Request, fn func(result.Set) error) error {
	m.calls = append(m.calls, call{"scan", *req})
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

func (m *mockExecutor) Count(_ context.Context, _ string, req *spec.Request) (int, error) {
	m.calls = append(m.calls, call{"count", *req})
	return m.total, m.err
}

func (m *mockExecutor) ops() []string {
	out := make([]string, 0, len(m.calls))
	for _, c := range m.calls {
		out = append(out, c.op)
	}
	return out
}

func hit(id string) result.Result {
	return result.New(id, 1, map[string]string{"id": id})
}

// --- Tests ---

func TestFind_WrapsSingleID(t *testing.T) {
	exec := &mockExecutor{fetchSet: result.NewSet([]result.Result{hit("1")}, 1)}
	svc := New(exec)

	set, err := svc.Find(context.Background(), "products", spec.Spec{}, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exec.calls) != 1 || exec.calls[0].op != "fetch" {
		t.Fatalf("calls = %v", exec.ops())
	}
	if got := exec.calls[0].req.IDs; !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("IDs = %v", got)
	}
	if h, ok := set.First(); !ok || h.ID() != "1" {
		t.Errorf("first = %v, %v", h, ok)
	}
}

func TestFindMany_PreservesOrder(t *testing.T) {
	exec := &mockExecutor{}
	svc := New(exec)

	_, err := svc.FindMany(context.Background(), "products", spec.Spec{}, []string{"1", "2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := exec.calls[0].req.IDs; !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Errorf("IDs = %v", got)
	}
}

func TestFindMany_EmptyArgument(t *testing.T) {
	exec := &mockExecutor{}
	svc := New(exec)

	_, err := svc.FindMany(context.Background(), "products", spec.Spec{}, nil)
	if !errors.Is(err, domain.ErrEmptyArgument) {
		t.Fatalf("err = %v, want ErrEmptyArgument", err)
	}
	if len(exec.calls) != 0 {
		t.Errorf("executor called: %v", exec.ops())
	}
}

func TestFind_VarsMergedBeforeIDs(t *testing.T) {
	exec := &mockExecutor{}
	svc := New(exec)

	vars := spec.Fragment{IDs: []string{"other"}, Params: spec.Params{spec.ParamRaw: true}}
	set, err := svc.Find(context.Background(), "products", spec.Spec{}, "1", vars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := exec.calls[0].req.IDs; !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("IDs = %v, want the looked-up id", got)
	}
	if !set.Raw() {
		t.Error("raw flag from vars was lost")
	}
}

func TestFirst_SizeOne(t *testing.T) {
	exec := &mockExecutor{searchSet: result.NewSet([]result.Result{hit("a")}, 9)}
	svc := New(exec)

	base := spec.Spec{}.Size(50).Terms(map[string]any{"color": "red"})
	set, err := svc.First(context.Background(), "products", base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := exec.calls[0].req
	if req.Limit != 1 || req.Offset != 0 {
		t.Errorf("limit/offset = %d/%d", req.Limit, req.Offset)
	}
	if req.Terms["color"] != "red" {
		t.Errorf("terms = %v", req.Terms)
	}
	if set.Raw() {
		t.Error("raw set without Raw()")
	}
}

func TestFirst_VarsWinOverSizeOne(t *testing.T) {
	exec := &mockExecutor{}
	svc := New(exec)

	_, err := svc.First(context.Background(), "products", spec.Spec{}, spec.Fragment{Params: spec.Params{spec.ParamSize: 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := exec.calls[0].req.Limit; got != 3 {
		t.Errorf("limit = %d, want 3", got)
	}
}

func TestLast_CountThenSearch(t *testing.T) {
	exec := &mockExecutor{total: 5, searchSet: result.NewSet([]result.Result{hit("e")}, 5)}
	svc := New(exec)

	set, err := svc.Last(context.Background(), "products", spec.Spec{}.Sort(spec.Asc("created_at")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := exec.ops(); !reflect.DeepEqual(got, []string{"count", "search"}) {
		t.Fatalf("calls = %v", got)
	}
	req := exec.calls[1].req
	if req.Offset != 4 || req.Limit != 1 {
		t.Errorf("offset/limit = %d/%d, want 4/1", req.Offset, req.Limit)
	}
	if len(req.Sort) != 1 || req.Sort[0].Field != "created_at" {
		t.Errorf("sort = %v", req.Sort)
	}
	if h, ok := set.First(); !ok || h.ID() != "e" {
		t.Errorf("first = %v, %v", h, ok)
	}
}

func TestLast_NoMatches(t *testing.T) {
	exec := &mockExecutor{total: 0}
	svc := New(exec)

	set, err := svc.Last(context.Background(), "products", spec.Spec{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := exec.ops(); !reflect.DeepEqual(got, []string{"count"}) {
		t.Errorf("calls = %v", got)
	}
	if _, ok := set.First(); ok {
		t.Error("expected empty set")
	}
}

func TestAll_DefaultSize(t *testing.T) {
	exec := &mockExecutor{}
	svc := New(exec)

	if _, err := svc.All(context.Background(), "products", spec.Spec{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := exec.calls[0].req.Limit; got != spec.DefaultSize {
		t.Errorf("limit = %d, want %d", got, spec.DefaultSize)
	}
}

func TestAll_PageBecomesOffset(t *testing.T) {
	exec := &mockExecutor{}
	svc := New(exec)

	if _, err := svc.All(context.Background(), "products", spec.Spec{}.Size(20).Page(3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := exec.calls[0].req.Offset; got != 40 {
		t.Errorf("offset = %d, want 40", got)
	}
}

func TestAll_InvalidParams(t *testing.T) {
	exec := &mockExecutor{}
	svc := New(exec)

	_, err := svc.All(context.Background(), "products", spec.Spec{}.Size(-1))
	if !errors.Is(err, domain.ErrInvalidParams) {
		t.Fatalf("err = %v, want ErrInvalidParams", err)
	}
	if len(exec.calls) != 0 {
		t.Errorf("executor called: %v", exec.ops())
	}
}

func TestScanAll_Batches(t *testing.T) {
	exec := &mockExecutor{batches: []result.Set{
		result.NewSet([]result.Result{hit("1"), hit("2")}, 3),
		result.NewSet([]result.Result{hit("3")}, 3),
	}}
	svc := New(exec)

	var seen []string
	err := svc.ScanAll(context.Background(), "products", spec.Spec{}, func(set result.Set) error {
		for _, h := range set.Hits() {
			seen = append(seen, h.ID())
		}
		return nil
	}, spec.Fragment{Params: spec.Params{spec.ParamSize: 2, spec.ParamScroll: "1m"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(seen, []string{"1", "2", "3"}) {
		t.Errorf("seen = %v", seen)
	}
	req := exec.calls[0].req
	if req.Limit != 2 || req.Scroll != time.Minute {
		t.Errorf("limit/scroll = %d/%v", req.Limit, req.Scroll)
	}
}

func TestScanAll_CallbackStops(t *testing.T) {
	exec := &mockExecutor{batches: []result.Set{
		result.NewSet([]result.Result{hit("1")}, 2),
		result.NewSet([]result.Result{hit("2")}, 2),
	}}
	svc := New(exec)

	stop := errors.New("enough")
	batches := 0
	err := svc.ScanAll(context.Background(), "products", spec.Spec{}, func(result.Set) error {
		batches++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("err = %v, want callback error", err)
	}
	if batches != 1 {
		t.Errorf("batches = %d, want 1", batches)
	}
}

func TestScanAll_ZeroBatch(t *testing.T) {
	svc := New(&mockExecutor{})
	err := svc.ScanAll(context.Background(), "products", spec.Spec{}.Size(0), func(result.Set) error { return nil })
	if !errors.Is(err, domain.ErrInvalidParams) {
		t.Errorf("err = %v, want ErrInvalidParams", err)
	}
}

func TestCount(t *testing.T) {
	exec := &mockExecutor{total: 42}
	svc := New(exec)

	n, err := svc.Count(context.Background(), "products", spec.Spec{}.Query("boots"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 42 {
		t.Errorf("count = %d", n)
	}
	if exec.calls[0].req.Query != "boots" {
		t.Errorf("query = %q", exec.calls[0].req.Query)
	}
}

func TestExecutorErrorsWrapped(t *testing.T) {
	backend := errors.New("connection refused")
	svc := New(&mockExecutor{err: backend})
	ctx := context.Background()

	_, err := svc.All(ctx, "products", spec.Spec{})
	if !errors.Is(err, backend) {
		t.Errorf("All err = %v", err)
	}
	_, err = svc.Count(ctx, "products", spec.Spec{})
	if !errors.Is(err, backend) {
		t.Errorf("Count err = %v", err)
	}
	_, err = svc.Find(ctx, "products", spec.Spec{}, "1")
	if !errors.Is(err, backend) {
		t.Errorf("Find err = %v", err)
	}
	_, err = svc.Last(ctx, "products", spec.Spec{})
	if !errors.Is(err, backend) {
		t.Errorf("Last err = %v", err)
	}
}

func TestBuilderChainUnchangedByTerminals(t *testing.T) {
	exec := &mockExecutor{total: 3}
	svc := New(exec)

	base := spec.Spec{}.Size(7)
	before := base.Fragment()
	_, _ = svc.First(context.Background(), "products", base)
	_, _ = svc.Last(context.Background(), "products", base)
	if !reflect.DeepEqual(base.Fragment(), before) {
		t.Error("terminal call mutated the spec")
	}
}
