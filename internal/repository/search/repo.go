package search

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/vecscope/internal/db"
	"github.com/kailas-cloud/vecscope/internal/domain"
	"github.com/kailas-cloud/vecscope/internal/domain/search/filter"
	"github.com/kailas-cloud/vecscope/internal/domain/search/result"
	"github.com/kailas-cloud/vecscope/internal/domain/spec"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, q *db.SearchQuery) (int, error)
	SearchScan(ctx context.Context, q *db.SearchQuery, fn func(*db.SearchResult) error) error
}

// Repo implements usecase/search.Executor over hash documents and an FT index.
type Repo struct {
	store  store
	prefix string
}

// New creates a search repository. An empty keyPrefix means domain.DefaultKeyPrefix.
func New(s store, keyPrefix string) *Repo {
	if keyPrefix == "" {
		keyPrefix = domain.DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: keyPrefix}
}

// FetchByIDs loads documents by id in request order. Unknown ids are skipped.
func (r *Repo) FetchByIDs(ctx context.Context, collection string, req *spec.Request) (result.Set, error) {
	if len(req.IDs) == 0 {
		return result.NewSet(nil, 0), nil
	}

	keys := make([]string, len(req.IDs))
	for i, id := range req.IDs {
		keys[i] = domain.DocumentKey(r.prefix, collection, id)
	}

	docs, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return result.Set{}, fmt.Errorf("fetch %s: %w", collection, err)
	}

	hits := make([]result.Result, 0, len(docs))
	for i, m := range docs {
		if len(m) == 0 {
			continue
		}
		hits = append(hits, result.New(req.IDs[i], 0, project(m, req.Fields)))
	}
	return result.NewSet(hits, len(hits)), nil
}

// Search runs one bounded page of the request.
func (r *Repo) Search(ctx context.Context, collection string, req *spec.Request) (result.Set, error) {
	q, err := r.query(collection, req)
	if err != nil {
		return result.Set{}, err
	}
	q.Offset = req.Offset
	q.Limit = req.Limit

	sr, err := r.store.Search(ctx, q)
	if err != nil {
		return result.Set{}, fmt.Errorf("search %s: %w", collection, err)
	}
	return r.toSet(collection, sr), nil
}

// Scan streams every match in batches of req.Limit, keeping the cursor alive for req.Scroll.
func (r *Repo) Scan(
	ctx context.Context, collection string, req *spec.Request, fn func(result.Set) error,
) error {
	q, err := r.query(collection, req)
	if err != nil {
		return err
	}
	q.Limit = req.Limit
	q.MaxIdle = req.Scroll

	var cbErr error
	err = r.store.SearchScan(ctx, q, func(sr *db.SearchResult) error {
		cbErr = fn(r.toSet(collection, sr))
		return cbErr
	})
	if err != nil {
		if cbErr != nil {
			return cbErr
		}
		return fmt.Errorf("scan %s: %w", collection, err)
	}
	return nil
}

// Count returns the number of documents matching the request.
func (r *Repo) Count(ctx context.Context, collection string, req *spec.Request) (int, error) {
	q, err := r.query(collection, req)
	if err != nil {
		return 0, err
	}
	n, err := r.store.SearchCount(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

func (r *Repo) query(collection string, req *spec.Request) (*db.SearchQuery, error) {
	conds, err := TermConditions(req.Terms)
	if err != nil {
		return nil, err
	}

	q := &db.SearchQuery{
		IndexName:    domain.IndexName(r.prefix, collection),
		KeyPrefix:    domain.CollectionPrefix(r.prefix, collection),
		Text:         req.Query,
		Filters:      append(conds, req.Filters...),
		ReturnFields: req.Fields,
	}
	// FT.SEARCH accepts a single SORTBY key.
	if len(req.Sort) > 0 {
		q.SortBy = req.Sort[0].Field
		q.SortDesc = req.Sort[0].Desc
	}
	return q, nil
}

func (r *Repo) toSet(collection string, sr *db.SearchResult) result.Set {
	if sr == nil {
		return result.NewSet(nil, 0)
	}
	prefix := domain.CollectionPrefix(r.prefix, collection)
	hits := make([]result.Result, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		hits = append(hits, result.New(strings.TrimPrefix(e.Key, prefix), e.Score, e.Fields))
	}
	return result.NewSet(hits, sr.Total)
}

// TermConditions converts term values into filter conditions, ordered by field name.
// Strings and booleans become tag matches, numbers become point ranges and
// lists become any-of tag matches.
func TermConditions(terms map[string]any) ([]filter.Condition, error) {
	out := make([]filter.Condition, 0, len(terms))
	for _, key := range slices.Sorted(maps.Keys(terms)) {
		c, err := termCondition(key, terms[key])
		if err != nil {
			return nil, fmt.Errorf("%w: term %q: %w", domain.ErrInvalidParams, key, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func termCondition(key string, v any) (filter.Condition, error) {
	if f, ok := toFloat(v); ok {
		return filter.InRange(key, filter.Point(f))
	}

	switch x := v.(type) {
	case string:
		return filter.Match(key, x)
	case bool:
		return filter.Match(key, strconv.FormatBool(x))
	case []string:
		return filter.Match(key, x...)
	case []any:
		values := make([]string, 0, len(x))
		for _, item := range x {
			s, err := scalarString(item)
			if err != nil {
				return filter.Condition{}, err
			}
			values = append(values, s)
		}
		return filter.Match(key, values...)
	default:
		return filter.Condition{}, fmt.Errorf("unsupported value type %T", v)
	}
}

func scalarString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("unsupported list value type %T", v)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

func project(m map[string]string, fields []string) map[string]string {
	if len(fields) == 0 {
		return m
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if v, ok := m[f]; ok {
			out[f] = v
		}
	}
	return out
}
