package redis

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/vecscope/internal/db"
)

// scanList serves a match-all page from SCAN + HGETALL.
func (s *Store) scanList(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	entries, total, err := s.scanEntries(ctx, q)
	if err != nil {
		return nil, err
	}
	lo := min(q.Offset, len(entries))
	hi := min(lo+q.Limit, len(entries))
	return &db.SearchResult{Total: total, Entries: entries[lo:hi]}, nil
}

// scanEntries loads every document under the query's key prefix, ordered by
// SortBy when set and by key otherwise.
func (s *Store) scanEntries(ctx context.Context, q *db.SearchQuery) ([]db.SearchEntry, int, error) {
	keys, err := s.allKeys(ctx, keyPattern(q))
	if err != nil {
		return nil, 0, fmt.Errorf("list by scan: %w", err)
	}
	slices.Sort(keys)

	entries, err := s.hydrate(ctx, keys, q.ReturnFields)
	if err != nil {
		return nil, 0, err
	}
	if q.SortBy != "" {
		sortEntries(entries, q.SortBy, q.SortDesc)
	}
	return entries, len(keys), nil
}

// hydrate loads the hashes behind keys. Keys deleted since they were listed
// come back empty and are dropped.
func (s *Store) hydrate(ctx context.Context, keys, fields []string) ([]db.SearchEntry, error) {
	hashes, err := s.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, err
	}
	entries := make([]db.SearchEntry, 0, len(keys))
	for i, h := range hashes {
		if len(h) > 0 {
			entries = append(entries, db.SearchEntry{Key: keys[i], Fields: project(h, fields)})
		}
	}
	return entries, nil
}

func project(hash map[string]string, fields []string) map[string]string {
	if len(fields) == 0 {
		return hash
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if v, ok := hash[f]; ok {
			out[f] = v
		}
	}
	return out
}

// sortEntries orders by field: numerically when both sides parse as numbers,
// lexically otherwise. Entries without the field go last either way.
func sortEntries(entries []db.SearchEntry, field string, desc bool) {
	sign := 1
	if desc {
		sign = -1
	}
	slices.SortStableFunc(entries, func(a, b db.SearchEntry) int {
		av, aok := a.Fields[field]
		bv, bok := b.Fields[field]
		if !aok || !bok {
			return boolRank(aok) - boolRank(bok)
		}
		return sign * compareValues(av, bv)
	})
}

// boolRank puts present values (0) before missing ones (1).
func boolRank(present bool) int {
	if present {
		return 0
	}
	return 1
}

func compareValues(a, b string) int {
	af, aerr := strconv.ParseFloat(a, 64)
	bf, berr := strconv.ParseFloat(b, 64)
	if aerr == nil && berr == nil {
		return cmp.Compare(af, bf)
	}
	return strings.Compare(a, b)
}

// keyPattern is the SCAN MATCH pattern for the documents behind an index.
func keyPattern(q *db.SearchQuery) string {
	return cmp.Or(q.KeyPrefix, keyPrefixOf(q.IndexName)) + "*"
}

// keyPrefixOf maps "vecscope:products:idx" to "vecscope:products:".
func keyPrefixOf(index string) string {
	if p, ok := strings.CutSuffix(index, "idx"); ok && strings.HasSuffix(p, ":") {
		return p
	}
	return index + ":"
}
