package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/vecscope/internal/db"
)

const dialect = "2"

func checkQuery(q *db.SearchQuery) error {
	switch {
	case q.IndexName == "":
		return errors.New("search: index name is required")
	case q.Offset < 0, q.Limit < 0:
		return fmt.Errorf("search: offset %d and limit %d must be non-negative", q.Offset, q.Limit)
	}
	return nil
}

// matchesAll reports whether q needs the SCAN fallback: valkey-search
// rejects a bare "*" query.
func (s *Store) matchesAll(q *db.SearchQuery) bool {
	return s.flavor == FlavorValkey && buildQuery(q.Text, q.Filters) == matchAll
}

// Search runs one FT.SEARCH page with scores.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if err := checkQuery(q); err != nil {
		return nil, err
	}
	if s.matchesAll(q) {
		return s.scanList(ctx, q)
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(searchArgs(q)...).Build()
	reply, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, wrap(db.OpSearch, err)
	}
	return decodeSearchReply(reply)
}

// searchArgs renders everything after FT.SEARCH.
func searchArgs(q *db.SearchQuery) []string {
	args := []string{q.IndexName, buildQuery(q.Text, q.Filters), "WITHSCORES"}
	if n := len(q.ReturnFields); n > 0 {
		args = append(append(args, "RETURN", strconv.Itoa(n)), q.ReturnFields...)
	}
	if q.SortBy != "" {
		args = append(args, "SORTBY", q.SortBy, sortOrder(q.SortDesc))
	}
	return append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", dialect,
	)
}

// SearchCount asks for the total only (LIMIT 0 0).
func (s *Store) SearchCount(ctx context.Context, q *db.SearchQuery) (int, error) {
	if s.matchesAll(q) {
		keys, err := s.allKeys(ctx, keyPattern(q))
		if err != nil {
			return 0, fmt.Errorf("count by scan: %w", err)
		}
		return len(keys), nil
	}

	cmd := s.b().Arbitrary("FT.SEARCH").
		Args(q.IndexName, buildQuery(q.Text, q.Filters), "LIMIT", "0", "0", "DIALECT", dialect).
		Build()
	reply, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, wrap(db.OpSearch, err)
	}
	res, err := decodeSearchReply(reply)
	if err != nil {
		return 0, err
	}
	return res.Total, nil
}

func sortOrder(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}

// decodeSearchReply reads a WITHSCORES reply: the total followed by
// key, score, field list triples. A truncated trailing triple is an error.
func decodeSearchReply(reply []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(reply) == 0 {
		return &db.SearchResult{}, nil
	}
	total, err := reply[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("search reply: total: %w", err)
	}
	rows := reply[1:]
	if len(rows)%3 != 0 {
		return nil, fmt.Errorf("search reply: %d trailing values", len(rows)%3)
	}

	res := &db.SearchResult{Total: int(total), Entries: make([]db.SearchEntry, 0, len(rows)/3)}
	for i := 0; i < len(rows); i += 3 {
		e, err := decodeEntry(rows[i], rows[i+1], rows[i+2])
		if err != nil {
			return nil, fmt.Errorf("search reply: row %d: %w", i/3, err)
		}
		res.Entries = append(res.Entries, e)
	}
	return res, nil
}

func decodeEntry(key, score, fields rueidis.RedisMessage) (db.SearchEntry, error) {
	var (
		e   db.SearchEntry
		err error
	)
	if e.Key, err = key.ToString(); err != nil {
		return e, fmt.Errorf("key: %w", err)
	}
	if e.Score, err = score.AsFloat64(); err != nil {
		return e, fmt.Errorf("score of %s: %w", e.Key, err)
	}
	if e.Fields, err = fields.AsStrMap(); err != nil {
		return e, fmt.Errorf("fields of %s: %w", e.Key, err)
	}
	return e, nil
}

// fieldPairs reads a flat name, value, name, value... row as FT.AGGREGATE
// returns it. Non-string entries and a dangling name are skipped.
func fieldPairs(row []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(row)/2)
	for i := 0; i+1 < len(row); i += 2 {
		name, err := row[i].ToString()
		if err != nil {
			continue
		}
		if value, err := row[i+1].ToString(); err == nil {
			m[name] = value
		}
	}
	return m
}
