package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/vecscope/internal/db"
)

// keyField is the pseudo-field FT.AGGREGATE loads to expose document keys.
const keyField = "__key"

// SearchScan streams all matches to fn in batches of q.Limit.
//
// Redis uses an FT.AGGREGATE cursor (MAXIDLE from q.MaxIdle) and hydrates
// each batch of keys with HGETALL. Valkey pages with FT.SEARCH LIMIT, or with
// SCAN for match-all queries.
func (s *Store) SearchScan(ctx context.Context, q *db.SearchQuery, fn func(*db.SearchResult) error) error {
	if q.IndexName == "" {
		return fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return fmt.Errorf("batch size must be positive")
	}

	if s.flavor == FlavorValkey {
		return s.pagedScan(ctx, q, fn)
	}
	return s.cursorScan(ctx, q, fn)
}

func (s *Store) cursorScan(ctx context.Context, q *db.SearchQuery, fn func(*db.SearchResult) error) error {
	args := []string{q.IndexName, buildQuery(q.Text, q.Filters), "LOAD", "1", "@" + keyField}
	if q.SortBy != "" {
		args = append(args, "SORTBY", "2", "@"+q.SortBy, sortOrder(q.SortDesc))
	}
	args = append(args, "WITHCURSOR", "COUNT", strconv.Itoa(q.Limit))
	if q.MaxIdle > 0 {
		args = append(args, "MAXIDLE", strconv.FormatInt(q.MaxIdle.Milliseconds(), 10))
	}
	args = append(args, "DIALECT", "2")

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return wrap(db.OpAggregate, err)
	}

	for {
		total, keys, cursor, err := parseCursorReply(raw)
		if err != nil {
			return err
		}

		if len(keys) > 0 {
			entries, err := s.hydrate(ctx, keys, q.ReturnFields)
			if err != nil {
				s.closeCursor(ctx, q.IndexName, cursor)
				return err
			}
			if len(entries) > 0 {
				if err := fn(&db.SearchResult{Total: total, Entries: entries}); err != nil {
					s.closeCursor(ctx, q.IndexName, cursor)
					return err
				}
			}
		}

		if cursor == 0 {
			return nil
		}

		cmd = s.b().Arbitrary("FT.CURSOR", "READ").
			Args(q.IndexName, strconv.FormatInt(cursor, 10), "COUNT", strconv.Itoa(q.Limit)).
			Build()
		raw, err = s.do(ctx, cmd).ToArray()
		if err != nil {
			return wrap(db.OpCursorRead, err)
		}
	}
}

// closeCursor releases a server-side cursor. Best effort: the server drops
// idle cursors after MAXIDLE anyway.
func (s *Store) closeCursor(ctx context.Context, index string, cursor int64) {
	if cursor == 0 {
		return
	}
	cmd := s.b().Arbitrary("FT.CURSOR", "DEL").Args(index, strconv.FormatInt(cursor, 10)).Build()
	_ = s.do(context.WithoutCancel(ctx), cmd).Error()
}

// parseCursorReply parses [[total, row1, row2, ...], cursor] where every row
// is a field/value list holding __key.
func parseCursorReply(raw []rueidis.RedisMessage) (int, []string, int64, error) {
	if len(raw) != 2 {
		return 0, nil, 0, errors.New("parse cursor reply: expected [results, cursor]")
	}
	cursor, err := raw[1].AsInt64()
	if err != nil {
		return 0, nil, 0, fmt.Errorf("parse cursor id: %w", err)
	}
	rows, err := raw[0].ToArray()
	if err != nil {
		return 0, nil, 0, fmt.Errorf("parse cursor rows: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil, cursor, nil
	}
	total, err := rows[0].AsInt64()
	if err != nil {
		return 0, nil, 0, fmt.Errorf("parse total: %w", err)
	}

	keys := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		pairs, err := row.ToArray()
		if err != nil {
			continue
		}
		if key, ok := fieldPairs(pairs)[keyField]; ok {
			keys = append(keys, key)
		}
	}
	return int(total), keys, cursor, nil
}

func (s *Store) pagedScan(ctx context.Context, q *db.SearchQuery, fn func(*db.SearchResult) error) error {
	if buildQuery(q.Text, q.Filters) == matchAll {
		entries, total, err := s.scanEntries(ctx, q)
		if err != nil {
			return err
		}
		for start := q.Offset; start < len(entries); start += q.Limit {
			end := min(start+q.Limit, len(entries))
			if err := fn(&db.SearchResult{Total: total, Entries: entries[start:end]}); err != nil {
				return err
			}
		}
		return nil
	}

	page := *q
	for {
		res, err := s.Search(ctx, &page)
		if err != nil {
			return err
		}
		if len(res.Entries) > 0 {
			if err := fn(res); err != nil {
				return err
			}
		}
		page.Offset += len(res.Entries)
		if len(res.Entries) < page.Limit || page.Offset >= res.Total {
			return nil
		}
	}
}
