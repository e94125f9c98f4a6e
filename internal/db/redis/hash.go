package redis

import (
	"context"
	"maps"
	"slices"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/vecscope/internal/db"
)

const scanPageSize = 500

// pipeline sends one command per key in a single round trip. Keys go out as
// separate commands so they may live on different cluster slots.
func (s *Store) pipeline(ctx context.Context, op string, keys []string, cmds rueidis.Commands) ([]rueidis.RedisResult, error) {
	if len(cmds) == 0 {
		return nil, nil
	}
	replies := s.client.DoMulti(ctx, cmds...)
	for i, r := range replies {
		if err := r.Error(); err != nil {
			return nil, wrapKey(op, keys[i], err)
		}
	}
	return replies, nil
}

// HSetMulti writes each item's fields in sorted order. Items without fields
// are skipped: HSET needs at least one pair.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	keys := make([]string, 0, len(items))
	cmds := make(rueidis.Commands, 0, len(items))
	for _, it := range items {
		if len(it.Fields) == 0 {
			continue
		}
		cmd := s.b().Hset().Key(it.Key).FieldValue()
		for _, name := range slices.Sorted(maps.Keys(it.Fields)) {
			cmd = cmd.FieldValue(name, it.Fields[name])
		}
		keys = append(keys, it.Key)
		cmds = append(cmds, cmd.Build())
	}
	_, err := s.pipeline(ctx, db.OpHSet, keys, cmds)
	return err
}

func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	cmds := make(rueidis.Commands, len(keys))
	for i, k := range keys {
		cmds[i] = s.b().Hgetall().Key(k).Build()
	}
	replies, err := s.pipeline(ctx, db.OpHGetAll, keys, cmds)
	if err != nil || replies == nil {
		return nil, err
	}

	out := make([]map[string]string, len(replies))
	for i, r := range replies {
		m, err := r.AsStrMap()
		if err != nil {
			return nil, wrapKey(db.OpHGetAll, keys[i], err)
		}
		out[i] = m
	}
	return out, nil
}

func (s *Store) Del(ctx context.Context, keys ...string) (int, error) {
	cmds := make(rueidis.Commands, len(keys))
	for i, k := range keys {
		cmds[i] = s.b().Del().Key(k).Build()
	}
	replies, err := s.pipeline(ctx, db.OpDel, keys, cmds)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, r := range replies {
		n, _ := r.AsInt64()
		removed += int(n)
	}
	return removed, nil
}

func (s *Store) ScanKeys(ctx context.Context, pattern string, fn func(keys []string) error) error {
	var cursor uint64
	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(scanPageSize).Build()
		page, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return wrap(db.OpScan, err)
		}
		if len(page.Elements) > 0 {
			if err := fn(page.Elements); err != nil {
				return err
			}
		}
		if page.Cursor == 0 {
			return nil
		}
		cursor = page.Cursor
	}
}

// allKeys collects ScanKeys into one slice. SCAN may return a key more than
// once during a full iteration, so repeats are dropped.
func (s *Store) allKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	seen := make(map[string]struct{})
	err := s.ScanKeys(ctx, pattern, func(page []string) error {
		for _, k := range page {
			if _, dup := seen[k]; !dup {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
		return nil
	})
	return keys, err
}
