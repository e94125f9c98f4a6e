// Package db is the storage boundary: the command surface the repositories
// need from a search-capable key-value server, independent of the driver.
package db

import (
	"context"
	"time"
)

// Store is everything a backend provides. Consumers declare the narrow
// interfaces they use instead.
//
//nolint:interfacebloat // aggregate of the role interfaces below
type Store interface {
	Pinger
	HashStore
	IndexManager
	Searcher
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem is one hash write.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore reads and writes document hashes.
type HashStore interface {
	// HSetMulti writes items in one round trip. Fields absent from an item
	// are left untouched.
	HSetMulti(ctx context.Context, items []HashSetItem) error
	// HGetAllMulti returns one map per key, in key order; absent keys map to
	// an empty map.
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	// Del removes keys and reports how many existed.
	Del(ctx context.Context, keys ...string) (int, error)
	// ScanKeys hands fn every key matching pattern, one SCAN page at a time.
	ScanKeys(ctx context.Context, pattern string, fn func(keys []string) error) error
}

// IndexManager owns FT index lifecycle.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher runs queries over an FT index.
type Searcher interface {
	Search(ctx context.Context, q *SearchQuery) (*SearchResult, error)
	SearchCount(ctx context.Context, q *SearchQuery) (int, error)
	// SearchScan streams every match in batches of q.Limit. Returning an error
	// from fn stops the scan and releases any server-side cursor.
	SearchScan(ctx context.Context, q *SearchQuery, fn func(*SearchResult) error) error
}
