package db

import (
	"time"

	"github.com/kailas-cloud/vecscope/internal/domain/search/filter"
)

// SearchQuery is the input for FT.SEARCH / FT.AGGREGATE.
type SearchQuery struct {
	IndexName string
	// KeyPrefix is the hash key prefix the index covers; used by backends
	// that fall back to SCAN for match-all queries.
	KeyPrefix    string
	Text         string
	Filters      []filter.Condition
	SortBy       string
	SortDesc     bool
	Offset       int
	Limit        int
	ReturnFields []string
	// MaxIdle bounds the lifetime of an idle scan cursor.
	MaxIdle time.Duration
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
