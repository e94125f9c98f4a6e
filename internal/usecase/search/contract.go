package search

import (
	"context"

	"github.com/kailas-cloud/vecscope/internal/domain/search/result"
	"github.com/kailas-cloud/vecscope/internal/domain/spec"
)

// Executor runs finalized requests against a search backend.
type Executor interface {
	// FetchByIDs returns the documents named by req.IDs, in that order.
	FetchByIDs(ctx context.Context, collection string, req *spec.Request) (result.Set, error)
	// Search runs a bounded search of req.Limit hits starting at req.Offset.
	Search(ctx context.Context, collection string, req *spec.Request) (result.Set, error)
	// Scan delivers every matching document in batches of req.Limit.
	// An error from fn stops the scan and is returned unchanged.
	Scan(ctx context.Context, collection string, req *spec.Request, fn func(result.Set) error) error
	// Count returns the number of matching documents.
	Count(ctx context.Context, collection string, req *spec.Request) (int, error)
}
