package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecscope/internal/domain/search/result"
	"github.com/kailas-cloud/vecscope/internal/domain/spec"
	"github.com/kailas-cloud/vecscope/internal/metrics"
)

// InstrumentedExecutor wraps an Executor with logging and Prometheus metrics.
// Register metrics.ExecutorCollectors on a registry to export them.
type InstrumentedExecutor struct {
	inner  Executor
	logger *zap.Logger
}

// NewInstrumentedExecutor wraps inner.
func NewInstrumentedExecutor(inner Executor, logger *zap.Logger) *InstrumentedExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedExecutor{inner: inner, logger: logger}
}

// FetchByIDs delegates and records the call.
func (e *InstrumentedExecutor) FetchByIDs(
	ctx context.Context, collection string, req *spec.Request,
) (result.Set, error) {
	start := time.Now()
	set, err := e.inner.FetchByIDs(ctx, collection, req)
	e.observe("fetch", collection, start, len(set.Hits()), err, zap.Int("ids", len(req.IDs)))
	return set, err //nolint:wrapcheck // decorator keeps the inner error intact
}

// Search delegates and records the call.
func (e *InstrumentedExecutor) Search(
	ctx context.Context, collection string, req *spec.Request,
) (result.Set, error) {
	start := time.Now()
	set, err := e.inner.Search(ctx, collection, req)
	e.observe("search", collection, start, len(set.Hits()), err,
		zap.Int("offset", req.Offset),
		zap.Int("limit", req.Limit),
		zap.Int("total", set.Total()),
	)
	return set, err //nolint:wrapcheck // decorator keeps the inner error intact
}

// Scan delegates, counting delivered batches.
func (e *InstrumentedExecutor) Scan(
	ctx context.Context, collection string, req *spec.Request, fn func(result.Set) error,
) error {
	start := time.Now()
	batches, hits := 0, 0
	err := e.inner.Scan(ctx, collection, req, func(set result.Set) error {
		batches++
		hits += len(set.Hits())
		metrics.ScanBatchesTotal.WithLabelValues(collection).Inc()
		return fn(set)
	})
	e.observe("scan", collection, start, hits, err,
		zap.Int("batch_size", req.Limit),
		zap.Int("batches", batches),
		zap.Duration("scroll", req.Scroll),
	)
	return err //nolint:wrapcheck // decorator keeps the inner error intact
}

// Count delegates and records the call.
func (e *InstrumentedExecutor) Count(
	ctx context.Context, collection string, req *spec.Request,
) (int, error) {
	start := time.Now()
	n, err := e.inner.Count(ctx, collection, req)
	e.observe("count", collection, start, 0, err, zap.Int("total", n))
	return n, err //nolint:wrapcheck // decorator keeps the inner error intact
}

func (e *InstrumentedExecutor) observe(
	op, collection string, start time.Time, hits int, err error, fields ...zap.Field,
) {
	duration := time.Since(start)
	status := "ok"
	if err != nil {
		status = "error"
	}

	metrics.ExecutorRequestsTotal.WithLabelValues(op, collection, status).Inc()
	metrics.ExecutorRequestDuration.WithLabelValues(op, collection).Observe(duration.Seconds())
	if hits > 0 {
		metrics.ExecutorHitsTotal.WithLabelValues(op, collection).Add(float64(hits))
	}

	fields = append(fields,
		zap.String("op", op),
		zap.String("collection", collection),
		zap.Duration("duration", duration),
	)
	if err != nil {
		e.logger.Error("Executor call failed", append(fields, zap.Error(err))...)
		return
	}
	e.logger.Debug("Executor call completed", append(fields, zap.Int("hits", hits))...)
}
