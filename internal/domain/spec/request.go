package spec

import (
	"fmt"
	"maps"
	"time"

	"github.com/kailas-cloud/vecscope/internal/domain"
	"github.com/kailas-cloud/vecscope/internal/domain/search/filter"
)

// Executor-facing defaults.
const (
	// DefaultSize is the page size used when params.size is absent.
	DefaultSize = 10
	// DefaultScroll is the cursor lifetime used by scans when params.scroll is absent.
	DefaultScroll = 5 * time.Minute
)

// Request is a finalized spec, ready for an executor. Paging is resolved to
// an offset/limit pair and missing fields are folded into Filters.
type Request struct {
	Query   string
	Terms   map[string]any
	Filters []filter.Condition
	Sort    []Sort
	IDs     []string
	Offset  int
	Limit   int
	Fields  []string
	Scroll  time.Duration
	Raw     bool
	// Extra carries params the library does not interpret.
	Extra map[string]any
}

// Finalize converts s into a Request.
//
// Paging: params.from wins when present; otherwise the offset is
// size × (page − 1), with size defaulting to DefaultSize.
func Finalize(s Spec) (Request, error) {
	size, hasSize, err := s.params.Size()
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidParams, err)
	}
	if hasSize && size < 0 {
		return Request{}, fmt.Errorf("%w: size must be non-negative, got %d", domain.ErrInvalidParams, size)
	}
	if !hasSize {
		size = DefaultSize
	}

	offset, err := offsetOf(s.params, size)
	if err != nil {
		return Request{}, err
	}

	fields, err := s.params.Fields()
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidParams, err)
	}

	scroll, hasScroll, err := s.params.Scroll()
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidParams, err)
	}
	if !hasScroll || scroll <= 0 {
		scroll = DefaultScroll
	}

	filters := make([]filter.Condition, 0, len(s.filters)+len(s.missing))
	for i, c := range s.filters {
		if !c.Valid() {
			return Request{}, fmt.Errorf("%w: filter %d is empty; build it with Match, Range or Missing", domain.ErrInvalidParams, i)
		}
		filters = append(filters, c)
	}
	for _, field := range s.missing {
		c, err := filter.Missing(field)
		if err != nil {
			return Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidParams, err)
		}
		filters = append(filters, c)
	}

	q, _ := s.QueryText()
	return Request{
		Query:   q,
		Terms:   maps.Clone(s.terms),
		Filters: filters,
		Sort:    s.SortKeys(),
		IDs:     s.IDs(),
		Offset:  offset,
		Limit:   size,
		Fields:  fields,
		Scroll:  scroll,
		Raw:     s.params.Raw(),
		Extra:   extraParams(s.params),
	}, nil
}

func offsetOf(p Params, size int) (int, error) {
	from, hasFrom, err := p.From()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrInvalidParams, err)
	}
	if hasFrom {
		if from < 0 {
			return 0, fmt.Errorf("%w: from must be non-negative, got %d", domain.ErrInvalidParams, from)
		}
		return from, nil
	}

	page, hasPage, err := p.Page()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrInvalidParams, err)
	}
	if !hasPage {
		return 0, nil
	}
	if page < 1 {
		return 0, fmt.Errorf("%w: page must be at least 1, got %d", domain.ErrInvalidParams, page)
	}
	return size * (page - 1), nil
}

func extraParams(p Params) map[string]any {
	var out map[string]any
	for k, v := range p {
		switch k {
		case ParamFields, ParamSize, ParamFrom, ParamPage, ParamScroll, ParamRaw:
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[k] = v
	}
	return out
}
