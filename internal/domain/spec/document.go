package spec

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/kailas-cloud/vecscope/internal/domain/search/filter"
)

// Document is the serializable form of a Fragment, shared by YAML templates,
// config-defined scopes and the HTTP gateway.
type Document struct {
	Query   *string          `json:"query,omitempty"   yaml:"query,omitempty"`
	Terms   map[string]any   `json:"terms,omitempty"   yaml:"terms,omitempty"`
	Filters []FilterDocument `json:"filters,omitempty" yaml:"filters,omitempty"`
	Sort    []SortDocument   `json:"sort,omitempty"    yaml:"sort,omitempty"`
	Fields  []string         `json:"fields,omitempty"  yaml:"fields,omitempty"`
	Size    *int             `json:"size,omitempty"    yaml:"size,omitempty"`
	Page    *int             `json:"page,omitempty"    yaml:"page,omitempty"`
	Params  map[string]any   `json:"params,omitempty"  yaml:"params,omitempty"`
}

// FilterDocument describes one condition. Exactly one of Match, Range,
// Missing or Not must be set.
type FilterDocument struct {
	Match   map[string]string        `json:"match,omitempty"   yaml:"match,omitempty"`
	Range   map[string]RangeDocument `json:"range,omitempty"   yaml:"range,omitempty"`
	Missing string                   `json:"missing,omitempty" yaml:"missing,omitempty"`
	Not     *FilterDocument          `json:"not,omitempty"     yaml:"not,omitempty"`
}

// RangeDocument holds numeric range bounds.
type RangeDocument struct {
	GT  *float64 `json:"gt,omitempty"  yaml:"gt,omitempty"`
	GTE *float64 `json:"gte,omitempty" yaml:"gte,omitempty"`
	LT  *float64 `json:"lt,omitempty"  yaml:"lt,omitempty"`
	LTE *float64 `json:"lte,omitempty" yaml:"lte,omitempty"`
}

// SortDocument is one sort key; Order is "asc" (default) or "desc".
type SortDocument struct {
	Field string `json:"field" yaml:"field"`
	Order string `json:"order,omitempty" yaml:"order,omitempty"`
}

// Fragment validates d and converts it.
func (d *Document) Fragment() (Fragment, error) {
	f := Fragment{Query: d.Query, Terms: d.Terms}

	for i := range d.Filters {
		conds, err := d.Filters[i].conditions()
		if err != nil {
			return Fragment{}, fmt.Errorf("filter %d: %w", i, err)
		}
		f.Filters = append(f.Filters, conds...)
	}

	for i, s := range d.Sort {
		if s.Field == "" {
			return Fragment{}, fmt.Errorf("sort %d: field is required", i)
		}
		switch s.Order {
		case "", "asc":
			f.Sort = append(f.Sort, Asc(s.Field))
		case "desc":
			f.Sort = append(f.Sort, Desc(s.Field))
		default:
			return Fragment{}, fmt.Errorf("sort %d: order must be \"asc\" or \"desc\", got %q", i, s.Order)
		}
	}

	params := Params(d.Params).Clone()
	set := func(k string, v any) {
		if params == nil {
			params = make(Params)
		}
		params[k] = v
	}
	if d.Fields != nil {
		set(ParamFields, append([]string(nil), d.Fields...))
	}
	if d.Size != nil {
		set(ParamSize, *d.Size)
	}
	if d.Page != nil {
		set(ParamPage, *d.Page)
	}
	f.Params = params

	return f, nil
}

func (fd *FilterDocument) conditions() ([]filter.Condition, error) {
	set := 0
	if len(fd.Match) > 0 {
		set++
	}
	if len(fd.Range) > 0 {
		set++
	}
	if fd.Missing != "" {
		set++
	}
	if fd.Not != nil {
		set++
	}
	if set != 1 {
		return nil, errors.New("exactly one of match, range, missing, not is required")
	}

	var out []filter.Condition
	switch {
	case len(fd.Match) > 0:
		for _, key := range slices.Sorted(maps.Keys(fd.Match)) {
			c, err := filter.Match(key, fd.Match[key])
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	case len(fd.Range) > 0:
		for _, key := range slices.Sorted(maps.Keys(fd.Range)) {
			rd := fd.Range[key]
			r, err := filter.NewRange(rd.GT, rd.GTE, rd.LT, rd.LTE)
			if err != nil {
				return nil, fmt.Errorf("range %q: %w", key, err)
			}
			c, err := filter.InRange(key, r)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	case fd.Missing != "":
		c, err := filter.Missing(fd.Missing)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	default:
		inner, err := fd.Not.conditions()
		if err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		if len(inner) != 1 {
			return nil, errors.New("not: negates exactly one condition")
		}
		out = append(out, filter.Not(inner[0]))
	}
	return out, nil
}
