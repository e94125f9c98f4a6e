package vecscope

import (
	"fmt"

	"github.com/kailas-cloud/vecscope/internal/domain/search/filter"
	"github.com/kailas-cloud/vecscope/internal/domain/spec"
)

type (
	// Spec is the immutable query specification a Scope wraps.
	Spec = spec.Spec
	// Fragment is a mergeable piece of a specification.
	Fragment = spec.Fragment
	// Vars is the fragment terminal calls merge last.
	Vars = spec.Fragment
	// Params holds backend parameters (size, page, from, fields, scroll, raw_result, ...).
	Params = spec.Params
	// SortKey is one sort key.
	SortKey = spec.Sort
	// Condition is one filter clause.
	Condition = filter.Condition
	// ScopeFunc is a scope producer whose result is type-checked on every call.
	ScopeFunc = func(args ...any) any
)

// Well-known params keys.
const (
	ParamFields = spec.ParamFields
	ParamSize   = spec.ParamSize
	ParamFrom   = spec.ParamFrom
	ParamPage   = spec.ParamPage
	ParamScroll = spec.ParamScroll
	ParamRaw    = spec.ParamRaw
)

// Asc sorts by field in ascending order.
func Asc(field string) SortKey { return spec.Asc(field) }

// Desc sorts by field in descending order.
func Desc(field string) SortKey { return spec.Desc(field) }

// Text returns a pointer to s, for Fragment.Query literals.
func Text(s string) *string { return spec.Text(s) }

// Match matches documents whose tag field equals any of values.
// It panics on an empty key or value.
func Match(key string, values ...string) Condition {
	return must(filter.Match(key, values...))
}

// Range matches a numeric field in [lo, hi]. A nil bound is open.
// Bounds may be any Go number.
func Range(key string, lo, hi any) Condition {
	r, err := filter.Between(toBound(lo), toBound(hi))
	if err != nil {
		panic(fmt.Sprintf("vecscope: %v", err))
	}
	return must(filter.InRange(key, r))
}

// Missing matches documents lacking the field.
func Missing(key string) Condition {
	return must(filter.Missing(key))
}

// Not negates c.
func Not(c Condition) Condition { return filter.Not(c) }

func must(c Condition, err error) Condition {
	if err != nil {
		panic(fmt.Sprintf("vecscope: %v", err))
	}
	return c
}

func toBound(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		panic(fmt.Sprintf("vecscope: range bound must be a number, got %T", v))
	}
	return &f
}
