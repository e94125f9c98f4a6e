// Package spec holds the immutable query specification and the merge rules
// that combine specification fragments.
package spec

import (
	"maps"
	"slices"

	"github.com/kailas-cloud/vecscope/internal/domain/search/filter"
)

// Sort is one sort key.
type Sort struct {
	Field string
	Desc  bool
}

// Asc sorts by field in ascending order.
func Asc(field string) Sort { return Sort{Field: field} }

// Desc sorts by field in descending order.
func Desc(field string) Sort { return Sort{Field: field, Desc: true} }

// Fragment is a partial specification. It is what scopes, templates and
// terminal-call vars contribute to a Spec via Merge.
type Fragment struct {
	Query   *string
	Terms   map[string]any
	Missing []string
	Filters []filter.Condition
	Sort    []Sort
	Params  Params
	IDs     []string
}

// Text returns a pointer to s, for Fragment.Query literals.
func Text(s string) *string { return &s }

// Spec is an immutable query specification. The zero value is an empty spec.
// Every builder method returns a new Spec and leaves the receiver untouched.
type Spec struct {
	query   *string
	terms   map[string]any
	missing []string
	filters []filter.Condition
	sort    []Sort
	params  Params
	ids     []string
}

// New creates a spec seeded with base.
func New(base Fragment) Spec {
	return Merge(Spec{}, base)
}

// Query returns a copy with the free-text query replaced.
func (s Spec) Query(text string) Spec {
	return Merge(s, Fragment{Query: &text})
}

// Terms returns a copy with term matches added. A nil value means
// "field must not exist" and lands in the missing list instead.
func (s Spec) Terms(values map[string]any) Spec {
	return Merge(s, Fragment{Terms: values})
}

// Filters returns a copy with conditions appended in order.
func (s Spec) Filters(conds ...filter.Condition) Spec {
	return Merge(s, Fragment{Filters: conds})
}

// Sort returns a copy with sort keys appended in order.
func (s Spec) Sort(keys ...Sort) Spec {
	return Merge(s, Fragment{Sort: keys})
}

// Fields returns a copy with the projection list replaced.
func (s Spec) Fields(names ...string) Spec {
	return Merge(s, Fragment{Params: Params{ParamFields: slices.Clone(names)}})
}

// Size returns a copy with the result size set.
func (s Spec) Size(n int) Spec {
	return Merge(s, Fragment{Params: Params{ParamSize: n}})
}

// Page returns a copy asking for the n-th page of Size results; n < 1 means 1.
func (s Spec) Page(n int) Spec {
	if n < 1 {
		n = 1
	}
	return Merge(s, Fragment{Params: Params{ParamPage: n}})
}

// Params returns a copy with p shallow-merged into the params.
func (s Spec) Params(p Params) Spec {
	return Merge(s, Fragment{Params: p})
}

// Raw returns a copy whose terminal calls yield the whole result.
func (s Spec) Raw() Spec {
	return Merge(s, Fragment{Params: Params{ParamRaw: true}})
}

// Merge returns a copy with f merged in.
func (s Spec) Merge(f Fragment) Spec {
	return Merge(s, f)
}

// QueryText returns the free-text query and whether one was set.
func (s Spec) QueryText() (string, bool) {
	if s.query == nil {
		return "", false
	}
	return *s.query, true
}

// TermValues returns a copy of the term matches.
func (s Spec) TermValues() map[string]any { return maps.Clone(s.terms) }

// MissingFields returns a copy of the fields that must not exist.
func (s Spec) MissingFields() []string { return slices.Clone(s.missing) }

// FilterList returns a copy of the filters.
func (s Spec) FilterList() []filter.Condition { return slices.Clone(s.filters) }

// SortKeys returns a copy of the sort keys.
func (s Spec) SortKeys() []Sort { return slices.Clone(s.sort) }

// ParamValues returns a copy of the params.
func (s Spec) ParamValues() Params { return s.params.Clone() }

// IDs returns a copy of the id list.
func (s Spec) IDs() []string { return slices.Clone(s.ids) }

// Fragment exports s as a fragment, so a computed spec can be merged into another.
func (s Spec) Fragment() Fragment {
	f := Fragment{
		Terms:   maps.Clone(s.terms),
		Missing: slices.Clone(s.missing),
		Filters: slices.Clone(s.filters),
		Sort:    slices.Clone(s.sort),
		Params:  s.params.Clone(),
		IDs:     slices.Clone(s.ids),
	}
	if s.query != nil {
		q := *s.query
		f.Query = &q
	}
	return f
}

// Variables flattens s for template expansion: query, terms and params under
// their own names, plus every params key lifted to the top level.
func (s Spec) Variables() map[string]any {
	vars := make(map[string]any, len(s.params)+3)
	for k, v := range s.params {
		vars[k] = v
	}
	if s.query != nil {
		vars["query"] = *s.query
	}
	vars["terms"] = maps.Clone(s.terms)
	vars["params"] = s.params.Clone()
	return vars
}
