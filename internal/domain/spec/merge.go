package spec

import (
	"maps"
	"slices"
)

// Merge combines base with f and returns a new Spec. Neither input is modified
// and the result shares no mutable state with them.
//
//	query            last write wins
//	terms            union, f wins on equal keys
//	missing          base then f, duplicates kept
//	filters, sort    base then f
//	params           shallow union, f wins
//	ids              replaced when f carries ids
func Merge(base Spec, f Fragment) Spec {
	terms, missing := SplitTerms(f.Terms)

	out := Spec{
		query:   base.query,
		terms:   unionTerms(base.terms, terms),
		missing: concat(base.missing, f.Missing, missing),
		filters: concat(base.filters, f.Filters),
		sort:    concat(base.sort, f.Sort),
		params:  base.params.Merge(f.Params),
		ids:     base.ids,
	}
	if f.Query != nil {
		q := *f.Query
		out.query = &q
	}
	if f.IDs != nil {
		out.ids = slices.Clone(f.IDs)
	}
	return out
}

// MergeSpec merges a computed child spec into parent.
func MergeSpec(parent, child Spec) Spec {
	return Merge(parent, child.Fragment())
}

// SplitTerms separates term matches from absent values. Keys whose value is nil
// are returned, sorted, as missing fields.
func SplitTerms(values map[string]any) (map[string]any, []string) {
	if len(values) == 0 {
		return nil, nil
	}
	terms := make(map[string]any, len(values))
	var missing []string
	for k, v := range values {
		if v == nil {
			missing = append(missing, k)
			continue
		}
		terms[k] = v
	}
	// map order is random; keep missing deterministic
	slices.Sort(missing)
	return terms, missing
}

func unionTerms(base, extra map[string]any) map[string]any {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	out := make(map[string]any, len(base)+len(extra))
	maps.Copy(out, base)
	maps.Copy(out, extra)
	return out
}

func concat[E any](parts ...[]E) []E {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	if n == 0 {
		return nil
	}
	out := make([]E, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
