package spec

import (
	"fmt"
	"maps"
	"math"
	"time"
)

// Well-known params keys. Anything else passes through to the backend untouched.
const (
	ParamFields = "fields"
	ParamSize   = "size"
	ParamFrom   = "from"
	ParamPage   = "page"
	ParamScroll = "scroll"
	ParamRaw    = "raw_result"
)

// Params holds backend parameters. Merging is shallow: a nested value such as
// the fields list is replaced wholesale.
type Params map[string]any

// Merge returns the shallow union of p and other; keys in other win.
func (p Params) Merge(other Params) Params {
	if len(p) == 0 && len(other) == 0 {
		return nil
	}
	out := make(Params, len(p)+len(other))
	maps.Copy(out, p)
	maps.Copy(out, other)
	return out
}

// Clone returns a shallow copy of p.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// Size returns params.size.
func (p Params) Size() (int, bool, error) { return p.intParam(ParamSize) }

// From returns params.from.
func (p Params) From() (int, bool, error) { return p.intParam(ParamFrom) }

// Page returns params.page.
func (p Params) Page() (int, bool, error) { return p.intParam(ParamPage) }

// Fields returns the projection list.
func (p Params) Fields() ([]string, error) {
	v, ok := p[ParamFields]
	if !ok || v == nil {
		return nil, nil
	}
	switch f := v.(type) {
	case []string:
		return append([]string(nil), f...), nil
	case string:
		return []string{f}, nil
	case []any:
		out := make([]string, 0, len(f))
		for _, item := range f {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s: expected strings, got %T", ParamFields, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: expected a list of strings, got %T", ParamFields, v)
	}
}

// Scroll returns the cursor lifetime for scans.
func (p Params) Scroll() (time.Duration, bool, error) {
	v, ok := p[ParamScroll]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch s := v.(type) {
	case time.Duration:
		return s, true, nil
	case string:
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, false, fmt.Errorf("%s: %w", ParamScroll, err)
		}
		return d, true, nil
	default:
		return 0, false, fmt.Errorf("%s: expected a duration, got %T", ParamScroll, v)
	}
}

// Raw reports whether terminal calls should return the whole result.
func (p Params) Raw() bool {
	b, _ := p[ParamRaw].(bool)
	return b
}

func (p Params) intParam(key string) (int, bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return n, true, nil
}

// toInt accepts the integer shapes produced by Go callers, JSON and YAML decoders.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected an integer, got %v", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}
