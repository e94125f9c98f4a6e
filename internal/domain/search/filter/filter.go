// Package filter holds the typed conditions a query compiles into: tag
// matches, numeric ranges and missing-field checks.
package filter

import (
	"errors"
	"fmt"
	"regexp"
)

// Kind discriminates conditions.
type Kind uint8

const (
	KindMatch Kind = iota + 1
	KindRange
	KindMissing
)

func (k Kind) String() string {
	switch k {
	case KindMatch:
		return "match"
	case KindRange:
		return "range"
	case KindMissing:
		return "missing"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

var (
	errNoKey = errors.New("filter key is required")
	keyRe    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// ValidateKey accepts the field names a query may reference: a letter or
// underscore followed by letters, digits and underscores.
func ValidateKey(key string) error {
	if key == "" {
		return errNoKey
	}
	if !keyRe.MatchString(key) {
		return fmt.Errorf("invalid field key %q: use letters, digits and _", key)
	}
	return nil
}

// Condition is one clause, optionally negated. The zero value is invalid.
type Condition struct {
	kind    Kind
	key     string
	values  []string
	rng     Range
	negated bool
}

// Match accepts documents whose tag field equals any of values.
func Match(key string, values ...string) (Condition, error) {
	if err := ValidateKey(key); err != nil {
		return Condition{}, err
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("match %q: at least one value is required", key)
	}
	for _, v := range values {
		if v == "" {
			return Condition{}, fmt.Errorf("match %q: empty value", key)
		}
	}
	return Condition{kind: KindMatch, key: key, values: append([]string(nil), values...)}, nil
}

// InRange accepts documents whose numeric field lies in r.
func InRange(key string, r Range) (Condition, error) {
	if err := ValidateKey(key); err != nil {
		return Condition{}, err
	}
	if r.Lower == nil && r.Upper == nil {
		return Condition{}, fmt.Errorf("range %q: unbounded", key)
	}
	return Condition{kind: KindRange, key: key, rng: r}, nil
}

// Missing accepts documents lacking the field.
func Missing(key string) (Condition, error) {
	if err := ValidateKey(key); err != nil {
		return Condition{}, err
	}
	return Condition{kind: KindMissing, key: key}, nil
}

// Not flips c. Not(Not(c)) == c.
func Not(c Condition) Condition {
	c.negated = !c.negated
	return c
}

// Valid reports whether c was built by a constructor.
func (c Condition) Valid() bool { return c.kind != 0 }

func (c Condition) Kind() Kind    { return c.kind }
func (c Condition) Key() string   { return c.key }
func (c Condition) Negated() bool { return c.negated }

// Values returns a copy of the accepted tag values of a match.
func (c Condition) Values() []string { return append([]string(nil), c.values...) }

// Range returns the interval of a range condition.
func (c Condition) Range() Range { return c.rng }

// Bound is one end of an interval.
type Bound struct {
	Value     float64
	Exclusive bool
}

// Range is a numeric interval. A nil end is unbounded.
type Range struct {
	Lower *Bound
	Upper *Bound
}

// NewRange builds an interval from gt/gte/lt/lte limits. At most one limit
// per side, at least one overall, and the interval must not be empty.
func NewRange(gt, gte, lt, lte *float64) (Range, error) {
	if gt != nil && gte != nil {
		return Range{}, errors.New("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, errors.New("cannot specify both lt and lte")
	}

	var r Range
	switch {
	case gt != nil:
		r.Lower = &Bound{Value: *gt, Exclusive: true}
	case gte != nil:
		r.Lower = &Bound{Value: *gte}
	}
	switch {
	case lt != nil:
		r.Upper = &Bound{Value: *lt, Exclusive: true}
	case lte != nil:
		r.Upper = &Bound{Value: *lte}
	}

	if r.Lower == nil && r.Upper == nil {
		return Range{}, errors.New("at least one range boundary is required")
	}
	if r.empty() {
		return Range{}, fmt.Errorf("empty range %s", r)
	}
	return r, nil
}

// Between is the closed interval [lo, hi]; nil ends are open.
func Between(lo, hi *float64) (Range, error) { return NewRange(nil, lo, nil, hi) }

// Point is the single-value interval [v, v].
func Point(v float64) Range {
	return Range{Lower: &Bound{Value: v}, Upper: &Bound{Value: v}}
}

func (r Range) empty() bool {
	if r.Lower == nil || r.Upper == nil {
		return false
	}
	lo, hi := r.Lower, r.Upper
	if lo.Value != hi.Value {
		return lo.Value > hi.Value
	}
	return lo.Exclusive || hi.Exclusive
}

// String renders the interval in math notation, e.g. "(1, 5]".
func (r Range) String() string {
	lo, hi := "(-inf", "+inf)"
	if r.Lower != nil {
		open := "["
		if r.Lower.Exclusive {
			open = "("
		}
		lo = fmt.Sprintf("%s%g", open, r.Lower.Value)
	}
	if r.Upper != nil {
		closing := "]"
		if r.Upper.Exclusive {
			closing = ")"
		}
		hi = fmt.Sprintf("%g%s", r.Upper.Value, closing)
	}
	return lo + ", " + hi
}
