package filter

import (
	"slices"
	"strings"
	"testing"
)

func ptr(f float64) *float64 { return &f }

func TestNewRange(t *testing.T) {
	tests := []struct {
		name             string
		gt, gte, lt, lte *float64
		want             string
	}{
		{"lower exclusive", ptr(1), nil, nil, nil, "(1, +inf)"},
		{"lower inclusive", nil, ptr(0), nil, nil, "[0, +inf)"},
		{"upper exclusive", nil, nil, ptr(10), nil, "(-inf, 10)"},
		{"upper inclusive", nil, nil, nil, ptr(100), "(-inf, 100]"},
		{"open interval", ptr(0), nil, ptr(10), nil, "(0, 10)"},
		{"closed interval", nil, ptr(0), nil, ptr(10), "[0, 10]"},
		{"half open", ptr(0), nil, nil, ptr(10), "(0, 10]"},
		{"point", nil, ptr(3), nil, ptr(3), "[3, 3]"},
		{"negative", nil, ptr(-2.5), ptr(-1), nil, "[-2.5, -1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRange(tt.gt, tt.gte, tt.lt, tt.lte)
			if err != nil {
				t.Fatalf("NewRange: %v", err)
			}
			if got := r.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewRange_Invalid(t *testing.T) {
	tests := []struct {
		name             string
		gt, gte, lt, lte *float64
		msg              string
	}{
		{"unbounded", nil, nil, nil, nil, "at least one"},
		{"gt and gte", ptr(1), ptr(1), nil, nil, "gt and gte"},
		{"lt and lte", nil, nil, ptr(1), ptr(1), "lt and lte"},
		{"inverted", nil, ptr(10), nil, ptr(1), "empty range"},
		{"exclusive point", ptr(5), nil, nil, ptr(5), "empty range"},
		{"exclusive both", ptr(5), nil, ptr(5), nil, "empty range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRange(tt.gt, tt.gte, tt.lt, tt.lte)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error = %q, want it to contain %q", err, tt.msg)
			}
		})
	}
}

func TestBetween(t *testing.T) {
	r, err := Between(ptr(1), nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Lower == nil || r.Lower.Exclusive || r.Upper != nil {
		t.Errorf("Between(1, nil) = %s", r)
	}
	if _, err := Between(nil, nil); err == nil {
		t.Error("Between(nil, nil) should fail")
	}
}

func TestPoint(t *testing.T) {
	if got := Point(7).String(); got != "[7, 7]" {
		t.Errorf("Point(7) = %s", got)
	}
}

func TestMatch(t *testing.T) {
	c, err := Match("color", "red", "blue")
	if err != nil {
		t.Fatal(err)
	}
	if c.Kind() != KindMatch || c.Key() != "color" || c.Negated() {
		t.Errorf("unexpected condition %+v", c)
	}
	if !slices.Equal(c.Values(), []string{"red", "blue"}) {
		t.Errorf("Values() = %v", c.Values())
	}
}

func TestMatch_ValuesAreCopied(t *testing.T) {
	in := []string{"a", "b"}
	c, _ := Match("k", in...)
	in[0] = "z"
	out := c.Values()
	out[1] = "z"
	if !slices.Equal(c.Values(), []string{"a", "b"}) {
		t.Errorf("condition mutated: %v", c.Values())
	}
}

func TestMatch_Invalid(t *testing.T) {
	for name, fn := range map[string]func() (Condition, error){
		"no key":       func() (Condition, error) { return Match("", "x") },
		"no values":    func() (Condition, error) { return Match("k") },
		"empty value":  func() (Condition, error) { return Match("k", "a", "") },
		"query syntax": func() (Condition, error) { return Match("a} | @b:{x", "y") },
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := fn(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestInRange(t *testing.T) {
	r, _ := NewRange(nil, ptr(10), nil, nil)
	c, err := InRange("price", r)
	if err != nil {
		t.Fatal(err)
	}
	if c.Kind() != KindRange || c.Key() != "price" {
		t.Errorf("unexpected condition %+v", c)
	}
	if got := c.Range(); got.Lower == nil || got.Lower.Value != 10 {
		t.Errorf("Range() = %s", got)
	}

	if _, err := InRange("", r); err == nil {
		t.Error("empty key should fail")
	}
	if _, err := InRange("price", Range{}); err == nil {
		t.Error("unbounded range should fail")
	}
}

func TestMissing(t *testing.T) {
	c, err := Missing("brand")
	if err != nil {
		t.Fatal(err)
	}
	if c.Kind() != KindMissing || c.Key() != "brand" || len(c.Values()) != 0 {
		t.Errorf("unexpected condition %+v", c)
	}
	if _, err := Missing(""); err == nil {
		t.Error("empty key should fail")
	}
}

func TestValidateKey(t *testing.T) {
	for _, key := range []string{"color", "in_stock", "_hidden", "f2"} {
		if err := ValidateKey(key); err != nil {
			t.Errorf("ValidateKey(%q) = %v", key, err)
		}
	}
	for _, key := range []string{"", "2nd", "a-b", "a.b", "a b", "@a", "a}", "a:b"} {
		if err := ValidateKey(key); err == nil {
			t.Errorf("ValidateKey(%q) accepted", key)
		}
	}
	if _, err := Missing("a)|(@b"); err == nil {
		t.Error("Missing accepted an invalid key")
	}
}

func TestValid(t *testing.T) {
	c, _ := Missing("brand")
	if !c.Valid() || !Not(c).Valid() {
		t.Error("constructed condition reported invalid")
	}
	if (Condition{}).Valid() || Not(Condition{}).Valid() {
		t.Error("zero condition reported valid")
	}
}

func TestNot(t *testing.T) {
	c, _ := Missing("brand")
	n := Not(c)
	if !n.Negated() {
		t.Error("Not should negate")
	}
	if c.Negated() {
		t.Error("Not must not modify its argument")
	}
	if Not(n).Negated() {
		t.Error("double negation should cancel")
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		KindMatch:   "match",
		KindRange:   "range",
		KindMissing: "missing",
		Kind(9):     "kind(9)",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", uint8(k), got, want)
		}
	}
}
