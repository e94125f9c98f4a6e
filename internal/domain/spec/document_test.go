package spec

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/vecscope/internal/domain/search/filter"
)

func TestDocument_FromYAML(t *testing.T) {
	src := `
query: trail shoes
terms:
  brand: acme
  discontinued: null
filters:
  - match: {color: red}
  - range: {price: {gte: 10, lt: 100}}
  - missing: recalled_at
  - not: {match: {size: xs}}
sort:
  - field: price
    order: desc
fields: [name, price]
size: 25
page: 2
params:
  timeout: 1s
`
	var doc Document
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	f, err := doc.Fragment()
	if err != nil {
		t.Fatalf("Fragment: %v", err)
	}

	s := New(f)
	if q, _ := s.QueryText(); q != "trail shoes" {
		t.Errorf("query = %q", q)
	}
	if terms := s.TermValues(); terms["brand"] != "acme" || len(terms) != 1 {
		t.Errorf("terms = %v", terms)
	}
	if missing := s.MissingFields(); len(missing) != 1 || missing[0] != "discontinued" {
		t.Errorf("missing = %v", missing)
	}

	filters := s.FilterList()
	if len(filters) != 4 {
		t.Fatalf("filters = %d", len(filters))
	}
	if filters[0].Kind() != filter.KindMatch || filters[1].Kind() != filter.KindRange || filters[2].Kind() != filter.KindMissing {
		t.Errorf("filter kinds = %v", filters)
	}
	if !filters[3].Negated() || filters[3].Values()[0] != "xs" {
		t.Errorf("negated filter = %+v", filters[3])
	}

	if keys := s.SortKeys(); len(keys) != 1 || !keys[0].Desc {
		t.Errorf("sort = %v", keys)
	}

	req, err := Finalize(s)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if req.Limit != 25 || req.Offset != 25 {
		t.Errorf("limit/offset = %d/%d", req.Limit, req.Offset)
	}
	if req.Extra["timeout"] != "1s" {
		t.Errorf("extra = %v", req.Extra)
	}
}

func TestDocument_FromJSON(t *testing.T) {
	var doc Document
	err := json.Unmarshal([]byte(`{"terms":{"color":"red"},"size":3,"sort":[{"field":"name"}]}`), &doc)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	f, err := doc.Fragment()
	if err != nil {
		t.Fatalf("Fragment: %v", err)
	}
	req, err := Finalize(New(f))
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if req.Limit != 3 || req.Terms["color"] != "red" || req.Sort[0].Desc {
		t.Errorf("request = %+v", req)
	}
}

func TestDocument_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want string
	}{
		{"empty filter", Document{Filters: []FilterDocument{{}}}, "exactly one"},
		{"two kinds", Document{Filters: []FilterDocument{{Missing: "a", Match: map[string]string{"b": "c"}}}}, "exactly one"},
		{"bad range", Document{Filters: []FilterDocument{{Range: map[string]RangeDocument{"p": {}}}}}, "at least one"},
		{"bad order", Document{Sort: []SortDocument{{Field: "a", Order: "up"}}}, "asc"},
		{"sort without field", Document{Sort: []SortDocument{{}}}, "field is required"},
		{
			"not over two", Document{Filters: []FilterDocument{{Not: &FilterDocument{
				Match: map[string]string{"a": "1", "b": "2"},
			}}}}, "exactly one condition",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.doc.Fragment()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
		})
	}
}
