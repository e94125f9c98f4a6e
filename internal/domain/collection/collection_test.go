package collection

import (
	"fmt"
	"strings"
	"testing"
)

func tags(n int) []Field {
	out := make([]Field, n)
	for i := range out {
		out[i] = Field{Name: fmt.Sprintf("f_%d", i), Type: Tag}
	}
	return out
}

func TestNew(t *testing.T) {
	col, err := New("products",
		Field{Name: "color", Type: Tag},
		Field{Name: "price", Type: Numeric, Sortable: true},
		Field{Name: "title", Type: Text},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if col.Name() != "products" {
		t.Errorf("Name() = %q", col.Name())
	}
	if got := len(col.Fields()); got != 3 {
		t.Fatalf("Fields() len = %d, want 3", got)
	}

	price, ok := col.Field("price")
	if !ok || price.Type != Numeric || !price.Sortable {
		t.Errorf("Field(price) = %+v, %v", price, ok)
	}
	if _, ok := col.Field("missing"); ok {
		t.Error("Field(missing) found")
	}
}

func TestNew_FieldsAreCopied(t *testing.T) {
	fields := []Field{{Name: "color", Type: Tag}}
	col, err := New("products", fields...)
	if err != nil {
		t.Fatal(err)
	}
	fields[0].Name = "mutated"
	out := col.Fields()
	out[0].Type = Numeric

	if f := col.Fields()[0]; f.Name != "color" || f.Type != Tag {
		t.Errorf("collection changed through a caller slice: %+v", f)
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		colName string
		fields  []Field
		want    string
	}{
		{"no fields", "empty", nil, "at least one"},
		{"empty name", "", tags(1), "required"},
		{"too many fields", "wide", tags(maxFields + 1), "too many"},
		{"duplicate", "dup", []Field{{Name: "a", Type: Tag}, {Name: "a", Type: Numeric}}, "duplicate"},
		{"bad type", "bad", []Field{{Name: "a", Type: "vector"}}, "invalid type"},
		{"empty field name", "bad", []Field{{Type: Tag}}, "field name is required"},
		{"reserved", "bad", []Field{{Name: "__key", Type: Tag}}, "reserved"},
		{"query syntax in field name", "bad", []Field{{Name: "a-b", Type: Tag}}, "invalid field key"},
		{"long field name", "bad", []Field{{Name: strings.Repeat("x", 65), Type: Tag}}, "too long"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.colName, tc.fields...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("err = %q, want it to mention %q", err, tc.want)
			}
		})
	}
}

func TestNew_MaxFields(t *testing.T) {
	if _, err := New("wide", tags(maxFields)...); err != nil {
		t.Errorf("%d fields rejected: %v", maxFields, err)
	}
}

func TestValidateName(t *testing.T) {
	for _, ok := range []string{"a", "my-collection", "col_1", strings.Repeat("x", 64)} {
		if err := ValidateName(ok); err != nil {
			t.Errorf("ValidateName(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", strings.Repeat("x", 65), "has space", "слово", "col.name", "col/name", "col:name"} {
		if err := ValidateName(bad); err == nil {
			t.Errorf("ValidateName(%q) accepted", bad)
		}
	}
}

func TestValidateField(t *testing.T) {
	if err := ValidateField(Field{Name: "title", Type: Text}); err != nil {
		t.Errorf("valid field rejected: %v", err)
	}
	if err := ValidateField(Field{Name: "__score", Type: Numeric}); err == nil {
		t.Error("reserved field accepted")
	}
}
