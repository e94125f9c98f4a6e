package vecscope

import (
	"fmt"
	"maps"
	"reflect"
	"strconv"
	"strings"

	domcol "github.com/kailas-cloud/vecscope/internal/domain/collection"
	domdoc "github.com/kailas-cloud/vecscope/internal/domain/document"
)

const tagKey = "vecscope"

// FieldType is the indexing type of a document field.
type FieldType = domcol.FieldType

// Index field types.
const (
	FieldTag     FieldType = domcol.Tag
	FieldNumeric FieldType = domcol.Numeric
	FieldText    FieldType = domcol.Text
)

// IndexField declares an indexed field outside struct tags (see WithIndexFields).
type IndexField struct {
	Name     string
	Type     FieldType
	Sortable bool
}

// Document is a schemaless model type: the id plus every stored field.
type Document struct {
	ID     string            `vecscope:"id,id" json:"id"`
	Fields map[string]string `vecscope:",fields" json:"fields"`
}

// schemaMeta holds parsed struct tag metadata, cached per Model.
//
// Tag syntax: `vecscope:"name[,id|tag|numeric|text|fields][,sortable]"`.
// A field with a bare name is stored but not indexed. `,fields` marks a
// map[string]string that receives every stored field.
type schemaMeta struct {
	typ       reflect.Type
	idIdx     int
	fieldsIdx int // -1 if there is no catch-all map

	stored  []fieldMapping
	indexed []domcol.Field
}

type fieldMapping struct {
	structIdx int
	name      string
}

var stringMapType = reflect.TypeFor[map[string]string]()

// parseSchema reflects on T and extracts vecscope struct tag metadata.
func parseSchema[T any]() (*schemaMeta, error) {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("vecscope: type %s is not a struct", t)
	}

	meta := &schemaMeta{typ: t, idIdx: -1, fieldsIdx: -1}
	seen := make(map[string]string)

	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		if !f.IsExported() {
			return nil, fmt.Errorf("vecscope: tagged field %s is not exported", f.Name)
		}
		name, err := applyTag(meta, i, f, tag)
		if err != nil {
			return nil, err
		}
		if name == "" {
			continue
		}
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("vecscope: fields %s and %s both map to %q", prev, f.Name, name)
		}
		seen[name] = f.Name
	}

	if meta.idIdx == -1 {
		return nil, fmt.Errorf("vecscope: no field with `vecscope:\"...,id\"` tag in %s", t)
	}
	return meta, nil
}

// applyTag processes a single struct field's tag and returns the stored name, if any.
func applyTag(meta *schemaMeta, idx int, f reflect.StructField, tag string) (string, error) {
	parts := strings.Split(tag, ",")
	name := parts[0]
	modifier := ""
	sortable := false
	for _, p := range parts[1:] {
		switch {
		case p == "sortable":
			sortable = true
		case modifier == "":
			modifier = p
		default:
			return "", fmt.Errorf("vecscope: too many modifiers on field %s", f.Name)
		}
	}

	switch modifier {
	case "id":
		if meta.idIdx != -1 {
			return "", fmt.Errorf("vecscope: duplicate id tag on field %s", f.Name)
		}
		if f.Type.Kind() != reflect.String {
			return "", fmt.Errorf("vecscope: id field %s must be a string", f.Name)
		}
		meta.idIdx = idx
		return "", nil
	case "fields":
		if meta.fieldsIdx != -1 {
			return "", fmt.Errorf("vecscope: duplicate fields tag on field %s", f.Name)
		}
		if f.Type != stringMapType {
			return "", fmt.Errorf("vecscope: fields catch-all %s must be map[string]string", f.Name)
		}
		meta.fieldsIdx = idx
		return "", nil
	}

	if name == "" {
		return "", fmt.Errorf("vecscope: field %s needs a name in its tag", f.Name)
	}
	kind := scalarKind(f.Type)
	if !supportedKind(kind) {
		return "", fmt.Errorf("vecscope: field %s has unsupported type %s", f.Name, f.Type)
	}
	meta.stored = append(meta.stored, fieldMapping{structIdx: idx, name: name})

	var ft domcol.FieldType
	switch modifier {
	case "":
		if sortable {
			return "", fmt.Errorf("vecscope: sortable field %s must be indexed", f.Name)
		}
		// Поле без модификатора хранится, но не индексируется.
		return name, nil
	case "tag":
		ft = domcol.Tag
	case "numeric":
		if !numericKind(kind) {
			return "", fmt.Errorf("vecscope: numeric field %s has type %s", f.Name, f.Type)
		}
		ft = domcol.Numeric
	case "text":
		ft = domcol.Text
	default:
		return "", fmt.Errorf("vecscope: unknown modifier %q on field %s", modifier, f.Name)
	}

	idxField := domcol.Field{Name: name, Type: ft, Sortable: sortable}
	if err := domcol.ValidateField(idxField); err != nil {
		return "", fmt.Errorf("vecscope: field %s: %w", f.Name, err)
	}
	meta.indexed = append(meta.indexed, idxField)
	return name, nil
}

func scalarKind(t reflect.Type) reflect.Kind {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind()
}

func numericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func supportedKind(k reflect.Kind) bool {
	return k == reflect.String || k == reflect.Bool || numericKind(k)
}

// toDocument converts a typed struct to a stored document. Nil pointer
// fields are left out, so the document lacks them.
func (m *schemaMeta) toDocument(item any) (domdoc.Document, error) {
	v := reflect.ValueOf(item)

	fields := make(map[string]string, len(m.stored))
	if m.fieldsIdx != -1 {
		maps.Copy(fields, v.Field(m.fieldsIdx).Interface().(map[string]string))
	}
	for _, sf := range m.stored {
		fv := v.Field(sf.structIdx)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				delete(fields, sf.name)
				continue
			}
			fv = fv.Elem()
		}
		fields[sf.name] = formatValue(fv)
	}

	return domdoc.New(v.Field(m.idIdx).String(), fields)
}

// decode converts stored fields back to a typed struct.
func decode[T any](m *schemaMeta, id string, fields map[string]string) (T, error) {
	v := reflect.New(m.typ).Elem()

	v.Field(m.idIdx).SetString(id)
	if m.fieldsIdx != -1 {
		v.Field(m.fieldsIdx).Set(reflect.ValueOf(maps.Clone(fields)))
	}
	for _, sf := range m.stored {
		raw, ok := fields[sf.name]
		if !ok {
			continue
		}
		if err := setValue(v.Field(sf.structIdx), raw); err != nil {
			var zero T
			return zero, fmt.Errorf("field %s: %w", sf.name, err)
		}
	}

	item, ok := v.Interface().(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("decode: type assertion failed")
	}
	return item, nil
}

func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	default:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	}
}

func setValue(v reflect.Value, raw string) error {
	if v.Kind() == reflect.Pointer {
		p := reflect.New(v.Type().Elem())
		if err := setValue(p.Elem(), raw); err != nil {
			return err
		}
		v.Set(p)
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("parse bool %q: %w", raw, err)
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("parse int %q: %w", raw, err)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("parse uint %q: %w", raw, err)
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("parse float %q: %w", raw, err)
		}
		v.SetFloat(f)
	}
	return nil
}
