// Package template stores named query fragments in YAML and expands their
// ${var} placeholders against the variables of the scope being extended.
package template

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/vecscope/internal/domain"
	"github.com/kailas-cloud/vecscope/internal/domain/spec"
)

// file is the on-disk layout:
//
//	templates:
//	  by_color:
//	    terms:
//	      color: ${color}
//	    size: ${size:-20}
type file struct {
	Templates map[string]yaml.Node `yaml:"templates"`
}

// Library is an immutable set of templates, safe for concurrent use.
type Library struct {
	templates map[string]*yaml.Node
	names     []string
}

// Load reads templates from a YAML file or from every *.yaml / *.yml file in a directory.
func Load(path string) (*Library, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat templates %s: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		files = files[:0]
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(path, pattern))
			if err != nil {
				return nil, fmt.Errorf("glob templates: %w", err)
			}
			files = append(files, matches...)
		}
		slices.Sort(files)
	}

	lib := &Library{templates: make(map[string]*yaml.Node)}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read templates %s: %w", f, err)
		}
		if err := lib.add(data); err != nil {
			return nil, fmt.Errorf("templates %s: %w", f, err)
		}
	}
	return lib, nil
}

// Parse builds a library from one YAML document.
func Parse(data []byte) (*Library, error) {
	lib := &Library{templates: make(map[string]*yaml.Node)}
	if err := lib.add(data); err != nil {
		return nil, err
	}
	return lib, nil
}

func (l *Library) add(data []byte) error {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse: %w", err)
	}

	for _, name := range slices.Sorted(maps.Keys(f.Templates)) {
		if name == "" {
			return errors.New("template name must not be empty")
		}
		if _, dup := l.templates[name]; dup {
			return fmt.Errorf("duplicate template %q", name)
		}
		node := f.Templates[name]
		if node.Kind != yaml.MappingNode {
			return fmt.Errorf("template %q: body must be a mapping", name)
		}
		// Reject bodies that could never decode, even before expansion.
		if err := decodeStrict(&node, &spec.Document{}); err != nil && !hasPlaceholders(&node) {
			return fmt.Errorf("template %q: %w", name, err)
		}
		l.templates[name] = &node
		l.names = append(l.names, name)
	}
	return nil
}

// HasTemplate reports whether name is defined.
func (l *Library) HasTemplate(name string) bool {
	_, ok := l.templates[name]
	return ok
}

// Names lists template names in load order.
func (l *Library) Names() []string {
	return slices.Clone(l.names)
}

// ExpandTemplate substitutes vars into the named template and returns it as a fragment.
//
// A scalar that is exactly ${name} takes the variable's value with its type
// (numbers stay numbers, nil becomes null). Placeholders embedded in longer
// strings are replaced with the value's text. ${name:-default} falls back to
// default when name is absent. Dotted names walk nested maps.
func (l *Library) ExpandTemplate(name string, vars map[string]any) (spec.Fragment, error) {
	tmpl, ok := l.templates[name]
	if !ok {
		return spec.Fragment{}, fmt.Errorf("%w: %q", domain.ErrTemplateNotFound, name)
	}

	node := cloneNode(tmpl)
	if err := expand(node, vars); err != nil {
		return spec.Fragment{}, fmt.Errorf("expand template %q: %w", name, err)
	}

	var doc spec.Document
	if err := decodeStrict(node, &doc); err != nil {
		return spec.Fragment{}, fmt.Errorf("decode template %q: %w", name, err)
	}
	f, err := doc.Fragment()
	if err != nil {
		return spec.Fragment{}, fmt.Errorf("template %q: %w", name, err)
	}
	return f, nil
}

// decodeStrict decodes n rejecting unknown keys, which yaml.Node.Decode cannot do.
func decodeStrict(n *yaml.Node, out any) error {
	data, err := yaml.Marshal(n)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

var placeholderRe = regexp.MustCompile(`\$\{([A-Za-z0-9_.]+)(?::-([^}]*))?\}`)

func hasPlaceholders(n *yaml.Node) bool {
	if n.Kind == yaml.ScalarNode && placeholderRe.MatchString(n.Value) {
		return true
	}
	for _, c := range n.Content {
		if hasPlaceholders(c) {
			return true
		}
	}
	return false
}

func expand(n *yaml.Node, vars map[string]any) error {
	if n.Kind != yaml.ScalarNode {
		for _, c := range n.Content {
			if err := expand(c, vars); err != nil {
				return err
			}
		}
		return nil
	}

	// whole-scalar placeholder keeps the value's type
	if m := placeholderRe.FindStringSubmatchIndex(n.Value); m != nil && m[0] == 0 && m[1] == len(n.Value) {
		key := n.Value[m[2]:m[3]]
		v, ok := lookup(vars, key)
		if !ok {
			if m[4] < 0 {
				return fmt.Errorf("%w: variable %q is not set", domain.ErrInvalidParams, key)
			}
			def := n.Value[m[4]:m[5]]
			var parsed yaml.Node
			if err := yaml.Unmarshal([]byte(def), &parsed); err != nil || len(parsed.Content) == 0 {
				n.Value, n.Tag, n.Style = def, "!!str", 0
				return nil
			}
			*n = *parsed.Content[0]
			return nil
		}
		line, col := n.Line, n.Column
		if err := n.Encode(v); err != nil {
			return fmt.Errorf("encode variable %q: %w", key, err)
		}
		n.Line, n.Column = line, col
		return nil
	}

	var firstErr error
	n.Value = placeholderRe.ReplaceAllStringFunc(n.Value, func(ph string) string {
		sm := placeholderRe.FindStringSubmatch(ph)
		if v, ok := lookup(vars, sm[1]); ok {
			return fmt.Sprint(v)
		}
		if strings.Contains(ph, ":-") {
			return sm[2]
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("%w: variable %q is not set", domain.ErrInvalidParams, sm[1])
		}
		return ph
	})
	return firstErr
}

func lookup(vars map[string]any, key string) (any, bool) {
	if v, ok := vars[key]; ok {
		return v, true
	}
	parts := strings.Split(key, ".")
	var cur any = vars
	for _, p := range parts {
		switch m := cur.(type) {
		case map[string]any:
			v, ok := m[p]
			if !ok {
				return nil, false
			}
			cur = v
		case spec.Params:
			v, ok := m[p]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, true
}

func cloneNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Content != nil {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = cloneNode(child)
		}
	}
	c.Alias = cloneNode(n.Alias)
	return &c
}
