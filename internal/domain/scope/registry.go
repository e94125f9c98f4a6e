// Package scope holds the named-scope registry and the resolver that routes a
// dynamic name to a template or a registered scope.
package scope

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/kailas-cloud/vecscope/internal/domain"
)

// Producer builds a scope value from call arguments.
type Producer[S any] func(args ...any) (S, error)

// Registry maps scope names to producers. Names are registered once, at model
// definition time, and read without locking afterwards.
type Registry[S any] struct {
	reserved  map[string]string
	producers map[string]Producer[S]
	names     []string
}

// NewRegistry creates an empty registry. Names in reserved can never be
// registered; they are compared the same way scope names are (see Normalize).
func NewRegistry[S any](reserved ...string) *Registry[S] {
	r := &Registry[S]{
		reserved:  make(map[string]string, len(reserved)),
		producers: make(map[string]Producer[S]),
	}
	for _, name := range reserved {
		r.reserved[Normalize(name)] = name
	}
	return r
}

// Normalize folds case and drops underscores, so "scan_all", "ScanAll" and
// "scanall" name the same member.
func Normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

// MethodNames lists the exported method names of every given type.
func MethodNames(types ...reflect.Type) []string {
	var out []string
	for _, t := range types {
		for i := range t.NumMethod() {
			out = append(out, t.Method(i).Name)
		}
	}
	return out
}

// Register adds a producer under name. producer must be an S, a
// func(...any) S or a func(...any) any; the last form is type-checked on
// every call. A failed registration leaves the registry unchanged.
func (r *Registry[S]) Register(name string, producer any) error {
	if name == "" {
		return fmt.Errorf("%w: scope name", domain.ErrEmptyArgument)
	}
	key := Normalize(name)
	if member, ok := r.reserved[key]; ok {
		return fmt.Errorf("%w: %q collides with %s", domain.ErrScopeCollision, name, member)
	}
	for _, existing := range r.names {
		if Normalize(existing) == key {
			return fmt.Errorf("%w: %q collides with scope %q", domain.ErrScopeCollision, name, existing)
		}
	}

	p, err := adapt[S](name, producer)
	if err != nil {
		return err
	}
	r.producers[name] = p
	r.names = append(r.names, name)
	return nil
}

// Has reports whether name is registered.
func (r *Registry[S]) Has(name string) bool {
	_, ok := r.producers[name]
	return ok
}

// Names returns registered names in registration order.
func (r *Registry[S]) Names() []string {
	return append([]string(nil), r.names...)
}

// Produce invokes the producer registered under name.
func (r *Registry[S]) Produce(name string, args ...any) (S, error) {
	p, ok := r.producers[name]
	if !ok {
		var zero S
		return zero, fmt.Errorf("%w: %q", domain.ErrUnknownScope, name)
	}
	return p(args...)
}

func adapt[S any](name string, producer any) (Producer[S], error) {
	switch p := producer.(type) {
	case S:
		return func(...any) (S, error) { return p, nil }, nil
	case func(...any) S:
		if p == nil {
			break
		}
		return func(args ...any) (S, error) { return p(args...), nil }, nil
	case func(...any) any:
		if p == nil {
			break
		}
		return func(args ...any) (S, error) {
			v := p(args...)
			s, ok := v.(S)
			if !ok {
				var zero S
				return zero, domain.NewScopeTypeError(name, v)
			}
			return s, nil
		}, nil
	}
	return nil, fmt.Errorf("%w: scope %q got %T", domain.ErrInvalidProducer, name, producer)
}
