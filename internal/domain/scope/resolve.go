package scope

import (
	"fmt"

	"github.com/kailas-cloud/vecscope/internal/domain"
)

// Kind tells where a dynamic name resolved to.
type Kind int

const (
	// KindNotFound means neither a template nor a scope matched.
	KindNotFound Kind = iota
	// KindTemplate means the template collaborator owns the name.
	KindTemplate
	// KindScope means a registered scope owns the name.
	KindScope
)

func (k Kind) String() string {
	switch k {
	case KindTemplate:
		return "template"
	case KindScope:
		return "scope"
	default:
		return "not_found"
	}
}

// TemplateLookup reports whether a template exists.
type TemplateLookup interface {
	HasTemplate(name string) bool
}

// ScopeLookup reports whether a scope is registered.
type ScopeLookup interface {
	Has(name string) bool
}

// Resolution is the outcome of resolving a name.
type Resolution struct {
	Kind Kind
	Name string
}

// Err returns ErrUnknownMethod for an unresolved name, nil otherwise.
func (r Resolution) Err() error {
	if r.Kind == KindNotFound {
		return fmt.Errorf("%w: %q", domain.ErrUnknownMethod, r.Name)
	}
	return nil
}

// Resolver routes names. Templates are checked before scopes, so a template
// shadows a scope of the same name. Templates may be nil.
type Resolver struct {
	Templates TemplateLookup
	Scopes    ScopeLookup
}

// Resolve looks name up.
func (r Resolver) Resolve(name string) Resolution {
	if r.Templates != nil && r.Templates.HasTemplate(name) {
		return Resolution{Kind: KindTemplate, Name: name}
	}
	if r.Scopes != nil && r.Scopes.Has(name) {
		return Resolution{Kind: KindScope, Name: name}
	}
	return Resolution{Kind: KindNotFound, Name: name}
}
