package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyArgument signals an empty id list passed to a lookup.
	ErrEmptyArgument = errors.New("empty argument")
	// ErrScopeCollision signals a scope name that shadows an existing member.
	ErrScopeCollision = errors.New("dangerous scope name")
	// ErrInvalidProducer signals a scope producer that is neither a scope nor a function.
	ErrInvalidProducer = errors.New("scope object or function expected")
	// ErrInvalidParams signals unusable paging or size parameters.
	ErrInvalidParams = errors.New("invalid params")

	// ErrScopeType signals a scope function that returned something other than a scope.
	ErrScopeType = errors.New("scope did not return a scope")

	// ErrUnknownMethod signals a name that matches neither a template nor a scope.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrUnknownScope signals a call to a scope that was never registered.
	ErrUnknownScope = errors.New("unknown scope")
	// ErrTemplateNotFound signals a template name the library does not define.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrUnboundScope signals a terminal call on a scope built without a model.
	ErrUnboundScope = errors.New("scope is not bound to a model")
	// ErrUnknownModel signals a model name the gateway does not serve.
	ErrUnknownModel = errors.New("unknown model")
)

// ScopeTypeError wraps ErrScopeType with the scope name and the offending value.
type ScopeTypeError struct {
	Name string
	Got  any
}

func (e *ScopeTypeError) Error() string {
	return fmt.Sprintf("%s: scope %q returned %T", ErrScopeType.Error(), e.Name, e.Got)
}

func (e *ScopeTypeError) Unwrap() error { return ErrScopeType }

// NewScopeTypeError creates a scope type error.
func NewScopeTypeError(name string, got any) error {
	return &ScopeTypeError{Name: name, Got: got}
}
