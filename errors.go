package vecscope

import (
	"github.com/kailas-cloud/vecscope/internal/domain"
	domdoc "github.com/kailas-cloud/vecscope/internal/domain/document"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyArgument    = domain.ErrEmptyArgument
	ErrScopeCollision   = domain.ErrScopeCollision
	ErrInvalidProducer  = domain.ErrInvalidProducer
	ErrInvalidParams    = domain.ErrInvalidParams
	ErrScopeType        = domain.ErrScopeType
	ErrUnknownMethod    = domain.ErrUnknownMethod
	ErrUnknownScope     = domain.ErrUnknownScope
	ErrTemplateNotFound = domain.ErrTemplateNotFound
	ErrUnboundScope     = domain.ErrUnboundScope

	// ErrInvalidDocument rejects an Upsert item with a bad id or fields.
	ErrInvalidDocument = domdoc.ErrInvalid
)

// ScopeTypeError carries the scope name and the value its producer returned.
type ScopeTypeError = domain.ScopeTypeError
