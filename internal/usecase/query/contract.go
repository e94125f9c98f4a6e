package query

import (
	"time"

	"github.com/kailas-cloud/vecscope"
	"github.com/kailas-cloud/vecscope/internal/domain/spec"
)

// Op names a terminal operation the gateway can run.
type Op string

// Supported operations.
const (
	OpSearch Op = "search"
	OpFirst  Op = "first"
	OpLast   Op = "last"
	OpCount  Op = "count"
	OpScan   Op = "scan"
)

// ModelDefinition describes a model served over HTTP: its indexed fields,
// the fragment every query starts from and its fixed scopes.
type ModelDefinition struct {
	Name   string
	Fields []vecscope.IndexField
	Base   spec.Fragment
	Scopes map[string]spec.Fragment
}

// Limits bounds what a request may ask for.
type Limits struct {
	DefaultSize   int
	MaxSize       int
	ScanBatchSize int
	Scroll        time.Duration
}

// Application is one Scope.Apply call: a template or scope name plus its arguments.
type Application struct {
	Name string
	Args []any
}

// Request is a query composed from named applications and a trailing fragment.
type Request struct {
	Apply    []Application
	Fragment spec.Fragment
}
