package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/kailas-cloud/vecscope"
	"github.com/kailas-cloud/vecscope/internal/config"
	"github.com/kailas-cloud/vecscope/internal/domain/spec"
	"github.com/kailas-cloud/vecscope/internal/usecase/query"
)

// modelDefinitions converts the models section into query definitions,
// ordered by name.
func modelDefinitions(models map[string]config.ModelConfig) ([]query.ModelDefinition, error) {
	defs := make([]query.ModelDefinition, 0, len(models))
	for _, name := range slices.Sorted(maps.Keys(models)) {
		mc := models[name]

		def := query.ModelDefinition{Name: name, Scopes: make(map[string]spec.Fragment, len(mc.Scopes))}
		for _, f := range mc.Fields {
			def.Fields = append(def.Fields, vecscope.IndexField{
				Name:     f.Name,
				Type:     vecscope.FieldType(f.Type),
				Sortable: f.Sortable,
			})
		}

		base, err := mc.Base.Fragment()
		if err != nil {
			return nil, fmt.Errorf("model %s base: %w", name, err)
		}
		def.Base = base

		for scopeName, doc := range mc.Scopes {
			f, err := doc.Fragment()
			if err != nil {
				return nil, fmt.Errorf("model %s scope %s: %w", name, scopeName, err)
			}
			def.Scopes[scopeName] = f
		}
		defs = append(defs, def)
	}
	return defs, nil
}
