package vecscope

import (
	"fmt"

	"github.com/kailas-cloud/vecscope/internal/repository/template"
)

// Templates expands named query fragments. Template names take precedence
// over scope names in Scope.Apply.
type Templates interface {
	HasTemplate(name string) bool
	// ExpandTemplate renders name against vars, the variables of the scope
	// being extended overlaid with the caller's extras.
	ExpandTemplate(name string, vars map[string]any) (Fragment, error)
}

// LoadTemplates reads a YAML template file, or every *.yaml / *.yml file in a
// directory. Placeholders use ${var} and ${var:-default} syntax.
func LoadTemplates(path string) (Templates, error) {
	lib, err := template.Load(path)
	if err != nil {
		return nil, fmt.Errorf("vecscope: load templates: %w", err)
	}
	return lib, nil
}

// ParseTemplates builds templates from one YAML document.
func ParseTemplates(data []byte) (Templates, error) {
	lib, err := template.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("vecscope: parse templates: %w", err)
	}
	return lib, nil
}
