package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/vecscope/internal/config"
	"github.com/kailas-cloud/vecscope/internal/repository/template"
)

func newCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the config, its models and the template library offline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return check(cmd.OutOrStdout(), &cfg)
		},
	}
}

// check prints what the gateway would serve. A config scope with the same
// name as a template is reported: templates win in Apply.
func check(w io.Writer, cfg *config.Config) error {
	defs, err := modelDefinitions(cfg.Models)
	if err != nil {
		return err
	}

	var lib *template.Library
	if cfg.Templates.Path != "" {
		if lib, err = template.Load(cfg.Templates.Path); err != nil {
			return fmt.Errorf("templates: %w", err)
		}
	}

	for _, d := range defs {
		scopes := slices.Sorted(maps.Keys(d.Scopes))
		fmt.Fprintf(w, "model %s: %d fields, scopes [%s]\n", d.Name, len(d.Fields), strings.Join(scopes, " "))
		for _, name := range scopes {
			if lib != nil && lib.HasTemplate(name) {
				fmt.Fprintf(w, "  warning: scope %s is shadowed by template %s\n", name, name)
			}
		}
	}
	if lib == nil {
		fmt.Fprintln(w, "templates: none")
		return nil
	}
	fmt.Fprintf(w, "templates from %s: [%s]\n", cfg.Templates.Path, strings.Join(lib.Names(), " "))
	return nil
}
