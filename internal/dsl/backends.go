package dsl

import (
	"fmt"
	"maps"
	"text/template"

	"github.com/shllg/mcp-agents/internal/backend"
	"github.com/shllg/mcp-agents/internal/executil"
)

// Definitions converts a validated file into backend definitions.
func Definitions(file *File) ([]backend.Definition, error) {
	if file == nil {
		return nil, nil
	}
	defs := make([]backend.Definition, 0, len(file.Backends))
	for _, cfg := range file.Backends {
		def, err := definition(cfg)
		if err != nil {
			return nil, fmt.Errorf("backend %s: %w", cfg.ID, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func definition(cfg BackendConfig) (backend.Definition, error) {
	templates, err := executil.ParseArgTemplates(cfg.Args)
	if err != nil {
		return backend.Definition{}, err
	}

	props := make(map[string]backend.Property, len(cfg.Properties))
	defaults := map[string]any{}
	for name, prop := range cfg.Properties {
		props[name] = backend.Property{
			Type:        prop.Type,
			Default:     prop.Default,
			Description: prop.Description,
			Enum:        prop.Enum,
		}
		if prop.Default != nil {
			defaults[name] = prop.Default
		}
	}

	build := argsBuilder(templates, defaults)
	// Dry run with defaults so template errors surface at startup, not per call.
	if _, err := renderArgs(templates, defaults, "prompt", nil); err != nil {
		return backend.Definition{}, err
	}

	return backend.Definition{
		ID:              cfg.ID,
		Command:         cfg.Command,
		ToolName:        cfg.ToolName,
		Description:     cfg.Description,
		BuildArgs:       build,
		ExtraProperties: props,
	}, nil
}

func argsBuilder(templates []*template.Template, defaults map[string]any) backend.ArgsBuilder {
	return func(prompt string, opts map[string]any) []string {
		args, err := renderArgs(templates, defaults, prompt, opts)
		if err != nil {
			// Recovered by the dispatcher and reported as an error result.
			panic(fmt.Errorf("render args: %w", err))
		}
		return args
	}
}

func renderArgs(templates []*template.Template, defaults map[string]any, prompt string, opts map[string]any) ([]string, error) {
	merged := make(map[string]any, len(defaults)+len(opts))
	maps.Copy(merged, defaults)
	maps.Copy(merged, opts)
	return executil.RenderArgs(templates, executil.TemplateData{Prompt: prompt, Options: merged})
}
