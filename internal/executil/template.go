package executil

import (
	"fmt"
	"strings"
	"text/template"
)

// TemplateData defines the fields available to argument templates.
type TemplateData struct {
	// Prompt is the caller's prompt.
	Prompt string
	// Options are the backend-specific options supplied by the caller.
	Options map[string]any
}

// Opt returns the named option, for use as {{.Opt "model"}}. An absent
// option is "" so that a bare reference renders empty instead of "<no value>".
func (d TemplateData) Opt(name string) any {
	value, ok := d.Options[name]
	if !ok || value == nil {
		return ""
	}
	return value
}

// ParseArgTemplates compiles every argument template up front.
func ParseArgTemplates(args []string) ([]*template.Template, error) {
	out := make([]*template.Template, 0, len(args))
	for i, arg := range args {
		tmpl, err := template.New(fmt.Sprintf("arg%d", i)).Option("missingkey=zero").Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("args[%d]: template parse: %w", i, err)
		}
		out = append(out, tmpl)
	}
	return out, nil
}

// RenderArgs renders compiled argument templates. Arguments that render to an
// empty string are dropped, which lets a template make a flag conditional.
func RenderArgs(templates []*template.Template, data TemplateData) ([]string, error) {
	out := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		var buf strings.Builder
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("template render: %w", err)
		}
		if buf.Len() == 0 {
			continue
		}
		out = append(out, buf.String())
	}
	return out, nil
}
