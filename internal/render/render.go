package render

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"
)

// Delimiters for environment templating. They differ from the default so that
// argument templates such as {{.Prompt}} pass through untouched.
const (
	LeftDelim  = "${{"
	RightDelim = "}}"
)

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// envTracker records variables referenced through env that were not set.
type envTracker struct {
	lookup  LookupFunc
	missing map[string]struct{}
}

func (t *envTracker) env(key string) string {
	value, ok := t.lookup(key)
	if !ok {
		if t.missing == nil {
			t.missing = map[string]struct{}{}
		}
		t.missing[key] = struct{}{}
	}
	return value
}

func (t *envTracker) envOr(key, def string) string {
	if value, ok := t.lookup(key); ok {
		return value
	}
	return def
}

func (t *envTracker) missingKeys() []string {
	out := make([]string, 0, len(t.missing))
	for key := range t.missing {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func funcMap(tracker *envTracker) template.FuncMap {
	return template.FuncMap{
		"env":   tracker.env,
		"envOr": tracker.envOr,
		"default": func(def, value string) string {
			if value == "" {
				return def
			}
			return value
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
	}
}

// File reads and renders a backends file against the process environment.
func File(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backends file: %w", err)
	}
	return Bytes(path, raw, os.LookupEnv)
}

// Bytes renders raw as a template. Referencing an unset variable through env
// is an error; envOr supplies a fallback instead.
func Bytes(name string, raw []byte, lookup LookupFunc) ([]byte, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if strings.TrimSpace(name) == "" {
		name = "backends"
	}
	tracker := &envTracker{lookup: lookup}
	tmpl, err := template.New(name).Delims(LeftDelim, RightDelim).Funcs(funcMap(tracker)).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	execErr := tmpl.Execute(&buf, nil)
	if missing := tracker.missingKeys(); len(missing) > 0 {
		return nil, fmt.Errorf("missing env vars: %s", strings.Join(missing, ", "))
	}
	if execErr != nil {
		return nil, fmt.Errorf("render template: %w", execErr)
	}
	return buf.Bytes(), nil
}
