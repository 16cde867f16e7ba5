package backend

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ArgsBuilder produces the argv (without the command) for one invocation.
// Implementations must be pure: same prompt and options, same argv.
type ArgsBuilder func(prompt string, opts map[string]any) []string

// Property describes one backend-specific option exposed in the tool schema.
type Property struct {
	// Type is a JSON Schema type: string, boolean, integer or number.
	Type string
	// Default is advertised in the schema; BuildArgs applies it when the option is absent.
	Default any
	// Description is shown to callers.
	Description string
	// Enum optionally restricts string values.
	Enum []string
}

// Definition binds a provider to the CLI that implements it.
type Definition struct {
	// ID is the provider identifier used at startup.
	ID string
	// Command is the executable name, resolved through PATH.
	Command string
	// ToolName is the advertised tool name.
	ToolName string
	// Description is the advertised tool description.
	Description string
	// BuildArgs builds the argv for a call.
	BuildArgs ArgsBuilder
	// ExtraProperties are the backend-specific options.
	ExtraProperties map[string]Property
}

// Validate reports the first missing required field.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("backend id is required")
	}
	if strings.TrimSpace(d.Command) == "" {
		return fmt.Errorf("backend %s: command is required", d.ID)
	}
	if strings.TrimSpace(d.ToolName) == "" {
		return fmt.Errorf("backend %s: tool name is required", d.ID)
	}
	if d.BuildArgs == nil {
		return fmt.Errorf("backend %s: args builder is required", d.ID)
	}
	return nil
}

// StringOption returns opts[key] as a trimmed string, or "" when absent.
func StringOption(opts map[string]any, key string) string {
	value, ok := opts[key]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// BoolOption returns opts[key] as a bool, or def when absent or unparseable.
func BoolOption(opts map[string]any, key string, def bool) bool {
	value, ok := opts[key]
	if !ok || value == nil {
		return def
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return def
		}
		return parsed
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return def
		}
		return n != 0
	case float64:
		return v != 0
	default:
		return def
	}
}
