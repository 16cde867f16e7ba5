package dsl

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shllg/mcp-agents/internal/constants"
	"github.com/shllg/mcp-agents/internal/executil"
	"github.com/shllg/mcp-agents/internal/protocol"
)

// Validate applies defaults and verifies required fields.
func Validate(file *File) error {
	if file == nil {
		return fmt.Errorf("backends file is nil")
	}

	ids := map[string]struct{}{}
	toolNames := map[string]struct{}{}
	for i := range file.Backends {
		b := &file.Backends[i]
		b.ID = strings.TrimSpace(b.ID)
		if b.ID == "" {
			return fmt.Errorf("backends[%d].id is required", i)
		}
		if _, exists := ids[b.ID]; exists {
			return fmt.Errorf("duplicate backend id: %s", b.ID)
		}
		ids[b.ID] = struct{}{}

		if strings.TrimSpace(b.Command) == "" {
			return fmt.Errorf("backends[%d].command is required", i)
		}
		if strings.TrimSpace(b.ToolName) == "" {
			b.ToolName = b.ID
		}
		if b.ToolName == protocol.PingToolName {
			return fmt.Errorf("backends[%d].tool_name %q is reserved", i, b.ToolName)
		}
		if _, exists := toolNames[b.ToolName]; exists {
			return fmt.Errorf("duplicate tool name: %s", b.ToolName)
		}
		toolNames[b.ToolName] = struct{}{}

		if !slices.ContainsFunc(b.Args, func(arg string) bool { return strings.Contains(arg, ".Prompt") }) {
			return fmt.Errorf("backends[%d].args must reference {{.Prompt}}", i)
		}
		if _, err := executil.ParseArgTemplates(b.Args); err != nil {
			return fmt.Errorf("backends[%d].%w", i, err)
		}

		for name, prop := range b.Properties {
			if err := validateProperty(name, &prop); err != nil {
				return fmt.Errorf("backends[%d].properties.%w", i, err)
			}
			b.Properties[name] = prop
		}
	}
	return nil
}

func validateProperty(name string, prop *PropertyConfig) error {
	switch name {
	case protocol.ArgPrompt, protocol.ArgTimeoutMS:
		return fmt.Errorf("%s: name is reserved", name)
	}
	prop.Type = strings.ToLower(strings.TrimSpace(prop.Type))
	switch prop.Type {
	case constants.PropertyString, constants.PropertyBoolean, constants.PropertyInteger, constants.PropertyNumber:
	case "":
		prop.Type = constants.PropertyString
	default:
		return fmt.Errorf("%s.type must be string, boolean, integer, or number", name)
	}
	if len(prop.Enum) > 0 && prop.Type != constants.PropertyString {
		return fmt.Errorf("%s.enum is only allowed for string properties", name)
	}
	def, err := normalizeDefault(prop.Type, prop.Default)
	if err != nil {
		return fmt.Errorf("%s.default: %w", name, err)
	}
	if s, ok := def.(string); ok && len(prop.Enum) > 0 && !slices.Contains(prop.Enum, s) {
		return fmt.Errorf("%s.default %q is not in enum", name, s)
	}
	prop.Default = def
	return nil
}
