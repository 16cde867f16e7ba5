package catalog

import (
	"encoding/json"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/shllg/mcp-agents/internal/backend"
	"github.com/shllg/mcp-agents/internal/protocol"
)

// Build returns the advertised tools: the connectivity check followed by the backend tool.
func Build(def backend.Definition) []*mcp.Tool {
	return []*mcp.Tool{PingTool(), BackendTool(def)}
}

// Names returns the names of the tools returned by Build.
func Names(def backend.Definition) []string {
	return []string{protocol.PingToolName, def.ToolName}
}

// PingTool describes the zero-argument connectivity check.
func PingTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        protocol.PingToolName,
		Description: protocol.PingToolDescription,
		InputSchema: &jsonschema.Schema{
			Type:                 "object",
			Properties:           map[string]*jsonschema.Schema{},
			AdditionalProperties: falseSchema(),
		},
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:   true,
			IdempotentHint: true,
			OpenWorldHint:  jsonschema.Ptr(false),
		},
	}
}

// BackendTool describes the tool that invokes def.
func BackendTool(def backend.Definition) *mcp.Tool {
	return &mcp.Tool{
		Name:        def.ToolName,
		Description: def.Description,
		InputSchema: InputSchema(def),
		Annotations: &mcp.ToolAnnotations{
			OpenWorldHint: jsonschema.Ptr(true),
		},
	}
}

// InputSchema builds the backend tool input schema. Unknown properties are rejected.
func InputSchema(def backend.Definition) *jsonschema.Schema {
	props := map[string]*jsonschema.Schema{
		protocol.ArgPrompt: {
			Type:        "string",
			Description: "Prompt passed to the CLI.",
		},
		protocol.ArgTimeoutMS: {
			Type:        "integer",
			Minimum:     jsonschema.Ptr(1.0),
			Description: "Timeout in milliseconds (default 120000).",
		},
	}
	order := []string{protocol.ArgPrompt, protocol.ArgTimeoutMS}

	extras := make([]string, 0, len(def.ExtraProperties))
	for name := range def.ExtraProperties {
		if _, reserved := props[name]; reserved {
			continue
		}
		extras = append(extras, name)
	}
	sort.Strings(extras)
	for _, name := range extras {
		props[name] = propertySchema(def.ExtraProperties[name])
	}
	order = append(order, extras...)

	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           props,
		PropertyOrder:        order,
		Required:             []string{protocol.ArgPrompt},
		AdditionalProperties: falseSchema(),
	}
}

func propertySchema(prop backend.Property) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:        prop.Type,
		Description: prop.Description,
	}
	if prop.Default != nil {
		if raw, err := json.Marshal(prop.Default); err == nil {
			s.Default = raw
		}
	}
	for _, value := range prop.Enum {
		s.Enum = append(s.Enum, value)
	}
	return s
}

// falseSchema marshals as the JSON Schema literal false.
func falseSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Not: &jsonschema.Schema{}}
}
