package dsl

// File is the top-level backends file.
type File struct {
	// Backends lists additional backend declarations.
	Backends []BackendConfig `yaml:"backends"`
}

// BackendConfig declares one CLI-backed provider.
type BackendConfig struct {
	// ID is the provider identifier selected at startup.
	ID string `yaml:"id"`
	// Command is the executable, resolved through PATH.
	Command string `yaml:"command"`
	// ToolName is the advertised tool name; defaults to ID.
	ToolName string `yaml:"tool_name"`
	// Description is the advertised tool description.
	Description string `yaml:"description"`
	// Args are text/template strings rendered with .Prompt and .Opt.
	Args []string `yaml:"args"`
	// Properties declares backend-specific options.
	Properties map[string]PropertyConfig `yaml:"properties"`
}

// PropertyConfig declares one backend-specific option.
type PropertyConfig struct {
	// Type is string, boolean, integer or number.
	Type string `yaml:"type"`
	// Default applies when the caller omits the option.
	Default any `yaml:"default"`
	// Description is shown to callers.
	Description string `yaml:"description"`
	// Enum restricts string values.
	Enum []string `yaml:"enum"`
}
