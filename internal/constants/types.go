package constants

// Built-in provider identifiers.
const (
	ProviderClaude = "claude"
	ProviderCodex  = "codex"
	ProviderGemini = "gemini"

	DefaultProvider = ProviderClaude
)

// Transport names.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Extra property types accepted in backend definitions.
const (
	PropertyString  = "string"
	PropertyBoolean = "boolean"
	PropertyInteger = "integer"
	PropertyNumber  = "number"
)
