package protocol

import "time"

// ServerName is the MCP implementation name reported to clients.
const ServerName = "mcp-agents"

// MethodCallTool is the MCP method that invokes a tool.
const MethodCallTool = "tools/call"

// Connectivity-check tool.
const (
	PingToolName        = "ping"
	PingToolDescription = "Check that the server is reachable. Returns \"pong\" without running any command."
	PingMarker          = "pong"
)

// Tool argument names.
const (
	ArgPrompt        = "prompt"
	ArgTimeoutMS     = "timeout_ms"
	ArgCorrelationID = "correlation_id"
	ArgRequestID     = "request_id"
)

// Invocation defaults.
const (
	DefaultTimeoutMS      = 120_000
	DefaultTimeout        = DefaultTimeoutMS * time.Millisecond
	DefaultMaxOutputBytes = 10 << 20
	DefaultKeepalive      = 60 * time.Second
)

// Audit event types.
const (
	EventToolCall     = "tool_call"
	EventToolOK       = "tool_ok"
	EventToolError    = "tool_error"
	EventToolRejected = "tool_rejected"
)
