package runtime

import (
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/shllg/mcp-agents/internal/catalog"
	"github.com/shllg/mcp-agents/internal/protocol"
)

// Builder constructs an MCP server around one dispatcher.
type Builder struct {
	// Version is reported to clients during initialization.
	Version string
	// Logger is used by the SDK for session diagnostics.
	Logger *slog.Logger
	// Dispatcher handles every tool call.
	Dispatcher *Dispatcher
}

// Build creates an MCP server advertising the catalog for the dispatcher's backend.
func (b Builder) Build() (*mcp.Server, error) {
	if b.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if err := b.Dispatcher.Backend.Validate(); err != nil {
		return nil, err
	}

	version := b.Version
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    protocol.ServerName,
		Version: version,
	}, &mcp.ServerOptions{Logger: b.Logger})

	// The raw AddTool skips SDK argument validation; Dispatch applies its own rules.
	for _, tool := range catalog.Build(b.Dispatcher.Backend) {
		server.AddTool(tool, b.Dispatcher.Handle)
	}
	server.AddReceivingMiddleware(b.Dispatcher.Middleware)
	return server, nil
}
