package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/shllg/mcp-agents/internal/audit"
	"github.com/shllg/mcp-agents/internal/backend"
	"github.com/shllg/mcp-agents/internal/catalog"
	"github.com/shllg/mcp-agents/internal/executil"
	"github.com/shllg/mcp-agents/internal/lifecycle"
	"github.com/shllg/mcp-agents/internal/limits"
	"github.com/shllg/mcp-agents/internal/protocol"
	"github.com/shllg/mcp-agents/internal/security"
)

// maxTimeoutMS keeps time.Duration(ms)*time.Millisecond from overflowing.
const maxTimeoutMS = math.MaxInt64 / int64(time.Millisecond)

// logPreviewLen bounds how much of a prompt reaches the logs.
const logPreviewLen = 200

// RunFunc executes one subprocess. executil.Run is the production implementation.
type RunFunc func(ctx context.Context, command string, args []string, opts executil.Options) (string, error)

// Dispatcher turns tool calls into backend invocations.
type Dispatcher struct {
	// Backend is the active backend definition.
	Backend backend.Definition
	// Logger receives start and finish diagnostics.
	Logger *slog.Logger
	// Audit records invocation events.
	Audit audit.Logger
	// Limiter optionally bounds invocations; nil means unbounded.
	Limiter *limits.Limiter
	// Guard tracks pending invocations and records faults.
	Guard *lifecycle.Guard
	// DefaultTimeout applies when timeout_ms is absent or invalid.
	DefaultTimeout time.Duration
	// MaxOutputBytes caps combined output per invocation.
	MaxOutputBytes int64
	// Run overrides the subprocess runner.
	Run RunFunc
}

// Advertises reports whether name is one of the catalog tools.
func (d *Dispatcher) Advertises(name string) bool {
	return slices.Contains(catalog.Names(d.Backend), name)
}

// Handle is the mcp.ToolHandler for every advertised tool.
func (d *Dispatcher) Handle(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if req == nil || req.Params == nil {
		return errorResult("missing call parameters"), nil
	}
	return d.Dispatch(ctx, req.Params.Name, decodeArguments(req.Params.Arguments)), nil
}

// Middleware answers tools/call for unadvertised names with an error result
// instead of the SDK's protocol-level "unknown tool" fault.
func (d *Dispatcher) Middleware(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		if method != protocol.MethodCallTool {
			return next(ctx, method, req)
		}
		call, ok := req.(*mcp.CallToolRequest)
		if !ok || call.Params == nil || d.Advertises(call.Params.Name) {
			return next(ctx, method, req)
		}
		return d.Handle(ctx, call)
	}
}

// Dispatch runs one tool call. Every failure becomes an error-flagged result.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) (result *mcp.CallToolResult) {
	corrID := correlationID(args)
	logger := d.logger().With("tool", name, "correlation_id", corrID)
	start := time.Now()

	if d.Guard != nil {
		release := d.Guard.Track()
		defer release()
	}
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic in tool %s: %v", name, r)
			if d.Guard != nil {
				d.Guard.Fault(err)
			}
			result = errorResult("internal error: " + err.Error())
		}
		level := slog.LevelInfo
		if result.IsError {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "tool call finished",
			"is_error", result.IsError,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	logger.Info("tool call started", "args", security.RedactArguments(args, logPreviewLen))

	if name == protocol.PingToolName {
		return textResult(protocol.PingMarker)
	}
	if name != d.Backend.ToolName {
		return d.reject(ctx, name, corrID, fmt.Sprintf("unknown tool: %s", name))
	}

	prompt := stringArg(args[protocol.ArgPrompt])
	if strings.TrimSpace(prompt) == "" {
		return d.reject(ctx, name, corrID, "missing required argument: prompt")
	}
	timeout := resolveTimeout(args[protocol.ArgTimeoutMS], d.defaultTimeout())
	opts := extraOptions(d.Backend, args)
	argv := d.Backend.BuildArgs(prompt, opts)

	if d.Audit != nil {
		d.Audit.Record(ctx, audit.Event{Type: protocol.EventToolCall, Tool: name, Command: d.Backend.Command, CorrelationID: corrID})
	}

	// Only the timeout may stop an invocation; caller cancellation is ignored.
	runCtx := context.WithoutCancel(ctx)

	waitCtx, cancelWait := context.WithTimeout(runCtx, timeout)
	releaseSlot, err := d.Limiter.Acquire(waitCtx)
	cancelWait()
	if err != nil {
		return d.reject(ctx, name, corrID, err.Error())
	}
	defer releaseSlot()

	output, err := d.runner()(runCtx, d.Backend.Command, argv, executil.Options{
		Timeout:        timeout,
		MaxOutputBytes: d.MaxOutputBytes,
	})
	duration := time.Since(start)
	if err != nil {
		logger.Warn("backend invocation failed", "command", d.Backend.Command, "error", err)
		if d.Audit != nil {
			d.Audit.Record(ctx, audit.Event{Type: protocol.EventToolError, Tool: name, Command: d.Backend.Command, CorrelationID: corrID, Duration: duration, Reason: err.Error()})
		}
		return errorResult(err.Error())
	}
	if d.Audit != nil {
		d.Audit.Record(ctx, audit.Event{Type: protocol.EventToolOK, Tool: name, Command: d.Backend.Command, CorrelationID: corrID, Duration: duration})
	}
	return textResult(output)
}

func (d *Dispatcher) reject(ctx context.Context, name, corrID, reason string) *mcp.CallToolResult {
	if d.Audit != nil {
		d.Audit.Record(ctx, audit.Event{Type: protocol.EventToolRejected, Tool: name, CorrelationID: corrID, Reason: reason})
	}
	return errorResult(reason)
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (d *Dispatcher) runner() RunFunc {
	if d.Run != nil {
		return d.Run
	}
	return executil.Run
}

func (d *Dispatcher) defaultTimeout() time.Duration {
	if d.DefaultTimeout > 0 {
		return d.DefaultTimeout
	}
	return protocol.DefaultTimeout
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	res := textResult(message)
	res.IsError = true
	return res
}

// decodeArguments parses raw call arguments, keeping numbers as json.Number.
// Anything that is not a JSON object yields an empty map.
func decodeArguments(raw json.RawMessage) map[string]any {
	args := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return args
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var decoded map[string]any
	if err := decoder.Decode(&decoded); err != nil || decoded == nil {
		return args
	}
	return decoded
}

// stringArg coerces an argument to a string; nil becomes "".
func stringArg(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool, float64, float32, int, int64:
		return fmt.Sprint(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

// resolveTimeout accepts only positive integer milliseconds; anything else
// falls back to def rather than failing the call.
func resolveTimeout(value any, def time.Duration) time.Duration {
	var ms int64
	switch v := value.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return def
		}
		ms = n
	case float64:
		if v != math.Trunc(v) || v < 1 || v > float64(maxTimeoutMS) {
			return def
		}
		ms = int64(v)
	case int:
		ms = int64(v)
	case int64:
		ms = v
	default:
		return def
	}
	if ms < 1 || ms > maxTimeoutMS {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

// extraOptions picks the backend's declared options the caller actually set.
func extraOptions(def backend.Definition, args map[string]any) map[string]any {
	opts := make(map[string]any, len(def.ExtraProperties))
	for key := range def.ExtraProperties {
		if value, ok := args[key]; ok && value != nil {
			opts[key] = value
		}
	}
	return opts
}

func correlationID(args map[string]any) string {
	for _, key := range []string{protocol.ArgCorrelationID, protocol.ArgRequestID} {
		if raw, ok := args[key].(string); ok && strings.TrimSpace(raw) != "" {
			return raw
		}
	}
	return uuid.NewString()
}
