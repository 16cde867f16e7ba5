package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/shllg/mcp-agents/internal/lifecycle"
)

// codeServerClosing is the JSON-RPC code the SDK uses once its reader has
// stopped, e.g. "server is closing: EOF".
const codeServerClosing = -32004

// RunStdio serves server over stdin and stdout.
func RunStdio(ctx context.Context, server *mcp.Server, guard *lifecycle.Guard, logger *slog.Logger) error {
	return Serve(ctx, server, &mcp.StdioTransport{}, guard, logger)
}

// Serve connects server to transport and blocks until the peer disconnects or
// ctx ends. The guard is armed for as long as the session is open.
//
// When the peer closes its input, calls already read are answered before the
// session ends; a closed peer is a clean end, not an error.
//
// On ctx cancellation the session is closed in the background: closing waits
// for in-flight calls, and the caller bounds that wait with guard.Drain.
func Serve(ctx context.Context, server *mcp.Server, transport mcp.Transport, guard *lifecycle.Guard, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	session, err := server.Connect(ctx, answerBeforeEOF{inner: transport}, nil)
	if err != nil {
		return fmt.Errorf("connect transport: %w", err)
	}
	guard.Start()
	logger.Info("mcp session connected")

	waitCh := make(chan error, 1)
	go func() { waitCh <- session.Wait() }()

	select {
	case err := <-waitCh:
		guard.Close(nil)
		if err != nil && !peerClosed(err) {
			return fmt.Errorf("session ended: %w", err)
		}
		logger.Info("mcp session ended")
		return nil
	case <-ctx.Done():
		logger.Info("shutdown requested")
		guard.Close(func() {
			go func() {
				if err := session.Close(); err != nil {
					logger.Warn("close session", "error", err)
				}
			}()
		})
		return nil
	}
}

// peerClosed reports whether err only says the other side went away.
func peerClosed(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, mcp.ErrConnectionClosed) {
		return true
	}
	var wireErr *jsonrpc.Error
	return errors.As(err, &wireErr) && wireErr.Code == codeServerClosing
}
