package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/shllg/mcp-agents/internal/config"
	"github.com/shllg/mcp-agents/internal/http/health"
	"github.com/shllg/mcp-agents/internal/lifecycle"
)

// App controls the HTTP server lifecycle.
type App struct {
	baseCtx         context.Context
	server          *http.Server
	health          *health.Handler
	guard           *lifecycle.Guard
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// NewMCPHandler serves one MCP server over streamable HTTP.
func NewMCPHandler(server *mcp.Server, stateless bool) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{
		Stateless: stateless,
	})
}

// New initializes the HTTP server with the MCP endpoint and health probes.
func New(baseCtx context.Context, cfg config.Config, handler http.Handler, guard *lifecycle.Guard, logger *slog.Logger) (*App, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler is nil")
	}
	if baseCtx == nil {
		return nil, fmt.Errorf("base context is nil")
	}
	if guard == nil {
		return nil, fmt.Errorf("guard is nil")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	path := cfg.HTTP.Path
	if strings.TrimSpace(path) == "" {
		path = "/mcp"
	}

	healthHandler := health.New(guard.Pending)
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	mux.HandleFunc("/healthz", healthHandler.Healthz)
	mux.HandleFunc("/readyz", healthHandler.Readyz)

	// No write timeout: a tool call may legitimately stream for its whole timeout.
	srv := &http.Server{
		Addr:              cfg.HTTP.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &App{
		baseCtx:         baseCtx,
		server:          srv,
		health:          healthHandler,
		guard:           guard,
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
	}, nil
}

// Handler returns the root handler, for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run starts the HTTP server and blocks until ctx ends or the listener fails.
// The guard is armed while the listener is up and closed on the way out.
func (a *App) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.server.Addr, err)
	}
	return a.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, listener net.Listener) error {
	errCh := make(chan error, 1)
	a.guard.Start()
	go func() {
		a.health.SetReady()
		a.logger.Info("http server started", "addr", listener.Addr().String())
		errCh <- a.server.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown requested")
		err := a.shutdown()
		a.guard.Close(nil)
		return err
	case err := <-errCh:
		a.guard.Close(nil)
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		a.logger.Error("http server error", "error", err)
		return err
	}
}

func (a *App) shutdown() error {
	a.health.SetNotReady()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(a.baseCtx), a.shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
