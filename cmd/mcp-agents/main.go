package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/shllg/mcp-agents/internal/app"
	"github.com/shllg/mcp-agents/internal/audit"
	"github.com/shllg/mcp-agents/internal/backend"
	"github.com/shllg/mcp-agents/internal/config"
	"github.com/shllg/mcp-agents/internal/constants"
	"github.com/shllg/mcp-agents/internal/dsl"
	"github.com/shllg/mcp-agents/internal/lifecycle"
	"github.com/shllg/mcp-agents/internal/limits"
	"github.com/shllg/mcp-agents/internal/log"
	"github.com/shllg/mcp-agents/internal/runtime"
	"github.com/shllg/mcp-agents/internal/startup"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	provider := flag.String("provider", "", "Backend provider to expose (default from MCP_AGENTS_PROVIDER)")
	listProviders := flag.Bool("list-providers", false, "Print known providers and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-provider NAME | NAME]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(cfg.LogLevel)

	registry, err := buildRegistry(cfg.BackendsFile)
	if err != nil {
		logger.Error("load backends failed", "error", err)
		os.Exit(1)
	}
	if *listProviders {
		printProviders(os.Stderr, registry.IDs())
		return
	}

	def, err := registry.Select(selectProvider(*provider, flag.Args(), cfg.Provider))
	if err != nil {
		logger.Error("select provider failed", "error", err)
		os.Exit(1)
	}

	guard := lifecycle.New(logger, cfg.Keepalive)
	dispatcher := &runtime.Dispatcher{
		Backend:        def,
		Logger:         logger,
		Audit:          audit.New(logger),
		Limiter:        limits.New(cfg.MaxConcurrent, cfg.RatePerMinute),
		Guard:          guard,
		DefaultTimeout: cfg.DefaultTimeout(),
		MaxOutputBytes: cfg.MaxOutputBytes,
	}
	server, err := runtime.Builder{Version: version, Logger: logger, Dispatcher: dispatcher}.Build()
	if err != nil {
		logger.Error("build server failed", "error", err)
		os.Exit(1)
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
	go func() {
		sig := <-sigCh
		logger.Warn("shutdown requested", "signal", sig.String())
		cancel()
	}()

	// Failures are logged inside Check; each call reports its own start error.
	_ = startup.Check(baseCtx, def, cfg.Preflight, logger)

	logger.Info("serving backend",
		"provider", def.ID,
		"command", def.Command,
		"tool", def.ToolName,
		"transport", cfg.Transport,
		"version", version,
	)

	var runErr error
	switch cfg.Transport {
	case constants.TransportHTTP:
		runErr = runHTTP(baseCtx, cfg, server, guard, logger)
	default:
		runErr = app.RunStdio(baseCtx, server, guard, logger)
	}

	code := shutdown(cfg, guard, logger)
	if runErr != nil {
		logger.Error("runtime error", "error", runErr)
		code = 1
	}
	os.Exit(code)
}

// selectProvider picks the -provider flag, then the first positional argument,
// then the configured default.
func selectProvider(flagValue string, args []string, configured string) string {
	if strings.TrimSpace(flagValue) != "" {
		return strings.TrimSpace(flagValue)
	}
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0])
	}
	if strings.TrimSpace(configured) != "" {
		return strings.TrimSpace(configured)
	}
	return constants.DefaultProvider
}

func buildRegistry(backendsFile string) (*backend.Registry, error) {
	registry, err := backend.NewRegistry(backend.Builtin()...)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(backendsFile) == "" {
		return registry, nil
	}
	file, err := dsl.LoadFile(backendsFile)
	if err != nil {
		return nil, err
	}
	defs, err := dsl.Definitions(file)
	if err != nil {
		return nil, err
	}
	for _, def := range defs {
		if err := registry.Register(def); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// shutdown waits for pending invocations, bounded by the shutdown timeout, and
// returns the process exit code.
func shutdown(cfg config.Config, guard *lifecycle.Guard, logger *slog.Logger) int {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := guard.Drain(ctx); err != nil {
		logger.Warn("pending invocations abandoned", "pending", guard.Pending(), "error", err)
	}
	return guard.ExitCode()
}

func runHTTP(ctx context.Context, cfg config.Config, server *mcp.Server, guard *lifecycle.Guard, logger *slog.Logger) error {
	application, err := app.New(ctx, cfg, app.NewMCPHandler(server, cfg.HTTP.Stateless), guard, logger)
	if err != nil {
		return err
	}
	return application.Run(ctx)
}

// printProviders writes one provider id per line. Stdout stays reserved for
// the stdio protocol stream.
func printProviders(w io.Writer, ids []string) {
	fmt.Fprintln(w, strings.Join(ids, "\n"))
}
