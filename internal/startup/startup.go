package startup

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/shllg/mcp-agents/internal/backend"
	"github.com/shllg/mcp-agents/internal/executil"
	"github.com/shllg/mcp-agents/internal/security"
)

// versionTimeout bounds the optional version check.
const versionTimeout = 10 * time.Second

// Check reports whether the backend command is resolvable. A missing command
// is only logged: calls will still fail individually with a start error.
// When versionCheck is set, "<command> --version" is run once and its output logged.
func Check(ctx context.Context, def backend.Definition, versionCheck bool, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	path, err := exec.LookPath(def.Command)
	if err != nil {
		logger.Warn("backend command not found", "provider", def.ID, "command", def.Command, "error", err)
		return fmt.Errorf("backend %s: %w", def.ID, err)
	}
	logger.Info("backend command resolved", "provider", def.ID, "path", path)
	if !versionCheck {
		return nil
	}

	output, err := executil.Run(ctx, def.Command, []string{"--version"}, executil.Options{Timeout: versionTimeout, MaxOutputBytes: 64 << 10})
	if err != nil {
		logger.Warn("backend version check failed", "provider", def.ID, "error", err)
		return fmt.Errorf("backend %s: version check: %w", def.ID, err)
	}
	logger.Info("backend version", "provider", def.ID, "output", security.Preview(output, 200))
	return nil
}
