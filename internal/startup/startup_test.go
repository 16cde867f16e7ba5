package startup

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/shllg/mcp-agents/internal/backend"
)

func TestCheckResolvesCommand(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	def := backend.Definition{ID: "shell", Command: "sh"}

	if err := Check(context.Background(), def, false, logger); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !strings.Contains(buf.String(), "backend command resolved") {
		t.Errorf("log = %s, want resolution entry", buf.String())
	}
}

func TestCheckReportsMissingCommand(t *testing.T) {
	def := backend.Definition{ID: "ghost", Command: "mcp-agents-no-such-binary"}
	if err := Check(context.Background(), def, false, nil); err == nil {
		t.Fatal("Check() succeeded for a missing command")
	}
}

func TestCheckVersionFailure(t *testing.T) {
	// false exits 1 even for --version.
	def := backend.Definition{ID: "false", Command: "false"}
	err := Check(context.Background(), def, true, nil)
	if err == nil || !strings.Contains(err.Error(), "version check") {
		t.Fatalf("Check() error = %v, want version check failure", err)
	}
}
