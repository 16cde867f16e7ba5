package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func TestStdLoggerRecord(t *testing.T) {
	var buf bytes.Buffer
	logger := New(slog.New(slog.NewJSONHandler(&buf, nil)))

	logger.Record(context.Background(), Event{
		Type:          "tool_ok",
		Tool:          "claude",
		Command:       "claude",
		CorrelationID: "corr-1",
		Duration:      1500 * time.Millisecond,
	})

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal: %v (%s)", err, buf.String())
	}
	if record["msg"] != "audit" || record["type"] != "tool_ok" || record["correlation_id"] != "corr-1" {
		t.Errorf("unexpected record: %v", record)
	}
	if record["duration_ms"] != 1500.0 {
		t.Errorf("duration_ms = %v, want 1500", record["duration_ms"])
	}
	if _, ok := record["reason"]; ok {
		t.Errorf("empty reason should be omitted: %v", record)
	}
}

func TestNilLoggerIsNoop(t *testing.T) {
	var l *StdLogger
	l.Record(context.Background(), Event{Type: "tool_call"})
	New(nil).Record(context.Background(), Event{Type: "tool_call"})
}
