package security

import "testing"

func TestRedactArguments(t *testing.T) {
	in := map[string]any{
		"prompt":      "explain the build",
		"api_key":     "sk-123",
		"GitHubToken": "ghp_abc",
		"timeout_ms":  5000,
		"sandbox":     true,
		"long":        "abcdefghij",
	}
	out := RedactArguments(in, 5)

	if out["api_key"] != "***" || out["GitHubToken"] != "***" {
		t.Errorf("sensitive keys not masked: %v", out)
	}
	if out["prompt"] != "expla…" {
		t.Errorf("prompt = %q, want shortened", out["prompt"])
	}
	if out["timeout_ms"] != 5000 || out["sandbox"] != true {
		t.Errorf("non-string values changed: %v", out)
	}
	if in["api_key"] != "sk-123" {
		t.Error("input map was modified")
	}
}

func TestRedactArgumentsNil(t *testing.T) {
	if RedactArguments(nil, 10) != nil {
		t.Error("RedactArguments(nil) should be nil")
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{in: "short", max: 10, want: "short"},
		{in: "exactly", max: 7, want: "exactly"},
		{in: "héllo wörld", max: 5, want: "héllo…"},
		{in: "unlimited", max: 0, want: "unlimited"},
	}
	for _, tt := range tests {
		if got := Preview(tt.in, tt.max); got != tt.want {
			t.Errorf("Preview(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
