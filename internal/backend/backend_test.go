package backend

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestBuiltinArgs(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
		opts map[string]any
		want []string
	}{
		{
			name: "claude defaults",
			def:  Claude(),
			want: []string{"-p", "--", "hello"},
		},
		{
			name: "claude model",
			def:  Claude(),
			opts: map[string]any{"model": "opus"},
			want: []string{"-p", "--model", "opus", "--", "hello"},
		},
		{
			name: "codex defaults",
			def:  Codex(),
			want: []string{"exec", "--skip-git-repo-check", "--", "hello"},
		},
		{
			name: "codex all options",
			def:  Codex(),
			opts: map[string]any{"full_auto": true, "model": "o3", "sandbox": "read-only"},
			want: []string{"exec", "--full-auto", "--model", "o3", "--sandbox", "read-only", "--skip-git-repo-check", "--", "hello"},
		},
		{
			name: "gemini defaults",
			def:  Gemini(),
			want: []string{"--prompt=hello"},
		},
		{
			name: "gemini sandbox from string",
			def:  Gemini(),
			opts: map[string]any{"sandbox": "true"},
			want: []string{"--sandbox", "--prompt=hello"},
		},
		{
			name: "gemini sandbox disabled",
			def:  Gemini(),
			opts: map[string]any{"sandbox": false},
			want: []string{"--prompt=hello"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.def.BuildArgs("hello", tt.opts)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuiltinPromptIsNeverAFlag(t *testing.T) {
	prompt := "--dangerously-skip-permissions"
	for _, def := range Builtin() {
		args := def.BuildArgs(prompt, nil)
		last := args[len(args)-1]
		if last != prompt && last != "--prompt="+prompt {
			t.Errorf("%s: prompt not passed as a single trailing value: %q", def.ID, args)
		}
		if last == prompt && (len(args) < 2 || args[len(args)-2] != "--") {
			t.Errorf("%s: positional prompt not preceded by --: %q", def.ID, args)
		}
	}
}

func TestRegistrySelect(t *testing.T) {
	reg, err := NewRegistry(Builtin()...)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if got := reg.IDs(); !reflect.DeepEqual(got, []string{"claude", "codex", "gemini"}) {
		t.Errorf("IDs() = %v", got)
	}
	for _, id := range reg.IDs() {
		def, err := reg.Select(id)
		if err != nil {
			t.Fatalf("Select(%q) error = %v", id, err)
		}
		if def.ID != id {
			t.Errorf("Select(%q).ID = %q", id, def.ID)
		}
	}

	_, err = reg.Select("claud")
	if !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("Select(typo) error = %v, want ErrUnknownProvider", err)
	}
	if !strings.Contains(err.Error(), "claud") || !strings.Contains(err.Error(), "gemini") {
		t.Errorf("error %q should name the id and the known ids", err.Error())
	}
}

func TestRegistryIsExtensible(t *testing.T) {
	reg, err := NewRegistry(Builtin()...)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	custom := Definition{
		ID:        "echo",
		Command:   "echo",
		ToolName:  "echo",
		BuildArgs: func(prompt string, _ map[string]any) []string { return []string{prompt} },
	}
	if err := reg.Register(custom); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, ok := reg.Lookup("echo"); !ok {
		t.Error("Lookup(echo) not found after Register")
	}
	if err := reg.Register(custom); err == nil {
		t.Error("Register() duplicate succeeded, want error")
	}
}

func TestRegistryRejectsIncompleteDefinitions(t *testing.T) {
	build := func(string, map[string]any) []string { return nil }
	tests := []Definition{
		{Command: "x", ToolName: "x", BuildArgs: build},
		{ID: "x", ToolName: "x", BuildArgs: build},
		{ID: "x", Command: "x", BuildArgs: build},
		{ID: "x", Command: "x", ToolName: "x"},
	}
	for i, def := range tests {
		if _, err := NewRegistry(def); err == nil {
			t.Errorf("case %d: NewRegistry() succeeded, want error", i)
		}
	}
}

func TestBoolOption(t *testing.T) {
	tests := []struct {
		value any
		want  bool
	}{
		{value: true, want: true},
		{value: "yes", want: false},
		{value: "1", want: true},
		{value: json.Number("0"), want: false},
		{value: json.Number("2"), want: true},
		{value: nil, want: false},
		{value: []any{}, want: false},
	}
	for _, tt := range tests {
		if got := BoolOption(map[string]any{"k": tt.value}, "k", false); got != tt.want {
			t.Errorf("BoolOption(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
