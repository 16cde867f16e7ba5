package dsl

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const aiderYAML = `
backends:
  - id: aider
    command: aider
    description: Run aider non-interactively
    args:
      - --yes
      - '{{with .Opt "model"}}--model={{.}}{{end}}'
      - '{{if .Opt "verbose"}}--verbose{{end}}'
      - --message
      - '{{.Prompt}}'
    properties:
      model:
        type: string
        description: Model name
      verbose:
        type: boolean
        default: false
      retries:
        type: integer
        default: 2
`

func TestLoadAppliesDefaults(t *testing.T) {
	file, err := Load([]byte(aiderYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(file.Backends) != 1 {
		t.Fatalf("Load() returned %d backends, want 1", len(file.Backends))
	}
	b := file.Backends[0]
	if b.ToolName != "aider" {
		t.Errorf("ToolName = %q, want id fallback", b.ToolName)
	}
	if got := b.Properties["retries"].Default; got != int64(2) {
		t.Errorf("retries default = %v (%T), want int64 2", got, got)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	file, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(file.Backends) != 0 {
		t.Errorf("Load() returned %d backends", len(file.Backends))
	}
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", "backends:\n  - id: a\n    command: a\n    args: ['{{.Prompt}}']\n    shell: true\n", "field shell not found"},
		{"missing id", "backends:\n  - command: a\n    args: ['{{.Prompt}}']\n", "id is required"},
		{"missing command", "backends:\n  - id: a\n    args: ['{{.Prompt}}']\n", "command is required"},
		{"duplicate id", "backends:\n  - {id: a, command: a, args: ['{{.Prompt}}']}\n  - {id: a, command: b, args: ['{{.Prompt}}']}\n", "duplicate backend id"},
		{"duplicate tool", "backends:\n  - {id: a, command: a, tool_name: t, args: ['{{.Prompt}}']}\n  - {id: b, command: b, tool_name: t, args: ['{{.Prompt}}']}\n", "duplicate tool name"},
		{"reserved tool", "backends:\n  - {id: a, command: a, tool_name: ping, args: ['{{.Prompt}}']}\n", "reserved"},
		{"no prompt", "backends:\n  - {id: a, command: a, args: ['--help']}\n", "must reference"},
		{"bad template", "backends:\n  - {id: a, command: a, args: ['{{.Prompt']}\n", "template parse"},
		{"bad type", "backends:\n  - id: a\n    command: a\n    args: ['{{.Prompt}}']\n    properties:\n      x: {type: object}\n", "type must be"},
		{"reserved property", "backends:\n  - id: a\n    command: a\n    args: ['{{.Prompt}}']\n    properties:\n      timeout_ms: {type: integer}\n", "reserved"},
		{"default mismatch", "backends:\n  - id: a\n    command: a\n    args: ['{{.Prompt}}']\n    properties:\n      x: {type: boolean, default: yes please}\n", "not a valid boolean"},
		{"enum on bool", "backends:\n  - id: a\n    command: a\n    args: ['{{.Prompt}}']\n    properties:\n      x: {type: boolean, enum: [a]}\n", "enum is only allowed"},
		{"default outside enum", "backends:\n  - id: a\n    command: a\n    args: ['{{.Prompt}}']\n    properties:\n      x: {type: string, enum: [a, b], default: c}\n", "not in enum"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestDefinitionsBuildArgs(t *testing.T) {
	file, err := Load([]byte(aiderYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defs, err := Definitions(file)
	if err != nil {
		t.Fatalf("Definitions() error = %v", err)
	}
	def := defs[0]
	if def.ID != "aider" || def.Command != "aider" || def.ToolName != "aider" {
		t.Errorf("definition = %+v", def)
	}
	if err := def.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if _, ok := def.ExtraProperties["model"]; !ok {
		t.Error("model property missing")
	}

	tests := []struct {
		name string
		opts map[string]any
		want []string
	}{
		{"defaults", nil, []string{"--yes", "--message", "-- tricky"}},
		{"options", map[string]any{"model": "gpt", "verbose": true}, []string{"--yes", "--model=gpt", "--verbose", "--message", "-- tricky"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := def.BuildArgs("-- tricky", tt.opts)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadFileRendersEnvironment(t *testing.T) {
	t.Setenv("MCP_AGENTS_TEST_AIDER", "/opt/aider")
	path := filepath.Join(t.TempDir(), "backends.yaml")
	content := "backends:\n  - id: aider\n    command: '${{env \"MCP_AGENTS_TEST_AIDER\"}}'\n    args: ['{{.Prompt}}']\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	file, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got := file.Backends[0].Command; got != "/opt/aider" {
		t.Errorf("command = %q, want /opt/aider", got)
	}
	if got := file.Backends[0].Args[0]; got != "{{.Prompt}}" {
		t.Errorf("args[0] = %q, want literal prompt template", got)
	}
}
