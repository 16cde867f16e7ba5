package backend

import "github.com/shllg/mcp-agents/internal/constants"

// Builtin returns the reference providers.
func Builtin() []Definition {
	return []Definition{Claude(), Codex(), Gemini()}
}

// Claude runs Claude Code in print mode.
func Claude() Definition {
	return Definition{
		ID:          constants.ProviderClaude,
		Command:     "claude",
		ToolName:    "claude",
		Description: "Run Claude Code non-interactively (claude -p) with the given prompt and return its answer.",
		BuildArgs: func(prompt string, opts map[string]any) []string {
			args := []string{"-p"}
			if model := StringOption(opts, "model"); model != "" {
				args = append(args, "--model", model)
			}
			return append(args, "--", prompt)
		},
		ExtraProperties: map[string]Property{
			"model": {
				Type:        constants.PropertyString,
				Description: "Model alias or full name passed as --model.",
			},
		},
	}
}

// Codex runs the Codex CLI exec subcommand.
func Codex() Definition {
	return Definition{
		ID:          constants.ProviderCodex,
		Command:     "codex",
		ToolName:    "codex",
		Description: "Run the Codex CLI non-interactively (codex exec) with the given prompt and return its answer.",
		BuildArgs: func(prompt string, opts map[string]any) []string {
			args := []string{"exec"}
			if BoolOption(opts, "full_auto", false) {
				args = append(args, "--full-auto")
			}
			if model := StringOption(opts, "model"); model != "" {
				args = append(args, "--model", model)
			}
			if sandbox := StringOption(opts, "sandbox"); sandbox != "" {
				args = append(args, "--sandbox", sandbox)
			}
			return append(args, "--skip-git-repo-check", "--", prompt)
		},
		ExtraProperties: map[string]Property{
			"full_auto": {
				Type:        constants.PropertyBoolean,
				Default:     false,
				Description: "Allow Codex to apply changes without asking (--full-auto).",
			},
			"model": {
				Type:        constants.PropertyString,
				Description: "Model name passed as --model.",
			},
			"sandbox": {
				Type:        constants.PropertyString,
				Description: "Sandbox policy for model-generated commands.",
				Enum:        []string{"read-only", "workspace-write", "danger-full-access"},
			},
		},
	}
}

// Gemini runs the Gemini CLI in prompt mode.
func Gemini() Definition {
	return Definition{
		ID:          constants.ProviderGemini,
		Command:     "gemini",
		ToolName:    "gemini",
		Description: "Run the Gemini CLI non-interactively (gemini --prompt) and return its answer.",
		BuildArgs: func(prompt string, opts map[string]any) []string {
			var args []string
			if BoolOption(opts, "sandbox", false) {
				args = append(args, "--sandbox")
			}
			if model := StringOption(opts, "model"); model != "" {
				args = append(args, "--model", model)
			}
			return append(args, "--prompt="+prompt)
		},
		ExtraProperties: map[string]Property{
			"sandbox": {
				Type:        constants.PropertyBoolean,
				Default:     false,
				Description: "Run tools inside the Gemini sandbox (--sandbox).",
			},
			"model": {
				Type:        constants.PropertyString,
				Description: "Model name passed as --model.",
			},
		},
	}
}
