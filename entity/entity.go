// Package entity merges the named entities of configuration bundles:
// agents, slash commands, and hooks. Entities are keyed by normalized name.
// Agents with the same key are combined; commands and hooks are overridden
// by the last bundle that defines them.
package entity

import (
	"strings"
	"unicode"
)

// HookType distinguishes executable hook scripts from hook configuration
// files.
type HookType string

const (
	HookTypeScript HookType = "script"
	HookTypeConfig HookType = "config"
)

// Agent is a subagent definition.
type Agent struct {
	Name        string
	Description string
	Tools       []string
	Model       string

	// Content is the agent's system prompt body, without frontmatter.
	Content string

	// Source names the bundle the agent came from.
	Source string
}

// Command is a slash command definition.
type Command struct {
	Name         string
	Description  string
	AllowedTools []string
	ArgumentHint string
	Model        string
	Content      string
	Source       string
}

// Hook is a hook script or hook configuration file.
type Hook struct {
	Name        string
	Description string
	Type        HookType
	Content     string
	Source      string
}

// NormalizeName returns the merge key for an entity name: the letters and
// digits of name, lower-cased. "code-reviewer", "Code Reviewer" and
// "code.reviewer" share the key "codereviewer".
func NormalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
