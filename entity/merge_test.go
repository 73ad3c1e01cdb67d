package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"code-reviewer", "codereviewer"},
		{"Code Reviewer", "codereviewer"},
		{"  code_reviewer  ", "codereviewer"},
		{"code.reviewer", "codereviewer"},
		{"git:commit", "gitcommit"},
		{"-reviewer-", "reviewer"},
		{"Écrivain 2", "écrivain2"},
		{"--", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.want, NormalizeName(tt.input))
		})
	}
}

func TestMergeAgents(t *testing.T) {
	t.Run("combines agents with the same name", func(t *testing.T) {
		agents := MergeAgents([][]Agent{
			{{Name: "reviewer", Description: "Reviews code", Tools: []string{"Read", "Grep"}, Content: "Check types.", Source: "a"}},
			{{Name: "Reviewer", Description: "Reviews everything", Tools: []string{"Grep", "Bash"}, Content: "Check tests.", Source: "b"}},
		})
		require.Len(t, agents, 1)
		agent := agents[0]
		require.Equal(t, "reviewer", agent.Name)
		require.Equal(t, "Reviews everything", agent.Description)
		require.Equal(t, []string{"Read", "Grep", "Bash"}, agent.Tools)
		require.Equal(t, "### From `a`:\n\nCheck types.\n\n### From `b`:\n\nCheck tests.", agent.Content)
		require.Equal(t, "a, b", agent.Source)
	})

	t.Run("keeps earlier description when later is empty", func(t *testing.T) {
		agents := MergeAgents([][]Agent{
			{{Name: "x", Description: "first", Content: "one", Source: "a"}},
			{{Name: "x", Content: "two", Source: "b"}},
		})
		require.Equal(t, "first", agents[0].Description)
	})

	t.Run("single agent is unchanged", func(t *testing.T) {
		in := Agent{Name: "solo", Description: "d", Tools: []string{"Read"}, Model: "sonnet", Content: "Body.", Source: "a"}
		agents := MergeAgents([][]Agent{{in}})
		require.Equal(t, []Agent{in}, agents)
	})

	t.Run("identical bodies are not repeated", func(t *testing.T) {
		agents := MergeAgents([][]Agent{
			{{Name: "x", Content: "Same.", Source: "a"}},
			{{Name: "x", Content: "Same.", Source: "b"}},
		})
		require.Equal(t, "Same.", agents[0].Content)
		require.Equal(t, "a", agents[0].Source)
	})

	t.Run("first seen order and nameless agents skipped", func(t *testing.T) {
		agents := MergeAgents([][]Agent{
			{{Name: "b", Source: "1"}, {Name: "", Source: "1"}},
			{{Name: "a", Source: "2"}, {Name: "b", Source: "2"}},
		})
		require.Len(t, agents, 2)
		require.Equal(t, "b", agents[0].Name)
		require.Equal(t, "a", agents[1].Name)
	})
}

func TestMergeCommands(t *testing.T) {
	commands := MergeCommands([][]Command{
		{
			{Name: "deploy", Description: "old deploy", AllowedTools: []string{"Bash"}, Content: "old", Source: "a"},
			{Name: "lint", Content: "lint", Source: "a"},
		},
		{
			{Name: "Deploy", Description: "new deploy", Content: "new", Source: "b"},
		},
	})
	require.Equal(t, []Command{
		{Name: "Deploy", Description: "new deploy", Content: "new", Source: "b"},
		{Name: "lint", Content: "lint", Source: "a"},
	}, commands)
}

func TestMergeCommandsIgnoresPunctuationInNames(t *testing.T) {
	commands := MergeCommands([][]Command{
		{{Name: "code-reviewer", Content: "first", Source: "a"}},
		{{Name: "codereviewer", Content: "second", Source: "b"}},
		{{Name: "code.reviewer", Content: "third", Source: "c"}},
	})
	require.Equal(t, []Command{
		{Name: "code.reviewer", Content: "third", Source: "c"},
	}, commands)
}

func TestMergeAgentsIgnoresPunctuationInNames(t *testing.T) {
	agents := MergeAgents([][]Agent{
		{{Name: "code_reviewer", Content: "Check types.", Source: "a"}},
		{{Name: "Code Reviewer", Content: "Check tests.", Source: "b"}},
	})
	require.Len(t, agents, 1)
	require.Equal(t, "code_reviewer", agents[0].Name)
	require.Equal(t, "a, b", agents[0].Source)
}

func TestMergeHooks(t *testing.T) {
	hooks := MergeHooks([][]Hook{
		{{Name: "format", Type: HookTypeScript, Content: "prettier", Source: "a"}},
		{{Name: "format", Type: HookTypeConfig, Content: "{}", Source: "b"}},
		{{Name: "notify", Type: HookTypeScript, Content: "say done", Source: "c"}},
	})
	require.Len(t, hooks, 2)
	require.Equal(t, HookTypeConfig, hooks[0].Type)
	require.Equal(t, "b", hooks[0].Source)
	require.Equal(t, "notify", hooks[1].Name)
}
