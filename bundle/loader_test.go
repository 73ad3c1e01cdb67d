package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/deepnoodle-ai/composer/entity"
	"github.com/deepnoodle-ai/composer/section"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

const manifest = `name: nextjs-15
version: 1.2.0
description: Next.js 15 App Router
sections:
  - title: Breaking Changes
    priority: 15
    mergeable: false
engines:
  node: ">=18.0.0"
peerDependencies:
  react: "^19.0.0"
`

func newBundleDir(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, dir, "bundle.yaml", manifest)
	writeFile(t, dir, "CLAUDE.md", "# Project Context\n\nNext.js.\n")
	writeFile(t, dir, "agents/reviewer.md", "---\nname: reviewer\ndescription: Reviews code\ntools: Read, Grep\n---\n\nReview it.\n")
	writeFile(t, dir, "agents/drafts/wip.md", "---\ndescription: draft\n---\nWIP\n")
	writeFile(t, dir, "agents/.hidden.md", "hidden")
	writeFile(t, dir, "commands/deploy.md", "---\ndescription: Deploy\n---\nDeploy now.\n")
	writeFile(t, dir, "commands/git/commit.md", "Commit changes.\n")
	writeFile(t, dir, "hooks/format.sh", "#!/bin/sh\nprettier --write .\n")
	writeFile(t, dir, "hooks/hooks.json", "{\"PostToolUse\": []}\n")
	writeFile(t, dir, "settings.json", `{"permissions": {"allow": ["Read"]}, "model": "opus"}`)
	return dir
}

func TestLoad(t *testing.T) {
	dir := newBundleDir(t)
	loader, err := NewLoader(LoadOptions{Exclude: []string{"agents/drafts/**"}})
	require.NoError(t, err)

	b, err := loader.Load(dir)
	require.NoError(t, err)

	require.Equal(t, "nextjs-15", b.Metadata.Name)
	require.Equal(t, "1.2.0", b.Metadata.Version)
	require.Equal(t, "Next.js 15 App Router", b.Metadata.Description)
	require.Len(t, b.Metadata.Sections, 1)
	require.Equal(t, section.Meta{Title: "Breaking Changes", Priority: 15, Mergeable: b.Metadata.Sections[0].Mergeable}, b.Metadata.Sections[0])
	require.False(t, b.Metadata.Sections[0].IsMergeable())
	require.Equal(t, map[string]string{"node": ">=18.0.0"}, b.Metadata.Engines)
	require.Equal(t, map[string]string{"react": "^19.0.0"}, b.Metadata.PeerDependencies)
	require.Equal(t, "# Project Context\n\nNext.js.\n", b.Content)

	require.Equal(t, []entity.Agent{{
		Name:        "reviewer",
		Description: "Reviews code",
		Tools:       []string{"Read", "Grep"},
		Content:     "Review it.",
		Source:      "nextjs-15",
	}}, b.Agents)

	require.Len(t, b.Commands, 2)
	require.Equal(t, "deploy", b.Commands[0].Name)
	require.Equal(t, "Deploy", b.Commands[0].Description)
	require.Equal(t, "git:commit", b.Commands[1].Name)
	require.Equal(t, "Commit changes.", b.Commands[1].Content)

	require.Equal(t, []entity.Hook{
		{Name: "format.sh", Type: entity.HookTypeScript, Content: "#!/bin/sh\nprettier --write .", Source: "nextjs-15"},
		{Name: "hooks.json", Type: entity.HookTypeConfig, Content: "{\"PostToolUse\": []}", Source: "nextjs-15"},
	}, b.Hooks)

	require.NotNil(t, b.Settings)
	require.Equal(t, []string{"Read"}, b.Settings.Permissions.Allow)
	require.Equal(t, "opus", b.Settings.Rules["model"])
}

func TestLoadWithoutManifest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-bundle")
	writeFile(t, dir, "CLAUDE.md", "# Notes\n\nHello.")

	b, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "my-bundle", b.Metadata.Name)
	require.Empty(t, b.Agents)
	require.Nil(t, b.Settings)
}

func TestLoadCustomDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bundle.yml", "name: custom\ndocument: AGENTS.md\n")
	writeFile(t, dir, "AGENTS.md", "# Agents\n\nBody.")

	b, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "custom", b.Metadata.Name)
	require.Equal(t, "# Agents\n\nBody.", b.Content)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing document", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "bundle.yaml", "name: empty\n")
		_, err := Load(dir)
		require.ErrorIs(t, err, ErrNoDocument)
	})

	t.Run("unknown manifest field", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "bundle.yaml", "name: x\ncolour: blue\n")
		writeFile(t, dir, "CLAUDE.md", "# A\n\nb")
		_, err := Load(dir)
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid manifest")
	})

	t.Run("bad agent frontmatter", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "CLAUDE.md", "# A\n\nb")
		writeFile(t, dir, "agents/broken.md", "---\ndescription: never closed\n")
		_, err := Load(dir)
		require.ErrorIs(t, err, entity.ErrUnterminatedFrontmatter)
		require.Contains(t, err.Error(), "agents/broken.md")
	})

	t.Run("not a directory", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "file.txt", "x")
		_, err := Load(filepath.Join(dir, "file.txt"))
		require.Error(t, err)
	})

	t.Run("bad exclude pattern", func(t *testing.T) {
		_, err := NewLoader(LoadOptions{Exclude: []string{"agents/["}})
		require.Error(t, err)
	})
}

func TestLoadAll(t *testing.T) {
	first := filepath.Join(t.TempDir(), "first")
	second := filepath.Join(t.TempDir(), "second")
	writeFile(t, first, "CLAUDE.md", "# A\n\none")
	writeFile(t, second, "CLAUDE.md", "# A\n\ntwo")

	loader, err := NewLoader(LoadOptions{})
	require.NoError(t, err)
	bundles, err := loader.LoadAll([]string{second, first})
	require.NoError(t, err)
	require.Len(t, bundles, 2)
	require.Equal(t, "second", bundles[0].Metadata.Name)
	require.Equal(t, "first", bundles[1].Metadata.Name)
}

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(manifest))
	require.NoError(t, err)
	meta := m.Metadata()
	require.Equal(t, "nextjs-15", meta.Name)
	require.Empty(t, m.Document)
}
