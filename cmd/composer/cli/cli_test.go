package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/deepnoodle-ai/composer/log"
	"github.com/fatih/color"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

// testBundles creates two bundles that share a Code Style section and a
// reviewer agent.
func testBundles(t *testing.T) (string, string) {
	root := t.TempDir()
	one := filepath.Join(root, "one")
	two := filepath.Join(root, "two")

	writeFile(t, one, "bundle.yaml", "name: one\nversion: 1.0.0\n")
	writeFile(t, one, "CLAUDE.md", "# Code Style\n\nUse strict mode.\n")
	writeFile(t, one, "agents/reviewer.md", "---\nname: reviewer\ndescription: Reviews code\ntools: Read\n---\nCheck types.\n")
	writeFile(t, one, "settings.json", `{"permissions": {"allow": ["Read", "Write"]}}`)

	writeFile(t, two, "bundle.yaml", "name: two\n")
	writeFile(t, two, "CLAUDE.md", "# Code Style\n\nPrefer hooks.\n")
	writeFile(t, two, "agents/reviewer.md", "---\nname: reviewer\ntools: Grep\n---\nCheck hooks.\n")
	writeFile(t, two, "commands/deploy.md", "---\ndescription: Deploy\n---\nShip it.\n")
	writeFile(t, two, "settings.json", `{"permissions": {"allow": ["Write", "Exec"]}}`)
	return one, two
}

func newTestApp() (*app, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	a := newApp()
	a.stdout = &stdout
	a.stderr = &stderr
	return a, &stdout, &stderr
}

func TestNewApp(t *testing.T) {
	require.NotNil(t, NewApp("test"))
}

func TestMergeToStdout(t *testing.T) {
	one, two := testBundles(t)
	a, stdout, _ := newTestApp()
	require.NoError(t, a.merge(context.Background(), []string{one, two}, mergeOptions{}))
	require.Contains(t, stdout.String(), "# Code Style\n\n*Combined from: one, two*")
	require.Contains(t, stdout.String(), "Use strict mode.\nPrefer hooks.")
	require.Contains(t, stdout.String(), "- **one** v1.0.0\n- **two**\n")
}

func TestMergeToFileAndDiff(t *testing.T) {
	one, two := testBundles(t)
	output := filepath.Join(t.TempDir(), "out", "CLAUDE.md")

	a, _, stderr := newTestApp()
	require.NoError(t, a.merge(context.Background(), []string{one, two}, mergeOptions{output: output}))
	require.Contains(t, stderr.String(), "wrote "+output)
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Contains(t, string(data), "Prefer hooks.")

	writeFile(t, two, "CLAUDE.md", "# Code Style\n\nPrefer server components.\n")
	a, stdout, stderr := newTestApp()
	require.NoError(t, a.merge(context.Background(), []string{one, two}, mergeOptions{output: output, diff: true}))
	require.Contains(t, stdout.String(), "-Prefer hooks.\n")
	require.Contains(t, stdout.String(), "+Prefer server components.\n")
	require.Contains(t, stderr.String(), "1 additions, 1 deletions")

	// The diff does not touch the file.
	unchanged, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Equal(t, data, unchanged)
}

func TestMergeDiffUpToDateAfterClockMoves(t *testing.T) {
	one, two := testBundles(t)
	output := filepath.Join(t.TempDir(), "CLAUDE.md")
	opts := mergeOptions{output: output}

	a, _, _ := newTestApp()
	a.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	require.NoError(t, a.merge(context.Background(), []string{one, two}, opts))

	a, stdout, stderr := newTestApp()
	a.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	opts.diff = true
	require.NoError(t, a.merge(context.Background(), []string{one, two}, opts))
	require.Empty(t, stdout.String())
	require.Contains(t, stderr.String(), output+" is up to date")
}

func TestMergeFlagErrors(t *testing.T) {
	one, _ := testBundles(t)
	a, _, _ := newTestApp()
	ctx := context.Background()

	err := a.merge(ctx, []string{one}, mergeOptions{diff: true})
	require.EqualError(t, err, "--diff requires --output")

	err = a.merge(ctx, []string{one}, mergeOptions{output: "x.md", diff: true, watch: true})
	require.EqualError(t, err, "--diff cannot be combined with --watch")

	err = a.merge(ctx, []string{one}, mergeOptions{watch: true})
	require.EqualError(t, err, "--debounce must be positive")

	err = a.merge(ctx, []string{filepath.Join(t.TempDir(), "missing")}, mergeOptions{})
	require.Error(t, err)
}

func TestInspect(t *testing.T) {
	one, two := testBundles(t)
	a, stdout, _ := newTestApp()
	require.NoError(t, a.inspect([]string{one, two}, nil))
	require.Contains(t, stdout.String(), "Sections")
	require.Contains(t, stdout.String(), "| # | Section")
	require.Contains(t, stdout.String(), "| 1 | Code Style | line-dedup |        0 | one, two |")
	require.Contains(t, stdout.String(), "1 agents, 1 commands, 0 hooks")
}

func TestEntities(t *testing.T) {
	one, two := testBundles(t)
	a, _, _ := newTestApp()
	out, err := a.load([]string{one, two}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printEntities(&buf, out))
	stdout := buf.String()
	require.Contains(t, stdout, "agents/reviewer.md")
	require.Contains(t, stdout, "name: reviewer")
	require.Contains(t, stdout, "tools: Read, Grep")
	require.Contains(t, stdout, "### From `one`:\n\nCheck types.")
	require.Contains(t, stdout, "commands/deploy.md")
	require.Contains(t, stdout, "settings.json")
	require.Contains(t, stdout, `"Read",`)
	require.Contains(t, stdout, `"Exec"`)
}

func TestEntitiesExclude(t *testing.T) {
	one, two := testBundles(t)
	a, _, _ := newTestApp()
	out, err := a.load([]string{one, two}, []string{"commands/**"})
	require.NoError(t, err)
	require.Empty(t, out.Commands)
	require.Len(t, out.Agents, 1)
}

func TestLogLevelFlag(t *testing.T) {
	defer log.SetDefaultLevel(log.LevelWarn)
	one, _ := testBundles(t)
	a, _, stderr := newTestApp()
	a.setLogLevel("debug")
	require.NoError(t, a.merge(context.Background(), []string{one}, mergeOptions{}))
	require.Contains(t, stderr.String(), "loaded bundle")
}

func TestLogLevelNoneKeepsLoggingOff(t *testing.T) {
	one, _ := testBundles(t)
	a, _, stderr := newTestApp()
	a.setLogLevel("none")
	require.NoError(t, a.merge(context.Background(), []string{one}, mergeOptions{}))
	require.NotContains(t, stderr.String(), "loaded bundle")
}

func TestUnifiedDiff(t *testing.T) {
	d, err := unifiedDiff("a\nb\n", "a\nb\n", "x", "x")
	require.NoError(t, err)
	require.Empty(t, d)

	d, err = unifiedDiff("a\nb\n---\n", "a\nc\n---\n", "old.md", "new.md")
	require.NoError(t, err)
	require.Contains(t, d, "--- old.md")
	require.Contains(t, d, "+++ new.md")
	added, removed := diffStat(d)
	require.Equal(t, 1, added)
	require.Equal(t, 1, removed)
	require.Equal(t, d, colorizeDiff(d))
}

func TestDiffStatCountsDashedContentLines(t *testing.T) {
	d, err := unifiedDiff("a\n-- old note\n", "a\n++ new note\n--- rule\n", "x.md", "x.md")
	require.NoError(t, err)
	added, removed := diffStat(d)
	require.Equal(t, 2, added)
	require.Equal(t, 1, removed)
}

func TestKeepGeneratedStamp(t *testing.T) {
	current := "# A\n\nBody.\n\n*Generated: 2026-01-02T03:04:05Z*\n*Generated by composer*\n"
	merged := "# A\n\nBody.\n\n*Generated: 2026-05-06T07:08:09Z*\n*Generated by composer*\n"
	require.Equal(t, current, keepGeneratedStamp(current, merged))

	changed := "# A\n\nNew body.\n\n*Generated: 2026-05-06T07:08:09Z*\n*Generated by composer*\n"
	require.Equal(t,
		"# A\n\nNew body.\n\n*Generated: 2026-01-02T03:04:05Z*\n*Generated by composer*\n",
		keepGeneratedStamp(current, changed))

	require.Equal(t, merged, keepGeneratedStamp("", merged))
	require.Equal(t, "no stamp\n", keepGeneratedStamp(current, "no stamp\n"))
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CLAUDE.md")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	require.NoError(t, writeFileAtomic(path, []byte("new")))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "new", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestIsBundleFile(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "CLAUDE.md")
	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(dir, "b", "CLAUDE.md"), true},
		{filepath.Join(dir, "b", "agents", "x.md"), true},
		{filepath.Join(dir, "b", "bundle.yaml"), true},
		{filepath.Join(dir, "b", "settings.json"), true},
		{filepath.Join(dir, "b", "hooks", "format.sh"), true},
		{filepath.Join(dir, "b", "notes.txt"), false},
		{filepath.Join(dir, "b", ".composer-123"), false},
		{filepath.Join(dir, "b", "CLAUDE.md~"), false},
		{output, false},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			require.Equal(t, tt.want, isBundleFile(tt.path, output))
		})
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	one, _ := testBundles(t)
	a, _, stderr := newTestApp()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := a.watch(ctx, []string{one}, mergeOptions{debounce: time.Millisecond})
	require.NoError(t, err)
	require.Contains(t, stderr.String(), "watching 1 bundles")
}

func textResult(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestMCPMergeBundles(t *testing.T) {
	one, two := testBundles(t)
	a, _, _ := newTestApp()

	var req mcp.CallToolRequest
	req.Params.Arguments = map[string]any{"dirs": []any{one, two}}
	res, err := a.handleMergeBundles(context.Background(), req)
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Contains(t, textResult(t, res), "*Combined from: one, two*")

	req.Params.Arguments = map[string]any{"dirs": []any{one, two}, "entities": true}
	res, err = a.handleMergeBundles(context.Background(), req)
	require.NoError(t, err)
	require.Contains(t, textResult(t, res), `"markdown"`)
	require.Contains(t, textResult(t, res), `"Exec"`)

	req.Params.Arguments = map[string]any{}
	res, err = a.handleMergeBundles(context.Background(), req)
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestMCPNormalizeTitle(t *testing.T) {
	a, _, _ := newTestApp()

	var req mcp.CallToolRequest
	req.Params.Arguments = map[string]any{"title": "Project Overview"}
	res, err := a.handleNormalizeTitle(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "project context", textResult(t, res))

	req.Params.Arguments = map[string]any{"title": "!!!"}
	res, err = a.handleNormalizeTitle(context.Background(), req)
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestNewMCPServer(t *testing.T) {
	s := newMCPServer(newApp(), "test")
	require.NotNil(t, s)
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, os.ErrNotExist)
	require.True(t, strings.HasPrefix(buf.String(), "error: "))
}
