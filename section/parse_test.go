package section

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestParse(t *testing.T) {
	doc := `# Next.js 15 Development Assistant

You are an expert in Next.js 15.

## Project Structure

- app/ holds routes
- components/ holds UI

## Placeholder

### Common Commands ###
npm run dev
`
	sections, diags, err := Parse(doc, "nextjs-15", nil)
	require.NoError(t, err)
	require.Empty(t, diags)
	require.Len(t, sections, 4)

	require.Equal(t, "Next.js 15 Development Assistant", sections[0].Title)
	require.Equal(t, 1, sections[0].Level)
	require.Equal(t, "You are an expert in Next.js 15.", sections[0].Content)
	require.Equal(t, "nextjs-15", sections[0].Source)

	require.Equal(t, "Project Structure", sections[1].Title)
	require.Equal(t, 2, sections[1].Level)
	require.Equal(t, "- app/ holds routes\n- components/ holds UI", sections[1].Content)

	require.Equal(t, "Placeholder", sections[2].Title)
	require.Equal(t, "", sections[2].Content)
	require.True(t, sections[2].IsEmpty())

	require.Equal(t, "Common Commands", sections[3].Title)
	require.Equal(t, 3, sections[3].Level)
	require.Equal(t, "npm run dev", sections[3].Content)

	for _, s := range sections {
		require.Equal(t, 0, s.Priority)
		require.True(t, s.Mergeable)
	}
}

func TestParseSkipsEmptyTitles(t *testing.T) {
	doc := "# Title\nbody\n##   \norphan line\n## Next\nmore"
	sections, diags, err := Parse(doc, "react", nil)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	require.Equal(t, "body", sections[0].Content)
	require.Equal(t, "Next", sections[1].Title)
	require.Equal(t, "more", sections[1].Content)

	require.Len(t, diags, 1)
	require.Equal(t, "parser", diags[0].Component)
	require.Equal(t, "react", diags[0].Source)
	require.Contains(t, diags[0].Message, "line 3")
}

func TestParseClampsDeepHeadings(t *testing.T) {
	sections, _, err := Parse("######## Very Deep\ntext", "go", nil)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	require.Equal(t, MaxLevel, sections[0].Level)
	require.Equal(t, "Very Deep", sections[0].Title)
}

func TestParseIgnoresHeadingsInCodeFences(t *testing.T) {
	doc := "## Setup\n\n```bash\n# install deps\nnpm install\n```\n\n~~~\n## not a heading\n~~~\n## After"
	sections, _, err := Parse(doc, "node", nil)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	require.Equal(t, "Setup", sections[0].Title)
	require.Contains(t, sections[0].Content, "# install deps")
	require.Contains(t, sections[0].Content, "## not a heading")
	require.Equal(t, "After", sections[1].Title)
}

func TestParseAppliesMeta(t *testing.T) {
	meta := []Meta{
		{Title: "breaking changes", Priority: 15, Mergeable: boolPtr(false)},
		{Title: "Project Context", Priority: 10},
	}
	doc := "## Breaking Changes\nnone\n## PROJECT CONTEXT\nctx\n## Other\nx"
	sections, _, err := Parse(doc, "vue", meta)
	require.NoError(t, err)
	require.Len(t, sections, 3)

	require.Equal(t, 15, sections[0].Priority)
	require.False(t, sections[0].Mergeable)
	require.Equal(t, 10, sections[1].Priority)
	require.True(t, sections[1].Mergeable)
	require.Equal(t, 0, sections[2].Priority)
	require.True(t, sections[2].Mergeable)
}

func TestParseRequiresSource(t *testing.T) {
	_, _, err := Parse("# Title", "  ", nil)
	require.ErrorIs(t, err, ErrMissingSource)
}

func TestParseReportsDocumentsWithoutHeadings(t *testing.T) {
	sections, diags, err := Parse("just some text\n#hashtag", "plain", nil)
	require.NoError(t, err)
	require.Empty(t, sections)
	require.Len(t, diags, 1)
	require.Equal(t, "document has no headings", diags[0].Message)
}

func TestParseReportsPreamble(t *testing.T) {
	sections, diags, err := Parse("intro text\n\n# Title\nbody", "plain", nil)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	require.Len(t, diags, 1)
	require.Equal(t, "ignored text before the first heading", diags[0].Message)
}

func TestParseHeading(t *testing.T) {
	tests := []struct {
		line  string
		title string
		level int
		ok    bool
	}{
		{"# Title", "Title", 1, true},
		{"### Title ###", "Title", 3, true},
		{"## Learn C#", "Learn C#", 2, true},
		{"##", "", 2, true},
		{"#!/bin/sh", "", 0, false},
		{"not a heading", "", 0, false},
		{"#tag", "", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			title, level, ok := parseHeading(tc.line)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.title, title)
			require.Equal(t, tc.level, level)
		})
	}
}
