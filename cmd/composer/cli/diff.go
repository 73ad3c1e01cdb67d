package cli

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	diffContextLines = 3
	generatedPrefix  = "*Generated: "
)

// unifiedDiff returns a unified diff from oldContent to newContent, or ""
// when they are equal.
func unifiedDiff(oldContent, newContent, oldName, newName string) (string, error) {
	if oldContent == newContent {
		return "", nil
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: oldName,
		ToFile:   newName,
		FromDate: "current",
		ToDate:   "merged",
		Context:  diffContextLines,
	}
	result, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("failed to generate diff: %w", err)
	}
	return result, nil
}

// keepGeneratedStamp swaps the generation timestamp of merged for the one
// already in current, so a rerun with no content changes diffs as equal.
func keepGeneratedStamp(current, merged string) string {
	old := strings.Split(current, "\n")
	stamp := lastGeneratedLine(old)
	lines := strings.Split(merged, "\n")
	i := lastGeneratedLine(lines)
	if stamp < 0 || i < 0 {
		return merged
	}
	lines[i] = old[stamp]
	return strings.Join(lines, "\n")
}

func lastGeneratedLine(lines []string) int {
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimRight(lines[i], "\r")
		if strings.HasPrefix(line, generatedPrefix) && strings.HasSuffix(line, "*") {
			return i
		}
	}
	return -1
}

// diffStat counts added and removed lines in a unified diff. Only the
// file header before the first hunk is skipped, so content lines that
// themselves start with "--" or "++" are counted.
func diffStat(diff string) (added, removed int) {
	inHunk := false
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			inHunk = true
		case !inHunk:
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}
