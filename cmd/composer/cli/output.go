package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/deepnoodle-ai/composer/diag"
	"github.com/fatih/color"
)

var (
	headerStyle  = color.New(color.FgCyan, color.Bold)
	warningStyle = color.New(color.FgYellow)
	errorStyle   = color.New(color.FgRed, color.Bold)
	successStyle = color.New(color.FgGreen)
	mutedStyle   = color.New(color.FgHiBlack)
	addedStyle   = color.New(color.FgGreen)
	removedStyle = color.New(color.FgRed)
	hunkStyle    = color.New(color.FgCyan)
)

const (
	checkmark = "✓"
	bullet    = "•"
)

// PrintError reports a command failure.
func PrintError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Sprint("error: ")+err.Error())
}

func printDiagnostics(w io.Writer, diags []diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, warningStyle.Sprint("warning: ")+d.String())
	}
}

func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w, headerStyle.Sprint(title))
	fmt.Fprintln(w, mutedStyle.Sprint(strings.Repeat("─", len([]rune(title)))))
}

// colorizeDiff styles unified diff lines.
func colorizeDiff(diff string) string {
	lines := strings.SplitAfter(diff, "\n")
	var b strings.Builder
	inHunk := false
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "@@"):
			inHunk = true
			b.WriteString(hunkStyle.Sprint(line))
		case !inHunk:
			b.WriteString(headerStyle.Sprint(line))
		case strings.HasPrefix(line, "+"):
			b.WriteString(addedStyle.Sprint(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(removedStyle.Sprint(line))
		default:
			b.WriteString(line)
		}
	}
	return b.String()
}
