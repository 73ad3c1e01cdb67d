package section

import "strings"

// fenceTracker follows fenced code blocks line by line so that heading-like
// lines inside code (shell comments, for example) are left alone.
type fenceTracker struct {
	marker string
}

// inside reports whether line is part of a fenced block, including the
// opening and closing fence lines, and advances the tracker.
func (f *fenceTracker) inside(line string) bool {
	trimmed := strings.TrimSpace(line)
	if f.marker != "" {
		if closesFence(trimmed, f.marker) {
			f.marker = ""
		}
		return true
	}
	if m := openFence(trimmed); m != "" {
		f.marker = m
		return true
	}
	return false
}

// open reports whether a fenced block is currently open.
func (f *fenceTracker) open() bool {
	return f.marker != ""
}

// openFence returns the fence run (``` or ~~~, possibly longer) that opens a
// fenced block on this line, or "".
func openFence(trimmed string) string {
	for _, ch := range []byte{'`', '~'} {
		n := 0
		for n < len(trimmed) && trimmed[n] == ch {
			n++
		}
		if n < 3 {
			continue
		}
		if ch == '`' && strings.ContainsRune(trimmed[n:], '`') {
			return ""
		}
		return trimmed[:n]
	}
	return ""
}

func closesFence(trimmed, marker string) bool {
	return len(trimmed) >= len(marker) && strings.Trim(trimmed, marker[:1]) == ""
}

// unit is either a single line or a whole fenced code block.
type unit struct {
	text   string
	fenced bool
}

// indented reports whether the unit starts with whitespace.
func (u unit) indented() bool {
	return u.text != "" && (u.text[0] == ' ' || u.text[0] == '\t')
}

// splitUnits splits content into units. An unterminated fence runs to the
// end of the content.
func splitUnits(content string) []unit {
	var (
		out   []unit
		block []string
		fence fenceTracker
	)
	for _, line := range splitLines(content) {
		if fence.inside(line) {
			block = append(block, line)
			if !fence.open() {
				out = append(out, unit{text: strings.Join(block, "\n"), fenced: true})
				block = nil
			}
			continue
		}
		out = append(out, unit{text: line})
	}
	if len(block) > 0 {
		out = append(out, unit{text: strings.Join(block, "\n"), fenced: true})
	}
	return out
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}
