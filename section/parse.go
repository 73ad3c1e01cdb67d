package section

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/composer/diag"
)

var (
	// headingPattern matches ATX headings. A line of hashes alone is a
	// heading with an empty title.
	headingPattern = regexp.MustCompile(`^(#+)(?:[ \t]+(.*))?$`)

	// closingHashes matches an optional closing sequence: "## Title ##".
	closingHashes = regexp.MustCompile(`(?:^|[ \t]+)#+[ \t]*$`)
)

// Parse splits document into sections tagged with source. Section metadata
// is matched by case-insensitive title; unmatched sections get priority 0
// and are mergeable.
//
// Headings with empty titles are skipped and reported as diagnostics.
// Heading lines inside fenced code blocks never start a section. The only
// error is ErrMissingSource.
func Parse(document, source string, meta []Meta) ([]Section, []diag.Diagnostic, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil, ErrMissingSource
	}

	var (
		sections []Section
		diags    []diag.Diagnostic
		current  *Section
		body     []string
		preamble []string
		fence    fenceTracker
		idx      = newMetaIndex(meta)
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(strings.Join(body, "\n"))
		idx.apply(current)
		sections = append(sections, *current)
		current = nil
		body = nil
	}

	for i, line := range splitLines(document) {
		if !fence.inside(line) {
			if title, level, ok := parseHeading(line); ok {
				flush()
				if title == "" {
					diags = append(diags, diag.Diagnostic{
						Component: "parser",
						Source:    source,
						Item:      strings.TrimSpace(line),
						Message:   "skipped heading with empty title on line " + strconv.Itoa(i+1),
					})
					// Body lines up to the next heading have no section.
					current = nil
					body = nil
					continue
				}
				current = &Section{Title: title, Level: level, Source: source}
				continue
			}
		}
		if current != nil {
			body = append(body, line)
		} else if len(sections) == 0 {
			preamble = append(preamble, line)
		}
	}
	flush()

	if len(sections) == 0 && strings.TrimSpace(document) != "" {
		diags = append(diags, diag.Diagnostic{
			Component: "parser",
			Source:    source,
			Message:   "document has no headings",
		})
	} else if strings.TrimSpace(strings.Join(preamble, "\n")) != "" {
		diags = append(diags, diag.Diagnostic{
			Component: "parser",
			Source:    source,
			Message:   "ignored text before the first heading",
		})
	}
	return sections, diags, nil
}

// parseHeading returns the title and clamped level of an ATX heading line.
func parseHeading(line string) (string, int, bool) {
	m := headingPattern.FindStringSubmatch(strings.TrimRight(line, " \t"))
	if m == nil {
		return "", 0, false
	}
	level := len(m[1])
	if level > MaxLevel {
		level = MaxLevel
	}
	title := closingHashes.ReplaceAllString(m[2], "")
	return strings.TrimSpace(title), level, true
}
