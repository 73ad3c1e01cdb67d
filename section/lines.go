package section

import "strings"

// subsection collects the unique lines under one "###" label.
type subsection struct {
	label string
	lines []string
	seen  map[string]bool
}

// mergeLines walks every section's lines in aggregation order, filing each
// non-empty line under the most recent "###" label. Lines that repeat within
// a subsection (ignoring case, whitespace and punctuation) are dropped, as
// are attribution lines. Fenced code blocks are compared as whole blocks.
// Subsections that retain no lines are omitted.
func mergeLines(sections []Section) (string, []string) {
	root := &subsection{seen: make(map[string]bool)}
	order := []*subsection{root}
	byLabel := map[string]*subsection{"": root}
	var sources sourceSet

	for _, s := range sections {
		current := root
		for _, u := range splitUnits(s.Content) {
			trimmed := strings.TrimSpace(u.text)
			if trimmed == "" {
				continue
			}
			if !u.fenced && subheadingPattern.MatchString(trimmed) {
				key := strings.ToLower(strings.Join(strings.Fields(trimmed), " "))
				sub, ok := byLabel[key]
				if !ok {
					sub = &subsection{label: trimmed, seen: make(map[string]bool)}
					byLabel[key] = sub
					order = append(order, sub)
				}
				current = sub
				continue
			}
			if !u.fenced && isAttribution(u.text) {
				continue
			}

			key := trimmed
			if !u.fenced {
				key = lineKey(u.text)
			}
			if current.seen[key] {
				continue
			}
			current.seen[key] = true
			current.lines = append(current.lines, strings.TrimRight(u.text, " \t"))
			sources.add(s.Source)
		}
	}

	var blocks []string
	for _, sub := range order {
		if len(sub.lines) == 0 {
			continue
		}
		body := strings.Join(sub.lines, "\n")
		if sub.label != "" {
			body = sub.label + "\n" + body
		}
		blocks = append(blocks, body)
	}
	return withAttribution(strings.Join(blocks, "\n\n"), sources.order), sources.order
}
