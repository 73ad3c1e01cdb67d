package section

import (
	"regexp"
	"strconv"
	"strings"
)

// numberedItemPattern captures the text of a top-level numbered item.
var numberedItemPattern = regexp.MustCompile(`^\d+\.\s+(.*)$`)

// listEntry is a numbered item or a line passed through between items.
type listEntry struct {
	item   bool
	key    string
	lines  []string
	source string
}

// mergeNumbered merges numbered lists from every section. Items start at an
// unindented "N. " line and continue over the indented lines that follow
// it; a blank line or a new item closes the current one. Items are
// deduplicated by their lower-cased text and renumbered from 1 in
// first-seen order. Lines outside any item, blank separators included,
// pass through verbatim in place.
//
// Indentation decides continuation, so an indented "1. " line belongs to the
// item above it even though it looks like a new item.
func mergeNumbered(sections []Section) (string, []string) {
	var (
		out       []string
		sources   sourceSet
		seenItems = make(map[string]bool)
		n         = 0
	)
	for _, s := range sections {
		entries := listEntries(s)
		if len(entries) > 0 && !entries[0].item && len(out) > 0 && out[len(out)-1] != "" {
			out = append(out, "")
		}
		for _, e := range entries {
			if !e.item {
				out = append(out, e.lines[0])
				if strings.TrimSpace(e.lines[0]) != "" {
					sources.add(e.source)
				}
				continue
			}
			if seenItems[e.key] {
				continue
			}
			seenItems[e.key] = true
			n++
			out = append(out, strconv.Itoa(n)+". "+e.lines[0])
			out = append(out, e.lines[1:]...)
			sources.add(e.source)
		}
	}

	body := strings.Join(collapseBlankLines(out), "\n")
	return withAttribution(body, sources.order), sources.order
}

// collapseBlankLines drops leading and trailing blank lines and keeps at
// most one blank line in a row.
func collapseBlankLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		blank := strings.TrimSpace(line) == ""
		if blank && (len(out) == 0 || out[len(out)-1] == "") {
			continue
		}
		if blank {
			line = ""
		}
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

func listEntries(s Section) []*listEntry {
	var (
		entries []*listEntry
		current *listEntry
	)
	closeItem := func() {
		if current != nil {
			entries = append(entries, current)
			current = nil
		}
	}
	passthrough := func(text string) {
		entries = append(entries, &listEntry{lines: []string{text}, source: s.Source})
	}

	for _, u := range splitUnits(s.Content) {
		if u.fenced {
			if current != nil && u.indented() {
				current.lines = append(current.lines, u.text)
				continue
			}
			closeItem()
			passthrough(u.text)
			continue
		}

		if isAttribution(u.text) {
			closeItem()
			continue
		}
		if strings.TrimSpace(u.text) == "" {
			closeItem()
			passthrough("")
			continue
		}
		if m := numberedItemPattern.FindStringSubmatch(u.text); m != nil {
			closeItem()
			text := strings.TrimSpace(m[1])
			current = &listEntry{
				item:   true,
				key:    strings.ToLower(text),
				lines:  []string{text},
				source: s.Source,
			}
			continue
		}
		if current != nil && u.indented() {
			current.lines = append(current.lines, u.text)
			continue
		}
		closeItem()
		passthrough(u.text)
	}
	closeItem()
	return entries
}
