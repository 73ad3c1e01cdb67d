package section

import (
	"regexp"
	"strings"
)

// Strategy names the algorithm used to produce a bucket's body.
type Strategy string

const (
	// StrategySelectBest picks one section outright.
	StrategySelectBest Strategy = "select-best"

	// StrategyContext concatenates one description block per source.
	StrategyContext Strategy = "context"

	// StrategyNumbered merges numbered-list items and renumbers them.
	StrategyNumbered Strategy = "numbered-list"

	// StrategyLines merges unique lines grouped by subsection.
	StrategyLines Strategy = "line-dedup"
)

// AttributionPrefix starts the line naming the sources of a combined body.
const AttributionPrefix = "*Combined from:"

// ContextFraming introduces a project context combined from several sources.
const ContextFraming = "This is a comprehensive project that combines multiple technologies:"

var (
	numberedLinePattern = regexp.MustCompile(`^\d+\.\s`)
	subheadingPattern   = regexp.MustCompile(`^#{3,}\s`)
	anyHeadingPattern   = regexp.MustCompile(`^#{1,6}(\s|$)`)
)

// Merged is the result of merging one bucket.
type Merged struct {
	// Representative supplies the heading title and level. It is always the
	// select-best winner, whichever strategy produced the body. When the
	// winner is title-only, the body comes from the best section with
	// content.
	Representative Section

	// Strategy is the algorithm that produced Content.
	Strategy Strategy

	// Content is the merged body, without the heading.
	Content string

	// Sources lists the sources whose text survived into Content.
	Sources []string
}

// SelectBest returns the section with the highest priority, breaking ties by
// longer content and then by aggregation order.
func SelectBest(sections []Section) (Section, bool) {
	if len(sections) == 0 {
		return Section{}, false
	}
	best := sections[0]
	for _, s := range sections[1:] {
		if s.Priority > best.Priority ||
			(s.Priority == best.Priority && len(s.Content) > len(best.Content)) {
			best = s
		}
	}
	return best, true
}

// ChooseStrategy returns the strategy MergeBucket applies to b.
func ChooseStrategy(b Bucket) Strategy {
	if !b.Mergeable() || len(b.Sources()) < 2 {
		return StrategySelectBest
	}
	if b.Key == ProjectContextKey {
		return StrategyContext
	}
	if hasNumberedList(b.Sections) {
		return StrategyNumbered
	}
	return StrategyLines
}

// MergeBucket merges the sections of b into one body.
func MergeBucket(b Bucket) Merged {
	rep, _ := SelectBest(b.Sections)
	merged := Merged{Representative: rep, Strategy: ChooseStrategy(b)}

	switch merged.Strategy {
	case StrategyContext:
		merged.Content, merged.Sources = mergeContext(b.Sections)
	case StrategyNumbered:
		merged.Content, merged.Sources = mergeNumbered(b.Sections)
	case StrategyLines:
		merged.Content, merged.Sources = mergeLines(b.Sections)
	default:
		body := bodySection(b.Sections, rep)
		merged.Content = body.Content
		merged.Sources = []string{body.Source}
	}
	return merged
}

// bodySection returns rep when it has content, otherwise the best section
// that does. A title-only winner never hides another source's text.
func bodySection(sections []Section, rep Section) Section {
	if !rep.IsEmpty() {
		return rep
	}
	var withContent []Section
	for _, s := range sections {
		if !s.IsEmpty() {
			withContent = append(withContent, s)
		}
	}
	if best, ok := SelectBest(withContent); ok {
		return best
	}
	return rep
}

// Attribution renders the attribution line for sources.
func Attribution(sources []string) string {
	return AttributionPrefix + " " + strings.Join(sources, ", ") + "*"
}

func isAttribution(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), AttributionPrefix)
}

// withAttribution prepends the attribution line when at least two distinct
// sources contributed to body.
func withAttribution(body string, sources []string) string {
	if len(sources) < 2 {
		return body
	}
	return Attribution(sources) + "\n\n" + body
}

// sourceSet records distinct sources in first-seen order.
type sourceSet struct {
	order []string
	seen  map[string]bool
}

func (s *sourceSet) add(source string) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[source] {
		return
	}
	s.seen[source] = true
	s.order = append(s.order, source)
}

// mergeContext collects one description block per source. A single block is
// used verbatim; several are framed and concatenated as paragraphs.
func mergeContext(sections []Section) (string, []string) {
	var (
		sources []string
		blocks  = make(map[string][]string)
	)
	for _, s := range sections {
		var lines []string
		for _, u := range splitUnits(s.Content) {
			if !u.fenced && (anyHeadingPattern.MatchString(u.text) || isAttribution(u.text)) {
				continue
			}
			lines = append(lines, u.text)
		}
		text := strings.TrimSpace(strings.Join(lines, "\n"))
		if text == "" {
			continue
		}
		if _, ok := blocks[s.Source]; !ok {
			sources = append(sources, s.Source)
		}
		blocks[s.Source] = append(blocks[s.Source], text)
	}

	var (
		paragraphs  []string
		contributed []string
		seen        = make(map[string]bool)
	)
	for _, source := range sources {
		text := strings.Join(blocks[source], "\n\n")
		key := lineKey(text)
		if seen[key] {
			continue
		}
		seen[key] = true
		paragraphs = append(paragraphs, text)
		contributed = append(contributed, source)
	}

	switch len(paragraphs) {
	case 0:
		return "", nil
	case 1:
		return paragraphs[0], contributed
	}
	body := ContextFraming + "\n\n" + strings.Join(paragraphs, "\n\n")
	return withAttribution(body, contributed), contributed
}

func hasNumberedList(sections []Section) bool {
	for _, s := range sections {
		for _, u := range splitUnits(s.Content) {
			if !u.fenced && numberedLinePattern.MatchString(u.text) {
				return true
			}
		}
	}
	return false
}
