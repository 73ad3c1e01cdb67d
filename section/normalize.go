package section

import (
	"strings"
	"unicode"
)

// MatchKind selects how a synonym pattern is compared with a normalized title.
type MatchKind int

const (
	// MatchExact requires the normalized title to equal the pattern.
	MatchExact MatchKind = iota

	// MatchContains requires the normalized title to contain the pattern.
	MatchContains
)

// Synonym maps a normalized title phrase to a canonical bucket key.
type Synonym struct {
	Pattern   string
	Canonical string
	Match     MatchKind
}

// Canonical keys with special handling downstream.
const (
	DevelopmentAssistantKey = "development assistant"
	ProjectContextKey       = "project context"
)

// Synonyms is the table applied by NormalizeTitle. Entries are evaluated in
// order and the first match wins.
var Synonyms = []Synonym{
	{Pattern: "development assistant", Canonical: DevelopmentAssistantKey, Match: MatchContains},

	{Pattern: "project context", Canonical: ProjectContextKey},
	{Pattern: "project overview", Canonical: ProjectContextKey},
	{Pattern: "project description", Canonical: ProjectContextKey},
	{Pattern: "about this project", Canonical: ProjectContextKey},

	{Pattern: "breaking changes", Canonical: "breaking changes", Match: MatchContains},

	{Pattern: "project structure", Canonical: "project structure"},
	{Pattern: "directory structure", Canonical: "project structure"},
	{Pattern: "folder structure", Canonical: "project structure"},
	{Pattern: "file structure", Canonical: "project structure"},
	{Pattern: "file organization", Canonical: "project structure"},

	{Pattern: "common commands", Canonical: "common commands"},
	{Pattern: "useful commands", Canonical: "common commands"},
	{Pattern: "essential commands", Canonical: "common commands"},
	{Pattern: "development commands", Canonical: "common commands"},

	{Pattern: "security best practices", Canonical: "security best practices", Match: MatchContains},
	{Pattern: "security", Canonical: "security best practices"},
	{Pattern: "security guidelines", Canonical: "security best practices"},
	{Pattern: "security considerations", Canonical: "security best practices"},

	{Pattern: "performance", Canonical: "performance optimization"},
	{Pattern: "performance tips", Canonical: "performance optimization"},
	{Pattern: "performance optimization", Canonical: "performance optimization"},
	{Pattern: "performance best practices", Canonical: "performance optimization"},

	{Pattern: "testing", Canonical: "testing strategy"},
	{Pattern: "testing strategy", Canonical: "testing strategy"},
	{Pattern: "testing guidelines", Canonical: "testing strategy"},
	{Pattern: "testing best practices", Canonical: "testing strategy"},

	{Pattern: "troubleshooting", Canonical: "troubleshooting"},
	{Pattern: "troubleshooting guide", Canonical: "troubleshooting"},
	{Pattern: "common issues", Canonical: "troubleshooting"},

	{Pattern: "resources", Canonical: "resources"},
	{Pattern: "additional resources", Canonical: "resources"},
	{Pattern: "useful resources", Canonical: "resources"},
	{Pattern: "references", Canonical: "resources"},
	{Pattern: "further reading", Canonical: "resources"},
}

// NormalizeTitle returns the bucket key for a heading title: lower-cased,
// stripped to [a-z0-9 ], whitespace collapsed, then mapped through Synonyms.
func NormalizeTitle(title string) string {
	return Canonicalize(normalizeText(title), Synonyms)
}

// Canonicalize maps an already normalized key through table. Keys without a
// matching entry are returned unchanged.
func Canonicalize(key string, table []Synonym) string {
	if key == "" {
		return ""
	}
	for _, syn := range table {
		switch syn.Match {
		case MatchContains:
			if strings.Contains(key, syn.Pattern) {
				return syn.Canonical
			}
		default:
			if key == syn.Pattern {
				return syn.Canonical
			}
		}
	}
	return key
}

func normalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// lineKey is the comparison key for duplicate detection: case, whitespace
// and punctuation are ignored. Lines made only of punctuation (table rules,
// horizontal rules) compare by their trimmed text.
func lineKey(line string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(line) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return strings.TrimSpace(line)
	}
	return b.String()
}
