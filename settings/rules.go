package settings

import (
	"strings"

	"github.com/gobwas/glob"
)

// Rule is a parsed permission pattern. "Bash(go build:*)" parses to tool
// "Bash" with specifier "go build:*"; "WebSearch" has no specifier.
type Rule struct {
	Tool      string
	Specifier string
}

// ParseRule parses a permission pattern. It reports false for blank
// patterns.
func ParseRule(pattern string) (Rule, bool) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return Rule{}, false
	}
	if idx := strings.Index(pattern, "("); idx > 0 && strings.HasSuffix(pattern, ")") {
		return Rule{
			Tool:      strings.TrimSpace(pattern[:idx]),
			Specifier: strings.TrimSpace(pattern[idx+1 : len(pattern)-1]),
		}, true
	}
	return Rule{Tool: pattern}, true
}

func (r Rule) String() string {
	if r.Specifier == "" {
		return r.Tool
	}
	return r.Tool + "(" + r.Specifier + ")"
}

// Covers reports whether every use permitted by other is also matched by r.
func (r Rule) Covers(other Rule) bool {
	if !strings.EqualFold(r.Tool, other.Tool) {
		return false
	}
	if r.Specifier == "" {
		return true
	}
	if other.Specifier == "" {
		return false
	}
	g, err := compileSpecifier(r)
	if err != nil {
		return r.Specifier == other.Specifier
	}
	return g.Match(specifierGlob(other.Specifier))
}

// compileSpecifier compiles the specifier of r. Path specifiers treat "/"
// as a separator; command specifiers do not.
func compileSpecifier(r Rule) (glob.Glob, error) {
	pattern := specifierGlob(r.Specifier)
	if strings.EqualFold(r.Tool, "Bash") {
		return glob.Compile(pattern)
	}
	return glob.Compile(pattern, '/')
}

// specifierGlob converts the ":*" prefix-match suffix to a glob wildcard.
func specifierGlob(spec string) string {
	if strings.HasSuffix(spec, ":*") {
		return strings.TrimSuffix(spec, ":*") + "*"
	}
	return spec
}

// Conflict is an allow rule that a deny rule overrides.
type Conflict struct {
	Allow string
	Deny  string
}

// Conflicts returns the allow patterns covered by a deny pattern. Deny
// rules take precedence, so these allow entries have no effect.
func (p *Permissions) Conflicts() []Conflict {
	if p == nil {
		return nil
	}
	var denies []Rule
	var raw []string
	for _, pattern := range p.Deny {
		if rule, ok := ParseRule(pattern); ok {
			denies = append(denies, rule)
			raw = append(raw, pattern)
		}
	}
	var conflicts []Conflict
	for _, pattern := range p.Allow {
		allow, ok := ParseRule(pattern)
		if !ok {
			continue
		}
		for i, deny := range denies {
			if deny.Covers(allow) {
				conflicts = append(conflicts, Conflict{Allow: pattern, Deny: raw[i]})
				break
			}
		}
	}
	return conflicts
}
