package composer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/deepnoodle-ai/composer/diag"
	"github.com/deepnoodle-ai/composer/log"
	"github.com/deepnoodle-ai/composer/section"
)

// SectionPrecedence orders buckets of equal priority. A bucket ranks at the
// first pattern its key contains; unmatched keys sort last.
var SectionPrecedence = []string{
	"development assistant",
	"project context",
	"critical",
	"core principles",
	"project structure",
	"common commands",
	"development workflow",
	"architecture",
	"code style",
	"conventions",
	"best practices",
	"security",
	"performance",
	"testing",
	"breaking changes",
	"migration",
	"deployment",
	"troubleshooting",
	"resources",
}

const (
	emptyTitle   = "# Project Configuration"
	emptyMessage = "*No configurations were supplied.*"
	trailerTitle = "## Configuration Metadata"
)

// maxHeadingLevel keeps merged sections at the top of the document outline.
const maxHeadingLevel = 2

type assembler struct {
	precedence []string
	diags      *diag.Collector
	logger     log.Logger
	merge      func(section.Bucket) section.Merged
}

func (a *assembler) rank(key string) int {
	for i, pattern := range a.precedence {
		if strings.Contains(key, pattern) {
			return i
		}
	}
	return len(a.precedence)
}

// order sorts buckets by priority, then precedence rank, then aggregation
// order.
func (a *assembler) order(buckets []section.Bucket) []section.Bucket {
	out := make([]section.Bucket, len(buckets))
	copy(out, buckets)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].MaxPriority(), out[j].MaxPriority()
		if pi != pj {
			return pi > pj
		}
		return a.rank(out[i].Key) < a.rank(out[j].Key)
	})
	return out
}

func (a *assembler) assemble(buckets []section.Bucket) (string, []RenderedSection) {
	var b strings.Builder
	var rendered []RenderedSection
	for _, bucket := range a.order(buckets) {
		if bucket.IsEmpty() {
			a.logger.Debug("dropped empty bucket", "key", bucket.Key)
			continue
		}
		text, info, ok := a.render(bucket)
		if !ok {
			continue
		}
		b.WriteString(text)
		rendered = append(rendered, info)
	}
	return b.String(), rendered
}

// render formats one bucket. A failure while merging the bucket is recorded
// as a diagnostic and the bucket is omitted.
func (a *assembler) render(bucket section.Bucket) (text string, info RenderedSection, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			a.diags.Warnf("assembler", "", bucket.Key, "omitted section after merge failure: %v", r)
			text, info, ok = "", RenderedSection{}, false
		}
	}()

	merge := a.merge
	if merge == nil {
		merge = section.MergeBucket
	}
	merged := merge(bucket)
	body := strings.TrimSpace(merged.Content)
	if body == "" {
		a.logger.Debug("dropped bucket with no merged content", "key", bucket.Key)
		return "", RenderedSection{}, false
	}

	rep := merged.Representative
	level := min(rep.Level, maxHeadingLevel)
	if level < 1 {
		level = 1
	}
	text = strings.Repeat("#", level) + " " + rep.Title + "\n\n" + body + "\n\n"
	info = RenderedSection{
		Key:      bucket.Key,
		Title:    rep.Title,
		Level:    level,
		Priority: bucket.MaxPriority(),
		Strategy: merged.Strategy,
		Sources:  merged.Sources,
	}
	return text, info, true
}

func (c *Composer) emptyDocument() string {
	return emptyTitle + "\n\n" + emptyMessage + "\n\n" + c.trailer(nil)
}

// trailer renders the metadata block appended to every document.
func (c *Composer) trailer(configs []Config) string {
	var b strings.Builder
	b.WriteString("---\n\n")
	b.WriteString(trailerTitle + "\n\n")

	b.WriteString("### Included Configurations\n\n")
	if len(configs) == 0 {
		b.WriteString("*None*\n")
	}
	for _, cfg := range configs {
		b.WriteString(describeConfig(cfg.Metadata) + "\n")
	}

	engines := collectDependencies(configs, func(m Metadata) map[string]string { return m.Engines })
	peers := collectDependencies(configs, func(m Metadata) map[string]string { return m.PeerDependencies })
	if len(engines) > 0 || len(peers) > 0 {
		b.WriteString("\n### Dependencies\n")
		writeDependencies(&b, "Engines", engines)
		writeDependencies(&b, "Peer Dependencies", peers)
	}

	fmt.Fprintf(&b, "\n*Generated: %s*\n", c.now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "*Generated by %s*\n", c.generator)
	return b.String()
}

func describeConfig(m Metadata) string {
	line := "- **" + m.Name + "**"
	if v := strings.TrimSpace(m.Version); v != "" {
		if !strings.HasPrefix(v, "v") {
			v = "v" + v
		}
		line += " " + v
	}
	if d := strings.TrimSpace(m.Description); d != "" {
		line += ": " + d
	}
	return line
}

type dependency struct {
	name     string
	versions []string
}

// collectDependencies merges dependency maps across configs. Each name
// appears once with its distinct requirements sorted.
func collectDependencies(configs []Config, get func(Metadata) map[string]string) []dependency {
	sets := make(map[string]map[string]bool)
	for _, cfg := range configs {
		for name, version := range get(cfg.Metadata) {
			if sets[name] == nil {
				sets[name] = make(map[string]bool)
			}
			sets[name][strings.TrimSpace(version)] = true
		}
	}
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make([]dependency, 0, len(names))
	for _, name := range names {
		versions := make([]string, 0, len(sets[name]))
		for v := range sets[name] {
			versions = append(versions, v)
		}
		sort.Strings(versions)
		deps = append(deps, dependency{name: name, versions: versions})
	}
	return deps
}

func writeDependencies(b *strings.Builder, label string, deps []dependency) {
	if len(deps) == 0 {
		return
	}
	fmt.Fprintf(b, "\n**%s:**\n", label)
	for _, d := range deps {
		fmt.Fprintf(b, "- %s: %s\n", d.name, strings.Join(d.versions, ", "))
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
