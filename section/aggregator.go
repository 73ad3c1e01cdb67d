package section

import (
	"github.com/deepnoodle-ai/composer/diag"
	"github.com/deepnoodle-ai/composer/log"
)

// Bucket groups the sections from every document that share a normalized
// title. Sections keep the order in which documents were added.
type Bucket struct {
	Key      string
	Sections []Section
}

// MaxPriority returns the highest section priority in the bucket.
func (b Bucket) MaxPriority() int {
	if len(b.Sections) == 0 {
		return 0
	}
	highest := b.Sections[0].Priority
	for _, s := range b.Sections[1:] {
		if s.Priority > highest {
			highest = s.Priority
		}
	}
	return highest
}

// IsEmpty reports whether every section in the bucket has empty content.
func (b Bucket) IsEmpty() bool {
	for _, s := range b.Sections {
		if !s.IsEmpty() {
			return false
		}
	}
	return true
}

// Mergeable reports whether the bucket may be combined. Any section marked
// non-mergeable vetoes combination for the whole bucket.
func (b Bucket) Mergeable() bool {
	for _, s := range b.Sections {
		if !s.Mergeable {
			return false
		}
	}
	return true
}

// Sources returns the distinct sources of sections with content, in
// aggregation order.
func (b Bucket) Sources() []string {
	var sources []string
	seen := make(map[string]bool)
	for _, s := range b.Sections {
		if s.IsEmpty() || seen[s.Source] {
			continue
		}
		seen[s.Source] = true
		sources = append(sources, s.Source)
	}
	return sources
}

// Aggregator accumulates sections from many documents into buckets keyed by
// NormalizeTitle. An Aggregator is single-use and not safe for concurrent
// use; build a fresh one per merge.
type Aggregator struct {
	keys     []string
	buckets  map[string]*Bucket
	sections int
	diags    *diag.Collector
}

// NewAggregator returns an empty Aggregator. Diagnostics are also forwarded
// to logger when it is non-nil.
func NewAggregator(logger log.Logger) *Aggregator {
	return &Aggregator{
		buckets: make(map[string]*Bucket),
		diags:   diag.NewCollector(logger),
	}
}

// Add parses document and files its sections. Documents must be added in
// caller precedence order; that order breaks ties during assembly.
func (a *Aggregator) Add(document, source string, meta []Meta) error {
	sections, diags, err := Parse(document, source, meta)
	if err != nil {
		return err
	}
	a.diags.Extend(diags)
	a.AddSections(sections)
	return nil
}

// AddSections files already parsed sections. Sections whose titles
// normalize to nothing are skipped with a diagnostic.
func (a *Aggregator) AddSections(sections []Section) {
	for _, s := range sections {
		key := NormalizeTitle(s.Title)
		if key == "" {
			a.diags.Warnf("aggregator", s.Source, s.Title,
				"skipped section whose title has no letters or digits")
			continue
		}
		b, ok := a.buckets[key]
		if !ok {
			b = &Bucket{Key: key}
			a.buckets[key] = b
			a.keys = append(a.keys, key)
		}
		b.Sections = append(b.Sections, s)
		a.sections++
	}
}

// Buckets returns the buckets in first-seen key order.
func (a *Aggregator) Buckets() []Bucket {
	out := make([]Bucket, 0, len(a.keys))
	for _, key := range a.keys {
		out = append(out, *a.buckets[key])
	}
	return out
}

// SectionCount returns the number of sections filed into buckets.
func (a *Aggregator) SectionCount() int {
	return a.sections
}

// Diagnostics returns the anomalies recorded while adding documents.
func (a *Aggregator) Diagnostics() []diag.Diagnostic {
	return a.diags.Diagnostics()
}
