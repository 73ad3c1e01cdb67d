// Package section splits markdown documents into heading-delimited sections,
// groups equivalent sections from many documents into buckets, and merges
// each bucket with a content-aware strategy.
//
// The package performs no I/O. Callers hand it document text tagged with a
// source label (usually the bundle name) and receive plain values back.
//
// # Pipeline
//
//	agg := section.NewAggregator(logger)
//	for _, doc := range docs {
//	    if err := agg.Add(doc.Content, doc.Name, doc.Sections); err != nil {
//	        return err
//	    }
//	}
//	for _, bucket := range agg.Buckets() {
//	    merged := section.MergeBucket(bucket)
//	    fmt.Println(merged.Representative.Title, merged.Strategy)
//	}
package section

import (
	"errors"
	"strings"
)

// MaxLevel is the deepest heading level. Deeper headings are clamped to it.
const MaxLevel = 6

// ErrMissingSource is returned when a document is parsed without a source
// label. Every section must be attributable to the bundle it came from.
var ErrMissingSource = errors.New("section source is required")

// Section is one heading-delimited block of a source document.
type Section struct {
	// Title is the heading text with the leading hashes removed.
	Title string

	// Level is the heading depth, 1 through MaxLevel.
	Level int

	// Content is the trimmed body between this heading and the next one.
	// Title-only sections have empty content and are still kept.
	Content string

	// Source identifies the bundle the section came from.
	Source string

	// Priority orders buckets in the assembled output and breaks ties when
	// a single section is selected from a bucket.
	Priority int

	// Mergeable reports whether the section may be combined with sections
	// from other sources. A single false in a bucket vetoes combination.
	Mergeable bool
}

// IsEmpty reports whether the section has no body text.
func (s Section) IsEmpty() bool {
	return strings.TrimSpace(s.Content) == ""
}

// Meta is per-bundle metadata for a section, matched against parsed
// sections by case-insensitive title.
type Meta struct {
	Title     string `yaml:"title" json:"title"`
	Priority  int    `yaml:"priority,omitempty" json:"priority,omitempty"`
	Mergeable *bool  `yaml:"mergeable,omitempty" json:"mergeable,omitempty"`
}

// IsMergeable reports the declared mergeability, defaulting to true.
func (m Meta) IsMergeable() bool {
	return m.Mergeable == nil || *m.Mergeable
}

// metaIndex looks up section metadata by lower-cased exact title.
type metaIndex map[string]Meta

func newMetaIndex(meta []Meta) metaIndex {
	idx := make(metaIndex, len(meta))
	for _, m := range meta {
		key := strings.ToLower(strings.TrimSpace(m.Title))
		if _, exists := idx[key]; exists {
			continue
		}
		idx[key] = m
	}
	return idx
}

// apply sets priority and mergeability on s, defaulting to (0, true).
func (idx metaIndex) apply(s *Section) {
	s.Priority = 0
	s.Mergeable = true
	if m, ok := idx[strings.ToLower(strings.TrimSpace(s.Title))]; ok {
		s.Priority = m.Priority
		s.Mergeable = m.IsMergeable()
	}
}
