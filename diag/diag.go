// Package diag carries recoverable anomalies out of a merge alongside its
// result. A Collector never fails: it records each anomaly and forwards it
// to a logger at warn level.
package diag

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/composer/log"
)

// Diagnostic describes one recoverable anomaly. The offending item was
// skipped; the surrounding operation continued.
type Diagnostic struct {
	// Component names the pipeline stage, e.g. "parser" or "assembler".
	Component string

	// Source is the bundle the item came from, if known.
	Source string

	// Item identifies the skipped item, e.g. a heading line or bucket key.
	Item string

	// Message describes what went wrong.
	Message string
}

func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(d.Component)
	if d.Source != "" {
		b.WriteString("[" + d.Source + "]")
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	if d.Item != "" {
		fmt.Fprintf(&b, " (%q)", d.Item)
	}
	return b.String()
}

// Collector accumulates diagnostics. The zero value is ready to use and
// logs nowhere.
type Collector struct {
	logger log.Logger
	items  []Diagnostic
}

// NewCollector returns a Collector that also forwards to logger.
func NewCollector(logger log.Logger) *Collector {
	return &Collector{logger: logger}
}

// Add records d.
func (c *Collector) Add(d Diagnostic) {
	c.items = append(c.items, d)
	if c.logger != nil {
		c.logger.Warn(d.Message,
			"component", d.Component,
			"source", d.Source,
			"item", d.Item)
	}
}

// Warnf records a diagnostic with a formatted message.
func (c *Collector) Warnf(component, source, item, format string, args ...any) {
	c.Add(Diagnostic{
		Component: component,
		Source:    source,
		Item:      item,
		Message:   fmt.Sprintf(format, args...),
	})
}

// Extend records every diagnostic in ds.
func (c *Collector) Extend(ds []Diagnostic) {
	for _, d := range ds {
		c.Add(d)
	}
}

// Diagnostics returns a copy of everything recorded so far.
func (c *Collector) Diagnostics() []Diagnostic {
	if len(c.items) == 0 {
		return nil
	}
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int {
	return len(c.items)
}

// Strings renders ds one per entry.
func Strings(ds []Diagnostic) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.String())
	}
	return out
}
