package composer

import (
	"time"

	"github.com/deepnoodle-ai/composer/diag"
	"github.com/deepnoodle-ai/composer/log"
	"github.com/deepnoodle-ai/composer/section"
)

// DefaultGenerator is the tool identifier written to the document trailer.
const DefaultGenerator = "composer"

// Options configures a Composer.
type Options struct {
	// Logger receives diagnostics at warn level. Defaults to a null logger.
	Logger log.Logger

	// Now returns the generation timestamp. Defaults to time.Now.
	Now func() time.Time

	// Generator is the tool identifier in the trailer. Defaults to
	// DefaultGenerator.
	Generator string

	// Precedence overrides SectionPrecedence.
	Precedence []string
}

// Composer merges configurations. A Composer holds no state between calls
// and is safe for concurrent use.
type Composer struct {
	logger     log.Logger
	now        func() time.Time
	generator  string
	precedence []string
}

// New returns a Composer configured by opts.
func New(opts Options) *Composer {
	c := &Composer{
		logger:     log.OrNull(opts.Logger),
		now:        opts.Now,
		generator:  opts.Generator,
		precedence: opts.Precedence,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.generator == "" {
		c.generator = DefaultGenerator
	}
	if c.precedence == nil {
		c.precedence = SectionPrecedence
	}
	return c
}

// RenderedSection summarizes one bucket that made it into the document.
type RenderedSection struct {
	Key      string
	Title    string
	Level    int
	Priority int
	Strategy section.Strategy
	Sources  []string
}

// Result is the outcome of a successful merge.
type Result struct {
	Markdown    string
	Diagnostics []diag.Diagnostic

	// Buckets lists the rendered sections in document order.
	Buckets []RenderedSection
}

// Merge runs the section pipeline over configs, in caller precedence order.
func (c *Composer) Merge(configs []Config) (*Result, error) {
	for _, cfg := range configs {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	diags := diag.NewCollector(c.logger)
	if len(configs) == 0 {
		c.logger.Debug("no configurations supplied")
		return &Result{Markdown: c.emptyDocument()}, nil
	}

	agg := section.NewAggregator(nil)
	for _, cfg := range configs {
		name := cfg.Metadata.Name
		if err := agg.Add(cfg.Content, name, cfg.Metadata.Sections); err != nil {
			return nil, &ConfigError{Bundle: name, Err: err}
		}
	}
	diags.Extend(agg.Diagnostics())
	if agg.SectionCount() == 0 {
		return nil, &ConfigError{Err: ErrNoMergeableContent}
	}

	a := &assembler{
		precedence: c.precedence,
		diags:      diags,
		logger:     c.logger,
	}
	body, rendered := a.assemble(agg.Buckets())
	doc := body + c.trailer(configs)
	if isBlank(doc) {
		return nil, &ConfigError{Err: ErrEmptyOutput}
	}
	c.logger.Debug("merged configurations",
		"configs", len(configs),
		"sections", agg.SectionCount(),
		"buckets", len(rendered))
	return &Result{
		Markdown:    doc,
		Diagnostics: diags.Diagnostics(),
		Buckets:     rendered,
	}, nil
}

// Merge merges configs with default options.
func Merge(configs []Config) (*Result, error) {
	return New(Options{}).Merge(configs)
}
