// Package composer merges AI-assistant configuration bundles into one
// combined configuration. It takes a library-first approach: the merge
// engine performs no I/O and the CLI in cmd/composer is a thin wrapper.
//
// The core types are:
//
//   - [Config] pairs a CLAUDE.md-style markdown document with its [Metadata].
//   - [Composer] runs the section pipeline: parse, aggregate by normalized
//     title, merge each bucket, and assemble one markdown document.
//   - [Bundle] adds agents, commands, hooks, and settings to a [Config];
//     [Composer.MergeBundles] merges both the document and the entities.
//
// # Quick Start
//
//	c := composer.New(composer.Options{})
//	result, _ := c.Merge([]composer.Config{
//	    {Content: nextjs, Metadata: composer.Metadata{Name: "nextjs-15"}},
//	    {Content: tailwind, Metadata: composer.Metadata{Name: "tailwind"}},
//	})
//	fmt.Println(result.Markdown)
//
// Section parsing and merge strategies live in the
// [github.com/deepnoodle-ai/composer/section] package. Entity merging lives
// in [github.com/deepnoodle-ai/composer/entity] and
// [github.com/deepnoodle-ai/composer/settings].
package composer
