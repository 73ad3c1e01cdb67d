package composer

import (
	"github.com/deepnoodle-ai/composer/diag"
	"github.com/deepnoodle-ai/composer/entity"
	"github.com/deepnoodle-ai/composer/settings"
)

// Bundle is a complete configuration bundle: a document with its metadata
// plus named entities and settings.
type Bundle struct {
	Config
	Agents   []entity.Agent
	Commands []entity.Command
	Hooks    []entity.Hook
	Settings *settings.Settings
}

// Output is the result of merging bundles.
type Output struct {
	*Result
	Agents   []entity.Agent
	Commands []entity.Command
	Hooks    []entity.Hook
	Settings *settings.Settings
}

// MergeBundles merges the documents of bundles with Merge and their
// entities and settings with the entity and settings mergers. Entities
// without a source are attributed to their bundle.
func (c *Composer) MergeBundles(bundles []Bundle) (*Output, error) {
	configs := make([]Config, len(bundles))
	agents := make([][]entity.Agent, len(bundles))
	commands := make([][]entity.Command, len(bundles))
	hooks := make([][]entity.Hook, len(bundles))
	list := make([]*settings.Settings, len(bundles))
	for i, b := range bundles {
		name := b.Metadata.Name
		configs[i] = b.Config
		agents[i] = withSource(b.Agents, name, func(a *entity.Agent) *string { return &a.Source })
		commands[i] = withSource(b.Commands, name, func(c *entity.Command) *string { return &c.Source })
		hooks[i] = withSource(b.Hooks, name, func(h *entity.Hook) *string { return &h.Source })
		list[i] = b.Settings
	}

	result, err := c.Merge(configs)
	if err != nil {
		return nil, err
	}

	out := &Output{
		Result:   result,
		Agents:   entity.MergeAgents(agents),
		Commands: entity.MergeCommands(commands),
		Hooks:    entity.MergeHooks(hooks),
		Settings: settings.Merge(list),
	}

	diags := diag.NewCollector(c.logger)
	for _, conflict := range out.Settings.Permissions.Conflicts() {
		diags.Warnf("settings", "", conflict.Allow,
			"allowed permission is overridden by deny rule %q", conflict.Deny)
	}
	result.Diagnostics = append(result.Diagnostics, diags.Diagnostics()...)

	c.logger.Debug("merged bundles",
		"agents", len(out.Agents),
		"commands", len(out.Commands),
		"hooks", len(out.Hooks))
	return out, nil
}

func withSource[T any](items []T, source string, field func(*T) *string) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := range out {
		if p := field(&out[i]); *p == "" {
			*p = source
		}
	}
	return out
}

// MergeBundles merges bundles with default options.
func MergeBundles(bundles []Bundle) (*Output, error) {
	return New(Options{}).MergeBundles(bundles)
}
