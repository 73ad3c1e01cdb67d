package settings

import "strings"

// Merge combines settings in caller precedence order; nil entries are
// skipped. The inputs are not modified.
//
//   - Permission lists are unioned, keeping first-seen order. The last
//     non-empty default mode wins.
//   - Env variables from later settings override earlier ones.
//   - Matchers are concatenated per hook event. Unrecognized hook entries
//     are deep merged.
//   - The last status line wins.
//   - Other keys are deep merged: objects recurse, arrays concatenate, and
//     scalars take the later value.
func Merge(list []*Settings) *Settings {
	out := &Settings{}
	for _, s := range list {
		if s == nil {
			continue
		}
		if s.Permissions != nil {
			out.Permissions = mergePermissions(out.Permissions, s.Permissions)
		}
		for k, v := range s.Env {
			if out.Env == nil {
				out.Env = make(map[string]string)
			}
			out.Env[k] = v
		}
		if s.Hooks != nil {
			out.Hooks = mergeHooks(out.Hooks, s.Hooks)
		}
		if s.StatusLine != nil {
			sl := *s.StatusLine
			out.StatusLine = &sl
		}
		if len(s.Rules) > 0 {
			base := map[string]any{}
			if out.Rules != nil {
				base = out.Rules
			}
			out.Rules = DeepMerge(base, s.Rules).(map[string]any)
		}
	}
	return out
}

func mergePermissions(base, next *Permissions) *Permissions {
	if base == nil {
		base = &Permissions{}
	}
	out := &Permissions{
		Allow:                 union(base.Allow, next.Allow),
		Deny:                  union(base.Deny, next.Deny),
		Ask:                   union(base.Ask, next.Ask),
		AdditionalDirectories: union(base.AdditionalDirectories, next.AdditionalDirectories),
		DefaultMode:           base.DefaultMode,
	}
	if strings.TrimSpace(next.DefaultMode) != "" {
		out.DefaultMode = next.DefaultMode
	}
	return out
}

// union returns the distinct values of a then b in first-seen order.
func union(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func mergeHooks(base, next *Hooks) *Hooks {
	out := &Hooks{}
	for _, event := range HookEvents {
		var matchers []Matcher
		if base != nil {
			matchers = append(matchers, base.Events[event]...)
		}
		for _, m := range next.Events[event] {
			if len(m.Hooks) == 0 {
				continue
			}
			matchers = append(matchers, m)
		}
		if len(matchers) > 0 {
			if out.Events == nil {
				out.Events = make(map[HookEvent][]Matcher)
			}
			out.Events[event] = matchers
		}
	}
	var unrecognized map[string]any
	if base != nil {
		unrecognized = base.Unrecognized
	}
	if len(next.Unrecognized) > 0 {
		if unrecognized == nil {
			unrecognized = map[string]any{}
		}
		unrecognized = DeepMerge(unrecognized, next.Unrecognized).(map[string]any)
	}
	out.Unrecognized = unrecognized
	return out
}

// DeepMerge merges override into base and returns the result without
// modifying either argument. Objects merge key by key, arrays concatenate,
// and any other override value replaces base. A nil override keeps base.
func DeepMerge(base, override any) any {
	if override == nil {
		return clone(base)
	}
	switch o := override.(type) {
	case map[string]any:
		b, ok := base.(map[string]any)
		if !ok {
			return clone(o)
		}
		out := make(map[string]any, len(b)+len(o))
		for k, v := range b {
			out[k] = clone(v)
		}
		for k, v := range o {
			if existing, ok := out[k]; ok {
				out[k] = DeepMerge(existing, v)
			} else {
				out[k] = clone(v)
			}
		}
		return out
	case []any:
		b, ok := base.([]any)
		if !ok {
			return clone(o)
		}
		out := make([]any, 0, len(b)+len(o))
		for _, v := range b {
			out = append(out, clone(v))
		}
		for _, v := range o {
			out = append(out, clone(v))
		}
		return out
	default:
		return override
	}
}

func clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = clone(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = clone(item)
		}
		return out
	default:
		return v
	}
}
