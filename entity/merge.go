package entity

import (
	"fmt"
	"strings"
)

// MergeAgents combines agents across bundles. Each group holds one bundle's
// agents, in caller precedence order. Agents sharing a normalized name are
// combined into one: tools are unioned, the last non-empty description and
// model win, and the bodies of every contributor are kept under a
// "### From `source`:" subheading. The result keeps first-seen name order.
// Agents with an empty name are skipped.
func MergeAgents(groups [][]Agent) []Agent {
	var order []string
	merged := make(map[string]*agentMerge)
	for _, group := range groups {
		for _, a := range group {
			key := NormalizeName(a.Name)
			if key == "" {
				continue
			}
			m, ok := merged[key]
			if !ok {
				m = &agentMerge{agent: a}
				m.agent.Tools = nil
				merged[key] = m
				order = append(order, key)
			}
			m.add(a)
		}
	}

	out := make([]Agent, 0, len(order))
	for _, key := range order {
		out = append(out, merged[key].result())
	}
	return out
}

type agentPart struct {
	source  string
	content string
}

type agentMerge struct {
	agent     Agent
	tools     stringSet
	parts     []agentPart
	seenParts map[string]bool
}

func (m *agentMerge) add(a Agent) {
	if a.Description != "" {
		m.agent.Description = a.Description
	}
	if a.Model != "" {
		m.agent.Model = a.Model
	}
	m.tools.addAll(a.Tools)

	body := strings.TrimSpace(a.Content)
	if body == "" {
		return
	}
	if m.seenParts == nil {
		m.seenParts = make(map[string]bool)
	}
	if m.seenParts[body] {
		return
	}
	m.seenParts[body] = true
	m.parts = append(m.parts, agentPart{source: a.Source, content: body})
}

func (m *agentMerge) result() Agent {
	a := m.agent
	a.Tools = m.tools.values()
	switch len(m.parts) {
	case 0:
		a.Content = ""
	case 1:
		a.Content = m.parts[0].content
		a.Source = m.parts[0].source
	default:
		sections := make([]string, 0, len(m.parts))
		sources := make([]string, 0, len(m.parts))
		for _, p := range m.parts {
			sections = append(sections, fmt.Sprintf("### From `%s`:\n\n%s", p.source, p.content))
			sources = append(sources, p.source)
		}
		a.Content = strings.Join(sections, "\n\n")
		a.Source = strings.Join(uniqueStrings(sources), ", ")
	}
	return a
}

// MergeCommands overrides commands across bundles. A later command with the
// same normalized name replaces the earlier one wholesale, keeping the
// position where the name was first seen.
func MergeCommands(groups [][]Command) []Command {
	return override(groups, func(c Command) string { return c.Name })
}

// MergeHooks overrides hooks across bundles, like MergeCommands.
func MergeHooks(groups [][]Hook) []Hook {
	return override(groups, func(h Hook) string { return h.Name })
}

func override[T any](groups [][]T, name func(T) string) []T {
	var order []string
	latest := make(map[string]T)
	for _, group := range groups {
		for _, item := range group {
			key := NormalizeName(name(item))
			if key == "" {
				continue
			}
			if _, ok := latest[key]; !ok {
				order = append(order, key)
			}
			latest[key] = item
		}
	}
	out := make([]T, 0, len(order))
	for _, key := range order {
		out = append(out, latest[key])
	}
	return out
}

// stringSet keeps distinct strings in first-seen order. The zero value is
// ready to use.
type stringSet struct {
	seen  map[string]bool
	items []string
}

func (s *stringSet) add(v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[v] {
		return
	}
	s.seen[v] = true
	s.items = append(s.items, v)
}

func (s *stringSet) addAll(vs []string) {
	for _, v := range vs {
		s.add(v)
	}
}

func (s *stringSet) values() []string {
	return s.items
}

func uniqueStrings(vs []string) []string {
	var s stringSet
	s.addAll(vs)
	return s.values()
}
