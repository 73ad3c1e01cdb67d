package settings

import (
	"encoding/json"
	"strings"
)

// HookEvent is a lifecycle event that hooks can attach to.
type HookEvent string

const (
	PreToolUse       HookEvent = "PreToolUse"
	PostToolUse      HookEvent = "PostToolUse"
	Notification     HookEvent = "Notification"
	UserPromptSubmit HookEvent = "UserPromptSubmit"
	Stop             HookEvent = "Stop"
	SubagentStop     HookEvent = "SubagentStop"
	PreCompact       HookEvent = "PreCompact"
	SessionStart     HookEvent = "SessionStart"
	SessionEnd       HookEvent = "SessionEnd"
)

// HookEvents lists the recognized events in canonical order.
var HookEvents = []HookEvent{
	PreToolUse,
	PostToolUse,
	Notification,
	UserPromptSubmit,
	Stop,
	SubagentStop,
	PreCompact,
	SessionStart,
	SessionEnd,
}

// Valid reports whether e is a recognized event.
func (e HookEvent) Valid() bool {
	for _, known := range HookEvents {
		if e == known {
			return true
		}
	}
	return false
}

// HookCommand is one command run when a matcher fires.
type HookCommand struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout,omitempty"`
}

// Matcher attaches hook commands to the tools matching a pattern. An empty
// pattern matches every tool.
type Matcher struct {
	Matcher string        `json:"matcher,omitempty"`
	Hooks   []HookCommand `json:"hooks"`
}

// Hooks is the hook table of a settings object.
type Hooks struct {
	Events map[HookEvent][]Matcher

	// Unrecognized holds entries under event names outside HookEvents.
	Unrecognized map[string]any
}

// IsEmpty reports whether h has no matchers and no unrecognized entries.
func (h *Hooks) IsEmpty() bool {
	if h == nil {
		return true
	}
	for _, matchers := range h.Events {
		if len(matchers) > 0 {
			return false
		}
	}
	return len(h.Unrecognized) == 0
}

// UnmarshalJSON decodes a hook table. Matchers under recognized events that
// are malformed or carry no hook commands are dropped.
func (h *Hooks) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*h = Hooks{}
	for key, value := range raw {
		event := HookEvent(key)
		if !event.Valid() {
			var v any
			if err := json.Unmarshal(value, &v); err != nil {
				return err
			}
			if h.Unrecognized == nil {
				h.Unrecognized = make(map[string]any)
			}
			h.Unrecognized[key] = v
			continue
		}
		if matchers := decodeMatchers(value); len(matchers) > 0 {
			if h.Events == nil {
				h.Events = make(map[HookEvent][]Matcher)
			}
			h.Events[event] = matchers
		}
	}
	return nil
}

func decodeMatchers(data json.RawMessage) []Matcher {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	var matchers []Matcher
	for _, entry := range entries {
		var m Matcher
		if err := json.Unmarshal(entry, &m); err != nil {
			continue
		}
		m.Hooks = validCommands(m.Hooks)
		if len(m.Hooks) == 0 {
			continue
		}
		matchers = append(matchers, m)
	}
	return matchers
}

func validCommands(commands []HookCommand) []HookCommand {
	var out []HookCommand
	for _, c := range commands {
		if strings.TrimSpace(c.Command) == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (h Hooks) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(h.Events)+len(h.Unrecognized))
	for k, v := range h.Unrecognized {
		out[k] = v
	}
	for event, matchers := range h.Events {
		if len(matchers) > 0 {
			out[string(event)] = matchers
		}
	}
	return json.Marshal(out)
}
