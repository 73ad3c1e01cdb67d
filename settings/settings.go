// Package settings models the settings.json of a configuration bundle and
// merges settings across bundles.
//
// Known keys (permissions, env, hooks, statusLine) are decoded into typed
// fields. Every other top-level key is kept verbatim in Settings.Rules so
// that no setting is dropped by a merge.
package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

const (
	keyPermissions = "permissions"
	keyEnv         = "env"
	keyHooks       = "hooks"
	keyStatusLine  = "statusLine"
)

// Settings is one bundle's settings object.
type Settings struct {
	Permissions *Permissions
	Env         map[string]string
	Hooks       *Hooks
	StatusLine  *StatusLine

	// Rules holds every unrecognized top-level key.
	Rules map[string]any
}

// Permissions contains permission rules in Claude settings format, e.g.
// "Bash(go build:*)" or "Read(./docs/**)".
type Permissions struct {
	Allow                 []string `json:"allow,omitempty"`
	Deny                  []string `json:"deny,omitempty"`
	Ask                   []string `json:"ask,omitempty"`
	AdditionalDirectories []string `json:"additionalDirectories,omitempty"`
	DefaultMode           string   `json:"defaultMode,omitempty"`
}

// StatusLine configures the status line command.
type StatusLine struct {
	Type    string `json:"type,omitempty"`
	Command string `json:"command"`
	Padding *int   `json:"padding,omitempty"`
}

// UnmarshalJSON accepts either the object form or a bare command string.
func (s *StatusLine) UnmarshalJSON(data []byte) error {
	var command string
	if err := json.Unmarshal(data, &command); err == nil {
		*s = StatusLine{Type: "command", Command: command}
		return nil
	}
	type plain StatusLine
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = StatusLine(p)
	return nil
}

// Parse decodes a settings.json document.
func Parse(data []byte) (*Settings, error) {
	var s Settings
	if len(bytes.TrimSpace(data)) == 0 {
		return &s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and decodes the settings file at path.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid settings file %s: %w", path, err)
	}
	return s, nil
}

func (s *Settings) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Settings{}
	for key, value := range raw {
		var err error
		switch key {
		case keyPermissions:
			s.Permissions = &Permissions{}
			err = json.Unmarshal(value, s.Permissions)
		case keyEnv:
			s.Env, err = decodeEnv(value)
		case keyHooks:
			s.Hooks = &Hooks{}
			err = json.Unmarshal(value, s.Hooks)
		case keyStatusLine:
			s.StatusLine = &StatusLine{}
			err = json.Unmarshal(value, s.StatusLine)
		default:
			var v any
			err = json.Unmarshal(value, &v)
			if s.Rules == nil {
				s.Rules = make(map[string]any)
			}
			s.Rules[key] = v
		}
		if err != nil {
			return fmt.Errorf("invalid %q: %w", key, err)
		}
	}
	return nil
}

// decodeEnv accepts non-string scalars, which are common in hand-written
// settings files, and stores their JSON text.
func decodeEnv(data []byte) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	env := make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			env[k] = s
			continue
		}
		env[k] = string(bytes.TrimSpace(v))
	}
	return env, nil
}

func (s Settings) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Rules)+4)
	for k, v := range s.Rules {
		out[k] = v
	}
	if s.Permissions != nil {
		out[keyPermissions] = s.Permissions
	}
	if len(s.Env) > 0 {
		out[keyEnv] = s.Env
	}
	if s.Hooks != nil && !s.Hooks.IsEmpty() {
		out[keyHooks] = s.Hooks
	}
	if s.StatusLine != nil {
		out[keyStatusLine] = s.StatusLine
	}
	return json.Marshal(out)
}

// Encode renders s as indented JSON with a trailing newline.
func Encode(s *Settings) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
