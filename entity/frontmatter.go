package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

const frontmatterDelimiter = "---"

var ErrUnterminatedFrontmatter = errors.New("missing closing --- frontmatter delimiter")

// SplitFrontmatter separates YAML frontmatter delimited by --- lines from the
// markdown body. A document without a leading delimiter has no frontmatter.
// The closing delimiter must be a line of exactly ---.
func SplitFrontmatter(content string) (frontmatter, body string, err error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(strings.TrimLeft(content, " \t\n"), "\n")
	if !isDelimiter(lines[0]) {
		return "", strings.TrimSpace(content), nil
	}
	for i := 1; i < len(lines); i++ {
		if isDelimiter(lines[i]) {
			frontmatter = strings.Join(lines[1:i], "\n")
			body = strings.Join(lines[i+1:], "\n")
			return frontmatter, strings.TrimSpace(body), nil
		}
	}
	return "", "", ErrUnterminatedFrontmatter
}

func isDelimiter(line string) bool {
	return strings.TrimRight(line, " \t") == frontmatterDelimiter
}

// ToolList is a tool allow-list. In frontmatter it may be written either as
// a YAML sequence or as one comma-separated string; it is always rendered
// as a comma-separated string.
type ToolList []string

func (t *ToolList) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*t = nil
	case string:
		*t = splitTools(v)
	case []any:
		var s stringSet
		for _, item := range v {
			s.add(fmt.Sprint(item))
		}
		*t = s.values()
	default:
		return fmt.Errorf("tools must be a string or a list, got %T", raw)
	}
	return nil
}

func (t ToolList) MarshalYAML() (any, error) {
	return strings.Join(t, ", "), nil
}

func splitTools(v string) []string {
	var s stringSet
	s.addAll(strings.Split(v, ","))
	return s.values()
}

type agentFrontmatter struct {
	Name        string   `yaml:"name,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Tools       ToolList `yaml:"tools,omitempty"`
	Model       string   `yaml:"model,omitempty"`
}

type commandFrontmatter struct {
	Name         string   `yaml:"name,omitempty"`
	Description  string   `yaml:"description,omitempty"`
	AllowedTools ToolList `yaml:"allowed-tools,omitempty"`
	ArgumentHint string   `yaml:"argument-hint,omitempty"`
	Model        string   `yaml:"model,omitempty"`
}

type hookFrontmatter struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
}

func decodeFrontmatter(content string, v any) (string, error) {
	fm, body, err := SplitFrontmatter(content)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(fm) == "" {
		return body, nil
	}
	if err := yaml.Unmarshal([]byte(fm), v); err != nil {
		return "", fmt.Errorf("invalid YAML frontmatter: %w", err)
	}
	return body, nil
}

// ParseAgent parses an agent markdown file. The frontmatter name, when set,
// takes precedence over defaultName, which is usually the file name.
func ParseAgent(content, defaultName, source string) (Agent, error) {
	var fm agentFrontmatter
	body, err := decodeFrontmatter(content, &fm)
	if err != nil {
		return Agent{}, err
	}
	return Agent{
		Name:        firstNonEmpty(fm.Name, defaultName),
		Description: fm.Description,
		Tools:       fm.Tools,
		Model:       fm.Model,
		Content:     body,
		Source:      source,
	}, nil
}

// ParseCommand parses a slash command markdown file.
func ParseCommand(content, defaultName, source string) (Command, error) {
	var fm commandFrontmatter
	body, err := decodeFrontmatter(content, &fm)
	if err != nil {
		return Command{}, err
	}
	return Command{
		Name:         firstNonEmpty(fm.Name, defaultName),
		Description:  fm.Description,
		AllowedTools: fm.AllowedTools,
		ArgumentHint: fm.ArgumentHint,
		Model:        fm.Model,
		Content:      body,
		Source:       source,
	}, nil
}

// ParseHook parses a markdown hook file with optional frontmatter. Other
// hook files are taken verbatim by the caller.
func ParseHook(content, defaultName, source string, typ HookType) (Hook, error) {
	var fm hookFrontmatter
	body, err := decodeFrontmatter(content, &fm)
	if err != nil {
		return Hook{}, err
	}
	return Hook{
		Name:        firstNonEmpty(fm.Name, defaultName),
		Description: fm.Description,
		Type:        typ,
		Content:     body,
		Source:      source,
	}, nil
}

// RenderAgent renders a as a markdown file with YAML frontmatter.
func RenderAgent(a Agent) (string, error) {
	return render(agentFrontmatter{
		Name:        a.Name,
		Description: a.Description,
		Tools:       a.Tools,
		Model:       a.Model,
	}, a.Content)
}

// RenderCommand renders c as a markdown file with YAML frontmatter.
func RenderCommand(c Command) (string, error) {
	return render(commandFrontmatter{
		Description:  c.Description,
		AllowedTools: c.AllowedTools,
		ArgumentHint: c.ArgumentHint,
		Model:        c.Model,
	}, c.Content)
}

func render(fm any, body string) (string, error) {
	data, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	var b strings.Builder
	b.WriteString(frontmatterDelimiter + "\n")
	b.Write(data)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		b.WriteByte('\n')
	}
	b.WriteString(frontmatterDelimiter + "\n")
	if body = strings.TrimSpace(body); body != "" {
		b.WriteString("\n" + body + "\n")
	}
	return b.String(), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
