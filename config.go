package composer

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/composer/section"
)

// Metadata describes one configuration bundle.
type Metadata struct {
	// Name identifies the bundle. It is used as the source of every section
	// parsed from the bundle's document and must be set.
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version,omitempty" json:"version,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Sections assigns priority and mergeability to sections by exact,
	// case-insensitive title.
	Sections []section.Meta `yaml:"sections,omitempty" json:"sections,omitempty"`

	// Engines and PeerDependencies map a dependency name to a version
	// requirement. They are summarized in the document trailer.
	Engines          map[string]string `yaml:"engines,omitempty" json:"engines,omitempty"`
	PeerDependencies map[string]string `yaml:"peerDependencies,omitempty" json:"peerDependencies,omitempty"`
}

// Config is one input to the section pipeline.
type Config struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Validate checks that the config can be merged. The returned error is
// always a *ConfigError.
func (c Config) Validate() error {
	name := strings.TrimSpace(c.Metadata.Name)
	if name == "" {
		return &ConfigError{Field: "metadata.name", Err: ErrMissingName}
	}
	if strings.TrimSpace(c.Content) == "" {
		return &ConfigError{Field: "content", Bundle: name, Err: ErrMissingContent}
	}
	for i, m := range c.Metadata.Sections {
		if strings.TrimSpace(m.Title) == "" {
			return newValidationError(name, fmt.Sprintf("metadata.sections[%d].title", i),
				"section title must not be empty")
		}
	}
	if err := validateDependencies(name, "metadata.engines", c.Metadata.Engines); err != nil {
		return err
	}
	return validateDependencies(name, "metadata.peerDependencies", c.Metadata.PeerDependencies)
}

func validateDependencies(bundle, field string, deps map[string]string) error {
	for dep, version := range deps {
		if strings.TrimSpace(dep) == "" {
			return newValidationError(bundle, field, "dependency name must not be empty")
		}
		if strings.TrimSpace(version) == "" {
			return newValidationError(bundle, field+"."+dep, "version requirement must not be empty")
		}
	}
	return nil
}
