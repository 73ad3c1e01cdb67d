// Package bundle loads configuration bundles from directories on disk.
//
// A bundle directory looks like:
//
//	bundle.yaml      name, version, description, sections, engines, peerDependencies
//	CLAUDE.md        the markdown document
//	agents/**/*.md   agents with YAML frontmatter
//	commands/**/*.md slash commands; nested directories become "dir:name"
//	hooks/**         hook scripts, or hook configs when the file ends in .json
//	settings.json    settings
//
// Only the document is required. Without a manifest the bundle is named
// after its directory.
package bundle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/deepnoodle-ai/composer"
	"github.com/deepnoodle-ai/composer/entity"
	"github.com/deepnoodle-ai/composer/log"
	"github.com/deepnoodle-ai/composer/section"
	"github.com/deepnoodle-ai/composer/settings"
	"github.com/gobwas/glob"
	"github.com/goccy/go-yaml"
)

const (
	DefaultDocument = "CLAUDE.md"
	SettingsFile    = "settings.json"

	agentsPattern   = "agents/**/*.md"
	commandsPattern = "commands/**/*.md"
	hooksPattern    = "hooks/**"
)

// ManifestFiles are the manifest names tried, in order.
var ManifestFiles = []string{"bundle.yaml", "bundle.yml", "bundle.json"}

var ErrNoDocument = errors.New("bundle has no document")

// Manifest is the parsed bundle.yaml.
type Manifest struct {
	Name             string            `yaml:"name"`
	Version          string            `yaml:"version,omitempty"`
	Description      string            `yaml:"description,omitempty"`
	Sections         []section.Meta    `yaml:"sections,omitempty"`
	Engines          map[string]string `yaml:"engines,omitempty"`
	PeerDependencies map[string]string `yaml:"peerDependencies,omitempty"`

	// Document is the markdown file name, relative to the bundle directory.
	// Defaults to DefaultDocument.
	Document string `yaml:"document,omitempty"`
}

// Metadata returns the composer metadata declared by m.
func (m *Manifest) Metadata() composer.Metadata {
	return composer.Metadata{
		Name:             m.Name,
		Version:          m.Version,
		Description:      m.Description,
		Sections:         m.Sections,
		Engines:          m.Engines,
		PeerDependencies: m.PeerDependencies,
	}
}

// ParseManifest decodes a manifest. Unknown fields are rejected.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.UnmarshalWithOptions(data, &m, yaml.Strict()); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadOptions configures a Loader.
type LoadOptions struct {
	// Logger receives debug messages while loading. Defaults to a null
	// logger.
	Logger log.Logger

	// Exclude lists glob patterns matched against entity file paths
	// relative to the bundle directory, e.g. "agents/drafts/**". Matching
	// files are skipped.
	Exclude []string
}

// Loader reads bundle directories.
type Loader struct {
	logger  log.Logger
	exclude []glob.Glob
}

// NewLoader returns a Loader configured by opts. It fails if an exclude
// pattern does not compile.
func NewLoader(opts LoadOptions) (*Loader, error) {
	l := &Loader{logger: log.OrNull(opts.Logger)}
	for _, pattern := range opts.Exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		l.exclude = append(l.exclude, g)
	}
	return l, nil
}

// Load reads the bundle in dir with default options.
func Load(dir string) (composer.Bundle, error) {
	l, _ := NewLoader(LoadOptions{})
	return l.Load(dir)
}

// LoadAll reads each directory in order.
func (l *Loader) LoadAll(dirs []string) ([]composer.Bundle, error) {
	bundles := make([]composer.Bundle, 0, len(dirs))
	for _, dir := range dirs {
		b, err := l.Load(dir)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, b)
	}
	return bundles, nil
}

// Load reads the bundle in dir.
func (l *Loader) Load(dir string) (composer.Bundle, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return composer.Bundle{}, err
	}
	if !info.IsDir() {
		return composer.Bundle{}, fmt.Errorf("%s is not a directory", dir)
	}

	manifest, err := l.loadManifest(dir)
	if err != nil {
		return composer.Bundle{}, err
	}
	name := manifest.Name

	docPath := filepath.Join(dir, manifest.Document)
	doc, err := os.ReadFile(docPath)
	if errors.Is(err, fs.ErrNotExist) {
		return composer.Bundle{}, fmt.Errorf("%w: %s", ErrNoDocument, docPath)
	}
	if err != nil {
		return composer.Bundle{}, err
	}

	b := composer.Bundle{
		Config: composer.Config{Content: string(doc), Metadata: manifest.Metadata()},
	}
	fsys := os.DirFS(dir)

	if err := l.each(fsys, agentsPattern, func(p string, data []byte) error {
		a, err := entity.ParseAgent(string(data), baseName(p), name)
		if err == nil {
			b.Agents = append(b.Agents, a)
		}
		return err
	}); err != nil {
		return composer.Bundle{}, fmt.Errorf("bundle %s: %w", name, err)
	}

	if err := l.each(fsys, commandsPattern, func(p string, data []byte) error {
		c, err := entity.ParseCommand(string(data), commandName(p), name)
		if err == nil {
			b.Commands = append(b.Commands, c)
		}
		return err
	}); err != nil {
		return composer.Bundle{}, fmt.Errorf("bundle %s: %w", name, err)
	}

	if err := l.each(fsys, hooksPattern, func(p string, data []byte) error {
		h, err := parseHook(p, data, name)
		if err == nil {
			b.Hooks = append(b.Hooks, h)
		}
		return err
	}); err != nil {
		return composer.Bundle{}, fmt.Errorf("bundle %s: %w", name, err)
	}

	s, err := settings.Load(filepath.Join(dir, SettingsFile))
	switch {
	case err == nil:
		b.Settings = s
	case !errors.Is(err, fs.ErrNotExist):
		return composer.Bundle{}, fmt.Errorf("bundle %s: %w", name, err)
	}

	l.logger.Debug("loaded bundle",
		"name", name,
		"dir", dir,
		"agents", len(b.Agents),
		"commands", len(b.Commands),
		"hooks", len(b.Hooks),
		"settings", b.Settings != nil)
	return b, nil
}

func (l *Loader) loadManifest(dir string) (*Manifest, error) {
	m := &Manifest{}
	for _, file := range ManifestFiles {
		p := filepath.Join(dir, file)
		data, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if m, err = ParseManifest(data); err != nil {
			return nil, fmt.Errorf("invalid manifest %s: %w", p, err)
		}
		break
	}
	if strings.TrimSpace(m.Name) == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		m.Name = filepath.Base(abs)
	}
	if m.Document == "" {
		m.Document = DefaultDocument
	}
	return m, nil
}

// each calls fn for every non-hidden, non-excluded file matching pattern,
// in lexical order.
func (l *Loader) each(fsys fs.FS, pattern string, fn func(p string, data []byte) error) error {
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return err
	}
	sort.Strings(matches)
	for _, p := range matches {
		if strings.HasPrefix(path.Base(p), ".") {
			continue
		}
		if l.excluded(p) {
			l.logger.Debug("excluded entity", "path", p)
			continue
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		if err := fn(p, data); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func (l *Loader) excluded(p string) bool {
	for _, g := range l.exclude {
		if g.Match(p) {
			return true
		}
	}
	return false
}

func parseHook(p string, data []byte, source string) (entity.Hook, error) {
	name := path.Base(p)
	switch strings.ToLower(path.Ext(p)) {
	case ".json":
		return entity.Hook{
			Name:    name,
			Type:    entity.HookTypeConfig,
			Content: strings.TrimSpace(string(data)),
			Source:  source,
		}, nil
	case ".md":
		return entity.ParseHook(string(data), name, source, entity.HookTypeScript)
	default:
		return entity.Hook{
			Name:    name,
			Type:    entity.HookTypeScript,
			Content: strings.TrimSpace(string(data)),
			Source:  source,
		}, nil
	}
}

func baseName(p string) string {
	return strings.TrimSuffix(path.Base(p), path.Ext(p))
}

// commandName namespaces nested commands: commands/git/commit.md is
// "git:commit".
func commandName(p string) string {
	rel := strings.TrimPrefix(p, "commands/")
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	return strings.ReplaceAll(rel, "/", ":")
}
