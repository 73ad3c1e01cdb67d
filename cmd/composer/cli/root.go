// Package cli implements the composer command line.
package cli

import (
	"io"
	"os"
	"time"

	"github.com/deepnoodle-ai/composer"
	"github.com/deepnoodle-ai/composer/bundle"
	"github.com/deepnoodle-ai/composer/log"
	wontoncli "github.com/deepnoodle-ai/wonton/cli"
)

const logLevelEnv = "COMPOSER_LOG_LEVEL"

// app holds state shared by every subcommand.
type app struct {
	logger log.Logger
	now    func() time.Time
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newApp() *app {
	return &app{
		logger: log.NewNullLogger(),
		now:    time.Now,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// setLogLevel installs a stderr logger at the named level. "" and "none"
// keep logging off.
func (a *app) setLogLevel(name string) {
	if name == "" || name == "none" {
		return
	}
	level := log.LevelFromString(name)
	log.SetDefaultLevel(level)
	a.logger = log.NewWithWriter(a.stderr, level)
}

// parseGlobalFlags applies the flags every command accepts.
func (a *app) parseGlobalFlags(ctx *wontoncli.Context) {
	a.setLogLevel(ctx.String("log-level"))
}

func (a *app) composer() *composer.Composer {
	return composer.New(composer.Options{Logger: a.logger, Now: a.now})
}

// load reads and merges the bundles in dirs.
func (a *app) load(dirs, exclude []string) (*composer.Output, error) {
	loader, err := bundle.NewLoader(bundle.LoadOptions{Logger: a.logger, Exclude: exclude})
	if err != nil {
		return nil, err
	}
	bundles, err := loader.LoadAll(dirs)
	if err != nil {
		return nil, err
	}
	return a.composer().MergeBundles(bundles)
}

// bundleDirs returns the positional bundle directories of a command.
func bundleDirs(ctx *wontoncli.Context) ([]string, error) {
	if ctx.NArg() == 0 {
		return nil, wontoncli.Errorf("at least one bundle directory is required")
	}
	return ctx.Args(), nil
}

// NewApp builds the composer command tree.
func NewApp(version string) *wontoncli.App {
	a := newApp()
	application := wontoncli.New("composer").
		Description("Merge AI assistant configuration bundles").
		Version(version).
		GlobalFlags(
			wontoncli.String("log-level", "").
				Env(logLevelEnv).
				Help("Log level to use (none, debug, info, warn, error)"),
		)

	registerMergeCommand(application, a)
	registerInspectCommand(application, a)
	registerEntitiesCommand(application, a)
	registerMCPCommand(application, a, version)
	return application
}

// Execute runs the command line and exits the process on failure.
func Execute(version string) {
	if err := NewApp(version).Execute(); err != nil {
		if wontoncli.IsHelpRequested(err) {
			os.Exit(0)
		}
		PrintError(os.Stderr, err)
		os.Exit(wontoncli.GetExitCode(err))
	}
}
