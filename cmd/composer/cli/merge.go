package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"time"

	"github.com/deepnoodle-ai/composer/log"
	wontoncli "github.com/deepnoodle-ai/wonton/cli"
)

const defaultDebounce = 300 * time.Millisecond

type mergeOptions struct {
	output   string
	diff     bool
	watch    bool
	exclude  []string
	debounce time.Duration
}

func (o mergeOptions) validate() error {
	if o.diff && o.output == "" {
		return errors.New("--diff requires --output")
	}
	if o.diff && o.watch {
		return errors.New("--diff cannot be combined with --watch")
	}
	if o.watch && o.debounce <= 0 {
		return errors.New("--debounce must be positive")
	}
	return nil
}

func registerMergeCommand(application *wontoncli.App, a *app) {
	application.Command("merge").
		Description("Merge bundle documents into one markdown file").
		Long(`Merge the CLAUDE.md documents of the given bundles, in order. Later
bundles take precedence where sections cannot be combined.

Examples:
  composer merge ./nextjs ./tailwind                 # print to stdout
  composer merge ./nextjs ./tailwind -o CLAUDE.md    # write a file
  composer merge ./nextjs ./tailwind -o CLAUDE.md --diff
  composer merge ./nextjs ./tailwind -o CLAUDE.md --watch`).
		Flags(
			wontoncli.String("output", "o").Help("Write the merged document to this file"),
			wontoncli.Bool("diff", "").Help("Show a diff against --output instead of writing it"),
			wontoncli.Bool("watch", "w").Help("Merge again whenever a bundle changes"),
			wontoncli.Strings("exclude", "").Help("Skip entity files matching this glob, e.g. agents/drafts/**. Can be specified multiple times"),
			wontoncli.String("debounce", "").Default(defaultDebounce.String()).Help("Quiet period before merging again in --watch mode"),
		).
		Run(func(ctx *wontoncli.Context) error {
			a.parseGlobalFlags(ctx)
			dirs, err := bundleDirs(ctx)
			if err != nil {
				return err
			}
			debounce, err := time.ParseDuration(ctx.String("debounce"))
			if err != nil {
				return wontoncli.Errorf("invalid --debounce: %v", err)
			}
			opts := mergeOptions{
				output:   ctx.String("output"),
				diff:     ctx.Bool("diff"),
				watch:    ctx.Bool("watch"),
				exclude:  ctx.Strings("exclude"),
				debounce: debounce,
			}
			goCtx, stop := signal.NotifyContext(log.WithLogger(context.Background(), a.logger), os.Interrupt)
			defer stop()
			return a.merge(goCtx, dirs, opts)
		})
}

// merge runs one merge and, with --watch, keeps merging until ctx is done.
func (a *app) merge(ctx context.Context, dirs []string, opts mergeOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if err := a.runMerge(dirs, opts); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}
	return a.watch(ctx, dirs, opts)
}

func (a *app) runMerge(dirs []string, opts mergeOptions) error {
	out, err := a.load(dirs, opts.exclude)
	if err != nil {
		return err
	}
	printDiagnostics(a.stderr, out.Diagnostics)

	switch {
	case opts.diff:
		current, err := os.ReadFile(opts.output)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		merged := keepGeneratedStamp(string(current), out.Markdown)
		d, err := unifiedDiff(string(current), merged, opts.output, opts.output)
		if err != nil {
			return err
		}
		if d == "" {
			fmt.Fprintln(a.stderr, successStyle.Sprintf("%s %s is up to date", checkmark, opts.output))
			return nil
		}
		fmt.Fprint(a.stdout, colorizeDiff(d))
		added, removed := diffStat(d)
		fmt.Fprintln(a.stderr, mutedStyle.Sprintf("%d additions, %d deletions", added, removed))
	case opts.output != "":
		if err := writeFileAtomic(opts.output, []byte(out.Markdown)); err != nil {
			return err
		}
		fmt.Fprintln(a.stderr, successStyle.Sprintf("%s wrote %s (%d sections from %d bundles)",
			checkmark, opts.output, len(out.Buckets), len(dirs)))
	default:
		fmt.Fprint(a.stdout, out.Markdown)
	}
	return nil
}
