package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/deepnoodle-ai/composer/log"
	"github.com/fsnotify/fsnotify"
)

// watchPatterns select the bundle files whose changes trigger a merge.
var watchPatterns = []string{
	"**/*.md",
	"**/bundle.{yaml,yml,json}",
	"**/settings.json",
	"**/hooks/**",
}

// isBundleFile reports whether a change to path can affect a merge. The
// merge output itself and temp files are ignored.
func isBundleFile(path, output string) bool {
	if output != "" {
		if abs, err := filepath.Abs(output); err == nil && abs == path {
			return false
		}
	}
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	slashed := strings.TrimPrefix(filepath.ToSlash(path), "/")
	for _, pattern := range watchPatterns {
		if ok, _ := doublestar.Match(pattern, slashed); ok {
			return true
		}
	}
	return false
}

// watch re-runs the merge on bundle changes until ctx is done. Merge errors
// are reported and watching continues.
func (a *app) watch(ctx context.Context, dirs []string, opts mergeOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := addRecursive(watcher, dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	logger := log.Ctx(ctx)
	fmt.Fprintln(a.stderr, mutedStyle.Sprintf("watching %d bundles, press Ctrl+C to stop", len(dirs)))

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(abs); err == nil && info.IsDir() {
					if err := addRecursive(watcher, abs); err != nil {
						logger.Warn("failed to watch directory", "dir", abs, "error", err)
					}
					continue
				}
			}
			if !isBundleFile(abs, opts.output) {
				continue
			}
			logger.Debug("bundle changed", "file", abs, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(opts.debounce)
			} else {
				timer.Reset(opts.debounce)
			}
			pending = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("file watcher error", "error", err)
		case <-pending:
			pending = nil
			if err := a.runMerge(dirs, opts); err != nil {
				PrintError(a.stderr, err)
			}
		}
	}
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
