package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mikeger/Pecker/internal/config"
	"github.com/mikeger/Pecker/internal/discover"
	"github.com/mikeger/Pecker/internal/lang"
)

const watchDebounce = 250 * time.Millisecond

// watchAndAnalyze runs one analysis, then another after every burst of
// changes to Swift sources or configuration under root, until ctx is done.
// A failing run is logged and the watch continues.
func watchAndAnalyze(ctx context.Context, root string, opts options, logger *slog.Logger, stdout io.Writer) error {
	if err := analyze(root, opts, logger, stdout); err != nil {
		return err
	}

	configPath := ""
	if opts.configPath != "" {
		configPath, _ = filepath.Abs(opts.configPath)
	}
	relevant := func(path string) bool {
		return isWatchedPath(path, configPath)
	}

	return watchTree(ctx, root, watchDebounce, relevant, func(changed []string) {
		logger.Info("change detected, re-running", "files", len(changed))
		if err := analyze(root, opts, logger, stdout); err != nil {
			logger.Error("analysis failed", "err", err)
		}
	})
}

// isWatchedPath reports whether a change to path can alter the report.
func isWatchedPath(path, configPath string) bool {
	if configPath != "" && filepath.Clean(path) == filepath.Clean(configPath) {
		return true
	}
	if slices.Contains(config.FileNames, filepath.Base(path)) {
		return true
	}
	return lang.ForExtension(filepath.Ext(path)) != ""
}

// watchTree calls onChange with the sorted, de-duplicated paths of each
// burst of relevant events. A burst ends once no event arrived for debounce.
func watchTree(ctx context.Context, root string, debounce time.Duration, relevant func(string) bool, onChange func(changed []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	root = filepath.Clean(root)
	if err := addWatchRecursive(watcher, root); err != nil {
		return err
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	pending := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(event.Name)

			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
					if !discover.SkipDir(info.Name()) {
						_ = addWatchRecursive(watcher, path)
					}
					continue
				}
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !relevant(path) {
				continue
			}

			pending[path] = true
			timer.Reset(debounce)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			pending = map[string]bool{}
			onChange(changed)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return watchErr
		}
	}
}

func addWatchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && discover.SkipDir(entry.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
