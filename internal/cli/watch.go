// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ngxspec/ngxspec/internal/config"
	"github.com/ngxspec/ngxspec/internal/logging"
	"github.com/ngxspec/ngxspec/internal/ngxconf"
	"github.com/ngxspec/ngxspec/internal/openapi"
	"github.com/ngxspec/ngxspec/internal/scanner"
)

var (
	watchMode     string
	watchDebounce int
)

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Watch for file changes and regenerate specification",
	Long: `Watch for file changes and automatically regenerate the OpenAPI specification.

Source directories and the directories of the nginx configuration and
its includes are monitored. A burst of changes triggers one regeneration once the files have
been quiet for the debounce duration.

Example:
  ngxspec watch                          # Watch current directory
  ngxspec watch ./service                # Watch specific paths
  ngxspec watch --debounce 1000          # Wait 1s before regenerating`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchMode, "mode", "m", "", "generation mode: full, routes-only, schemas-only")
	watchCmd.Flags().IntVar(&watchDebounce, "debounce", 0, "debounce duration in milliseconds (default: from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Apply command-line overrides
	if watchMode != "" {
		cfg.Generation.Mode = watchMode
	}
	if watchDebounce > 0 {
		cfg.Watch.Debounce = watchDebounce
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	paths := args
	if len(paths) == 0 {
		paths = cfg.Source.Paths
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("cannot watch %s: %w", p, err)
		}
	}

	confDirs, err := nginxDirs(cfg)
	if err != nil {
		return err
	}
	dirs, err := watchDirs(cfg, paths, confDirs)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	printVerbose("Watch configuration:")
	printVerbose("  Mode: %s", cfg.Generation.Mode)
	printVerbose("  Debounce: %dms", cfg.Watch.Debounce)
	printVerbose("  Directories: %d", len(dirs))

	regenerate := func() {
		doc, err := generateSpec(cmd.Context(), cfg, paths)
		if err != nil {
			printError("%v", err)
			return
		}
		if err := openapi.NewWriter().WriteFile(doc, cfg.Output, cfg.Format); err != nil {
			printError("%v", err)
			return
		}
		printInfo("[%s] Wrote %d paths to %s", time.Now().Format(time.TimeOnly), len(doc.Paths), cfg.Output)
	}

	regenerate()
	printInfo("Watching for changes in: %s", strings.Join(paths, ", "))
	printInfo("Press Ctrl+C to stop")

	debounce := time.Duration(cfg.Watch.Debounce) * time.Millisecond
	watchLoop(cmd.Context(), watcher, debounce, relevantChange(confDirs), regenerate)
	return nil
}

// watchDirs lists the source directories followed by the nginx
// configuration directories.
func watchDirs(cfg *config.Config, paths, confDirs []string) ([]string, error) {
	s := scanner.New(scanner.Config{
		IncludePatterns: cfg.Source.Include,
		ExcludePatterns: cfg.Source.Exclude,
	})
	dirs, err := s.Dirs(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to list directories: %w", err)
	}
	for _, dir := range confDirs {
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs, nil
}

// nginxDirs lists the directories of the nginx configuration and of every
// file it includes. When the configuration does not load, only its own
// directory is returned.
func nginxDirs(cfg *config.Config) ([]string, error) {
	if !cfg.Nginx.Enabled {
		return nil, nil
	}
	files := []string{cfg.Nginx.Location}
	if root, err := loadNginx(cfg); err == nil {
		files = ngxconf.Files(root)
	} else {
		logging.Logger("watch").Warn("watching the nginx config directory only", slog.Any("error", err))
	}

	var dirs []string
	for _, f := range files {
		dir, err := filepath.Abs(filepath.Dir(f))
		if err != nil {
			return nil, err
		}
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs, nil
}

// relevantChange reports whether a changed file can affect the document.
// Any file in an nginx configuration directory counts, so that includes
// added to a glob directory are picked up.
func relevantChange(confDirs []string) func(string) bool {
	return func(name string) bool {
		if scanner.IsSupportedFile(name) {
			return true
		}
		abs, err := filepath.Abs(name)
		return err == nil && slices.Contains(confDirs, filepath.Dir(abs))
	}
}

// watchLoop calls run once the watched files have been quiet for debounce
// after a relevant change. It returns when ctx is done or the watcher is
// closed. New directories are watched as they appear.
func watchLoop(ctx context.Context, w *fsnotify.Watcher, debounce time.Duration, relevant func(string) bool, run func()) {
	log := logging.Logger("watch")

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.Add(event.Name); err != nil {
						log.Warn("failed to watch new directory", slog.String("dir", event.Name), slog.Any("error", err))
					}
					continue
				}
			}
			if event.Has(fsnotify.Chmod) || !relevant(event.Name) {
				continue
			}
			log.Debug("change detected", slog.String("file", event.Name), slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			run()

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warn("watch error", slog.Any("error", err))
		}
	}
}
