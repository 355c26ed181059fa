package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/discovery"
	"github.com/ludo-technologies/ktscan/service"
	"github.com/spf13/cobra"
)

var (
	watchConfigPath string
	watchRoot       string
	watchFormat     string
	watchDebounce   time.Duration
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-analyze Kotlin files as they change",
		Long: `Watch the project root and run an incremental analysis over the files
saved since the last run. Excluded directories are not watched.

Examples:
  ktscan watch
  ktscan watch --debounce 2s --format json`,
		RunE: runWatch,
	}

	cmd.Flags().StringVarP(&watchConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringVar(&watchRoot, "root", "",
		"Project root (default from config)")
	cmd.Flags().StringVarP(&watchFormat, "format", "f", string(domain.OutputFormatText),
		"Output format: text, json, yaml, markdown")
	cmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond,
		"Quiet period before a batch of changes is analyzed")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(watchFormat)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(watchConfigPath, ".", service.ConfigOverrides{Root: watchRoot})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	eng, err := newEngine(ctx, cfg, service.NewProgressManager(false), slog.Default())
	if err != nil {
		return err
	}
	defer eng.close()

	w, err := newChangeWatcher(eng.scanner, watchDebounce, eng.logger)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.AddTree(cfg.Analysis.Root); err != nil {
		return err
	}
	cmd.PrintErrf("Watching %s (Ctrl+C to stop)\n", cfg.Analysis.Root)

	formatter := service.NewOutputFormatter()
	return w.Run(ctx, func(paths []string) {
		result, err := eng.analyze.RunIncremental(ctx, paths)
		if err != nil {
			eng.logger.Error("incremental analysis failed", "error", err)
			return
		}
		if err := formatter.WriteAnalysis(result, format, cmd.OutOrStdout()); err != nil {
			eng.logger.Error("failed to write result", "error", err)
		}
	})
}

// changeWatcher batches file system events into sets of changed source
// files. A batch is flushed once no event has arrived for the debounce
// interval.
type changeWatcher struct {
	fs       *fsnotify.Watcher
	scanner  *discovery.Scanner
	debounce time.Duration
	logger   *slog.Logger
}

func newChangeWatcher(scanner *discovery.Scanner, debounce time.Duration, logger *slog.Logger) (*changeWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, domain.NewDiscoveryError("failed to start file watcher", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &changeWatcher{fs: fw, scanner: scanner, debounce: debounce, logger: logger}, nil
}

// AddTree watches dir and every non-excluded directory below it
func (w *changeWatcher) AddTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return domain.NewDiscoveryError("cannot watch "+dir, err)
			}
			w.logger.Debug("skipping unreadable directory", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.scanner.IsExcludedDir(w.relative(path)) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Relevant reports whether a changed path should trigger analysis
func (w *changeWatcher) Relevant(path string) bool {
	return w.scanner.ShouldAnalyze(domain.FileDescriptor{RelativePath: w.relative(path)})
}

// Run delivers batches of changed files to onBatch until ctx is done
func (w *changeWatcher) Run(ctx context.Context, onBatch func(paths []string)) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.AddTree(event.Name); err != nil {
						w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.Relevant(event.Name) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.logger.Warn("file watcher overflowed; some changes were missed")
				continue
			}
			w.logger.Error("file watcher error", "error", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			w.logger.Debug("analyzing changed files", "count", len(paths))
			onBatch(paths)
		}
	}
}

// Close stops the underlying watcher
func (w *changeWatcher) Close() error {
	return w.fs.Close()
}

func (w *changeWatcher) relative(path string) string {
	rel, err := filepath.Rel(w.scanner.BaseDir(), path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
