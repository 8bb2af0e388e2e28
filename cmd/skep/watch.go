package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/boshu2/skeptic/internal/scenario"
	"github.com/boshu2/skeptic/internal/verify"
)

var watchCmd = &cobra.Command{
	Use:   "watch <suite.yaml>",
	Short: "Re-run a suite when source files change",
	Long: `Watch the suite's working directory and re-run verification after
every change, debounced so a burst of saves triggers one run.

Stops on Ctrl-C. Each triggered run is recorded in the ledger like a
normal 'skep run'.

Examples:
  skep watch suites/unit.yaml
  skep watch suites/unit.yaml -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	suitePath := args[0]
	suite, err := scenario.Load(suitePath)
	if err != nil {
		return err
	}

	debounce, err := time.ParseDuration(cfg.Watch.Debounce)
	if err != nil {
		return fmt.Errorf("invalid debounce %q: %w", cfg.Watch.Debounce, err)
	}

	watchRoot := suite.Workdir
	if watchRoot == "" {
		if watchRoot, err = os.Getwd(); err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
	}
	absRoot, err := filepath.Abs(watchRoot)
	if err != nil {
		return fmt.Errorf("resolve watch root: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchTree(watcher, absRoot); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := newLogger(cfg)
	log.Info().Str("root", absRoot).Dur("debounce", debounce).Msg("watching")

	runOnce := func() {
		rep, err := executeSuite(ctx, cfg, log, nil, suitePath)
		if err != nil {
			log.Error().Err(err).Msg("run failed")
			return
		}
		if err := writeReportOutput(cfg, rep); err != nil {
			log.Error().Err(err).Msg("render report")
			return
		}
		if fakes := rep.Verdicts[verify.VerdictFake]; fakes > 0 {
			log.Warn().Int("fake_cases", fakes).Msg("fabrication detected")
		}
	}

	// Initial run before waiting on events.
	runOnce()

	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantWatchEvent(event) {
				continue
			}
			// New directories join the watch set.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addWatchTree(watcher, event.Name)
				}
			}
			log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("change detected")
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")

		case <-pending:
			runOnce()
		}
	}
}

// addWatchTree registers root and every directory below it, skipping the
// same trees the hunter skips.
func addWatchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (name == ".git" || name == ".skeptic" || name == "vendor" ||
			name == "node_modules" || name == "__pycache__" || name == ".venv") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// relevantWatchEvent filters events down to source and suite file changes.
func relevantWatchEvent(event fsnotify.Event) bool {
	if event.Op.Has(fsnotify.Chmod) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".bak") || strings.HasSuffix(base, "~") {
		return false
	}
	switch filepath.Ext(base) {
	case ".py", ".go", ".yaml", ".yml":
		return true
	}
	// Directory creation has no useful extension.
	info, err := os.Stat(event.Name)
	return err == nil && info.IsDir()
}
