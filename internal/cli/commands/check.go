package commands

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/dspeclang/dspec/internal/config"
	"github.com/dspeclang/dspec/pkg/compiler"
)

// errCheckFailed signals a non-zero exit without extra error output;
// the diagnostics already explain the failure.
var errCheckFailed = errors.New("schema check failed")

// debounceWindow coalesces bursts of filesystem events into one
// recompile.
const debounceWindow = 200 * time.Millisecond

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Compile schemas and report diagnostics",
		Long: `Compile the schema files in the project (or the given files) and
report every diagnostic. The exit code is non-zero when any diagnostic
has error severity.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := ConfigFrom(ctx)
			log := LoggerFrom(ctx)
			if watch {
				return runWatch(ctx, cmd.OutOrStdout(), cfg, log, args)
			}
			return runCheck(ctx, cmd.OutOrStdout(), cfg, log, args)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Recompile whenever schema files change")
	return cmd
}

// runCheck performs one compile-and-report pass.
func runCheck(ctx context.Context, w io.Writer, cfg *config.Config, log *slog.Logger, args []string) error {
	units, err := loadUnits(cfg, args)
	if err != nil {
		return err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	res, err := compiler.Compile(ctx, units, compiler.Options{
		Policy:      policy,
		Parallelism: cfg.Parallelism,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	if err := renderResult(w, res, cfg.Output); err != nil {
		return err
	}
	if res.HasErrors() {
		return errCheckFailed
	}
	return nil
}

// runWatch runs an initial check, then recompiles whenever files under
// the schema directory change. Failed checks do not stop the loop.
func runWatch(ctx context.Context, w io.Writer, cfg *config.Config, log *slog.Logger, args []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDir(watcher, cfg.SchemaDir); err != nil {
		return err
	}
	log.Info("watching for changes", "dir", cfg.SchemaDir)

	runPass(ctx, w, cfg, log, args)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				// A new subdirectory needs its own watch.
				_ = watchDir(watcher, ev.Name)
			}
			if filepath.Ext(ev.Name) != cfg.Ext {
				continue
			}
			debounce = time.After(debounceWindow)

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", werr)

		case <-debounce:
			debounce = nil
			runPass(ctx, w, cfg, log, args)
		}
	}
}

// runPass runs one check pass inside the watch loop, reporting but
// swallowing failures so the loop keeps running.
func runPass(ctx context.Context, w io.Writer, cfg *config.Config, log *slog.Logger, args []string) {
	log.Info("checking schemas", "time", time.Now().Format("15:04:05"))
	if err := runCheck(ctx, w, cfg, log, args); err != nil && !errors.Is(err, errCheckFailed) {
		log.Error("check failed", "error", err)
	}
}

// watchDir adds dir and its non-hidden subdirectories to the watcher.
func watchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
