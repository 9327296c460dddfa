package cmd

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/tmbliss/internal/config"
	"github.com/Aman-CERP/tmbliss/internal/errors"
	"github.com/Aman-CERP/tmbliss/internal/lock"
	"github.com/Aman-CERP/tmbliss/internal/marker"
	"github.com/Aman-CERP/tmbliss/internal/output"
	"github.com/Aman-CERP/tmbliss/internal/rules"
	"github.com/Aman-CERP/tmbliss/internal/watcher"
)

func newServiceCmd() *cobra.Command {
	var (
		path   string
		dryRun optionalBool
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "service",
		Short: "Run with a configuration file, for launchd, systemd or cron",
		Long: `Run with a configuration file like 'conf', framed by "started", "dry run"
and "ended" lines. The labels listed in service.suppress (default: excluded)
are not printed.

Only one service run is active at a time: when another process holds the
service lock the run is skipped. With --watch the service stays up and runs
again whenever a .gitignore or .tmbliss file changes, or a directory is
created, under the configured paths.`,
		Example: `  tmbliss service --path ~/.config/tmbliss.yaml
  tmbliss service --path ~/.config/tmbliss.yaml --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConf(path, &dryRun)
			if err != nil {
				return err
			}
			return runService(cmd, conf, watch)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Configuration file path")
	cmd.Flags().Var(&dryRun, "dry-run", "Dry run; overrides the configuration file when given (true|false)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running and re-run after relevant filesystem changes")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

func runService(cmd *cobra.Command, conf *config.Conf, watch bool) error {
	lockPath := conf.Service.LockPath
	if lockPath == "" {
		lockPath = config.DefaultLockPath()
	}

	l := lock.New(lockPath)
	if err := l.Acquire(); err != nil {
		if stderrors.Is(err, errors.ErrServiceLocked) {
			slog.Info("service already running, skipping", slog.String("lock", lockPath))
			return nil
		}
		return err
	}
	defer func() { _ = l.Unlock() }()

	store, closeStore, err := openStore(conf.StoreOptions())
	if err != nil {
		return err
	}
	defer closeStore()

	reporter := newReporter(cmd, output.WithFilter(output.SuppressLabels(conf.Service.Suppress...)))
	eng := newEngine(store, conf.Git.GlobalExcludes, reporter)
	rs := conf.RuleSet()

	pass := func(ctx context.Context) error {
		reporter.Event(output.LabelStarted, now())
		reporter.Event(output.LabelDryRun, strconv.FormatBool(rs.DryRun))
		if err := mark(ctx, eng, rs, conf.Paths); err != nil {
			return err
		}
		reporter.Event(output.LabelEnded, now())
		return nil
	}

	ctx := cmd.Context()
	if err := pass(ctx); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	debounce, err := conf.WatchDebounce()
	if err != nil {
		return errors.ConfigError(err.Error(), err)
	}
	return watchAndRerun(ctx, conf.Paths, watcher.Options{
		DebounceWindow: debounce,
		SkipDir:        watchSkip(rs, store),
	}, pass)
}

// watchSkip leaves skipped subtrees and already excluded directories out of
// the watch set.
func watchSkip(rs rules.RuleSet, store marker.Store) watcher.SkipFunc {
	return func(dir string) bool {
		if rs.MatchesSkipPath(dir) || rs.MatchesSkipGlob(dir) {
			return true
		}
		excluded, err := store.IsExcluded(dir)
		return err == nil && excluded
	}
}

// watchAndRerun calls pass after every debounced batch of changes until ctx
// is done. A failed pass is logged and watching continues.
func watchAndRerun(ctx context.Context, roots []string, opts watcher.Options, pass func(context.Context) error) error {
	w, err := watcher.New(opts)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err)
	}
	defer func() { _ = w.Stop() }()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := w.Start(gctx, roots)
		if stderrors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case batch, ok := <-w.Events():
				if !ok {
					return nil
				}
				slog.Debug("change detected, re-running",
					slog.Int("changes", len(batch)),
					slog.String("first", batch[0].Path),
					slog.String("trigger", batch[0].Trigger.String()))

				started := time.Now()
				if err := pass(gctx); err != nil {
					if gctx.Err() != nil {
						return nil
					}
					slog.Error("re-run failed", errors.LogAttrs(err)...)
					continue
				}
				slog.Debug("re-run finished", slog.Duration("took", time.Since(started)))
			case err, ok := <-w.Errors():
				if !ok {
					return nil
				}
				slog.Warn("watch error", slog.String("error", err.Error()))
			}
		}
	})

	return g.Wait()
}
