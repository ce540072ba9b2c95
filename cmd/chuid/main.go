package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fritzkink/chuid/internal/config"
	"github.com/fritzkink/chuid/internal/engine"
	"github.com/fritzkink/chuid/internal/event"
	"github.com/fritzkink/chuid/internal/filter"
	"github.com/fritzkink/chuid/internal/idmap"
	"github.com/fritzkink/chuid/internal/platform"
	"github.com/fritzkink/chuid/internal/stats"
	"github.com/fritzkink/chuid/internal/ui"
)

var version = "dev"

// logFileName is created inside the directory given with -l.
const logFileName = "chuid_log"

// maxWorkers is the hard ceiling on the worker count.
const maxWorkers = 256

func main() {
	os.Exit(run())
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// startupExitCode maps a startup failure to the process exit code: the
// underlying errno when there is one, EXIT_FAILURE otherwise.
func startupExitCode(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	return 1
}

func run() int {
	var (
		mappingFile   string
		rootsFile     string
		excludeFile   string
		logDir        string
		workers       int
		busyThreshold float64
		interval      int
		singlePool    bool
		queueMode     bool
		dryRun        bool
		verbose       bool
		showVersion   bool
	)

	rootCmd := &cobra.Command{
		Use:           "chuid -i <mapping file> -d <directory file> -l <logdir>",
		Short:         "Fast, parallel rewrite of file ownership from a UID/GID mapping list",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "chuid %s\n", version)
				return nil
			}

			// Load optional config file and apply defaults for flags not
			// explicitly set on the CLI.
			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
			}
			applyConfigDefaults(cmd, cfg.Defaults,
				&workers, &busyThreshold, &interval, &singlePool, &queueMode)

			switch {
			case mappingFile == "":
				return errors.New("no uid mapping list file given (-i)")
			case rootsFile == "":
				return errors.New("no directory list file given (-d)")
			case logDir == "":
				return errors.New("no log directory given (-l)")
			case busyThreshold <= 0 || busyThreshold > 1:
				return fmt.Errorf("busy threshold %g outside (0, 1]", busyThreshold)
			case workers < 1:
				return fmt.Errorf("number of workers %d must be positive", workers)
			}

			// Cap the worker pool at maxWorkers, raise the descriptor limit
			// and shrink the pool further if it would not leave enough
			// descriptors free.
			clamped := false
			if workers > maxWorkers {
				workers = maxWorkers
				clamped = true
			}
			limit, _ := platform.RaiseFileLimit()
			if uint64(workers)+platform.OpenFilesOffset > limit {
				workers = max(int(limit)-platform.OpenFilesOffset, 1)
				clamped = true
			}

			logPath := filepath.Join(logDir, logFileName)
			logFile, err := os.Create(logPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: couldn't open log file <%s>: %v\n", logPath, err)
				return &exitError{code: startupExitCode(err)}
			}
			defer logFile.Close()

			fileHandler := ui.NewLogHandler(logFile, slog.LevelInfo)
			var handler slog.Handler = fileHandler
			if verbose {
				stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})
				handler = ui.NewMultiHandler(fileHandler, stderrHandler)
			}
			slog.SetDefault(slog.New(handler))

			runID := uuid.NewString()
			slog.Info("chuid started", "run", runID, "version", version)
			if clamped {
				slog.Info("worker count reduced",
					"workers", workers, "max_workers", maxWorkers, "open_files", limit)
			}
			if dryRun {
				slog.Info("dry run mode")
			}

			maps, err := idmap.ParseFile(mappingFile)
			if err != nil {
				slog.Error("couldn't read mapping list", "error", err)
				return &exitError{code: startupExitCode(err)}
			}
			roots, err := engine.LoadRoots(rootsFile)
			if err != nil {
				slog.Error("couldn't read directory list", "error", err)
				return &exitError{code: startupExitCode(err)}
			}
			if len(roots) == 0 {
				slog.Error("no file systems to work on")
				return &exitError{code: 1}
			}
			var exclude *filter.Exclusions
			if excludeFile != "" {
				exclude, err = filter.LoadFile(excludeFile)
				if err != nil {
					slog.Error("couldn't read exclude list", "error", err)
					return &exitError{code: startupExitCode(err)}
				}
			}

			slog.Debug("starting scan",
				"roots", len(roots),
				"uid_mappings", maps.UID.Len(),
				"gid_mappings", maps.GID.Len(),
				"excludes", exclude.Len(),
				"workers", workers,
				"busy_threshold", busyThreshold,
				"single_pool", singlePool,
				"breadth_first", queueMode,
			)

			// Workers drain out through the dispatcher on cancellation; the
			// signal is remembered so the log can name it.
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			var caught atomic.Value
			sigc := make(chan os.Signal, 1)
			signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
			defer signal.Stop(sigc)
			go func() {
				if s, ok := <-sigc; ok {
					caught.Store(s)
					cancel()
				}
			}()

			collector := stats.NewCollector()
			events := make(chan event.Event, 256)
			consumerDone := make(chan struct{})
			go func() {
				defer close(consumerDone)
				for ev := range events {
					if dryRun {
						fmt.Fprintln(os.Stdout, ev.ChangeLine())
					} else {
						slog.Info(ev.ChangeLine())
					}
				}
			}()

			result := engine.Run(ctx, engine.Config{
				Roots:         roots,
				Maps:          maps,
				Exclude:       exclude,
				Workers:       workers,
				BusyThreshold: busyThreshold,
				SinglePool:    singlePool,
				Queue:         queueMode,
				DryRun:        dryRun,
				Interval:      time.Duration(interval) * time.Second,
				Events:        events,
				Stats:         collector,
				ProgressW:     os.Stdout,
			})
			close(events)
			<-consumerDone

			if result.Err != nil {
				slog.Error("scan failed", "error", result.Err)
				return &exitError{code: 1}
			}
			if result.Interrupted {
				if s, ok := caught.Load().(os.Signal); ok {
					slog.Info(fmt.Sprintf("caught signal <%s>", s))
					fmt.Fprintf(os.Stderr, "\ncaught signal <%s>\n", s)
				}
				return &exitError{code: 1}
			}

			slog.Info("scan successfully completed", "run", runID)
			if verbose {
				fmt.Fprintln(os.Stderr, result.Stats.String())
			}
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&mappingFile, "input", "i", "",
		"file containing old-uid new-uid respectively old-gid new-gid pairs")
	rootCmd.Flags().StringVarP(&rootsFile, "dirs", "d", "",
		"file containing root directories where changes should take place")
	rootCmd.Flags().StringVarP(&excludeFile, "exclude", "e", "",
		"file containing directories/files to exclude from changes")
	rootCmd.Flags().StringVarP(&logDir, "logdir", "l", "",
		"directory which will contain the log output")
	rootCmd.Flags().IntVarP(&workers, "threads", "t", 20,
		"number of worker threads")
	rootCmd.Flags().Float64VarP(&busyThreshold, "busy", "b", 0.9,
		"busy threshold for working threads, in (0, 1]")
	rootCmd.Flags().IntVarP(&interval, "interval", "s", 0,
		"print statistics every SECONDS seconds")
	rootCmd.Flags().BoolVarP(&singlePool, "one-queue", "o", false,
		"one global queue instead of the fast/slow split")
	rootCmd.Flags().BoolVarP(&queueMode, "queue", "q", false,
		"queueing (breadth-first) instead of stack traversal")
	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false,
		"dry run, shows files to be changed")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose mode")
	rootCmd.Flags().BoolVar(&showVersion, "version", false,
		"print version and exit")

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// applyConfigDefaults applies config file defaults for flags not explicitly
// set on the CLI.
func applyConfigDefaults(
	cmd *cobra.Command,
	defaults config.DefaultsConfig,
	workers *int,
	busyThreshold *float64,
	interval *int,
	singlePool *bool,
	queueMode *bool,
) {
	if !cmd.Flags().Changed("threads") && defaults.Workers != nil {
		*workers = *defaults.Workers
	}
	if !cmd.Flags().Changed("busy") && defaults.BusyThreshold != nil {
		*busyThreshold = *defaults.BusyThreshold
	}
	if !cmd.Flags().Changed("interval") && defaults.Interval != nil {
		*interval = *defaults.Interval
	}
	if !cmd.Flags().Changed("one-queue") && defaults.SinglePool != nil {
		*singlePool = *defaults.SinglePool
	}
	if !cmd.Flags().Changed("queue") && defaults.Queue != nil {
		*queueMode = *defaults.Queue
	}
}
