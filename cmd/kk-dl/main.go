package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kksliderdl/kk-downloader/internal/config"
	"github.com/kksliderdl/kk-downloader/internal/download"
)

var (
	configPath  string
	outputDir   string
	concurrency int
	retries     int
	playlist    bool
	dryRun      bool
	verbose     bool
)

func main() {
	root := &cobra.Command{
		Use:          "kk-dl",
		Short:        "Download the K.K. Slider discography from Nookipedia",
		Long:         "kk-dl mirrors every K.K. Slider song from the Nookipedia wiki:\ncover art plus all audio variants, with a JSON metadata snapshot.",
		SilenceUsage: true,
		RunE:         run,
	}

	flags := root.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to config file")
	flags.StringVarP(&outputDir, "output", "o", "", "output directory (overrides config)")
	flags.IntVar(&concurrency, "concurrency", 0, "max concurrent downloads (overrides config)")
	flags.IntVar(&retries, "retries", 0, "max attempts per request (overrides config)")
	flags.BoolVarP(&playlist, "playlist", "p", false, "write an M3U playlist of the downloaded files")
	flags.BoolVarP(&dryRun, "dry-run", "n", false, "extract metadata and write the snapshot without downloading")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if outputDir != "" {
		settings.OutputDir = outputDir
	}
	if concurrency > 0 {
		settings.MaxConcurrentDownloads = concurrency
	}
	if retries > 0 {
		settings.MaxRetries = retries
	}
	if playlist {
		settings.CreatePlaylist = true
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else if level, err := log.ParseLevel(settings.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx, cancel := context.WithCancel(log.WithContext(cmd.Context(), logger))
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("interrupted, cancelling")
		cancel()
	}()

	manager, err := download.NewManager(settings, func(event download.ProgressEvent) {
		switch event.Level {
		case download.LevelError:
			logger.Error(event.Message)
		case download.LevelWarning:
			logger.Warn(event.Message)
		case download.LevelVerbose:
			logger.Debug(event.Message)
		default:
			logger.Info(event.Message)
		}
	})
	if err != nil {
		return err
	}
	manager.DryRun = dryRun

	result, err := manager.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			logger.Error("run cancelled")
			os.Exit(130)
		}
		return err
	}

	printSummary(manager, result)

	// Partial failures are itemized above but do not fail the process;
	// everything that could be downloaded is on disk.
	return nil
}

func printSummary(manager *download.Manager, result *download.RunResult) {
	done, total, bytes := manager.Progress()

	fmt.Println()
	fmt.Printf("Songs found:        %d\n", result.Discovered)
	fmt.Printf("Metadata extracted: %d\n", result.Extracted)
	if !manager.DryRun {
		fmt.Printf("Files downloaded:   %d/%d (%s)\n", done, total, humanize.Bytes(uint64(bytes)))
		fmt.Printf("Songs complete:     %d\n", result.Downloaded)
	}

	for _, f := range result.ExtractionFailures {
		fmt.Printf("  skipped %s: %v\n", f.URL, f.Err)
	}
	for _, rep := range result.FailureReports {
		for _, af := range rep.Failures {
			fmt.Printf("  failed %s / %s: %v\n", rep.Song.Title, af.Asset, af.Err)
		}
	}
}
