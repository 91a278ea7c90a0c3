package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/dshills/gocodequality/internal/analyzer"
	"github.com/dshills/gocodequality/internal/app"
	"github.com/dshills/gocodequality/internal/config"
	"github.com/dshills/gocodequality/internal/logger"
	"github.com/dshills/gocodequality/internal/mcp"
	"github.com/dshills/gocodequality/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	args := os.Args[1:]
	serve := len(args) > 0 && args[0] == "serve"
	if serve {
		args = args[1:]
	}

	opts, err := parseFlags(args, serve)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(2)
	}

	// Handle version flag
	if opts.version {
		fmt.Printf("gocodequality\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		os.Exit(0)
	}

	if err := run(opts); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func run(opts *options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	opts.apply(cfg)

	// Log to stderr (stdout reserved for MCP protocol and results)
	logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log := logger.Get()

	// Set up graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Evaluator.Temperature != 0 {
		color.Yellow("Warning: a non-zero temperature gives non-deterministic results and bypasses the response cache")
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}

	if opts.serve {
		return serveMCP(ctx, a)
	}
	defer func() { _ = a.Close() }()

	return analyze(ctx, a, opts)
}

func serveMCP(ctx context.Context, a *app.App) error {
	log := logger.Named("mcp")
	log.Info().
		Str("version", version).
		Str("build_mode", storage.BuildMode).
		Str("backend", a.Evaluator.Backend()).
		Msg("MCP server starting")

	server, err := mcp.NewServer(a)
	if err != nil {
		_ = a.Close()
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	// Start server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		log.Info().Msg("MCP server ready, listening on stdio...")
		errChan <- server.Serve(ctx)
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		log.Info().Msg("received signal, shutting down gracefully...")
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	log.Info().Msg("server stopped")
	return nil
}

func analyze(ctx context.Context, a *app.App, opts *options) error {
	if opts.folder == "" {
		return errors.New("--folder is required")
	}

	cfg := a.Config.AnalyzerConfig()

	color.Blue("\nAnalyzing %s (%s) with %s\n", opts.folder, cfg.Pattern, a.Evaluator.Backend())

	var bar *progressbar.ProgressBar
	cfg.OnProgress = func(p analyzer.Progress) {
		if bar == nil {
			bar = getProgressBar(p.TotalFiles, "Evaluating")
		}
		bar.Describe(color.BlueString("Evaluating %s", filepath.Base(p.File)))
		_ = bar.Set(p.DoneFiles)
	}

	report, err := a.Analyzer.AnalyzeFolder(ctx, opts.folder, cfg)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil && (report == nil || !errors.Is(err, analyzer.ErrNoResults)) {
		return err
	}

	stats := report.Stats
	color.Green("\n✓ Evaluated %d chunks in %d files (%d cached, %d unscored) in %s\n",
		stats.ChunksEvaluated, stats.FilesAnalyzed, stats.CacheHits, stats.ChunksUnscored,
		stats.Duration.Round(time.Millisecond))
	if stats.FilesSkipped > 0 {
		color.Cyan("Skipped %d generated files\n", stats.FilesSkipped)
	}
	for _, msg := range stats.ErrorMessages {
		color.Red("Failed: %s\n", msg)
	}
	if err != nil {
		return err
	}
	color.Cyan("Mean score: %.2f\n", stats.MeanScore)

	resultPath := opts.resultPath
	if resultPath == "" {
		resultPath = analyzer.DefaultReportPath(time.Now())
	}
	if err := analyzer.WriteReportFile(resultPath, report.Results); err != nil {
		return err
	}

	color.Green("Results saved to %s\n", resultPath)
	return nil
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}
