package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/gocodequality/internal/chunker"
	"github.com/dshills/gocodequality/internal/dispatcher"
	"github.com/dshills/gocodequality/internal/logger"
	"github.com/dshills/gocodequality/pkg/types"
)

const (
	// DefaultPattern selects C# sources
	DefaultPattern = "*.cs"

	// DefaultExclude skips generated C# files
	DefaultExclude = `\.AssemblyAttributes\.cs|\.AssemblyInfo\.cs|\.Designer\.cs`

	// DefaultHardLimit is the hard limit used for folder analysis
	DefaultHardLimit = 3000

	// DefaultOverlapRatio is used when overlap is enabled
	DefaultOverlapRatio = 0.5
)

var (
	// ErrNoResults is returned when an analysis evaluated nothing
	ErrNoResults = errors.New("no results")

	// ErrNotDirectory is returned when the analysis root is not a directory
	ErrNotDirectory = errors.New("not a directory")
)

// Analyzer evaluates every matching file under a folder
type Analyzer struct {
	dispatcher *dispatcher.Dispatcher
	log        *logger.Logger
}

// Config contains configuration for an analysis run
type Config struct {
	Pattern    string           // Glob matched against file base names (default: *.cs)
	Exclude    string           // Regexp of paths to skip, empty disables exclusion
	Workers    int              // Number of files evaluated concurrently (default: runtime.NumCPU())
	Settings   chunker.Settings // Chunking settings
	OnProgress func(Progress)   // Called after each file, never concurrently
}

// DefaultConfig returns the settings used by the command line tool
func DefaultConfig() *Config {
	return &Config{
		Pattern: DefaultPattern,
		Exclude: DefaultExclude,
		Workers: runtime.NumCPU(),
		Settings: chunker.Settings{
			SoftLimit:    chunker.DefaultSoftLimit,
			HardLimit:    DefaultHardLimit,
			OverlapRatio: DefaultOverlapRatio,
		},
	}
}

// Progress reports how far an analysis has come
type Progress struct {
	TotalFiles int
	DoneFiles  int
	File       string // Last file finished
}

// Statistics contains statistics about an analysis run
type Statistics struct {
	FilesAnalyzed   int
	FilesSkipped    int // Excluded by pattern
	FilesFailed     int // Unreadable
	ChunksEvaluated int
	CacheHits       int
	ChunksUnscored  int // No usable JSON or no criteria
	MeanScore       float64
	Duration        time.Duration
	ErrorMessages   []string
}

// Report is the outcome of an analysis run
type Report struct {
	Root    string
	Results []types.EvaluatedChunk // Ordered by path, then start line
	Stats   Statistics
}

// New creates a new Analyzer
func New(d *dispatcher.Dispatcher, log *logger.Logger) *Analyzer {
	return &Analyzer{
		dispatcher: d,
		log:        logger.OrNop(log),
	}
}

// AnalyzeFolder evaluates every file under root matching config.
//
// Unreadable files are counted and reported in the statistics. Cache
// failures, an unreachable evaluation service and cancellation abort the
// whole run. ErrNoResults is returned together with the report when nothing
// was evaluated.
func (a *Analyzer) AnalyzeFolder(ctx context.Context, root string, config *Config) (*Report, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Pattern == "" {
		config.Pattern = DefaultPattern
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if err := config.Settings.Validate(); err != nil {
		return nil, err
	}
	if _, err := filepath.Match(config.Pattern, ""); err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %w", types.ErrConfiguration, config.Pattern, err)
	}

	var exclude *regexp.Regexp
	if config.Exclude != "" {
		re, err := regexp.Compile(config.Exclude)
		if err != nil {
			return nil, fmt.Errorf("%w: exclude %q: %w", types.ErrConfiguration, config.Exclude, err)
		}
		exclude = re
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}

	startTime := time.Now()
	report := &Report{Root: root}

	// Discover files
	files, skipped, err := a.discoverFiles(root, config.Pattern, exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	report.Stats.FilesSkipped = skipped

	// Evaluate files concurrently
	if err := a.analyzeFiles(ctx, root, files, config, report); err != nil {
		return nil, err
	}

	report.Stats.Duration = time.Since(startTime)
	if len(report.Results) == 0 {
		return report, ErrNoResults
	}
	return report, nil
}

// AnalyzeFile evaluates a single file. The document path is relative to root
// when root is not empty.
func (a *Analyzer) AnalyzeFile(ctx context.Context, root, path string, settings chunker.Settings) ([]types.EvaluatedChunk, error) {
	doc, err := readDocument(root, path)
	if err != nil {
		return nil, err
	}
	return a.dispatcher.EvaluateAll(ctx, doc, settings)
}

// discoverFiles finds the files to analyze in lexical order
func (a *Analyzer) discoverFiles(root, pattern string, exclude *regexp.Regexp) ([]string, int, error) {
	var files []string
	skipped := 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			// Skip hidden directories
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if ok, _ := filepath.Match(pattern, d.Name()); !ok {
			return nil
		}

		if exclude != nil && exclude.MatchString(path) {
			a.log.Info().Str("file", path).Msg("skipping excluded file")
			skipped++
			return nil
		}

		files = append(files, path)
		return nil
	})

	return files, skipped, err
}

// analyzeFiles evaluates files with a bounded worker pool
func (a *Analyzer) analyzeFiles(ctx context.Context, root string, files []string, config *Config, report *Report) error {
	perFile := make([][]types.EvaluatedChunk, len(files))

	var (
		done   atomic.Int32
		failed atomic.Int32
		mu     sync.Mutex // Protects ErrorMessages and progress callbacks
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			results, err := a.analyzeFile(gctx, root, path, config.Settings)
			if err != nil {
				if !errors.Is(err, errUnreadable) {
					return fmt.Errorf("%s: %w", path, err)
				}
				failed.Add(1)
				mu.Lock()
				report.Stats.ErrorMessages = append(report.Stats.ErrorMessages, err.Error())
				mu.Unlock()
			}
			perFile[i] = results

			n := int(done.Add(1))
			if config.OnProgress != nil {
				mu.Lock()
				config.OnProgress(Progress{TotalFiles: len(files), DoneFiles: n, File: path})
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	report.Results = slices.Concat(perFile...)
	report.Stats.FilesFailed = int(failed.Load())
	report.Stats.FilesAnalyzed = len(files) - report.Stats.FilesFailed
	summarize(report)
	return nil
}

var errUnreadable = errors.New("unreadable file")

// analyzeFile evaluates one file
func (a *Analyzer) analyzeFile(ctx context.Context, root, path string, settings chunker.Settings) ([]types.EvaluatedChunk, error) {
	doc, err := readDocument(root, path)
	if err != nil {
		a.log.Warn().Err(err).Str("file", path).Msg("failed to read file")
		return nil, err
	}

	a.log.Info().Str("file", doc.Path).Msg("evaluating")
	return a.dispatcher.EvaluateAll(ctx, doc, settings)
}

// readDocument loads path as a document named relative to root
func readDocument(root, path string) (types.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.Document{}, fmt.Errorf("%w: %w", errUnreadable, err)
	}

	name := path
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil {
			name = rel
		}
	}
	return types.Document{Path: filepath.ToSlash(name), Content: string(content)}, nil
}

// summarize fills the chunk statistics of report
func summarize(report *Report) {
	var total float64
	scored := 0
	for _, r := range report.Results {
		report.Stats.ChunksEvaluated++
		if r.CacheHit {
			report.Stats.CacheHits++
		}
		score, ok := r.Result.TryGetScore()
		if !ok {
			report.Stats.ChunksUnscored++
			continue
		}
		total += score
		scored++
	}
	if scored > 0 {
		report.Stats.MeanScore = total / float64(scored)
	}
}
