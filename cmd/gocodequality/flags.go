package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dshills/gocodequality/internal/config"
	"github.com/dshills/gocodequality/internal/evaluator"
)

const usageHeader = `Usage: gocodequality [OPTIONS]
       gocodequality serve [OPTIONS]

Scores the code quality of source files with a chat model. Without a
subcommand, every file under --folder matching --pattern is evaluated and the
results are written to a JSON file. "serve" starts an MCP server on stdio.

Options:
`

// options holds parsed command line flags. Only flags set explicitly
// override the configuration file.
type options struct {
	serve      bool
	version    bool
	configPath string
	folder     string
	resultPath string

	pattern     string
	dbPath      string
	promptPath  string
	apiKey      string
	backend     string
	model       string
	temperature float64
	workers     int
	overlap     bool
	writeThru   bool

	set map[string]bool
}

func parseFlags(args []string, serve bool) (*options, error) {
	return parseFlagsTo(args, serve, os.Stderr)
}

func parseFlagsTo(args []string, serve bool, output io.Writer) (*options, error) {
	opts := &options{serve: serve, set: make(map[string]bool)}

	fs := flag.NewFlagSet("gocodequality", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		_, _ = fmt.Fprint(output, usageHeader)
		fs.PrintDefaults()
	}

	fs.BoolVar(&opts.version, "version", false, "Print version information")
	fs.StringVar(&opts.configPath, "config", "", "Path to config file (default: ./"+config.FileName+" or ~/.config/gocodequality/config.yaml)")
	if !serve {
		fs.StringVar(&opts.folder, "folder", "", "Folder to analyze [REQUIRED]")
		fs.StringVar(&opts.resultPath, "result", "", "Path of the JSON results file (default: results_<timestamp>.json)")
	}

	fs.StringVar(&opts.pattern, "pattern", "*.cs", "Pattern to match file names")
	fs.StringVar(&opts.dbPath, "db", "", "Cache database path or postgres:// URL (default: ~/"+config.DefaultDBName+")")
	fs.StringVar(&opts.promptPath, "prompt", config.DefaultPromptPath, "Path to the prompt file")
	fs.StringVar(&opts.apiKey, "apikey", "", "API key (default: $OPENAI_API_KEY or $ANTHROPIC_API_KEY)")
	fs.StringVar(&opts.backend, "evaluator", "", "Evaluator backend: openai, anthropic, ollama or mock")
	fs.StringVar(&opts.model, "model", "", "Model name (default: chosen by the backend)")
	fs.Float64Var(&opts.temperature, "temperature", 0, "Sampling temperature; non-zero values bypass the cache (EXPERIMENTAL)")
	fs.IntVar(&opts.workers, "workers", 0, "Files evaluated concurrently (default: number of CPUs)")
	fs.BoolVar(&opts.overlap, "overlap", false, "Repeat the tail of each chunk at the start of the next")
	fs.BoolVar(&opts.writeThru, "write-through", false, "Cache chunk results, not only raw responses")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// apply overrides cfg with the flags given on the command line
func (o *options) apply(cfg *config.Config) {
	if o.set["pattern"] {
		cfg.Analyzer.Pattern = o.pattern
	}
	if o.set["db"] {
		cfg.Cache.Path = o.dbPath
	}
	if o.set["prompt"] {
		cfg.Evaluator.PromptPath = o.promptPath
	}
	if o.set["evaluator"] {
		cfg.Evaluator.Backend = o.backend
		if key := evaluator.APIKeyFromEnv(o.backend); key != "" {
			cfg.Evaluator.APIKey = key
		}
	}
	if o.set["apikey"] {
		cfg.Evaluator.APIKey = o.apiKey
	}
	if o.set["model"] {
		cfg.Evaluator.Model = o.model
	}
	if o.set["temperature"] {
		cfg.Evaluator.Temperature = o.temperature
	}
	if o.set["workers"] {
		cfg.Analyzer.Workers = o.workers
	}
	if o.set["overlap"] {
		cfg.Chunking.AllowOverlap = o.overlap
	}
	if o.set["write-through"] {
		cfg.Cache.WriteThrough = o.writeThru
	}
}
