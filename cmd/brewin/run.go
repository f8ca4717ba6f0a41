package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"brewin/interpreter-go/pkg/driver"
	"brewin/interpreter-go/pkg/interpreter"
)

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

type runOptions struct {
	inputs   stringList
	maxDepth int
	trace    bool
	logLevel string
	ast      bool
	git      string
	rev      string
	tag      string
	branch   string
}

func runEntry(args []string) int {
	var opts runOptions
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = printUsage
	fs.Var(&opts.inputs, "input", "inputi line (repeatable)")
	fs.IntVar(&opts.maxDepth, "max-depth", 0, "maximum nested function calls")
	fs.BoolVar(&opts.trace, "trace", false, "log every executed statement")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level")
	fs.BoolVar(&opts.ast, "ast", false, "treat the program file as a JSON element tree")
	fs.StringVar(&opts.git, "git", "", "git repository holding the program")
	fs.StringVar(&opts.rev, "rev", "", "git revision")
	fs.StringVar(&opts.tag, "tag", "", "git tag")
	fs.StringVar(&opts.branch, "branch", "", "git branch")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	rest := fs.Args()
	if len(rest) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(rest[1:], " "))
		return 1
	}

	searchDir := "."
	if len(rest) == 1 && opts.git == "" {
		searchDir = filepath.Dir(rest[0])
	}
	var cfg *driver.Config
	if path, ok := driver.FindConfig(searchDir); ok {
		loaded, err := driver.LoadConfig(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			return 1
		}
		cfg = loaded
	}

	level, err := parseLevel(opts.logLevel, cfg.Level())
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --log-level %q\n", opts.logLevel)
		return 1
	}
	logger := newRunLogger(os.Stderr, level)
	ctx := context.Background()

	entry, err := resolveEntry(ctx, rest, opts, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	load := driver.LoadProgram
	if opts.ast {
		load = driver.LoadTree
	}
	program, err := load(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	interpOpts := []interpreter.Option{
		interpreter.WithStdout(os.Stdout),
		interpreter.WithStdin(os.Stdin),
		interpreter.WithLogger(logger),
		interpreter.WithTrace(opts.trace || (cfg != nil && cfg.Trace)),
	}
	switch {
	case len(opts.inputs) > 0:
		interpOpts = append(interpOpts, interpreter.WithInput(opts.inputs))
	case cfg != nil && len(cfg.Inputs) > 0:
		interpOpts = append(interpOpts, interpreter.WithInput(cfg.Inputs))
	}
	switch {
	case opts.maxDepth > 0:
		interpOpts = append(interpOpts, interpreter.WithMaxCallDepth(opts.maxDepth))
	case cfg != nil && cfg.MaxCallDepth > 0:
		interpOpts = append(interpOpts, interpreter.WithMaxCallDepth(cfg.MaxCallDepth))
	}

	logger.InfoContext(ctx, "running program", slog.String("entry", entry))
	interp := interpreter.New(interpOpts...)
	if _, err := interp.Run(program); err != nil {
		reportRunError(err)
		return 1
	}
	return 0
}

// resolveEntry picks the program path from the arguments, the git flags, or brewin.yml.
func resolveEntry(ctx context.Context, rest []string, opts runOptions, cfg *driver.Config, logger *slog.Logger) (string, error) {
	if opts.git != "" {
		if len(rest) != 1 {
			return "", errors.New("brewin run --git requires the program path inside the repository")
		}
		return fetchEntry(ctx, &driver.SourceSpec{
			Git:    opts.git,
			Rev:    opts.rev,
			Tag:    opts.tag,
			Branch: opts.branch,
			Path:   rest[0],
		}, logger)
	}
	if len(rest) == 1 {
		return rest[0], nil
	}
	if cfg != nil {
		if entry := cfg.EntryPath(); entry != "" {
			return entry, nil
		}
		if cfg.Source != nil {
			return fetchEntry(ctx, cfg.Source, logger)
		}
	}
	return "", errors.New("brewin run requires a program file (no brewin.yml with main or source found)")
}

func fetchEntry(ctx context.Context, spec *driver.SourceSpec, logger *slog.Logger) (string, error) {
	cacheDir, err := driver.DefaultCacheDir()
	if err != nil {
		return "", err
	}
	fetched, err := driver.NewGitFetcher(cacheDir).Fetch(ctx, spec)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", spec.Git, err)
	}
	logger.InfoContext(ctx, "fetched program",
		slog.String("git", spec.Git),
		slog.String("version", fetched.Version),
		slog.String("commit", fetched.Commit),
	)
	return fetched.Path, nil
}

func reportRunError(err error) {
	var runErr *interpreter.Error
	if errors.As(err, &runErr) {
		fmt.Fprintln(os.Stderr, runErr.Describe())
		return
	}
	fmt.Fprintln(os.Stderr, err.Error())
}
