package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	goruntime "runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"brewin/interpreter-go/pkg/driver"
	"brewin/interpreter-go/pkg/interpreter"
)

const defaultFixturesDir = "fixtures"

type fixtureResult struct {
	fixture *driver.Fixture
	err     error
}

func runTests(args []string) int {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = printUsage
	jobs := fs.Int("j", goruntime.GOMAXPROCS(0), "fixtures to run concurrently")
	logLevel := fs.String("log-level", "", "log level")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	level, err := parseLevel(*logLevel, slog.LevelWarn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --log-level %q\n", *logLevel)
		return 1
	}
	logger := newRunLogger(os.Stderr, level)

	roots := fs.Args()
	if len(roots) == 0 {
		roots = []string{defaultFixturesDir}
	}
	var fixtures []*driver.Fixture
	for _, root := range roots {
		found, err := driver.DiscoverFixtures(root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		fixtures = append(fixtures, found...)
	}
	if len(fixtures) == 0 {
		fmt.Fprintln(os.Stderr, "no fixtures found")
		return 1
	}

	results := runFixtures(context.Background(), fixtures, *jobs, logger)
	failed := 0
	for _, res := range results {
		if res.err != nil {
			failed++
			fmt.Fprintf(os.Stdout, "FAIL %s: %v\n", res.fixture.Name, res.err)
			continue
		}
		fmt.Fprintf(os.Stdout, "ok   %s\n", res.fixture.Name)
	}
	fmt.Fprintf(os.Stdout, "%d passed, %d failed\n", len(results)-failed, failed)
	if failed > 0 {
		return 1
	}
	return 0
}

// runFixtures checks every fixture with its own interpreter. Results keep the input order.
func runFixtures(ctx context.Context, fixtures []*driver.Fixture, jobs int, logger *slog.Logger) []fixtureResult {
	results := make([]fixtureResult, len(fixtures))
	group, ctx := errgroup.WithContext(ctx)
	if jobs < 1 {
		jobs = 1
	}
	group.SetLimit(jobs)
	for idx, fixture := range fixtures {
		idx, fixture := idx, fixture
		group.Go(func() error {
			results[idx] = fixtureResult{fixture: fixture, err: checkFixture(ctx, fixture, logger)}
			return nil
		})
	}
	_ = group.Wait()
	return results
}

func checkFixture(ctx context.Context, fixture *driver.Fixture, logger *slog.Logger) error {
	program, err := driver.LoadProgram(fixture.Program)
	if err != nil {
		return err
	}
	logger.DebugContext(ctx, "running fixture", slog.String("fixture", fixture.Name))
	interp := interpreter.New(
		interpreter.WithStdout(io.Discard),
		interpreter.WithInput(fixture.Input),
		interpreter.WithLogger(logger.With(slog.String("fixture", fixture.Name))),
	)
	_, runErr := interp.Run(program)

	if fixture.ErrorKind == "" {
		if runErr != nil {
			return fmt.Errorf("unexpected error: %w", runErr)
		}
	} else {
		want, ok := interpreter.ParseErrorKind(fixture.ErrorKind)
		if !ok {
			return fmt.Errorf("unknown error kind %q in %s", fixture.ErrorKind, driver.FixtureManifestName)
		}
		got, ok := interpreter.KindOf(runErr)
		if !ok {
			return fmt.Errorf("expected %s, got %v", want, runErr)
		}
		if got != want {
			return fmt.Errorf("expected %s, got %v", want, runErr)
		}
		if fixture.ErrorMessage != "" && !strings.Contains(runErr.Error(), fixture.ErrorMessage) {
			return fmt.Errorf("error %q does not mention %q", runErr.Error(), fixture.ErrorMessage)
		}
	}
	if got := interp.Output(); !slices.Equal(fixture.Stdout, got) {
		return fmt.Errorf("output mismatch:\n%s", outputDiff(fixture.Stdout, got))
	}
	return nil
}

// outputDiff lists the differing lines as -want/+got pairs.
func outputDiff(want, got []string) string {
	var b strings.Builder
	for idx, n := 0, max(len(want), len(got)); idx < n; idx++ {
		w, hasWant := lineAt(want, idx)
		g, hasGot := lineAt(got, idx)
		if hasWant && hasGot && w == g {
			continue
		}
		if hasWant {
			fmt.Fprintf(&b, "  line %d: -%q\n", idx+1, w)
		}
		if hasGot {
			fmt.Fprintf(&b, "  line %d: +%q\n", idx+1, g)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func lineAt(lines []string, idx int) (string, bool) {
	if idx < len(lines) {
		return lines[idx], true
	}
	return "", false
}
