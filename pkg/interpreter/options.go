package interpreter

import (
	"io"
	"log/slog"
)

// DefaultMaxCallDepth bounds nested user function calls.
const DefaultMaxCallDepth = 1000

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithStdin sets the reader inputi consumes lines from.
func WithStdin(r io.Reader) Option {
	return func(i *Interpreter) {
		i.stdin = r
	}
}

// WithInput supplies the input lines up front. It takes precedence over WithStdin.
func WithInput(lines []string) Option {
	return func(i *Interpreter) {
		i.scripted = append([]string(nil), lines...)
		i.useScripted = true
	}
}

// WithStdout sets where print output and inputi prompts are echoed.
func WithStdout(w io.Writer) Option {
	return func(i *Interpreter) {
		i.stdout = w
	}
}

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithTrace enables per-statement debug logging.
func WithTrace(enabled bool) Option {
	return func(i *Interpreter) {
		i.trace = enabled
	}
}

// WithMaxCallDepth overrides DefaultMaxCallDepth. Values below 1 keep the default.
func WithMaxCallDepth(depth int) Option {
	return func(i *Interpreter) {
		if depth > 0 {
			i.maxDepth = depth
		}
	}
}
