package driver

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the project configuration file looked up next to programs.
const ConfigFileName = "brewin.yml"

// Config represents the parsed contents of brewin.yml.
type Config struct {
	Path         string
	Name         string
	Main         string
	MaxCallDepth int
	Trace        bool
	LogLevel     string
	Source       *SourceSpec
	Inputs       []string
}

// SourceSpec points at a program kept in a git repository.
type SourceSpec struct {
	Git    string
	Rev    string
	Tag    string
	Branch string
	Path   string
}

// ValidationError aggregates configuration validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

type configFile struct {
	Name         string      `yaml:"name"`
	Main         string      `yaml:"main"`
	MaxCallDepth int         `yaml:"max_call_depth"`
	Trace        bool        `yaml:"trace"`
	LogLevel     string      `yaml:"log_level"`
	Source       *sourceYAML `yaml:"source"`
	Inputs       []string    `yaml:"inputs"`
}

type sourceYAML struct {
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
	Path   string `yaml:"path"`
}

// LoadConfig parses brewin.yml from disk, returning a validated config.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return &Config{Path: absPath}, nil
		}
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}

	cfg := raw.toConfig(absPath)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfig walks up from dir looking for brewin.yml.
func FindConfig(dir string) (string, bool) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(current, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

// Dir is the directory holding the config file.
func (c *Config) Dir() string {
	if c == nil || c.Path == "" {
		return ""
	}
	return filepath.Dir(c.Path)
}

// EntryPath resolves the configured main program relative to the config file.
func (c *Config) EntryPath() string {
	if c == nil || c.Main == "" {
		return ""
	}
	if filepath.IsAbs(c.Main) {
		return c.Main
	}
	return filepath.Join(c.Dir(), filepath.FromSlash(c.Main))
}

// Level returns the configured log level, defaulting to warn.
func (c *Config) Level() slog.Level {
	level := slog.LevelWarn
	if c != nil && c.LogLevel != "" {
		_ = level.UnmarshalText([]byte(c.LogLevel))
	}
	return level
}

func (mf configFile) toConfig(path string) *Config {
	cfg := &Config{
		Path:         path,
		Name:         strings.TrimSpace(mf.Name),
		Main:         strings.TrimSpace(mf.Main),
		MaxCallDepth: mf.MaxCallDepth,
		Trace:        mf.Trace,
		LogLevel:     strings.TrimSpace(mf.LogLevel),
		Inputs:       append([]string(nil), mf.Inputs...),
	}
	if mf.Source != nil {
		cfg.Source = &SourceSpec{
			Git:    strings.TrimSpace(mf.Source.Git),
			Rev:    strings.TrimSpace(mf.Source.Rev),
			Tag:    strings.TrimSpace(mf.Source.Tag),
			Branch: strings.TrimSpace(mf.Source.Branch),
			Path:   strings.TrimSpace(mf.Source.Path),
		}
	}
	return cfg
}

func (c *Config) validate() error {
	var errs ValidationError
	if c.MaxCallDepth < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("max_call_depth must not be negative, got %d", c.MaxCallDepth))
	}
	if c.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
		}
	}
	if c.Main != "" && !strings.HasSuffix(c.Main, ProgramExt) && !strings.HasSuffix(c.Main, ASTExt) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("main %q must be a %s or %s file", c.Main, ProgramExt, ASTExt))
	}
	if c.Source != nil {
		for _, issue := range c.Source.validate() {
			errs.Issues = append(errs.Issues, "source: "+issue)
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (s *SourceSpec) validate() []string {
	var errs []string
	if s.Git == "" {
		errs = append(errs, "git must be provided")
	}
	pins := 0
	for _, pin := range []string{s.Rev, s.Tag, s.Branch} {
		if pin != "" {
			pins++
		}
	}
	if pins > 1 {
		errs = append(errs, "only one of rev, tag, or branch may be set")
	}
	if s.Path == "" {
		errs = append(errs, "path must name the program inside the repository")
	} else if filepath.IsAbs(s.Path) || strings.HasPrefix(filepath.Clean(filepath.FromSlash(s.Path)), "..") {
		errs = append(errs, fmt.Sprintf("path %q must stay inside the repository", s.Path))
	}
	return errs
}
