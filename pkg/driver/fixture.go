package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FixtureManifestName is the expectation file inside each fixture directory.
const FixtureManifestName = "expect.yml"

// Fixture is one end-to-end program with its expected behaviour.
type Fixture struct {
	Name        string
	Dir         string
	Program     string
	Description string
	Input       []string
	Stdout      []string
	// ErrorKind is empty when the program must succeed.
	ErrorKind    string
	ErrorMessage string
}

type fixtureFile struct {
	Description string            `yaml:"description"`
	Program     string            `yaml:"program"`
	Input       []string          `yaml:"input"`
	Stdout      []string          `yaml:"stdout"`
	Error       *fixtureErrorYAML `yaml:"error"`
}

type fixtureErrorYAML struct {
	Kind    string `yaml:"kind"`
	Message string `yaml:"message"`
}

// LoadFixture reads dir/expect.yml.
func LoadFixture(dir string) (*Fixture, error) {
	path := filepath.Join(dir, FixtureManifestName)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	var raw fixtureFile
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("fixture: parse %s: %w", path, err)
	}

	program := raw.Program
	if program == "" {
		program = "program" + ProgramExt
	}
	fixture := &Fixture{
		Name:        filepath.Base(dir),
		Dir:         dir,
		Program:     filepath.Join(dir, filepath.FromSlash(program)),
		Description: strings.TrimSpace(raw.Description),
		Input:       raw.Input,
		Stdout:      raw.Stdout,
	}
	if fixture.Stdout == nil {
		fixture.Stdout = []string{}
	}
	if raw.Error != nil {
		fixture.ErrorKind = strings.TrimSpace(raw.Error.Kind)
		fixture.ErrorMessage = raw.Error.Message
		if fixture.ErrorKind == "" {
			return nil, &ValidationError{Issues: []string{fmt.Sprintf("%s: error.kind must be provided", path)}}
		}
	}
	return fixture, nil
}

// DiscoverFixtures returns every fixture directory under root, sorted by name.
func DiscoverFixtures(root string) ([]*Fixture, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("fixture: read %s: %w", root, err)
	}
	var fixtures []*Fixture
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, FixtureManifestName)); err != nil {
			continue
		}
		fixture, err := LoadFixture(dir)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, fixture)
	}
	sort.Slice(fixtures, func(a, b int) bool { return fixtures[a].Name < fixtures[b].Name })
	return fixtures, nil
}
