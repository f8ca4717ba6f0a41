package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"brewin/interpreter-go/pkg/ast"
	"brewin/interpreter-go/pkg/parser"
)

const (
	// ProgramExt marks Brewin source text.
	ProgramExt = ".br"
	// ASTExt marks a pre-parsed program tree in JSON form.
	ASTExt = ".json"
)

// LoadProgram reads a program file. Source text is parsed; JSON files are
// decoded as an element tree.
func LoadProgram(path string) (*ast.Element, error) {
	return loadProgram(path, strings.EqualFold(filepath.Ext(path), ASTExt))
}

// LoadTree reads a JSON program tree whatever the file extension.
func LoadTree(path string) (*ast.Element, error) {
	return loadProgram(path, true)
}

func loadProgram(path string, isAST bool) (*ast.Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return DecodeProgram(data, isAST)
}

// DecodeProgram turns raw bytes into a program tree.
func DecodeProgram(data []byte, isAST bool) (*ast.Element, error) {
	if isAST {
		program, err := ast.DecodeJSON(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode program tree: %w", err)
		}
		return program, nil
	}
	program, err := parser.ParseProgram(data)
	if err != nil {
		return nil, err
	}
	return program, nil
}
