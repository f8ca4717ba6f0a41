// Package interpreter evaluates Brewin program trees.
package interpreter

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"brewin/interpreter-go/pkg/ast"
	"brewin/interpreter-go/pkg/runtime"
)

const mainFunction = "main"

// Interpreter drives evaluation of a Brewin program. It is not safe for
// concurrent use; run one program per Interpreter at a time.
type Interpreter struct {
	registry *FunctionRegistry
	builtins map[string]runtime.NativeFunction

	stdin       io.Reader
	input       *bufio.Reader
	scripted    []string
	useScripted bool
	stdout      io.Writer
	output      []string

	logger   *slog.Logger
	trace    bool
	maxDepth int

	callStack []Frame
}

// New returns an interpreter wired to the process console unless options say otherwise.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		registry: newFunctionRegistry(),
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxDepth: DefaultMaxCallDepth,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.builtins = make(map[string]runtime.NativeFunction)
	i.registerPrint()
	i.registerInputi()
	return i
}

// Registry exposes the functions loaded by the most recent Run.
func (i *Interpreter) Registry() *FunctionRegistry {
	return i.registry
}

// Output returns every line emitted by the most recent Run, including inputi prompts.
func (i *Interpreter) Output() []string {
	out := make([]string, len(i.output))
	copy(out, i.output)
	return out
}

// Run loads the program's functions and executes main. The returned value is
// whatever main returns (Nil when it falls through).
func (i *Interpreter) Run(program *ast.Element) (runtime.Value, error) {
	i.registry = newFunctionRegistry()
	i.output = nil
	i.callStack = nil
	if program == nil {
		return nil, typeErrorf("program is empty")
	}
	if program.ElemType != ast.KindProgram {
		return nil, typeErrorf("expected %q node at the root, got %q", ast.KindProgram, program.ElemType)
	}

	entry, err := i.load(program)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	i.logger.DebugContext(ctx, "entering main", slog.Int("functions", i.registry.Len()))
	env := runtime.NewEnvironment()
	for _, param := range entry.Params {
		if err := env.Define(param, runtime.NilValue{}); err != nil {
			return nil, nameErrorf("parameter %s declared twice in %s", param, entry.Name)
		}
	}
	i.callStack = append(i.callStack, Frame{Function: entry.Name, Arity: entry.Arity(), Span: entry.Node.Span})
	result, err := i.executeBody(entry.Statements, env)
	i.callStack = i.callStack[:len(i.callStack)-1]
	if err != nil {
		return nil, err
	}
	return result, nil
}

// load registers every function except main and returns the first main.
func (i *Interpreter) load(program *ast.Element) (*FunctionDef, error) {
	functions, err := program.Children(ast.FieldFunctions)
	if err != nil {
		return nil, malformed(err)
	}
	var entry *FunctionDef
	for _, node := range functions {
		if name, _ := node.Text(ast.FieldName); name == mainFunction && node.ElemType == ast.KindFunction {
			if entry != nil {
				continue
			}
			def, err := decodeFunction(node)
			if err != nil {
				return nil, i.annotate(err, node)
			}
			entry = def
			continue
		}
		def, err := decodeFunction(node)
		if err != nil {
			return nil, i.annotate(err, node)
		}
		if err := i.registry.register(def); err != nil {
			return nil, i.annotate(err, node)
		}
		i.logger.Debug("registered function", slog.String("name", def.Name), slog.Int("arity", def.Arity()))
	}
	if entry == nil {
		return nil, nameErrorf("no main function found")
	}
	return entry, nil
}

// executeBody runs statements in order. A return statement stops the body and
// supplies the result; falling through yields Nil.
func (i *Interpreter) executeBody(statements []*ast.Element, env *runtime.Environment) (runtime.Value, error) {
	for _, stmt := range statements {
		if err := i.executeStatement(stmt, env); err != nil {
			var ret returnSignal
			if errors.As(err, &ret) {
				return ret.value, nil
			}
			return nil, err
		}
	}
	return runtime.NilValue{}, nil
}

func (i *Interpreter) emit(line string, newline bool) error {
	i.output = append(i.output, line)
	if i.stdout == nil {
		return nil
	}
	text := line
	if newline {
		text += "\n"
	}
	if _, err := io.WriteString(i.stdout, text); err != nil {
		return faultErrorf("write output: %v", err)
	}
	return nil
}
