package interpreter

import (
	"brewin/interpreter-go/pkg/parser"
	"brewin/interpreter-go/pkg/runtime"
)

// RunSource parses Brewin program text and runs it. Syntax problems are
// returned as *parser.SyntaxError before anything executes.
func (i *Interpreter) RunSource(source []byte) (runtime.Value, error) {
	program, err := parser.ParseProgram(source)
	if err != nil {
		i.output = nil
		return nil, err
	}
	return i.Run(program)
}
