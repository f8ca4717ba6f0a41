package interpreter

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"brewin/interpreter-go/pkg/runtime"
)

func (i *Interpreter) registerPrint() {
	i.builtins["print"] = runtime.NativeFunction{
		Name:    "print",
		MaxArgs: -1,
		Impl: func(args []runtime.Value) (runtime.Value, error) {
			var b strings.Builder
			for _, arg := range args {
				b.WriteString(runtime.Stringify(arg))
			}
			if err := i.emit(b.String(), true); err != nil {
				return nil, err
			}
			return runtime.NilValue{}, nil
		},
	}
}

func (i *Interpreter) registerInputi() {
	i.builtins["inputi"] = runtime.NativeFunction{
		Name:    "inputi",
		MaxArgs: 1,
		Impl: func(args []runtime.Value) (runtime.Value, error) {
			if len(args) == 1 {
				if err := i.emit(runtime.Stringify(args[0]), false); err != nil {
					return nil, err
				}
			}
			line, err := i.readLine()
			if err != nil {
				return nil, err
			}
			n, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
			if err != nil {
				return nil, faultErrorf("inputi: %q is not an integer", line)
			}
			return runtime.IntegerValue{Val: n}, nil
		},
	}
}

// readLine consumes the next input line from the scripted lines or the reader.
func (i *Interpreter) readLine() (string, error) {
	if i.useScripted {
		if len(i.scripted) == 0 {
			return "", faultErrorf("inputi: no more input")
		}
		line := i.scripted[0]
		i.scripted = i.scripted[1:]
		return line, nil
	}
	if i.stdin == nil {
		return "", faultErrorf("inputi: no input source")
	}
	if i.input == nil {
		i.input = bufio.NewReader(i.stdin)
	}
	line, err := i.input.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", faultErrorf("inputi: no more input")
		}
		return "", faultErrorf("inputi: read input: %v", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
