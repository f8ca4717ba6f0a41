package interpreter

import (
	"errors"
	"fmt"
	"strings"

	"brewin/interpreter-go/pkg/ast"
)

// ErrorKind classifies a fatal run error.
type ErrorKind int

const (
	NameError ErrorKind = iota
	TypeError
	FaultError
)

func (k ErrorKind) String() string {
	switch k {
	case NameError:
		return "NAME_ERROR"
	case TypeError:
		return "TYPE_ERROR"
	case FaultError:
		return "FAULT_ERROR"
	default:
		return fmt.Sprintf("unknown_error_%d", int(k))
	}
}

// ParseErrorKind maps the textual kind back to its ErrorKind. Both the long
// form ("NAME_ERROR") and the short form ("NAME") are accepted.
func ParseErrorKind(text string) (ErrorKind, bool) {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "NAME_ERROR", "NAME":
		return NameError, true
	case "TYPE_ERROR", "TYPE":
		return TypeError, true
	case "FAULT_ERROR", "FAULT":
		return FaultError, true
	}
	return 0, false
}

// Frame identifies one active user function call.
type Frame struct {
	Function string
	Arity    int
	Span     ast.Span
}

func (f Frame) String() string {
	if f.Span.Line > 0 {
		return fmt.Sprintf("%s/%d (called at %d:%d)", f.Function, f.Arity, f.Span.Line, f.Span.Column)
	}
	return fmt.Sprintf("%s/%d", f.Function, f.Arity)
}

// Error is the terminal error of a run. The first one raised aborts evaluation.
type Error struct {
	Kind    ErrorKind
	Message string
	Span    ast.Span
	// Stack lists the active calls, innermost first.
	Stack []Frame
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Describe renders the error with its call stack notes.
func (e *Error) Describe() string {
	var b strings.Builder
	b.WriteString(e.Error())
	if e.Span.Line > 0 {
		fmt.Fprintf(&b, " (at %d:%d)", e.Span.Line, e.Span.Column)
	}
	for _, frame := range e.Stack {
		fmt.Fprintf(&b, "\nnote: in %s", frame)
	}
	return b.String()
}

// KindOf extracts the ErrorKind of err when it carries one.
func KindOf(err error) (ErrorKind, bool) {
	var runErr *Error
	if errors.As(err, &runErr) {
		return runErr.Kind, true
	}
	return 0, false
}

func nameErrorf(format string, args ...any) error {
	return &Error{Kind: NameError, Message: fmt.Sprintf(format, args...)}
}

func typeErrorf(format string, args ...any) error {
	return &Error{Kind: TypeError, Message: fmt.Sprintf(format, args...)}
}

func faultErrorf(format string, args ...any) error {
	return &Error{Kind: FaultError, Message: fmt.Sprintf(format, args...)}
}

// malformed turns an AST accessor failure into a TYPE error.
func malformed(err error) error {
	var runErr *Error
	if errors.As(err, &runErr) {
		return err
	}
	return &Error{Kind: TypeError, Message: err.Error()}
}

// annotate attaches the node location and the current call stack the first
// time an error passes through.
func (i *Interpreter) annotate(err error, node *ast.Element) error {
	var runErr *Error
	if !errors.As(err, &runErr) {
		return err
	}
	if runErr.Span.Line == 0 && node != nil {
		runErr.Span = node.Span
	}
	if runErr.Stack == nil && len(i.callStack) > 0 {
		frames := make([]Frame, 0, len(i.callStack))
		for idx := len(i.callStack) - 1; idx >= 0; idx-- {
			frames = append(frames, i.callStack[idx])
		}
		runErr.Stack = frames
	}
	return err
}
