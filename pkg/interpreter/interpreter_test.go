package interpreter

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"brewin/interpreter-go/pkg/ast"
	"brewin/interpreter-go/pkg/parser"
	"brewin/interpreter-go/pkg/runtime"
)

func newTestInterpreter(opts ...Option) (*Interpreter, *bytes.Buffer) {
	var stdout bytes.Buffer
	opts = append([]Option{WithStdout(&stdout), WithStdin(strings.NewReader(""))}, opts...)
	return New(opts...), &stdout
}

func runOK(t *testing.T, program *ast.Element, opts ...Option) (runtime.Value, []string) {
	t.Helper()
	interp, _ := newTestInterpreter(opts...)
	val, err := interp.Run(program)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return val, interp.Output()
}

func expectKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got no error", want)
	}
	kind, ok := KindOf(err)
	if !ok {
		t.Fatalf("expected %s, got %T: %v", want, err, err)
	}
	if kind != want {
		t.Fatalf("expected %s, got %s (%v)", want, kind, err)
	}
}

func mainReturning(expr *ast.Element) *ast.Element {
	return ast.Prog(ast.Fn("main", nil, ast.Ret(expr)))
}

func TestRunPrintsSum(t *testing.T) {
	interp, stdout := newTestInterpreter()
	program := ast.Prog(ast.Fn("main", nil,
		ast.VarDef("x"),
		ast.Assign("x", ast.Bin(ast.KindAdd, ast.Int(5), ast.Int(3))),
		ast.Call("print", ast.Var("x")),
	))
	val, err := interp.Run(program)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := val.(runtime.NilValue); !ok {
		t.Fatalf("expected main to fall through with nil, got %#v", val)
	}
	if stdout.String() != "8\n" {
		t.Fatalf("unexpected stdout %q", stdout.String())
	}
	if diff := cmp.Diff([]string{"8"}, interp.Output()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestMissingMainIsNameError(t *testing.T) {
	interp, _ := newTestInterpreter()
	_, err := interp.Run(ast.Prog(ast.Fn("helper", nil)))
	expectKind(t, err, NameError)
	if !strings.Contains(err.Error(), "no main function") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestDuplicateOverloadIsNameError(t *testing.T) {
	interp, stdout := newTestInterpreter()
	program := ast.Prog(
		ast.Fn("main", nil, ast.Call("print", ast.Str("never"))),
		ast.Fn("f", []string{"a"}),
		ast.Fn("f", []string{"b"}),
	)
	_, err := interp.Run(program)
	expectKind(t, err, NameError)
	if stdout.Len() != 0 {
		t.Fatalf("nothing should run after a load error, got %q", stdout.String())
	}
}

func TestOverloadsDispatchOnArity(t *testing.T) {
	program := ast.Prog(
		ast.Fn("main", nil,
			ast.Call("print", ast.Call("f")),
			ast.Call("print", ast.Call("f", ast.Int(4))),
		),
		ast.Fn("f", nil, ast.Ret(ast.Str("none"))),
		ast.Fn("f", []string{"x"}, ast.Ret(ast.Bin(ast.KindMultiply, ast.Var("x"), ast.Int(3)))),
	)
	_, out := runOK(t, program)
	if diff := cmp.Diff([]string{"none", "12"}, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestVariableErrors(t *testing.T) {
	cases := map[string]*ast.Element{
		"define twice":         ast.Prog(ast.Fn("main", nil, ast.VarDef("x"), ast.VarDef("x"))),
		"read before define":   ast.Prog(ast.Fn("main", nil, ast.Call("print", ast.Var("y")))),
		"assign before define": ast.Prog(ast.Fn("main", nil, ast.Assign("z", ast.Int(1)))),
	}
	for name, program := range cases {
		t.Run(name, func(t *testing.T) {
			interp, _ := newTestInterpreter()
			_, err := interp.Run(program)
			expectKind(t, err, NameError)
		})
	}
}

func TestAssignEvaluatesExpressionFirst(t *testing.T) {
	interp, _ := newTestInterpreter()
	program := ast.Prog(ast.Fn("main", nil,
		ast.Assign("missing", ast.Call("print", ast.Str("side effect"))),
	))
	_, err := interp.Run(program)
	expectKind(t, err, NameError)
	if diff := cmp.Diff([]string{"side effect"}, interp.Output()); diff != "" {
		t.Fatalf("expression should run before the name check (-want +got):\n%s", diff)
	}
}

func TestBinaryOperators(t *testing.T) {
	cases := []struct {
		name string
		expr *ast.Element
		want runtime.Value
	}{
		{"add", ast.Bin(ast.KindAdd, ast.Int(2), ast.Int(3)), runtime.IntegerValue{Val: 5}},
		{"subtract", ast.Bin(ast.KindSubtract, ast.Int(7), ast.Int(10)), runtime.IntegerValue{Val: -3}},
		{"divide", ast.Bin(ast.KindDivide, ast.Int(6), ast.Int(4)), runtime.IntegerValue{Val: 1}},
		{"divide truncates", ast.Bin(ast.KindDivide, ast.Int(-7), ast.Int(2)), runtime.IntegerValue{Val: -3}},
		{"multiply", ast.Bin(ast.KindMultiply, ast.Int(4), ast.Int(3)), runtime.IntegerValue{Val: 12}},
		{"less", ast.Bin(ast.KindLess, ast.Int(1), ast.Int(2)), runtime.BoolValue{Val: true}},
		{"greater equal", ast.Bin(ast.KindGreaterEqual, ast.Int(1), ast.Int(2)), runtime.BoolValue{Val: false}},
		{"concat", ast.Bin(ast.KindAdd, ast.Str("ab"), ast.Str("cd")), runtime.StringValue{Val: "abcd"}},
		{"string equal", ast.Bin(ast.KindEqual, ast.Str("x"), ast.Str("x")), runtime.BoolValue{Val: true}},
		{"string differ", ast.Bin(ast.KindEqual, ast.Str("x"), ast.Str("y")), runtime.BoolValue{Val: false}},
		{"mixed equal", ast.Bin(ast.KindEqual, ast.Int(1), ast.Str("1")), runtime.BoolValue{Val: false}},
		{"mixed not equal", ast.Bin(ast.KindNotEqual, ast.Int(1), ast.Str("1")), runtime.BoolValue{Val: true}},
		{"int vs bool", ast.Bin(ast.KindEqual, ast.Int(1), ast.Bool(true)), runtime.BoolValue{Val: false}},
		{"and", ast.Bin(ast.KindAnd, ast.Bool(true), ast.Bool(false)), runtime.BoolValue{Val: false}},
		{"or", ast.Bin(ast.KindOr, ast.Bool(true), ast.Bool(false)), runtime.BoolValue{Val: true}},
		{"bool not equal", ast.Bin(ast.KindNotEqual, ast.Bool(true), ast.Bool(false)), runtime.BoolValue{Val: true}},
		{"not", ast.Not(ast.Bool(false)), runtime.BoolValue{Val: true}},
		{"neg", ast.Neg(ast.Int(9)), runtime.IntegerValue{Val: -9}},
		{"nil vs int", ast.Bin(ast.KindNotEqual, ast.Nil(), ast.Int(0)), runtime.BoolValue{Val: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			val, _ := runOK(t, mainReturning(tc.expr))
			if diff := cmp.Diff(tc.want, val); diff != "" {
				t.Fatalf("unexpected value (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOperatorTypeErrors(t *testing.T) {
	cases := map[string]*ast.Element{
		"string minus":  ast.Bin(ast.KindSubtract, ast.Str("a"), ast.Str("b")),
		"string less":   ast.Bin(ast.KindLess, ast.Str("a"), ast.Str("b")),
		"bool plus":     ast.Bin(ast.KindAdd, ast.Bool(true), ast.Bool(false)),
		"int and":       ast.Bin(ast.KindAnd, ast.Int(1), ast.Int(0)),
		"mixed plus":    ast.Bin(ast.KindAdd, ast.Int(1), ast.Str("1")),
		"nil equal nil": ast.Bin(ast.KindEqual, ast.Nil(), ast.Nil()),
		"not int":       ast.Not(ast.Int(1)),
		"neg string":    ast.Neg(ast.Str("x")),
	}
	for name, expr := range cases {
		t.Run(name, func(t *testing.T) {
			interp, _ := newTestInterpreter()
			_, err := interp.Run(mainReturning(expr))
			expectKind(t, err, TypeError)
		})
	}
}

func TestArithmeticFaults(t *testing.T) {
	cases := map[string]*ast.Element{
		"divide by zero": ast.Bin(ast.KindDivide, ast.Int(1), ast.Int(0)),
		"add overflow":   ast.Bin(ast.KindAdd, ast.Int(9223372036854775807), ast.Int(1)),
		"sub overflow":   ast.Bin(ast.KindSubtract, ast.Neg(ast.Int(9223372036854775807)), ast.Int(2)),
		"mul overflow":   ast.Bin(ast.KindMultiply, ast.Int(4611686018427387904), ast.Int(2)),
		"min div -1":     ast.Bin(ast.KindDivide, ast.Int(math.MinInt64), ast.Int(-1)),
		"negate min":     ast.Neg(ast.Int(math.MinInt64)),
	}
	for name, expr := range cases {
		t.Run(name, func(t *testing.T) {
			interp, _ := newTestInterpreter()
			_, err := interp.Run(mainReturning(expr))
			expectKind(t, err, FaultError)
			if name != "divide by zero" && !strings.Contains(err.Error(), "integer overflow") {
				t.Fatalf("error %q does not mention integer overflow", err.Error())
			}
		})
	}
}

func TestOperandsEvaluateLeftToRight(t *testing.T) {
	program := ast.Prog(
		ast.Fn("main", nil,
			ast.VarDef("r"),
			ast.Assign("r", ast.Bin(ast.KindOr, ast.Call("say", ast.Str("left")), ast.Call("say", ast.Str("right")))),
		),
		ast.Fn("say", []string{"s"}, ast.Call("print", ast.Var("s")), ast.Ret(ast.Bool(true))),
	)
	_, out := runOK(t, program)
	if diff := cmp.Diff([]string{"left", "right"}, out); diff != "" {
		t.Fatalf("|| must evaluate both operands in order (-want +got):\n%s", diff)
	}
}

func TestReturnShortCircuitsBody(t *testing.T) {
	program := ast.Prog(
		ast.Fn("main", nil,
			ast.Call("print", ast.Call("f")),
			ast.Call("print", ast.Call("g")),
		),
		ast.Fn("f", nil, ast.Ret(ast.Int(1)), ast.Call("print", ast.Str("unreachable"))),
		ast.Fn("g", nil, ast.Ret(nil), ast.Call("print", ast.Str("unreachable"))),
	)
	_, out := runOK(t, program)
	if diff := cmp.Diff([]string{"1", "nil"}, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestProcedureWithoutReturnYieldsNil(t *testing.T) {
	program := ast.Prog(
		ast.Fn("main", nil, ast.Ret(ast.Call("noop"))),
		ast.Fn("noop", nil),
	)
	val, _ := runOK(t, program)
	if _, ok := val.(runtime.NilValue); !ok {
		t.Fatalf("expected nil, got %#v", val)
	}
}

func TestUndefinedFunctionSkipsArguments(t *testing.T) {
	interp, stdout := newTestInterpreter()
	program := ast.Prog(ast.Fn("main", nil,
		ast.Call("foo", ast.Call("print", ast.Str("arg1")), ast.Int(2)),
		ast.Call("print", ast.Str("after")),
	))
	_, err := interp.Run(program)
	expectKind(t, err, NameError)
	if stdout.Len() != 0 {
		t.Fatalf("expected no output, got %q", stdout.String())
	}
}

func TestUndefinedArityListsOverloads(t *testing.T) {
	interp, _ := newTestInterpreter()
	program := ast.Prog(
		ast.Fn("main", nil, ast.Call("f", ast.Int(1), ast.Int(2), ast.Int(3))),
		ast.Fn("f", []string{"a", "b"}, ast.Ret(ast.Var("a"))),
		ast.Fn("f", nil, ast.Ret(ast.Int(0))),
	)
	_, err := interp.Run(program)
	expectKind(t, err, NameError)
	want := "function f with 3 argument(s) is not defined (defined with 0, 2)"
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("error %q does not mention %q", err.Error(), want)
	}
	if got := interp.Registry().Arities("f"); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("Arities(f) = %v, want [0 2]", got)
	}
}

func TestCallsUseFreshActivation(t *testing.T) {
	interp, _ := newTestInterpreter()
	program := ast.Prog(
		ast.Fn("main", nil,
			ast.VarDef("secret"),
			ast.Assign("secret", ast.Int(1)),
			ast.Call("peek"),
		),
		ast.Fn("peek", nil, ast.Call("print", ast.Var("secret"))),
	)
	_, err := interp.Run(program)
	expectKind(t, err, NameError)
	var runErr *Error
	if !errors.As(err, &runErr) || len(runErr.Stack) != 2 || runErr.Stack[0].Function != "peek" {
		t.Fatalf("expected call stack peek <- main, got %+v", runErr)
	}
}

func TestParametersAreLocalCopies(t *testing.T) {
	program := ast.Prog(
		ast.Fn("main", nil,
			ast.VarDef("x"),
			ast.Assign("x", ast.Int(1)),
			ast.Call("bump", ast.Var("x")),
			ast.Call("print", ast.Var("x")),
		),
		ast.Fn("bump", []string{"x"}, ast.Assign("x", ast.Int(99)), ast.Call("print", ast.Var("x"))),
	)
	_, out := runOK(t, program)
	if diff := cmp.Diff([]string{"99", "1"}, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestNestedCalls(t *testing.T) {
	program := ast.Prog(
		ast.Fn("main", nil, ast.Call("print", ast.Call("sum", ast.Int(100)))),
		ast.Fn("sum", []string{"n"},
			ast.Ret(ast.Bin(ast.KindAdd, ast.Var("n"), ast.Call("sumdown", ast.Var("n")))),
		),
		ast.Fn("sumdown", []string{"n"}, ast.Ret(ast.Int(0))),
	)
	_, out := runOK(t, program)
	if diff := cmp.Diff([]string{"100"}, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRunawayRecursionIsFault(t *testing.T) {
	interp, _ := newTestInterpreter(WithMaxCallDepth(50))
	program := ast.Prog(
		ast.Fn("main", nil, ast.Call("loop")),
		ast.Fn("loop", nil, ast.Call("loop")),
	)
	_, err := interp.Run(program)
	expectKind(t, err, FaultError)
	if !strings.Contains(err.Error(), "maximum call depth 50") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestLaterMainIsIgnored(t *testing.T) {
	program := ast.Prog(
		ast.Fn("main", nil, ast.Call("print", ast.Str("first"))),
		ast.Fn("main", nil, ast.Call("print", ast.Str("second"))),
		ast.Fn("main", nil, ast.Call("print", ast.Str("third"))),
	)
	_, out := runOK(t, program)
	if diff := cmp.Diff([]string{"first"}, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestMainParametersStartNil(t *testing.T) {
	program := ast.Prog(ast.Fn("main", []string{"argv"}, ast.Call("print", ast.Var("argv"))))
	_, out := runOK(t, program)
	if diff := cmp.Diff([]string{"nil"}, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestUserFunctionCannotShadowBuiltin(t *testing.T) {
	program := ast.Prog(
		ast.Fn("main", nil, ast.Call("print", ast.Str("builtin"))),
		ast.Fn("print", []string{"s"}, ast.Ret(ast.Nil())),
	)
	interp, _ := newTestInterpreter()
	if _, err := interp.Run(program); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"builtin"}, interp.Output()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if interp.Registry().Len() != 1 {
		t.Fatalf("user print should still be registered, got %d definitions", interp.Registry().Len())
	}
}

func TestPrintConcatenatesArguments(t *testing.T) {
	program := ast.Prog(ast.Fn("main", nil,
		ast.Call("print", ast.Str("x="), ast.Int(-4), ast.Str(" "), ast.Bool(true), ast.Nil()),
		ast.Call("print"),
	))
	_, out := runOK(t, program)
	if diff := cmp.Diff([]string{"x=-4 truenil", ""}, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestBuiltinsTakeOnlyArguments(t *testing.T) {
	interp, stdout := newTestInterpreter(WithInput([]string{"7"}))
	printFn := interp.builtins["print"]
	if printFn.MaxArgs >= 0 {
		t.Fatalf("print MaxArgs = %d, want variadic", printFn.MaxArgs)
	}
	if _, err := printFn.Impl([]runtime.Value{runtime.StringValue{Val: "n="}, runtime.IntegerValue{Val: 3}}); err != nil {
		t.Fatalf("print: %v", err)
	}
	if stdout.String() != "n=3\n" {
		t.Fatalf("stdout = %q", stdout.String())
	}
	inputi := interp.builtins["inputi"]
	if inputi.MaxArgs != 1 {
		t.Fatalf("inputi MaxArgs = %d, want 1", inputi.MaxArgs)
	}
	got, err := inputi.Impl(nil)
	if err != nil {
		t.Fatalf("inputi: %v", err)
	}
	if diff := cmp.Diff(runtime.Value(runtime.IntegerValue{Val: 7}), got); diff != "" {
		t.Fatalf("inputi result (-want +got):\n%s", diff)
	}
}

func TestInputiReadsIntegers(t *testing.T) {
	interp, stdout := newTestInterpreter(WithStdin(strings.NewReader("41\n  2 \n")))
	program := ast.Prog(ast.Fn("main", nil,
		ast.VarDef("a"),
		ast.Assign("a", ast.Call("inputi", ast.Str("a? "))),
		ast.Call("print", ast.Bin(ast.KindAdd, ast.Var("a"), ast.Call("inputi"))),
	))
	if _, err := interp.Run(program); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout.String() != "a? 43\n" {
		t.Fatalf("unexpected stdout %q", stdout.String())
	}
	if diff := cmp.Diff([]string{"a? ", "43"}, interp.Output()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestInputiErrors(t *testing.T) {
	tooMany := ast.Prog(ast.Fn("main", nil,
		ast.Call("inputi", ast.Call("print", ast.Str("evaluated")), ast.Str("b")),
	))
	interp, stdout := newTestInterpreter(WithInput([]string{"1"}))
	_, err := interp.Run(tooMany)
	expectKind(t, err, NameError)
	if stdout.Len() != 0 {
		t.Fatalf("arguments must not be evaluated, got %q", stdout.String())
	}

	readOne := ast.Prog(ast.Fn("main", nil, ast.Ret(ast.Call("inputi"))))
	interp, _ = newTestInterpreter(WithInput([]string{"twelve"}))
	_, err = interp.Run(readOne)
	expectKind(t, err, FaultError)

	interp, _ = newTestInterpreter(WithInput(nil))
	_, err = interp.Run(readOne)
	expectKind(t, err, FaultError)
}

func TestMalformedNodesAreTypeErrors(t *testing.T) {
	cases := map[string]*ast.Element{
		"unknown statement": ast.Prog(ast.Fn("main", nil, ast.New("while", nil))),
		"unknown expression": ast.Prog(ast.Fn("main", nil,
			ast.Ret(ast.New("lambda", nil)))),
		"assign without expression": ast.Prog(ast.Fn("main", nil,
			ast.VarDef("x"), ast.New(ast.KindAssign, map[string]any{ast.FieldName: "x"}))),
		"binary without operand": ast.Prog(ast.Fn("main", nil,
			ast.Ret(ast.New(ast.KindAdd, map[string]any{ast.FieldOp1: ast.Int(1)})))),
		"int holding string": ast.Prog(ast.Fn("main", nil,
			ast.Ret(ast.New(ast.KindInt, map[string]any{ast.FieldVal: "1"})))),
		"bool holding int": ast.Prog(ast.Fn("main", nil,
			ast.Ret(ast.New(ast.KindBool, map[string]any{ast.FieldVal: int64(1)})))),
		"call without args": ast.Prog(ast.Fn("main", nil,
			ast.New(ast.KindCall, map[string]any{ast.FieldName: "print"}))),
	}
	for name, program := range cases {
		t.Run(name, func(t *testing.T) {
			interp, _ := newTestInterpreter()
			_, err := interp.Run(program)
			expectKind(t, err, TypeError)
		})
	}
}

func TestErrorDescribeIncludesStack(t *testing.T) {
	interp, _ := newTestInterpreter()
	_, err := interp.RunSource([]byte("func main() {\n  boom(1);\n}\nfunc boom(n) {\n  return n / 0;\n}\n"))
	expectKind(t, err, FaultError)
	var runErr *Error
	errors.As(err, &runErr)
	got := runErr.Describe()
	for _, fragment := range []string{"FAULT_ERROR: division by zero", "(at 5:12)", "note: in boom/1 (called at 2:3)", "note: in main/0"} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("description %q does not mention %q", got, fragment)
		}
	}
}

func TestRunSourceSyntaxError(t *testing.T) {
	interp, _ := newTestInterpreter()
	_, err := interp.RunSource([]byte("func main() { if (true) { } }"))
	var syntaxErr *parser.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected syntax error, got %v", err)
	}
	if _, ok := KindOf(err); ok {
		t.Fatalf("syntax errors carry no run error kind")
	}
}

func TestParseErrorKind(t *testing.T) {
	for text, want := range map[string]ErrorKind{"NAME": NameError, "type_error": TypeError, " FAULT_ERROR ": FaultError} {
		got, ok := ParseErrorKind(text)
		if !ok || got != want {
			t.Fatalf("ParseErrorKind(%q) = %v, %v", text, got, ok)
		}
	}
	if _, ok := ParseErrorKind("SYNTAX"); ok {
		t.Fatalf("unexpected kind for SYNTAX")
	}
}
