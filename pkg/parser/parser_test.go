package parser

import (
	"errors"
	"strings"
	"testing"

	"brewin/interpreter-go/pkg/ast"
)

func mustParse(t *testing.T, source string) *ast.Element {
	t.Helper()
	program, err := ParseProgram([]byte(source))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return program
}

func TestParseProgramStructure(t *testing.T) {
	program := mustParse(t, `
func main() {
  var x;
  x = 5 + 3;
  print(x);
}

func add(a, b) {
  return a + b;
}
`)
	want := ast.Prog(
		ast.Fn("main", nil,
			ast.VarDef("x"),
			ast.Assign("x", ast.Bin(ast.KindAdd, ast.Int(5), ast.Int(3))),
			ast.Call("print", ast.Var("x")),
		),
		ast.Fn("add", []string{"a", "b"},
			ast.Ret(ast.Bin(ast.KindAdd, ast.Var("a"), ast.Var("b"))),
		),
	)
	if program.String() != want.String() {
		t.Fatalf("unexpected tree:\n got %s\nwant %s", program, want)
	}
}

func TestParsePrecedence(t *testing.T) {
	cases := map[string]*ast.Element{
		"1 + 2 * 3": ast.Bin(ast.KindAdd, ast.Int(1), ast.Bin(ast.KindMultiply, ast.Int(2), ast.Int(3))),
		"(1 + 2) * 3": ast.Bin(ast.KindMultiply, ast.Bin(ast.KindAdd, ast.Int(1), ast.Int(2)), ast.Int(3)),
		"10 - 4 - 3": ast.Bin(ast.KindSubtract, ast.Bin(ast.KindSubtract, ast.Int(10), ast.Int(4)), ast.Int(3)),
		"a < b == true": ast.Bin(ast.KindEqual, ast.Bin(ast.KindLess, ast.Var("a"), ast.Var("b")), ast.Bool(true)),
		"a || b && c": ast.Bin(ast.KindOr, ast.Var("a"), ast.Bin(ast.KindAnd, ast.Var("b"), ast.Var("c"))),
		"-x * 2": ast.Bin(ast.KindMultiply, ast.Neg(ast.Var("x")), ast.Int(2)),
		"!f(1, nil)": ast.Not(ast.Call("f", ast.Int(1), ast.Nil())),
	}
	for source, want := range cases {
		program := mustParse(t, "func main() { return "+source+"; }")
		fns, _ := program.Children(ast.FieldFunctions)
		stmts, _ := fns[0].Children(ast.FieldStatements)
		got, err := stmts[0].Child(ast.FieldExpression)
		if err != nil {
			t.Fatalf("%s: %v", source, err)
		}
		if got.String() != want.String() {
			t.Fatalf("%s:\n got %s\nwant %s", source, got, want)
		}
	}
}

func TestParseBareReturnAndComments(t *testing.T) {
	program := mustParse(t, `
/* block
   comment */
func main() {
  // line comment
  return;
}
`)
	fns, _ := program.Children(ast.FieldFunctions)
	stmts, _ := fns[0].Children(ast.FieldStatements)
	if len(stmts) != 1 || stmts[0].ElemType != ast.KindReturn {
		t.Fatalf("expected single return, got %v", stmts)
	}
	expr, err := stmts[0].OptionalChild(ast.FieldExpression)
	if err != nil || expr != nil {
		t.Fatalf("expected bare return, got %v (err %v)", expr, err)
	}
}

func TestParseStringEscapes(t *testing.T) {
	program := mustParse(t, `func main() { print("say \"hi\"\n"); }`)
	fns, _ := program.Children(ast.FieldFunctions)
	stmts, _ := fns[0].Children(ast.FieldStatements)
	args, _ := stmts[0].Children(ast.FieldArgs)
	val, _ := args[0].Literal()
	if val != "say \"hi\"\n" {
		t.Fatalf("unexpected string literal %q", val)
	}
}

func TestParseRecordsSpans(t *testing.T) {
	program := mustParse(t, "func main() {\n  var x;\n}")
	fns, _ := program.Children(ast.FieldFunctions)
	stmts, _ := fns[0].Children(ast.FieldStatements)
	if stmts[0].Span != (ast.Span{Line: 2, Column: 3}) {
		t.Fatalf("unexpected span %+v", stmts[0].Span)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"func main() { var x }":            "expected ';'",
		"func main() { if (x) { } }":       `"if" statements are not supported`,
		"func main() { x + 1; }":           "expected assignment or call",
		"func main() { print(\"open); }":   "unterminated string literal",
		"func main() { x = 99999999999999999999; }": "out of range",
		"func main() { x = 1 @ 2; }":       "unexpected character",
		"func main() { /* never closed":    "unterminated block comment",
		"func main() {":                    "unterminated body",
		"main() {}":                        "expected 'func'",
	}
	for source, fragment := range cases {
		_, err := ParseProgram([]byte(source))
		var syntaxErr *SyntaxError
		if !errors.As(err, &syntaxErr) {
			t.Fatalf("%q: expected SyntaxError, got %v", source, err)
		}
		if !strings.Contains(syntaxErr.Error(), fragment) {
			t.Fatalf("%q: error %q does not mention %q", source, syntaxErr.Error(), fragment)
		}
	}
}

func TestTokenizeOperators(t *testing.T) {
	tokens, err := Tokenize("== != <= >= && || < > = ! + - * /")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	want := []TokenType{TokEqEq, TokBangEq, TokLtEq, TokGtEq, TokAndAnd, TokOrOr, TokLt, TokGt, TokAssign, TokBang, TokPlus, TokMinus, TokStar, TokSlash, TokEOF}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for idx, tok := range tokens {
		if tok.Type != want[idx] {
			t.Fatalf("token %d: got %s, want %s", idx, tok.Type, want[idx])
		}
	}
}
