// Package parser turns Brewin source text into the element tree consumed by the interpreter.
package parser

import (
	"fmt"
	"strconv"

	"brewin/interpreter-go/pkg/ast"
)

// SyntaxError reports the first lexical or grammatical problem in a program.
type SyntaxError struct {
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Column, e.Message)
}

type parser struct {
	tokens []Token
	pos    int
}

// ParseProgram parses a whole program into a "program" element.
func ParseProgram(source []byte) (*ast.Element, error) {
	tokens, err := Tokenize(string(source))
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	return p.parseProgram()
}

func (p *parser) current() Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() TokenType {
	return p.current().Type
}

func (p *parser) peekAt(offset int) TokenType {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return TokEOF
	}
	return p.tokens[idx].Type
}

func (p *parser) advance() Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(tok Token, format string, args ...any) error {
	return &SyntaxError{Line: tok.Line, Column: tok.Column, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(typ TokenType) (Token, error) {
	tok := p.current()
	if tok.Type != typ {
		return tok, p.errorf(tok, "expected %s, got %s", typ, describe(tok))
	}
	return p.advance(), nil
}

func describe(tok Token) string {
	switch tok.Type {
	case TokEOF:
		return "end of input"
	case TokIdent, TokInt:
		return fmt.Sprintf("%s %q", tok.Type, tok.Value)
	case TokString:
		return "string literal"
	default:
		return fmt.Sprintf("'%s'", tok.Value)
	}
}

func (p *parser) parseProgram() (*ast.Element, error) {
	start := p.current()
	functions := []*ast.Element{}
	for p.peek() != TokEOF {
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		functions = append(functions, fn)
	}
	return ast.Prog(functions...).WithSpan(start.Line, start.Column), nil
}

func (p *parser) parseFunction() (*ast.Element, error) {
	start, err := p.expect(TokFunc)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLParen); err != nil {
		return nil, err
	}
	args := []*ast.Element{}
	if p.peek() != TokRParen {
		for {
			param, err := p.expect(TokIdent)
			if err != nil {
				return nil, err
			}
			args = append(args, ast.Arg(param.Value).WithSpan(param.Line, param.Column))
			if p.peek() != TokComma {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace); err != nil {
		return nil, err
	}
	statements := []*ast.Element{}
	for p.peek() != TokRBrace {
		if p.peek() == TokEOF {
			return nil, p.errorf(p.current(), "unterminated body of function %q", name.Value)
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	p.advance()

	fn := ast.New(ast.KindFunction, map[string]any{
		ast.FieldName:       name.Value,
		ast.FieldArgs:       args,
		ast.FieldStatements: statements,
	})
	return fn.WithSpan(start.Line, start.Column), nil
}

func (p *parser) parseStatement() (*ast.Element, error) {
	tok := p.current()
	var stmt *ast.Element
	switch tok.Type {
	case TokVar:
		p.advance()
		name, err := p.expect(TokIdent)
		if err != nil {
			return nil, err
		}
		stmt = ast.VarDef(name.Value)
	case TokReturn:
		p.advance()
		var expr *ast.Element
		if p.peek() != TokSemicolon {
			parsed, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			expr = parsed
		}
		stmt = ast.Ret(expr)
	case TokIdent:
		switch p.peekAt(1) {
		case TokAssign:
			p.advance()
			p.advance()
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			stmt = ast.Assign(tok.Value, expr)
		case TokLParen:
			call, err := p.parseCall()
			if err != nil {
				return nil, err
			}
			stmt = call
		default:
			return nil, p.errorf(p.tokens[p.pos+1], "expected assignment or call after %q", tok.Value)
		}
	case TokReserved:
		return nil, p.errorf(tok, "%q statements are not supported", tok.Value)
	default:
		return nil, p.errorf(tok, "expected statement, got %s", describe(tok))
	}
	if _, err := p.expect(TokSemicolon); err != nil {
		return nil, err
	}
	return stmt.WithSpan(tok.Line, tok.Column), nil
}

func (p *parser) parseCall() (*ast.Element, error) {
	name := p.advance()
	if _, err := p.expect(TokLParen); err != nil {
		return nil, err
	}
	args := []*ast.Element{}
	if p.peek() != TokRParen {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek() != TokComma {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return ast.Call(name.Value, args...).WithSpan(name.Line, name.Column), nil
}

func (p *parser) parseExpression() (*ast.Element, error) {
	return p.parseOr()
}

// binaryLevel parses one left-associative precedence level.
func (p *parser) binaryLevel(next func() (*ast.Element, error), ops map[TokenType]ast.Kind) (*ast.Element, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.current()
		kind, ok := ops[tok.Type]
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = ast.Bin(kind, left, right).WithSpan(tok.Line, tok.Column)
	}
}

var (
	orOps  = map[TokenType]ast.Kind{TokOrOr: ast.KindOr}
	andOps = map[TokenType]ast.Kind{TokAndAnd: ast.KindAnd}
	cmpOps = map[TokenType]ast.Kind{
		TokEqEq:   ast.KindEqual,
		TokBangEq: ast.KindNotEqual,
		TokLt:     ast.KindLess,
		TokLtEq:   ast.KindLessEqual,
		TokGt:     ast.KindGreater,
		TokGtEq:   ast.KindGreaterEqual,
	}
	addOps = map[TokenType]ast.Kind{TokPlus: ast.KindAdd, TokMinus: ast.KindSubtract}
	mulOps = map[TokenType]ast.Kind{TokStar: ast.KindMultiply, TokSlash: ast.KindDivide}
)

func (p *parser) parseOr() (*ast.Element, error) {
	return p.binaryLevel(p.parseAnd, orOps)
}

func (p *parser) parseAnd() (*ast.Element, error) {
	return p.binaryLevel(p.parseComparison, andOps)
}

func (p *parser) parseComparison() (*ast.Element, error) {
	return p.binaryLevel(p.parseAdditive, cmpOps)
}

func (p *parser) parseAdditive() (*ast.Element, error) {
	return p.binaryLevel(p.parseMultiplicative, addOps)
}

func (p *parser) parseMultiplicative() (*ast.Element, error) {
	return p.binaryLevel(p.parseUnary, mulOps)
}

func (p *parser) parseUnary() (*ast.Element, error) {
	tok := p.current()
	switch tok.Type {
	case TokMinus:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.Neg(operand).WithSpan(tok.Line, tok.Column), nil
	case TokBang:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.Not(operand).WithSpan(tok.Line, tok.Column), nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (*ast.Element, error) {
	tok := p.current()
	switch tok.Type {
	case TokInt:
		p.advance()
		n, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, p.errorf(tok, "integer literal %s is out of range", tok.Value)
		}
		return ast.Int(n).WithSpan(tok.Line, tok.Column), nil
	case TokString:
		p.advance()
		return ast.Str(tok.Value).WithSpan(tok.Line, tok.Column), nil
	case TokTrue, TokFalse:
		p.advance()
		return ast.Bool(tok.Type == TokTrue).WithSpan(tok.Line, tok.Column), nil
	case TokNil:
		p.advance()
		return ast.Nil().WithSpan(tok.Line, tok.Column), nil
	case TokIdent:
		if p.peekAt(1) == TokLParen {
			return p.parseCall()
		}
		p.advance()
		return ast.Var(tok.Value).WithSpan(tok.Line, tok.Column), nil
	case TokLParen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, p.errorf(tok, "expected expression, got %s", describe(tok))
	}
}
