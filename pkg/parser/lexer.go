package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TokenType identifies a lexical token.
type TokenType int

const (
	TokEOF TokenType = iota

	// Keywords
	TokFunc
	TokVar
	TokReturn
	TokTrue
	TokFalse
	TokNil
	TokReserved

	// Literals and names
	TokIdent
	TokInt
	TokString

	// Punctuation
	TokLParen
	TokRParen
	TokLBrace
	TokRBrace
	TokComma
	TokSemicolon
	TokAssign

	// Operators
	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokEqEq
	TokBangEq
	TokLt
	TokLtEq
	TokGt
	TokGtEq
	TokAndAnd
	TokOrOr
	TokBang
)

var tokenNames = map[TokenType]string{
	TokEOF:       "end of input",
	TokFunc:      "'func'",
	TokVar:       "'var'",
	TokReturn:    "'return'",
	TokTrue:      "'true'",
	TokFalse:     "'false'",
	TokNil:       "'nil'",
	TokReserved:  "reserved word",
	TokIdent:     "identifier",
	TokInt:       "integer literal",
	TokString:    "string literal",
	TokLParen:    "'('",
	TokRParen:    "')'",
	TokLBrace:    "'{'",
	TokRBrace:    "'}'",
	TokComma:     "','",
	TokSemicolon: "';'",
	TokAssign:    "'='",
	TokPlus:      "'+'",
	TokMinus:     "'-'",
	TokStar:      "'*'",
	TokSlash:     "'/'",
	TokEqEq:      "'=='",
	TokBangEq:    "'!='",
	TokLt:        "'<'",
	TokLtEq:      "'<='",
	TokGt:        "'>'",
	TokGtEq:      "'>='",
	TokAndAnd:    "'&&'",
	TokOrOr:      "'||'",
	TokBang:      "'!'",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token is a single lexeme with its starting position.
type Token struct {
	Type   TokenType
	Value  string
	Line   int
	Column int
}

var keywords = map[string]TokenType{
	"func":   TokFunc,
	"var":    TokVar,
	"return": TokReturn,
	"true":   TokTrue,
	"false":  TokFalse,
	"nil":    TokNil,
	// Control flow and closures belong to later language revisions.
	"if":     TokReserved,
	"else":   TokReserved,
	"while":  TokReserved,
	"for":    TokReserved,
	"lambda": TokReserved,
}

type scanner struct {
	source string
	pos    int
	line   int
	col    int
}

// Tokenize splits source text into tokens, ending with a TokEOF token.
func Tokenize(source string) ([]Token, error) {
	s := &scanner{source: source, line: 1, col: 1}
	var tokens []Token
	for {
		if err := s.skipWhitespaceAndComments(); err != nil {
			return nil, err
		}
		if s.atEnd() {
			tokens = append(tokens, Token{Type: TokEOF, Line: s.line, Column: s.col})
			return tokens, nil
		}
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) errorAt(line, col int, format string, args ...any) error {
	return &SyntaxError{Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

func (s *scanner) skipWhitespaceAndComments() error {
	for !s.atEnd() {
		ch := s.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			s.advance()
		case ch == '/' && s.peekAt(1) == '/':
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		case ch == '/' && s.peekAt(1) == '*':
			line, col := s.line, s.col
			s.advance()
			s.advance()
			for {
				if s.atEnd() {
					return s.errorAt(line, col, "unterminated block comment")
				}
				if s.peek() == '*' && s.peekAt(1) == '/' {
					s.advance()
					s.advance()
					break
				}
				s.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func (s *scanner) next() (Token, error) {
	line, col := s.line, s.col
	ch := s.peek()
	switch {
	case isAlpha(ch):
		start := s.pos
		for !s.atEnd() && (isAlpha(s.peek()) || isDigit(s.peek())) {
			s.advance()
		}
		text := s.source[start:s.pos]
		typ := TokIdent
		if kw, ok := keywords[text]; ok {
			typ = kw
		}
		return Token{Type: typ, Value: text, Line: line, Column: col}, nil
	case isDigit(ch):
		start := s.pos
		for !s.atEnd() && isDigit(s.peek()) {
			s.advance()
		}
		if isAlpha(s.peek()) {
			return Token{}, s.errorAt(line, col, "malformed number %q", s.source[start:s.pos+1])
		}
		return Token{Type: TokInt, Value: s.source[start:s.pos], Line: line, Column: col}, nil
	case ch == '"':
		return s.scanString(line, col)
	}

	two := ""
	if s.pos+1 < len(s.source) {
		two = s.source[s.pos : s.pos+2]
	}
	switch two {
	case "==", "!=", "<=", ">=", "&&", "||":
		s.advance()
		s.advance()
		return Token{Type: twoCharTokens[two], Value: two, Line: line, Column: col}, nil
	}
	if typ, ok := oneCharTokens[ch]; ok {
		s.advance()
		return Token{Type: typ, Value: string(ch), Line: line, Column: col}, nil
	}
	r, _ := utf8.DecodeRuneInString(s.source[s.pos:])
	return Token{}, s.errorAt(line, col, "unexpected character %q", r)
}

var twoCharTokens = map[string]TokenType{
	"==": TokEqEq,
	"!=": TokBangEq,
	"<=": TokLtEq,
	">=": TokGtEq,
	"&&": TokAndAnd,
	"||": TokOrOr,
}

var oneCharTokens = map[byte]TokenType{
	'(': TokLParen,
	')': TokRParen,
	'{': TokLBrace,
	'}': TokRBrace,
	',': TokComma,
	';': TokSemicolon,
	'=': TokAssign,
	'+': TokPlus,
	'-': TokMinus,
	'*': TokStar,
	'/': TokSlash,
	'<': TokLt,
	'>': TokGt,
	'!': TokBang,
}

func (s *scanner) scanString(line, col int) (Token, error) {
	s.advance() // opening quote
	var buf strings.Builder
	for !s.atEnd() {
		ch := s.peek()
		switch ch {
		case '"':
			s.advance()
			return Token{Type: TokString, Value: buf.String(), Line: line, Column: col}, nil
		case '\n':
			return Token{}, s.errorAt(line, col, "unterminated string literal")
		case '\\':
			s.advance()
			if s.atEnd() {
				return Token{}, s.errorAt(line, col, "unterminated string escape")
			}
			esc := s.advance()
			switch esc {
			case '"':
				buf.WriteByte('"')
			case '\\':
				buf.WriteByte('\\')
			case 'n':
				buf.WriteByte('\n')
			case 't':
				buf.WriteByte('\t')
			default:
				return Token{}, s.errorAt(line, col, "invalid escape character: \\%c", esc)
			}
		default:
			r, size := utf8.DecodeRuneInString(s.source[s.pos:])
			if r == utf8.RuneError && size == 1 {
				return Token{}, s.errorAt(line, col, "invalid UTF-8 character in string")
			}
			buf.WriteRune(r)
			for i := 0; i < size; i++ {
				s.advance()
			}
		}
	}
	return Token{}, s.errorAt(line, col, "unterminated string literal")
}
