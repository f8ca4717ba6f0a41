package ast

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the elem_type tag carried by every node.
type Kind string

const (
	KindProgram  Kind = "program"
	KindFunction Kind = "func"
	KindArgument Kind = "arg"

	// Statements.
	KindVarDef Kind = "vardef"
	KindAssign Kind = "="
	KindCall   Kind = "fcall"
	KindReturn Kind = "return"

	// Literals and references.
	KindInt    Kind = "int"
	KindString Kind = "string"
	KindBool   Kind = "bool"
	KindNil    Kind = "nil"
	KindVar    Kind = "var"

	// Unary operators.
	KindNeg Kind = "neg"
	KindNot Kind = "!"

	// Binary operators.
	KindAdd          Kind = "+"
	KindSubtract     Kind = "-"
	KindMultiply     Kind = "*"
	KindDivide       Kind = "/"
	KindEqual        Kind = "=="
	KindNotEqual     Kind = "!="
	KindLess         Kind = "<"
	KindLessEqual    Kind = "<="
	KindGreater      Kind = ">"
	KindGreaterEqual Kind = ">="
	KindAnd          Kind = "&&"
	KindOr           Kind = "||"
)

// Field names used by the node kinds above.
const (
	FieldFunctions  = "functions"
	FieldName       = "name"
	FieldArgs       = "args"
	FieldStatements = "statements"
	FieldExpression = "expression"
	FieldVal        = "val"
	FieldOp1        = "op1"
	FieldOp2        = "op2"
)

var binaryKinds = map[Kind]struct{}{
	KindAdd: {}, KindSubtract: {}, KindMultiply: {}, KindDivide: {},
	KindEqual: {}, KindNotEqual: {}, KindLess: {}, KindLessEqual: {},
	KindGreater: {}, KindGreaterEqual: {}, KindAnd: {}, KindOr: {},
}

// IsBinary reports whether k is a two-operand operator node.
func (k Kind) IsBinary() bool {
	_, ok := binaryKinds[k]
	return ok
}

// IsUnary reports whether k is a one-operand operator node.
func (k Kind) IsUnary() bool {
	return k == KindNeg || k == KindNot
}

// Span records where a node started in the source text. Zero when unknown.
type Span struct {
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`
}

// Element is a generic AST node: a kind tag plus named fields holding literals,
// child elements or sequences of child elements.
type Element struct {
	ElemType Kind
	Fields   map[string]any
	Span     Span
}

// New builds an element of the given kind. A nil fields map is replaced by an empty one.
func New(kind Kind, fields map[string]any) *Element {
	if fields == nil {
		fields = make(map[string]any)
	}
	return &Element{ElemType: kind, Fields: fields}
}

// WithSpan sets the source position and returns the element.
func (e *Element) WithSpan(line, column int) *Element {
	e.Span = Span{Line: line, Column: column}
	return e
}

// FieldError reports a node that is missing an expected field or holds the
// wrong shape of value in it.
type FieldError struct {
	Kind   Kind
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("malformed %q node: field %q %s", string(e.Kind), e.Field, e.Reason)
}

// Get returns the raw field value.
func (e *Element) Get(field string) (any, bool) {
	if e == nil || e.Fields == nil {
		return nil, false
	}
	v, ok := e.Fields[field]
	return v, ok
}

// Text returns a string-valued field such as a name.
func (e *Element) Text(field string) (string, error) {
	raw, ok := e.Get(field)
	if !ok {
		return "", &FieldError{Kind: e.kind(), Field: field, Reason: "is missing"}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &FieldError{Kind: e.kind(), Field: field, Reason: fmt.Sprintf("must be a string, got %T", raw)}
	}
	return s, nil
}

// Child returns a required sub-node.
func (e *Element) Child(field string) (*Element, error) {
	child, err := e.OptionalChild(field)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, &FieldError{Kind: e.kind(), Field: field, Reason: "is missing"}
	}
	return child, nil
}

// OptionalChild returns a sub-node, or nil when the field is absent or explicitly empty.
func (e *Element) OptionalChild(field string) (*Element, error) {
	raw, ok := e.Get(field)
	if !ok || raw == nil {
		return nil, nil
	}
	child, ok := raw.(*Element)
	if !ok {
		return nil, &FieldError{Kind: e.kind(), Field: field, Reason: fmt.Sprintf("must be a node, got %T", raw)}
	}
	return child, nil
}

// Children returns a required sequence of sub-nodes. An empty sequence is valid.
func (e *Element) Children(field string) ([]*Element, error) {
	raw, ok := e.Get(field)
	if !ok {
		return nil, &FieldError{Kind: e.kind(), Field: field, Reason: "is missing"}
	}
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []*Element:
		for idx, child := range v {
			if child == nil {
				return nil, &FieldError{Kind: e.kind(), Field: field, Reason: fmt.Sprintf("has an empty entry at index %d", idx)}
			}
		}
		return v, nil
	default:
		return nil, &FieldError{Kind: e.kind(), Field: field, Reason: fmt.Sprintf("must be a node sequence, got %T", raw)}
	}
}

// Literal returns the embedded "val" field of a literal node.
func (e *Element) Literal() (any, error) {
	raw, ok := e.Get(FieldVal)
	if !ok {
		return nil, &FieldError{Kind: e.kind(), Field: FieldVal, Reason: "is missing"}
	}
	return raw, nil
}

func (e *Element) kind() Kind {
	if e == nil {
		return ""
	}
	return e.ElemType
}

// String renders the node in a compact, deterministic form for debugging.
func (e *Element) String() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Element) write(b *strings.Builder) {
	if e == nil {
		b.WriteString("nil")
		return
	}
	b.WriteString(string(e.ElemType))
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteString("{")
	for idx, k := range keys {
		if idx > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		switch v := e.Fields[k].(type) {
		case *Element:
			v.write(b)
		case []*Element:
			b.WriteString("[")
			for j, child := range v {
				if j > 0 {
					b.WriteString(", ")
				}
				child.write(b)
			}
			b.WriteString("]")
		case string:
			fmt.Fprintf(b, "%q", v)
		case nil:
			b.WriteString("nil")
		default:
			fmt.Fprintf(b, "%v", v)
		}
	}
	b.WriteString("}")
}
