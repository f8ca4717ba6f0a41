package runtime

import (
	"fmt"
	"strconv"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindInteger Kind = iota
	KindString
	KindBool
	KindNil
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "int"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNil:
		return "nil"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type IntegerValue struct {
	Val int64
}

func (v IntegerValue) Kind() Kind { return KindInteger }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type NilValue struct{}

func (NilValue) Kind() Kind { return KindNil }

//-----------------------------------------------------------------------------
// Host functions
//-----------------------------------------------------------------------------

type NativeFunc func(args []Value) (Value, error)

// NativeFunction is a callable implemented by the host. MaxArgs < 0 means
// variadic. Built-ins are looked up by name and never stored in variables.
type NativeFunction struct {
	Name    string
	MaxArgs int
	Impl    NativeFunc
}

//-----------------------------------------------------------------------------
// Utility helpers
//-----------------------------------------------------------------------------

// FromLiteral converts a literal carried in the AST into a runtime value.
func FromLiteral(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return NilValue{}, nil
	case int64:
		return IntegerValue{Val: v}, nil
	case int:
		return IntegerValue{Val: int64(v)}, nil
	case string:
		return StringValue{Val: v}, nil
	case bool:
		return BoolValue{Val: v}, nil
	default:
		return nil, fmt.Errorf("unsupported literal %T", raw)
	}
}

// Stringify renders a value the way print shows it.
func Stringify(val Value) string {
	switch v := val.(type) {
	case IntegerValue:
		return strconv.FormatInt(v.Val, 10)
	case StringValue:
		return v.Val
	case BoolValue:
		if v.Val {
			return "true"
		}
		return "false"
	case NilValue, nil:
		return "nil"
	default:
		return fmt.Sprintf("<%T>", val)
	}
}
