package ast

// Program and function helpers.

func Prog(functions ...*Element) *Element {
	return New(KindProgram, map[string]any{FieldFunctions: functions})
}

func Fn(name string, params []string, statements ...*Element) *Element {
	args := make([]*Element, 0, len(params))
	for _, p := range params {
		args = append(args, Arg(p))
	}
	if statements == nil {
		statements = []*Element{}
	}
	return New(KindFunction, map[string]any{
		FieldName:       name,
		FieldArgs:       args,
		FieldStatements: statements,
	})
}

func Arg(name string) *Element {
	return New(KindArgument, map[string]any{FieldName: name})
}

// Statement helpers.

func VarDef(name string) *Element {
	return New(KindVarDef, map[string]any{FieldName: name})
}

func Assign(name string, expr *Element) *Element {
	return New(KindAssign, map[string]any{FieldName: name, FieldExpression: expr})
}

func Call(name string, args ...*Element) *Element {
	if args == nil {
		args = []*Element{}
	}
	return New(KindCall, map[string]any{FieldName: name, FieldArgs: args})
}

// Ret builds a return statement; a nil expression means a bare `return;`.
func Ret(expr *Element) *Element {
	return New(KindReturn, map[string]any{FieldExpression: expr})
}

// Expression helpers.

func Int(value int64) *Element {
	return New(KindInt, map[string]any{FieldVal: value})
}

func Str(value string) *Element {
	return New(KindString, map[string]any{FieldVal: value})
}

func Bool(value bool) *Element {
	return New(KindBool, map[string]any{FieldVal: value})
}

func Nil() *Element {
	return New(KindNil, map[string]any{FieldVal: nil})
}

func Var(name string) *Element {
	return New(KindVar, map[string]any{FieldName: name})
}

func Bin(op Kind, left, right *Element) *Element {
	return New(op, map[string]any{FieldOp1: left, FieldOp2: right})
}

func Not(operand *Element) *Element {
	return New(KindNot, map[string]any{FieldOp1: operand})
}

func Neg(operand *Element) *Element {
	return New(KindNeg, map[string]any{FieldOp1: operand})
}
