package interpreter

import (
	"brewin/interpreter-go/pkg/ast"
	"brewin/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(node *ast.Element, env *runtime.Environment) (runtime.Value, error) {
	if node == nil {
		return nil, typeErrorf("unsupported expression type: empty node")
	}
	kind := node.ElemType
	switch {
	case kind == ast.KindInt, kind == ast.KindString, kind == ast.KindBool, kind == ast.KindNil:
		return evaluateLiteral(node)
	case kind == ast.KindVar:
		name, err := node.Text(ast.FieldName)
		if err != nil {
			return nil, malformed(err)
		}
		val, err := env.Get(name)
		if err != nil {
			return nil, i.annotate(nameErrorf("undefined variable %s", name), node)
		}
		return val, nil
	case kind == ast.KindCall:
		return i.evaluateCall(node, env)
	case kind.IsBinary():
		return i.evaluateBinary(node, env)
	case kind.IsUnary():
		return i.evaluateUnary(node, env)
	default:
		return nil, i.annotate(typeErrorf("unsupported expression type %q", kind), node)
	}
}

// literalKinds maps each literal node to the value kind it must carry.
var literalKinds = map[ast.Kind]runtime.Kind{
	ast.KindInt:    runtime.KindInteger,
	ast.KindString: runtime.KindString,
	ast.KindBool:   runtime.KindBool,
	ast.KindNil:    runtime.KindNil,
}

func evaluateLiteral(node *ast.Element) (runtime.Value, error) {
	if node.ElemType == ast.KindNil {
		return runtime.NilValue{}, nil
	}
	raw, err := node.Literal()
	if err != nil {
		return nil, malformed(err)
	}
	val, err := runtime.FromLiteral(raw)
	if err != nil {
		return nil, typeErrorf("malformed %q node: %v", node.ElemType, err)
	}
	if val.Kind() != literalKinds[node.ElemType] {
		return nil, typeErrorf("malformed %q node: literal holds a %s", node.ElemType, val.Kind())
	}
	return val, nil
}

func (i *Interpreter) evaluateBinary(node *ast.Element, env *runtime.Environment) (runtime.Value, error) {
	leftNode, err := node.Child(ast.FieldOp1)
	if err != nil {
		return nil, malformed(err)
	}
	rightNode, err := node.Child(ast.FieldOp2)
	if err != nil {
		return nil, malformed(err)
	}
	left, err := i.evaluateExpression(leftNode, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(rightNode, env)
	if err != nil {
		return nil, err
	}
	result, err := applyBinaryOperator(node.ElemType, left, right)
	if err != nil {
		return nil, i.annotate(err, node)
	}
	return result, nil
}

func (i *Interpreter) evaluateUnary(node *ast.Element, env *runtime.Environment) (runtime.Value, error) {
	operandNode, err := node.Child(ast.FieldOp1)
	if err != nil {
		return nil, malformed(err)
	}
	operand, err := i.evaluateExpression(operandNode, env)
	if err != nil {
		return nil, err
	}
	result, err := applyUnaryOperator(node.ElemType, operand)
	if err != nil {
		return nil, i.annotate(err, node)
	}
	return result, nil
}
