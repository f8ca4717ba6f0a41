package interpreter

import (
	"errors"
	"log/slog"

	"brewin/interpreter-go/pkg/ast"
	"brewin/interpreter-go/pkg/runtime"
)

func (i *Interpreter) executeStatement(node *ast.Element, env *runtime.Environment) error {
	if node == nil {
		return typeErrorf("unsupported statement: empty node")
	}
	if i.trace {
		i.logger.Debug("statement",
			slog.String("kind", string(node.ElemType)),
			slog.Int("line", node.Span.Line),
			slog.Int("depth", len(i.callStack)),
		)
	}
	var err error
	switch node.ElemType {
	case ast.KindVarDef:
		err = i.executeVarDef(node, env)
	case ast.KindAssign:
		err = i.executeAssign(node, env)
	case ast.KindCall:
		_, err = i.evaluateCall(node, env)
	case ast.KindReturn:
		err = i.executeReturn(node, env)
	default:
		err = typeErrorf("unsupported statement %q", node.ElemType)
	}
	if err != nil {
		return i.annotate(err, node)
	}
	return nil
}

func (i *Interpreter) executeVarDef(node *ast.Element, env *runtime.Environment) error {
	name, err := node.Text(ast.FieldName)
	if err != nil {
		return malformed(err)
	}
	if err := env.Define(name, runtime.NilValue{}); err != nil {
		return nameErrorf("variable %s defined more than once", name)
	}
	return nil
}

func (i *Interpreter) executeAssign(node *ast.Element, env *runtime.Environment) error {
	name, err := node.Text(ast.FieldName)
	if err != nil {
		return malformed(err)
	}
	exprNode, err := node.Child(ast.FieldExpression)
	if err != nil {
		return malformed(err)
	}
	value, err := i.evaluateExpression(exprNode, env)
	if err != nil {
		return err
	}
	if err := env.Assign(name, value); err != nil {
		if errors.Is(err, runtime.ErrUndefinedVariable) {
			return nameErrorf("undefined variable %s in assignment", name)
		}
		return err
	}
	return nil
}

func (i *Interpreter) executeReturn(node *ast.Element, env *runtime.Environment) error {
	exprNode, err := node.OptionalChild(ast.FieldExpression)
	if err != nil {
		return malformed(err)
	}
	var value runtime.Value = runtime.NilValue{}
	if exprNode != nil {
		value, err = i.evaluateExpression(exprNode, env)
		if err != nil {
			return err
		}
	}
	return returnSignal{value: value}
}
