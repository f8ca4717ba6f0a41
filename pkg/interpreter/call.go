package interpreter

import (
	"log/slog"
	"strconv"
	"strings"

	"brewin/interpreter-go/pkg/ast"
	"brewin/interpreter-go/pkg/runtime"
)

// evaluateCall dispatches a call node. Built-ins are resolved before user
// functions and cannot be shadowed by them.
func (i *Interpreter) evaluateCall(node *ast.Element, env *runtime.Environment) (runtime.Value, error) {
	name, err := node.Text(ast.FieldName)
	if err != nil {
		return nil, malformed(err)
	}
	argNodes, err := node.Children(ast.FieldArgs)
	if err != nil {
		return nil, malformed(err)
	}

	if native, ok := i.builtins[name]; ok {
		if native.MaxArgs >= 0 && len(argNodes) > native.MaxArgs {
			return nil, i.annotate(nameErrorf("%s accepts at most %d argument(s), got %d", name, native.MaxArgs, len(argNodes)), node)
		}
		args, err := i.evaluateArguments(argNodes, env)
		if err != nil {
			return nil, err
		}
		result, err := native.Impl(args)
		if err != nil {
			return nil, i.annotate(err, node)
		}
		return result, nil
	}

	def, ok := i.registry.Lookup(name, len(argNodes))
	if !ok {
		return nil, i.annotate(undefinedFunction(name, len(argNodes), i.registry.Arities(name)), node)
	}
	args, err := i.evaluateArguments(argNodes, env)
	if err != nil {
		return nil, err
	}
	return i.callFunction(def, args, node)
}

// undefinedFunction names the overloads that do exist, if any.
func undefinedFunction(name string, arity int, known []int) error {
	if len(known) == 0 {
		return nameErrorf("function %s with %d argument(s) is not defined", name, arity)
	}
	counts := make([]string, len(known))
	for idx, n := range known {
		counts[idx] = strconv.Itoa(n)
	}
	return nameErrorf("function %s with %d argument(s) is not defined (defined with %s)", name, arity, strings.Join(counts, ", "))
}

func (i *Interpreter) evaluateArguments(nodes []*ast.Element, env *runtime.Environment) ([]runtime.Value, error) {
	args := make([]runtime.Value, 0, len(nodes))
	for _, argNode := range nodes {
		val, err := i.evaluateExpression(argNode, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return args, nil
}

// callFunction binds args to the parameters in a fresh activation and runs the body.
func (i *Interpreter) callFunction(def *FunctionDef, args []runtime.Value, callSite *ast.Element) (runtime.Value, error) {
	if len(i.callStack) > i.maxDepth {
		return nil, i.annotate(faultErrorf("maximum call depth %d exceeded calling %s", i.maxDepth, def.Name), callSite)
	}
	env := runtime.NewEnvironment()
	for idx, param := range def.Params {
		if err := env.Define(param, args[idx]); err != nil {
			return nil, i.annotate(nameErrorf("parameter %s declared twice in %s", param, def.Name), def.Node)
		}
	}

	var span ast.Span
	if callSite != nil {
		span = callSite.Span
	}
	i.callStack = append(i.callStack, Frame{Function: def.Name, Arity: def.Arity(), Span: span})
	defer func() { i.callStack = i.callStack[:len(i.callStack)-1] }()
	i.logger.Debug("call",
		slog.String("name", def.Name),
		slog.Int("arity", def.Arity()),
		slog.Int("depth", len(i.callStack)),
	)
	return i.executeBody(def.Statements, env)
}
