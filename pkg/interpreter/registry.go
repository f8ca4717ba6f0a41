package interpreter

import (
	"sort"

	"brewin/interpreter-go/pkg/ast"
)

// FunctionDef is a user function as loaded from the program tree.
type FunctionDef struct {
	Name       string
	Params     []string
	Statements []*ast.Element
	Node       *ast.Element
}

// Arity is the number of declared parameters.
func (f *FunctionDef) Arity() int {
	return len(f.Params)
}

type functionKey struct {
	name  string
	arity int
}

// FunctionRegistry maps (name, arity) to a definition. Overloads share a name.
type FunctionRegistry struct {
	defs map[functionKey]*FunctionDef
}

func newFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{defs: make(map[functionKey]*FunctionDef)}
}

func (r *FunctionRegistry) register(def *FunctionDef) error {
	key := functionKey{name: def.Name, arity: def.Arity()}
	if _, exists := r.defs[key]; exists {
		return nameErrorf("function %s already defined with %d parameter(s)", def.Name, def.Arity())
	}
	r.defs[key] = def
	return nil
}

// Lookup returns the overload of name taking arity arguments.
func (r *FunctionRegistry) Lookup(name string, arity int) (*FunctionDef, bool) {
	def, ok := r.defs[functionKey{name: name, arity: arity}]
	return def, ok
}

// Arities lists the registered arities for name in ascending order.
func (r *FunctionRegistry) Arities(name string) []int {
	var out []int
	for key := range r.defs {
		if key.name == name {
			out = append(out, key.arity)
		}
	}
	sort.Ints(out)
	return out
}

// Len reports how many definitions are registered.
func (r *FunctionRegistry) Len() int {
	return len(r.defs)
}

// decodeFunction reads a "func" node into a definition.
func decodeFunction(node *ast.Element) (*FunctionDef, error) {
	if node.ElemType != ast.KindFunction {
		return nil, typeErrorf("expected %q node at top level, got %q", ast.KindFunction, node.ElemType)
	}
	name, err := node.Text(ast.FieldName)
	if err != nil {
		return nil, malformed(err)
	}
	params, err := node.Children(ast.FieldArgs)
	if err != nil {
		return nil, malformed(err)
	}
	names := make([]string, 0, len(params))
	for _, param := range params {
		paramName, err := param.Text(ast.FieldName)
		if err != nil {
			return nil, malformed(err)
		}
		names = append(names, paramName)
	}
	statements, err := node.Children(ast.FieldStatements)
	if err != nil {
		return nil, malformed(err)
	}
	return &FunctionDef{Name: name, Params: names, Statements: statements, Node: node}, nil
}
