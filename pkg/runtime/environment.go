package runtime

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUndefinedVariable is returned when reading or writing a name that was never defined.
	ErrUndefinedVariable = errors.New("undefined variable")
	// ErrVariableAlreadyDefined is returned when a name is defined twice in one activation.
	ErrVariableAlreadyDefined = errors.New("variable already defined")
)

// Environment holds the bindings of a single function activation. There is no
// parent chain: every activation sees only its own flat namespace.
type Environment struct {
	values map[string]Value
}

// NewEnvironment creates an empty activation environment.
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]Value)}
}

// Define creates a binding. Redefining an existing name fails.
func (e *Environment) Define(name string, value Value) error {
	if _, ok := e.values[name]; ok {
		return fmt.Errorf("%w: %s", ErrVariableAlreadyDefined, name)
	}
	if value == nil {
		value = NilValue{}
	}
	e.values[name] = value
	return nil
}

// Assign overwrites an existing binding.
func (e *Environment) Assign(name string, value Value) error {
	if _, ok := e.values[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUndefinedVariable, name)
	}
	if value == nil {
		value = NilValue{}
	}
	e.values[name] = value
	return nil
}

// Get retrieves a binding.
func (e *Environment) Get(name string) (Value, error) {
	if v, ok := e.values[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUndefinedVariable, name)
}

// Has reports whether name is bound.
func (e *Environment) Has(name string) bool {
	_, ok := e.values[name]
	return ok
}

// Snapshot returns a copy of the current bindings.
func (e *Environment) Snapshot() map[string]Value {
	out := make(map[string]Value, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// Keys returns the bound names in sorted order (useful for determinism in tests).
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
