package interpreter

import "brewin/interpreter-go/pkg/runtime"

// returnSignal unwinds the statements of one activation. It is consumed by the
// call that owns the activation and never escapes Run.
type returnSignal struct {
	value runtime.Value
}

func (r returnSignal) Error() string {
	return "return"
}
