package interpreter

import (
	"math"

	"brewin/interpreter-go/pkg/ast"
	"brewin/interpreter-go/pkg/runtime"
)

func applyBinaryOperator(op ast.Kind, left runtime.Value, right runtime.Value) (runtime.Value, error) {
	if left.Kind() != right.Kind() {
		switch op {
		case ast.KindEqual:
			return runtime.BoolValue{Val: false}, nil
		case ast.KindNotEqual:
			return runtime.BoolValue{Val: true}, nil
		}
		return nil, incompatible(op, left, right)
	}
	switch l := left.(type) {
	case runtime.IntegerValue:
		return evaluateIntegerOperator(op, l.Val, right.(runtime.IntegerValue).Val)
	case runtime.StringValue:
		r := right.(runtime.StringValue).Val
		switch op {
		case ast.KindAdd:
			return runtime.StringValue{Val: l.Val + r}, nil
		case ast.KindEqual:
			return runtime.BoolValue{Val: l.Val == r}, nil
		case ast.KindNotEqual:
			return runtime.BoolValue{Val: l.Val != r}, nil
		}
	case runtime.BoolValue:
		r := right.(runtime.BoolValue).Val
		switch op {
		case ast.KindEqual:
			return runtime.BoolValue{Val: l.Val == r}, nil
		case ast.KindNotEqual:
			return runtime.BoolValue{Val: l.Val != r}, nil
		case ast.KindAnd:
			return runtime.BoolValue{Val: l.Val && r}, nil
		case ast.KindOr:
			return runtime.BoolValue{Val: l.Val || r}, nil
		}
	}
	return nil, incompatible(op, left, right)
}

func incompatible(op ast.Kind, left runtime.Value, right runtime.Value) error {
	return typeErrorf("incompatible types for operation %s: %s and %s", op, left.Kind(), right.Kind())
}

func evaluateIntegerOperator(op ast.Kind, l int64, r int64) (runtime.Value, error) {
	switch op {
	case ast.KindAdd:
		sum := l + r
		if (r > 0 && sum < l) || (r < 0 && sum > l) {
			return nil, overflow(op, l, r)
		}
		return runtime.IntegerValue{Val: sum}, nil
	case ast.KindSubtract:
		diff := l - r
		if (r > 0 && diff > l) || (r < 0 && diff < l) {
			return nil, overflow(op, l, r)
		}
		return runtime.IntegerValue{Val: diff}, nil
	case ast.KindMultiply:
		if l == 0 || r == 0 {
			return runtime.IntegerValue{Val: 0}, nil
		}
		product := l * r
		if product/r != l || (l == -1 && r == math.MinInt64) || (r == -1 && l == math.MinInt64) {
			return nil, overflow(op, l, r)
		}
		return runtime.IntegerValue{Val: product}, nil
	case ast.KindDivide:
		if r == 0 {
			return nil, faultErrorf("division by zero")
		}
		if l == math.MinInt64 && r == -1 {
			return nil, overflow(op, l, r)
		}
		return runtime.IntegerValue{Val: l / r}, nil
	case ast.KindEqual:
		return runtime.BoolValue{Val: l == r}, nil
	case ast.KindNotEqual:
		return runtime.BoolValue{Val: l != r}, nil
	case ast.KindLess:
		return runtime.BoolValue{Val: l < r}, nil
	case ast.KindLessEqual:
		return runtime.BoolValue{Val: l <= r}, nil
	case ast.KindGreater:
		return runtime.BoolValue{Val: l > r}, nil
	case ast.KindGreaterEqual:
		return runtime.BoolValue{Val: l >= r}, nil
	}
	return nil, incompatible(op, runtime.IntegerValue{Val: l}, runtime.IntegerValue{Val: r})
}

func overflow(op ast.Kind, l int64, r int64) error {
	return faultErrorf("integer overflow in %d %s %d", l, op, r)
}

func applyUnaryOperator(op ast.Kind, operand runtime.Value) (runtime.Value, error) {
	switch op {
	case ast.KindNot:
		if b, ok := operand.(runtime.BoolValue); ok {
			return runtime.BoolValue{Val: !b.Val}, nil
		}
	case ast.KindNeg:
		if n, ok := operand.(runtime.IntegerValue); ok {
			if n.Val == math.MinInt64 {
				return nil, faultErrorf("integer overflow negating %d", n.Val)
			}
			return runtime.IntegerValue{Val: -n.Val}, nil
		}
	}
	return nil, typeErrorf("incompatible type for operation %s: %s", op, operand.Kind())
}
