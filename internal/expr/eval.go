package expr

import (
	"math"
)

// Env supplies variable values during evaluation.
type Env interface {
	Value(name string) (float64, bool)
}

// Vars is a map-backed Env.
type Vars map[string]float64

// Value implements Env.
func (v Vars) Value(name string) (float64, bool) {
	x, ok := v[name]
	return x, ok
}

// Evaluate computes e under env. Failures are *EvalError values; the result
// is never an infinity produced by division by zero.
func (e Expr) Evaluate(env Env) (float64, error) {
	if env == nil {
		env = Vars(nil)
	}
	return e.node().eval(env)
}

func (n numNode) eval(Env) (float64, error) { return n.v, nil }

func (n varNode) eval(env Env) (float64, error) {
	v, ok := env.Value(n.name)
	if !ok {
		return 0, &EvalError{Code: ErrCodeUnknownVar, Var: n.name}
	}
	return v, nil
}

func (n binaryNode) eval(env Env) (float64, error) {
	l, err := n.left.eval(env)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(env)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case OpAdd:
		return l + r, nil
	case OpSub:
		return l - r, nil
	case OpMul:
		return l * r, nil
	case OpDiv:
		if r == 0 {
			return 0, &EvalError{Code: ErrCodeDivideByZero}
		}
		return l / r, nil
	case OpPow:
		return pow(l, r)
	}
	return 0, domainError(n.op.String(), "unknown operator")
}

// pow rejects a negative base with a fractional exponent, even where a real
// odd root exists (-8 ^ (1/3)), and any non-finite result.
func pow(base, exp float64) (float64, error) {
	if base < 0 && exp != math.Trunc(exp) {
		return 0, domainError("pow", "negative base with non-integer exponent")
	}
	v := math.Pow(base, exp)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, domainError("pow", "result is not finite")
	}
	return v, nil
}

func (n negNode) eval(env Env) (float64, error) {
	v, err := n.inner.eval(env)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

func (n callNode) eval(env Env) (float64, error) {
	if want := n.fn.Arity(); len(n.args) != want {
		return 0, &EvalError{Code: ErrCodeArity, Func: n.fn.String(), Expected: want, Got: len(n.args)}
	}
	args := make([]float64, len(n.args))
	for i, arg := range n.args {
		v, err := arg.eval(env)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}
	x := args[0]
	switch n.fn {
	case FuncLog2, FuncLog10, FuncLn:
		if x <= 0 {
			return 0, domainError(n.fn.String(), "argument must be positive")
		}
		switch n.fn {
		case FuncLog2:
			return math.Log2(x), nil
		case FuncLog10:
			return math.Log10(x), nil
		default:
			return math.Log(x), nil
		}
	case FuncExp:
		v := math.Exp(x)
		if math.IsInf(v, 0) {
			return 0, domainError("exp", "result overflows")
		}
		return v, nil
	case FuncSqrt:
		if x < 0 {
			return 0, domainError("sqrt", "argument must be non-negative")
		}
		return math.Sqrt(x), nil
	case FuncMin:
		return math.Min(x, args[1]), nil
	case FuncMax:
		return math.Max(x, args[1]), nil
	case FuncFloor:
		return math.Floor(x), nil
	case FuncCeil:
		return math.Ceil(x), nil
	case FuncAbs:
		return math.Abs(x), nil
	}
	return 0, domainError(n.fn.String(), "unknown function")
}
