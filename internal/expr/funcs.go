package expr

import "golang.org/x/text/cases"

// Func identifies a builtin function.
type Func int

const (
	FuncLog2 Func = iota
	FuncLog10
	FuncLn
	FuncExp
	FuncSqrt
	FuncMin
	FuncMax
	FuncFloor
	FuncCeil
	FuncAbs
)

var funcNames = [...]string{
	FuncLog2:  "log2",
	FuncLog10: "log10",
	FuncLn:    "ln",
	FuncExp:   "exp",
	FuncSqrt:  "sqrt",
	FuncMin:   "min",
	FuncMax:   "max",
	FuncFloor: "floor",
	FuncCeil:  "ceil",
	FuncAbs:   "abs",
}

// String returns the canonical lower-case name.
func (f Func) String() string {
	if f < 0 || int(f) >= len(funcNames) {
		return "unknown"
	}
	return funcNames[f]
}

// Arity is the number of arguments f accepts.
func (f Func) Arity() int {
	if f == FuncMin || f == FuncMax {
		return 2
	}
	return 1
}

// LookupFunc resolves a builtin by name, ignoring case.
func LookupFunc(name string) (Func, bool) {
	folded := cases.Fold().String(name)
	for i, n := range funcNames {
		if n == folded {
			return Func(i), true
		}
	}
	return 0, false
}

// Funcs returns the builtin function names in declaration order.
func Funcs() []string {
	return append([]string(nil), funcNames[:]...)
}
