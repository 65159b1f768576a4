// Package expr implements the small arithmetic language used to describe how
// instance size grows across a reduction.
//
// Formulas are infix over named size variables:
//
//	3 * num_vertices ^ 2 + log2(num_edges)
//
// The grammar gives + and - the lowest precedence, then * and /, then unary
// minus, then ^ (right-associative). Calls must name one of the builtin
// functions log2, log10, ln, exp, sqrt, min, max, floor, ceil and abs; the
// name is matched case-insensitively and checked at parse time.
//
// An Expr is immutable. Its text form (String) parses back to an expression
// with the same value for every assignment, and that text is also its
// JSON and YAML representation.
package expr

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Expr is a parsed formula. The zero Expr is the constant 0.
type Expr struct {
	root node
}

// node is implemented by the AST types below.
type node interface {
	eval(env Env) (float64, error)
	write(b *strings.Builder, minBP int)
	collectVars(set map[string]struct{})
	substitute(bindings map[string]node) node
}

// BinaryOp identifies an infix operator.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpPow
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpPow:
		return "^"
	}
	return "?"
}

// bindingPower returns the left and right binding powers of op.
// Left-associative operators bind tighter on the right; ^ is the reverse.
func (op BinaryOp) bindingPower() (left, right int) {
	switch op {
	case OpAdd, OpSub:
		return 1, 2
	case OpMul, OpDiv:
		return 3, 4
	case OpPow:
		return 7, 6
	}
	return 0, 0
}

// negBP is the binding power of unary minus: tighter than + - * /, looser than ^.
const negBP = 5

type numNode struct{ v float64 }

type varNode struct{ name string }

type binaryNode struct {
	op          BinaryOp
	left, right node
}

type negNode struct{ inner node }

type callNode struct {
	fn   Func
	args []node
}

// Const returns an Expr for the literal v.
func Const(v float64) Expr { return Expr{root: numNode{v: v}} }

// Var returns an Expr for the variable name.
func Var(name string) Expr { return Expr{root: varNode{name: name}} }

// Binary combines two expressions with op.
func Binary(op BinaryOp, left, right Expr) Expr {
	return Expr{root: binaryNode{op: op, left: left.node(), right: right.node()}}
}

// Neg returns the negation of e.
func Neg(e Expr) Expr { return Expr{root: negNode{inner: e.node()}} }

// Call applies a builtin function to args. Arity is checked at evaluation.
func Call(fn Func, args ...Expr) Expr {
	nodes := make([]node, len(args))
	for i, a := range args {
		nodes[i] = a.node()
	}
	return Expr{root: callNode{fn: fn, args: nodes}}
}

func (e Expr) node() node {
	if e.root == nil {
		return numNode{v: 0}
	}
	return e.root
}

// String renders e in the formula grammar, adding parentheses only where
// precedence or associativity would otherwise change the meaning.
func (e Expr) String() string {
	var b strings.Builder
	e.node().write(&b, 0)
	return b.String()
}

// Variables returns the distinct variable names in e, sorted.
func (e Expr) Variables() []string {
	set := make(map[string]struct{})
	e.node().collectVars(set)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Substitute replaces every variable named in bindings with its expression.
// Variables without a binding are kept.
func (e Expr) Substitute(bindings map[string]Expr) Expr {
	if len(bindings) == 0 {
		return e
	}
	nodes := make(map[string]node, len(bindings))
	for name, b := range bindings {
		nodes[name] = b.node()
	}
	return Expr{root: e.node().substitute(nodes)}
}

// Equal reports whether e and other have the same canonical text.
func (e Expr) Equal(other Expr) bool {
	return e.String() == other.String()
}

// IsConst reports whether e has no variables.
func (e Expr) IsConst() bool {
	return len(e.Variables()) == 0
}

func (n numNode) write(b *strings.Builder, minBP int) {
	text := formatNumber(n.v)
	if n.v < 0 && negBP < minBP {
		b.WriteByte('(')
		b.WriteString(text)
		b.WriteByte(')')
		return
	}
	b.WriteString(text)
}

// formatNumber prints integral values without a fraction and everything
// else in plain decimal, since the lexer has no exponent syntax.
func formatNumber(v float64) string {
	if r := math.Trunc(v); r == v && math.Abs(r) < 1e15 {
		return strconv.FormatInt(int64(r), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (n varNode) write(b *strings.Builder, _ int) { b.WriteString(n.name) }

func (n binaryNode) write(b *strings.Builder, minBP int) {
	lbp, rbp := n.op.bindingPower()
	paren := lbp < minBP
	if paren {
		b.WriteByte('(')
	}
	leftMin := lbp
	if n.op == OpPow {
		// a ^ b ^ c groups to the right, so a left operand of equal
		// precedence needs parentheses.
		leftMin = lbp + 1
	}
	n.left.write(b, leftMin)
	b.WriteByte(' ')
	b.WriteString(n.op.String())
	b.WriteByte(' ')
	n.right.write(b, rbp)
	if paren {
		b.WriteByte(')')
	}
}

func (n negNode) write(b *strings.Builder, minBP int) {
	paren := negBP < minBP
	if paren {
		b.WriteByte('(')
	}
	b.WriteByte('-')
	n.inner.write(b, negBP)
	if paren {
		b.WriteByte(')')
	}
}

func (n callNode) write(b *strings.Builder, _ int) {
	b.WriteString(n.fn.String())
	b.WriteByte('(')
	for i, arg := range n.args {
		if i > 0 {
			b.WriteString(", ")
		}
		arg.write(b, 0)
	}
	b.WriteByte(')')
}

func (numNode) collectVars(map[string]struct{}) {}

func (n varNode) collectVars(set map[string]struct{}) { set[n.name] = struct{}{} }

func (n binaryNode) collectVars(set map[string]struct{}) {
	n.left.collectVars(set)
	n.right.collectVars(set)
}

func (n negNode) collectVars(set map[string]struct{}) { n.inner.collectVars(set) }

func (n callNode) collectVars(set map[string]struct{}) {
	for _, arg := range n.args {
		arg.collectVars(set)
	}
}

func (n numNode) substitute(map[string]node) node { return n }

func (n varNode) substitute(bindings map[string]node) node {
	if r, ok := bindings[n.name]; ok {
		return r
	}
	return n
}

func (n binaryNode) substitute(bindings map[string]node) node {
	return binaryNode{op: n.op, left: n.left.substitute(bindings), right: n.right.substitute(bindings)}
}

func (n negNode) substitute(bindings map[string]node) node {
	return negNode{inner: n.inner.substitute(bindings)}
}

func (n callNode) substitute(bindings map[string]node) node {
	args := make([]node, len(n.args))
	for i, arg := range n.args {
		args[i] = arg.substitute(bindings)
	}
	return callNode{fn: n.fn, args: args}
}
