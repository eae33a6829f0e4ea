// Package calculus provides a small symbolic calculus kernel for Go.
//
// Design goals:
//   - Closed expression grammar: numbers, variables, binary operators, calls
//   - Structural differentiation with exact, predictable output shapes
//   - One bottom-up simplification pass with documented rule order
//   - Plain float64 arithmetic, no hidden state, safe for concurrent use
//   - JSON and LaTeX output so trees travel well through tools and services
package calculus

import (
	"math"
	"strconv"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is an immutable expression tree. The set of implementations is
// closed: Number, Variable, BinaryOp and Call.
type Expr interface {
	String() string
	Equal(other Expr) bool
	isExpr()
}

// Op identifies the operator of a BinaryOp.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpPow
)

func (o Op) String() string {
	switch o {
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
	return "Op(" + strconv.Itoa(int(o)) + ")"
}

// name is the operator's JSON type tag.
func (o Op) name() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpPow:
		return "pow"
	}
	return ""
}

// ============================================================
// Number — float64 literal
// ============================================================

type Number struct{ Value float64 }

func Num(v float64) Number { return Number{Value: v} }

func (n Number) isExpr()        {}
func (n Number) String() string { return strconv.FormatFloat(n.Value, 'f', -1, 64) }
// Equal is structural: two NaN literals are equal.
func (n Number) Equal(other Expr) bool {
	o, ok := other.(Number)
	return ok && (n.Value == o.Value || math.IsNaN(n.Value) && math.IsNaN(o.Value))
}

// ============================================================
// Variable — named symbol
// ============================================================

type Variable struct{ Name string }

func Var(name string) Variable { return Variable{Name: name} }

func (v Variable) isExpr()        {}
func (v Variable) String() string { return v.Name }
func (v Variable) Equal(other Expr) bool {
	o, ok := other.(Variable)
	return ok && v.Name == o.Name
}

// ============================================================
// BinaryOp — Add, Sub, Mul, Div, Pow
// ============================================================

type BinaryOp struct {
	Op    Op
	Left  Expr
	Right Expr
}

func Add(l, r Expr) BinaryOp { return BinaryOp{Op: OpAdd, Left: l, Right: r} }
func Sub(l, r Expr) BinaryOp { return BinaryOp{Op: OpSub, Left: l, Right: r} }
func Mul(l, r Expr) BinaryOp { return BinaryOp{Op: OpMul, Left: l, Right: r} }
func Div(l, r Expr) BinaryOp { return BinaryOp{Op: OpDiv, Left: l, Right: r} }
func Pow(l, r Expr) BinaryOp { return BinaryOp{Op: OpPow, Left: l, Right: r} }

func (b BinaryOp) isExpr() {}

// String renders the operation fully parenthesized, e.g. "(x + 2)".
func (b BinaryOp) String() string {
	return "(" + String(b.Left) + " " + b.Op.String() + " " + String(b.Right) + ")"
}

func (b BinaryOp) Equal(other Expr) bool {
	o, ok := other.(BinaryOp)
	return ok && b.Op == o.Op && Equal(b.Left, o.Left) && Equal(b.Right, o.Right)
}

// ============================================================
// Call — named function application
// ============================================================

// Call applies a named function to its arguments. Neither the name nor the
// arity is checked here; consumers that interpret calls do that.
type Call struct {
	Name string
	Args []Expr
}

// Fn builds a Call that owns a copy of args.
func Fn(name string, args ...Expr) Call {
	owned := make([]Expr, len(args))
	copy(owned, args)
	return Call{Name: name, Args: owned}
}

func (c Call) isExpr() {}

func (c Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = String(a)
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

func (c Call) Equal(other Expr) bool {
	o, ok := other.(Call)
	if !ok || c.Name != o.Name || len(c.Args) != len(o.Args) {
		return false
	}
	for i := range c.Args {
		if !Equal(c.Args[i], o.Args[i]) {
			return false
		}
	}
	return true
}

// ============================================================
// Top-level helpers
// ============================================================

// String renders e, tolerating a nil tree.
func String(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}

// Equal reports whether a and b are structurally identical trees.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}
