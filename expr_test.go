package calculus_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/njchilds90/calculus"
)

// ============================================================
// Rendering
// ============================================================

func TestString(t *testing.T) {
	tests := []struct {
		expr calculus.Expr
		want string
	}{
		{calculus.Num(2), "2"},
		{calculus.Num(-0.5), "-0.5"},
		{calculus.Num(1e21), "1000000000000000000000"},
		{calculus.Num(math.NaN()), "NaN"},
		{calculus.Num(math.Inf(-1)), "-Inf"},
		{x, "x"},
		{calculus.Add(x, calculus.Num(1)), "(x + 1)"},
		{calculus.Pow(calculus.Sub(x, y), calculus.Num(2)), "((x - y) ^ 2)"},
		{calculus.Fn("max", x, y, calculus.Num(0)), "max(x, y, 0)"},
		{calculus.Fn("pi"), "pi()"},
		{calculus.BinaryOp{Op: calculus.Op(7), Left: x, Right: y}, "(x Op(7) y)"},
		{nil, "<nil>"},
	}
	for _, tt := range tests {
		if got := calculus.String(tt.expr); got != tt.want {
			t.Errorf("want %s, got %s", tt.want, got)
		}
	}
}

func TestEqual(t *testing.T) {
	a := calculus.Mul(calculus.Fn("sin", x), calculus.Num(2))
	if !calculus.Equal(a, calculus.Mul(calculus.Fn("sin", x), calculus.Num(2))) {
		t.Error("structurally identical trees should be equal")
	}
	unequal := []calculus.Expr{
		calculus.Mul(calculus.Num(2), calculus.Fn("sin", x)),
		calculus.Add(calculus.Fn("sin", x), calculus.Num(2)),
		calculus.Mul(calculus.Fn("cos", x), calculus.Num(2)),
		calculus.Mul(calculus.Fn("sin", x, x), calculus.Num(2)),
		x,
		nil,
	}
	for _, b := range unequal {
		if calculus.Equal(a, b) {
			t.Errorf("%s should not equal %s", a, calculus.String(b))
		}
	}
	if !calculus.Equal(nil, nil) {
		t.Error("nil should equal nil")
	}
	if !calculus.Num(math.NaN()).Equal(calculus.Num(math.NaN())) {
		t.Error("NaN literals should be structurally equal")
	}
	if !calculus.Equal(calculus.Add(x, calculus.Num(math.NaN())), calculus.Add(x, calculus.Num(math.NaN()))) {
		t.Error("trees with NaN leaves should be equal")
	}
	if calculus.Num(math.NaN()).Equal(calculus.Num(0)) {
		t.Error("NaN should not equal 0")
	}
}

func TestFnCopiesArgs(t *testing.T) {
	args := []calculus.Expr{x, y}
	c := calculus.Fn("max", args...)
	args[0] = calculus.Num(1)
	if c.String() != "max(x, y)" {
		t.Errorf("Fn should own its arguments, got %s", c)
	}
	if empty := calculus.Fn("max"); empty.Args == nil {
		t.Error("Fn should never leave Args nil")
	}
}

func TestLaTeX(t *testing.T) {
	tests := []struct {
		expr calculus.Expr
		want string
	}{
		{calculus.Add(x, calculus.Num(1)), `x + 1`},
		{calculus.Sub(x, calculus.Add(y, calculus.Num(1))), `x - \left(y + 1\right)`},
		{calculus.Mul(calculus.Add(x, y), calculus.Num(2)), `\left(x + y\right) \cdot 2`},
		{calculus.Div(calculus.Num(1), x), `\frac{1}{x}`},
		{calculus.Pow(x, calculus.Num(2)), `x^{2}`},
		{calculus.Pow(calculus.Mul(calculus.Num(2), x), y), `\left(2 \cdot x\right)^{y}`},
		{calculus.Fn("sin", x), `\sin\left(x\right)`},
		{calculus.Fn("log10", x), `\log_{10}\left(x\right)`},
		{calculus.Fn("sqrt", calculus.Add(x, calculus.Num(1))), `\sqrt{x + 1}`},
		{calculus.Fn("max", x, y), `\max\left(x, y\right)`},
		{calculus.Fn("gamma", x), `\operatorname{gamma}\left(x\right)`},
	}
	for _, tt := range tests {
		if got := calculus.LaTeX(tt.expr); got != tt.want {
			t.Errorf("LaTeX(%s): want %s, got %s", tt.expr, tt.want, got)
		}
	}
}

// ============================================================
// Tree utilities
// ============================================================

func TestSubstitute(t *testing.T) {
	e := calculus.Add(calculus.Mul(x, y), calculus.Fn("sin", x))
	got := calculus.Substitute(e, "x", calculus.Num(2))
	want := calculus.Expr(calculus.Add(calculus.Mul(calculus.Num(2), y), calculus.Fn("sin", calculus.Num(2))))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if e.String() != "((x * y) + sin(x))" {
		t.Errorf("input modified: %s", e)
	}

	// The replacement is copied at every occurrence.
	repl := calculus.Fn("cos", y)
	sub := calculus.Substitute(calculus.Add(x, x), "x", repl).(calculus.BinaryOp)
	sub.Left.(calculus.Call).Args[0] = calculus.Num(0)
	if sub.Right.String() != "cos(y)" || repl.String() != "cos(y)" {
		t.Errorf("substituted subtrees share storage: %s, %s", sub, repl)
	}
}

func TestFreeSymbols(t *testing.T) {
	e := calculus.Add(calculus.Mul(calculus.Var("b"), calculus.Var("a")), calculus.Fn("max", calculus.Var("b"), calculus.Num(1), calculus.Var("c")))
	if diff := cmp.Diff([]string{"a", "b", "c"}, calculus.FreeSymbols(e)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if got := calculus.FreeSymbols(calculus.Num(1)); len(got) != 0 {
		t.Errorf("want no symbols, got %v", got)
	}
}

func TestDependsOn(t *testing.T) {
	e := calculus.Mul(calculus.Num(2), calculus.Fn("sin", y))
	if calculus.DependsOn(e, "x") {
		t.Error("expression does not mention x")
	}
	if !calculus.DependsOn(e, "y") {
		t.Error("expression mentions y inside a call")
	}
}

func TestSizeAndDepth(t *testing.T) {
	tests := []struct {
		expr        calculus.Expr
		size, depth int
	}{
		{x, 1, 1},
		{calculus.Add(x, calculus.Num(1)), 3, 2},
		{calculus.Fn("max"), 1, 1},
		{calculus.Mul(calculus.Fn("sin", calculus.Pow(x, calculus.Num(2))), y), 6, 4},
		{nil, 0, 0},
	}
	for _, tt := range tests {
		if got := calculus.Size(tt.expr); got != tt.size {
			t.Errorf("Size(%s): want %d, got %d", calculus.String(tt.expr), tt.size, got)
		}
		if got := calculus.Depth(tt.expr); got != tt.depth {
			t.Errorf("Depth(%s): want %d, got %d", calculus.String(tt.expr), tt.depth, got)
		}
	}
}
