package calculus

import "math"

// ============================================================
// Simplification
// ============================================================

// Simplify canonicalizes e in one bottom-up pass. Children are simplified
// first, then the first matching local rule for the node is applied. The only
// failure is a literal zero denominator.
func Simplify(e Expr) (Expr, error) {
	switch v := e.(type) {
	case Number, Variable:
		return e, nil
	case BinaryOp:
		l, err := Simplify(v.Left)
		if err != nil {
			return nil, err
		}
		r, err := Simplify(v.Right)
		if err != nil {
			return nil, err
		}
		return simplifyBinary(v.Op, l, r)
	case Call:
		args := make([]Expr, len(v.Args))
		for i, a := range v.Args {
			s, err := Simplify(a)
			if err != nil {
				return nil, err
			}
			args[i] = s
		}
		return simplifyCall(v.Name, args), nil
	}
	return nil, unknownShape("simplify", e)
}

// simplifyBinary applies the rule table for op to already simplified operands.
// Rule order matters: zero absorption beats the identity in Mul, and a zero
// denominator is rejected before a zero numerator is folded.
func simplifyBinary(op Op, l, r Expr) (Expr, error) {
	ln, lnum := l.(Number)
	rn, rnum := r.(Number)

	switch op {
	case OpAdd:
		switch {
		case lnum && rnum:
			return Num(ln.Value + rn.Value), nil
		case rnum && rn.Value == 0:
			return l, nil
		case lnum && ln.Value == 0:
			return r, nil
		}
	case OpSub:
		// 0 - r stays as is.
		switch {
		case lnum && rnum:
			return Num(ln.Value - rn.Value), nil
		case rnum && rn.Value == 0:
			return l, nil
		}
	case OpMul:
		switch {
		case lnum && ln.Value == 0, rnum && rn.Value == 0:
			return Num(0), nil
		case lnum && ln.Value == 1:
			return r, nil
		case rnum && rn.Value == 1:
			return l, nil
		case lnum && rnum:
			return Num(ln.Value * rn.Value), nil
		}
	case OpDiv:
		switch {
		case rnum && rn.Value == 0:
			return nil, NewError(DivisionByZero, "simplify", Div(l, r), "cannot divide by zero")
		case lnum && ln.Value == 0:
			return Num(0), nil
		case rnum && rn.Value == 1:
			return l, nil
		case lnum && rnum:
			return Num(ln.Value / rn.Value), nil
		}
	case OpPow:
		switch {
		case rnum && rn.Value == 0:
			return Num(1), nil
		case rnum && rn.Value == 1:
			return l, nil
		case lnum && rnum:
			return Num(math.Pow(ln.Value, rn.Value)), nil
		}
	default:
		return nil, unknownShape("simplify", BinaryOp{Op: op, Left: l, Right: r})
	}
	return BinaryOp{Op: op, Left: l, Right: r}, nil
}

// simplifyCall folds a call whose arguments are all literals when the name is
// one the evaluator knows. Anything else is rebuilt unchanged.
func simplifyCall(name string, args []Expr) Expr {
	if vals, ok := literals(args); ok {
		if f, unary := unaryFuncs[name]; unary && len(vals) == 1 {
			return Num(f(vals[0]))
		}
		switch name {
		case "max":
			return Num(foldMax(vals))
		case "min":
			return Num(foldMin(vals))
		}
	}
	return Call{Name: name, Args: args}
}

// DefaultMaxPasses bounds SimplifyFixed when maxPasses is not positive.
const DefaultMaxPasses = 16

// SimplifyFixed repeats Simplify until the tree stops changing or maxPasses
// passes have run.
func SimplifyFixed(e Expr, maxPasses int) (Expr, error) {
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	curr, err := Simplify(e)
	if err != nil {
		return nil, err
	}
	for i := 1; i < maxPasses; i++ {
		next, err := Simplify(curr)
		if err != nil {
			return nil, err
		}
		if Equal(next, curr) {
			break
		}
		curr = next
	}
	return curr, nil
}
