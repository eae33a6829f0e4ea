package calculus

// ============================================================
// Differentiation
// ============================================================

// Diff returns the partial derivative of e with respect to variable. Every
// other variable is treated as a constant. The result is not simplified;
// pass it through Simplify.
func Diff(e Expr, variable string) (Expr, error) {
	switch v := e.(type) {
	case Number:
		return Num(0), nil
	case Variable:
		if v.Name == variable {
			return Num(1), nil
		}
		return Num(0), nil
	case BinaryOp:
		if v.Op == OpPow {
			return diffPow(v, variable)
		}
		return diffBinary(v, variable)
	case Call:
		return diffCall(v, variable)
	}
	return nil, unknownShape("diff", e)
}

func diffBinary(b BinaryOp, variable string) (Expr, error) {
	df, err := Diff(b.Left, variable)
	if err != nil {
		return nil, err
	}
	dg, err := Diff(b.Right, variable)
	if err != nil {
		return nil, err
	}
	switch b.Op {
	case OpAdd:
		return Add(df, dg), nil
	case OpSub:
		return Sub(df, dg), nil
	case OpMul:
		// (f * g)' = f'g + fg'
		return Add(
			Mul(df, Clone(b.Right)),
			Mul(Clone(b.Left), dg),
		), nil
	case OpDiv:
		// (f / g)' = (f'g - fg') / g^2
		return Div(
			Sub(Mul(df, Clone(b.Right)), Mul(Clone(b.Left), dg)),
			Pow(Clone(b.Right), Num(2)),
		), nil
	}
	return nil, unknownShape("diff", b)
}

func diffPow(p BinaryOp, variable string) (Expr, error) {
	df, err := Diff(p.Left, variable)
	if err != nil {
		return nil, err
	}

	// (f ^ n)' = n * f^(n-1) * f'
	if n, ok := p.Right.(Number); ok {
		return Mul(
			Mul(Num(n.Value), Pow(Clone(p.Left), Num(n.Value-1))),
			df,
		), nil
	}

	// (f ^ g)' = f^g * (g' * ln(f) + g * f'/f)
	dg, err := Diff(p.Right, variable)
	if err != nil {
		return nil, err
	}
	return Mul(
		Pow(Clone(p.Left), Clone(p.Right)),
		Add(
			Mul(dg, Fn("ln", Clone(p.Left))),
			Mul(Clone(p.Right), Div(df, Clone(p.Left))),
		),
	), nil
}

func diffCall(c Call, variable string) (Expr, error) {
	if len(c.Args) != 1 {
		return nil, NewError(UnsupportedArity, "diff", c,
			"%s: differentiation supports single-argument functions, got %d arguments", c.Name, len(c.Args))
	}
	u := c.Args[0]
	du, err := Diff(u, variable)
	if err != nil {
		return nil, err
	}

	switch c.Name {
	case "sin":
		return Mul(Fn("cos", Clone(u)), du), nil
	case "cos":
		return Mul(Mul(Num(-1), Fn("sin", Clone(u))), du), nil
	case "tan":
		// sec^2(u) = 1 / cos^2(u)
		return Mul(Div(Num(1), Pow(Fn("cos", Clone(u)), Num(2))), du), nil
	case "ln":
		return Div(du, Clone(u)), nil
	case "sqrt":
		return Div(du, Mul(Num(2), Fn("sqrt", Clone(u)))), nil
	}
	return nil, NewError(UnsupportedFunction, "diff", c, "no derivative rule for %q", c.Name)
}

// DiffN applies Diff n times, simplifying after each step.
func DiffN(e Expr, variable string, n int) (Expr, error) {
	if n < 0 {
		return nil, NewError(InvalidArgument, "diffn", nil, "order must be >= 0, got %d", n)
	}
	result := e
	for i := 0; i < n; i++ {
		d, err := Diff(result, variable)
		if err != nil {
			return nil, err
		}
		result, err = Simplify(d)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}
