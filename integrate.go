package calculus

import "math"

// ============================================================
// Integration (rule-based symbolic + numerical)
// ============================================================

// Integrate returns an antiderivative of e with respect to variable, without
// the constant of integration. Only a small set of shapes is supported; any
// other shape fails with NotSupported rather than guessing.
func Integrate(e Expr, variable string) (Expr, error) {
	switch v := e.(type) {
	case Number:
		// ∫c dx = c*x
		return Mul(v, Var(variable)), nil
	case Variable:
		if v.Name == variable {
			// ∫x dx = x^2 / 2
			return Div(Pow(Var(variable), Num(2)), Num(2)), nil
		}
		return Mul(v, Var(variable)), nil
	case BinaryOp:
		if !DependsOn(v, variable) {
			return Mul(Clone(v), Var(variable)), nil
		}
		return integrateBinary(v, variable)
	case Call:
		if !DependsOn(v, variable) {
			return Mul(Clone(v), Var(variable)), nil
		}
		if len(v.Args) == 1 {
			if arg, ok := v.Args[0].(Variable); ok && arg.Name == variable {
				switch v.Name {
				case "sin":
					return Mul(Num(-1), Fn("cos", Var(variable))), nil
				case "cos":
					return Fn("sin", Var(variable)), nil
				}
			}
		}
		return nil, NewError(NotSupported, "integrate", v, "not yet supported")
	}
	return nil, unknownShape("integrate", e)
}

func integrateBinary(b BinaryOp, variable string) (Expr, error) {
	switch b.Op {
	case OpAdd, OpSub:
		l, err := Integrate(b.Left, variable)
		if err != nil {
			return nil, err
		}
		r, err := Integrate(b.Right, variable)
		if err != nil {
			return nil, err
		}
		return BinaryOp{Op: b.Op, Left: l, Right: r}, nil
	case OpMul:
		if !DependsOn(b.Left, variable) {
			r, err := Integrate(b.Right, variable)
			if err != nil {
				return nil, err
			}
			return Mul(Clone(b.Left), r), nil
		}
		if !DependsOn(b.Right, variable) {
			l, err := Integrate(b.Left, variable)
			if err != nil {
				return nil, err
			}
			return Mul(l, Clone(b.Right)), nil
		}
	case OpDiv:
		if !DependsOn(b.Right, variable) {
			l, err := Integrate(b.Left, variable)
			if err != nil {
				return nil, err
			}
			return Div(l, Clone(b.Right)), nil
		}
	case OpPow:
		base, ok := b.Left.(Variable)
		n, isNum := b.Right.(Number)
		if ok && isNum && base.Name == variable {
			if n.Value == -1 {
				return Fn("ln", Var(variable)), nil
			}
			next := Num(n.Value + 1)
			return Div(Pow(Var(variable), next), next), nil
		}
	}
	return nil, NewError(NotSupported, "integrate", b, "not yet supported")
}

var (
	gaussNodes = []float64{
		-0.9739065285, -0.8650633667, -0.6794095683,
		-0.4333953941, -0.1488743390, 0.1488743390,
		0.4333953941, 0.6794095683, 0.8650633667, 0.9739065285,
	}
	gaussWeights = []float64{
		0.0666713443, 0.1494513492, 0.2190863625,
		0.2692667193, 0.2955242247, 0.2955242247,
		0.2692667193, 0.2190863625, 0.1494513492, 0.0666713443,
	}
)

// DefiniteIntegrate approximates ∫_a^b e d(variable) with 10-point
// Gauss–Legendre quadrature. vars binds any other free variables.
func DefiniteIntegrate(e Expr, variable string, a, b float64, vars map[string]float64) (float64, error) {
	env := make(map[string]float64, len(vars)+1)
	for k, v := range vars {
		env[k] = v
	}
	mid := (a + b) / 2
	half := (b - a) / 2
	sum := 0.0
	for i, t := range gaussNodes {
		env[variable] = mid + half*t
		y, _, err := Evaluate(e, env)
		if err != nil {
			return math.NaN(), err
		}
		sum += gaussWeights[i] * y
	}
	return half * sum, nil
}
