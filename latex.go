package calculus

import "strings"

// LaTeX renders e as LaTeX source.
func LaTeX(e Expr) string {
	switch v := e.(type) {
	case Number, Variable:
		return v.String()
	case BinaryOp:
		return latexBinary(v)
	case Call:
		return latexCall(v)
	}
	return String(e)
}

func latexBinary(b BinaryOp) string {
	l, r := LaTeX(b.Left), LaTeX(b.Right)
	switch b.Op {
	case OpAdd:
		return l + " + " + r
	case OpSub:
		if isSum(b.Right) {
			r = `\left(` + r + `\right)`
		}
		return l + " - " + r
	case OpMul:
		if isSum(b.Left) {
			l = `\left(` + l + `\right)`
		}
		if isSum(b.Right) {
			r = `\left(` + r + `\right)`
		}
		return l + ` \cdot ` + r
	case OpDiv:
		return `\frac{` + l + `}{` + r + `}`
	case OpPow:
		if _, ok := b.Left.(BinaryOp); ok {
			l = `\left(` + l + `\right)`
		}
		return l + "^{" + r + "}"
	}
	return b.String()
}

func isSum(e Expr) bool {
	b, ok := e.(BinaryOp)
	return ok && (b.Op == OpAdd || b.Op == OpSub)
}

func latexCall(c Call) string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = LaTeX(a)
	}
	joined := strings.Join(args, ", ")
	switch c.Name {
	case "sin", "cos", "tan", "ln", "max", "min":
		return `\` + c.Name + `\left(` + joined + `\right)`
	case "log10":
		return `\log_{10}\left(` + joined + `\right)`
	case "sqrt":
		if len(c.Args) == 1 {
			return `\sqrt{` + joined + `}`
		}
	}
	return `\operatorname{` + c.Name + `}\left(` + joined + `\right)`
}
