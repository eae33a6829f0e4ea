package calculus

import "math"

// unaryFuncs are the single-argument functions the evaluator and the
// simplifier know how to compute.
var unaryFuncs = map[string]func(float64) float64{
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"ln":    math.Log,
	"log10": math.Log10,
	"sqrt":  math.Sqrt,
}

// foldMax folds from -Inf and skips NaN operands.
func foldMax(vals []float64) float64 {
	acc := math.Inf(-1)
	for _, v := range vals {
		if v > acc {
			acc = v
		}
	}
	return acc
}

// foldMin folds from +Inf and skips NaN operands.
func foldMin(vals []float64) float64 {
	acc := math.Inf(1)
	for _, v := range vals {
		if v < acc {
			acc = v
		}
	}
	return acc
}

// literals returns the values of args when every one is a Number.
func literals(args []Expr) ([]float64, bool) {
	vals := make([]float64, len(args))
	for i, a := range args {
		n, ok := a.(Number)
		if !ok {
			return nil, false
		}
		vals[i] = n.Value
	}
	return vals, true
}
