package calculus

import (
	"fmt"
	"math"
)

// ============================================================
// Numeric evaluation
// ============================================================

// DiagnosticKind classifies a soft evaluation problem.
type DiagnosticKind string

const DiagUnboundVariable DiagnosticKind = "unbound_variable"

// Diagnostic reports a problem that did not stop evaluation.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Name    string         `json:"name"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string { return d.Message }

// Evaluate computes e with the given variable bindings. A variable missing
// from vars evaluates to NaN and is reported as a Diagnostic, not an error.
// Errors are reserved for calls the evaluator cannot interpret.
func Evaluate(e Expr, vars map[string]float64) (float64, []Diagnostic, error) {
	ev := &evaluator{vars: vars}
	v, err := ev.eval(e)
	if err != nil {
		return math.NaN(), ev.diags, err
	}
	return v, ev.diags, nil
}

type evaluator struct {
	vars  map[string]float64
	diags []Diagnostic
}

func (ev *evaluator) eval(e Expr) (float64, error) {
	switch v := e.(type) {
	case Number:
		return v.Value, nil
	case Variable:
		x, ok := ev.vars[v.Name]
		if !ok {
			ev.diags = append(ev.diags, Diagnostic{
				Kind:    DiagUnboundVariable,
				Name:    v.Name,
				Message: fmt.Sprintf("variable %s not found", v.Name),
			})
			return math.NaN(), nil
		}
		return x, nil
	case BinaryOp:
		l, err := ev.eval(v.Left)
		if err != nil {
			return 0, err
		}
		r, err := ev.eval(v.Right)
		if err != nil {
			return 0, err
		}
		switch v.Op {
		case OpAdd:
			return l + r, nil
		case OpSub:
			return l - r, nil
		case OpMul:
			return l * r, nil
		case OpDiv:
			return l / r, nil
		case OpPow:
			return math.Pow(l, r), nil
		}
	case Call:
		return ev.call(v)
	}
	return 0, unknownShape("evaluate", e)
}

func (ev *evaluator) call(c Call) (float64, error) {
	vals := make([]float64, len(c.Args))
	for i, a := range c.Args {
		x, err := ev.eval(a)
		if err != nil {
			return 0, err
		}
		vals[i] = x
	}
	if f, ok := unaryFuncs[c.Name]; ok {
		if len(vals) != 1 {
			return 0, NewError(WrongArity, "evaluate", c, "%s() expects 1 argument, got %d", c.Name, len(vals))
		}
		return f(vals[0]), nil
	}
	switch c.Name {
	case "max":
		return foldMax(vals), nil
	case "min":
		return foldMin(vals), nil
	}
	return 0, NewError(UnknownFunction, "evaluate", c, "unknown function %q", c.Name)
}
