// Package tool exposes the calculus kernel as JSON tool calls for agents and
// services.
package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/njchilds90/calculus"
	"github.com/njchilds90/calculus/codegen"
)

// MaxDiffOrder caps the diffn order. Trees are not collected into like
// terms, so each step can double the size of a product.
const MaxDiffOrder = 32

// Request names a tool and carries its JSON parameters. Expressions are
// passed in the object form produced by calculus.Encode.
type Request struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type Response struct {
	Result      interface{}           `json:"result,omitempty"`
	String      string                `json:"string,omitempty"`
	LaTeX       string                `json:"latex,omitempty"`
	Nodes       int                   `json:"nodes,omitempty"`
	Diagnostics []calculus.Diagnostic `json:"diagnostics,omitempty"`
	Error       string                `json:"error,omitempty"`
	ErrorKind   string                `json:"error_kind,omitempty"`
}

// Failed reports whether the call produced an error.
func (r Response) Failed() bool { return r.Error != "" }

func fail(err error) Response {
	return Response{Error: err.Error(), ErrorKind: string(calculus.KindOf(err))}
}

func respond(e calculus.Expr) Response {
	m, err := calculus.Encode(e)
	if err != nil {
		return fail(err)
	}
	return Response{Result: m, String: calculus.String(e), LaTeX: calculus.LaTeX(e), Nodes: calculus.Size(e)}
}

// number keeps non-finite results representable in JSON.
func number(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return v
}

type params map[string]interface{}

func (p params) expr(key string) (calculus.Expr, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("missing param: %s", key)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid type for param %s", key)
	}
	e, err := calculus.FromJSON(m)
	if err != nil {
		return nil, fmt.Errorf("param %s: %w", key, err)
	}
	return e, nil
}

func (p params) str(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("missing param: %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("param %s must be a string", key)
	}
	return s, nil
}

func (p params) number(key string) (float64, error) {
	v, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("missing param: %s", key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("param %s must be a number", key)
	}
	return f, nil
}

// bindings reads an optional {"name": number} object.
func (p params) bindings(key string) (map[string]float64, error) {
	v, ok := p[key]
	if !ok {
		return map[string]float64{}, nil
	}
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("param %s must be an object", key)
	}
	out := make(map[string]float64, len(raw))
	for name, val := range raw {
		f, ok := val.(float64)
		if !ok {
			return nil, fmt.Errorf("param %s.%s must be a number", key, name)
		}
		out[name] = f
	}
	return out, nil
}

func (p params) flag(key string) bool {
	b, _ := p[key].(bool)
	return b
}

// Handle executes a single tool call. Failures are reported in the
// response, never returned or panicked.
func Handle(req Request) Response {
	p := params(req.Params)

	// exprVar covers the common {"expr", "var"} pair.
	exprVar := func() (calculus.Expr, string, error) {
		e, err := p.expr("expr")
		if err != nil {
			return nil, "", err
		}
		v, err := p.str("var")
		if err != nil {
			return nil, "", err
		}
		return e, v, nil
	}

	switch req.Tool {
	case "simplify":
		e, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		s, err := calculus.Simplify(e)
		if err != nil {
			return fail(err)
		}
		return respond(s)

	case "simplify_fixed":
		e, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		passes := calculus.DefaultMaxPasses
		if _, ok := p["max_passes"]; ok {
			f, err := p.number("max_passes")
			if err != nil {
				return fail(err)
			}
			passes = int(f)
		}
		s, err := calculus.SimplifyFixed(e, passes)
		if err != nil {
			return fail(err)
		}
		return respond(s)

	case "diff":
		e, v, err := exprVar()
		if err != nil {
			return fail(err)
		}
		d, err := calculus.Diff(e, v)
		if err != nil {
			return fail(err)
		}
		if p.flag("simplify") {
			if d, err = calculus.Simplify(d); err != nil {
				return fail(err)
			}
		}
		return respond(d)

	case "diffn":
		e, v, err := exprVar()
		if err != nil {
			return fail(err)
		}
		n, err := p.number("n")
		if err != nil {
			return fail(err)
		}
		if n > MaxDiffOrder {
			return fail(calculus.NewError(calculus.InvalidArgument, "diffn", nil, "order %v exceeds the limit of %d", n, MaxDiffOrder))
		}
		d, err := calculus.DiffN(e, v, int(n))
		if err != nil {
			return fail(err)
		}
		return respond(d)

	case "evaluate":
		e, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		vars, err := p.bindings("vars")
		if err != nil {
			return fail(err)
		}
		val, diags, err := calculus.Evaluate(e, vars)
		if err != nil {
			resp := fail(err)
			resp.Diagnostics = diags
			return resp
		}
		return Response{
			Result:      number(val),
			String:      strconv.FormatFloat(val, 'g', -1, 64),
			Diagnostics: diags,
		}

	case "integrate":
		e, v, err := exprVar()
		if err != nil {
			return fail(err)
		}
		r, err := calculus.Integrate(e, v)
		if err != nil {
			return fail(err)
		}
		return respond(r)

	case "definite_integrate":
		e, v, err := exprVar()
		if err != nil {
			return fail(err)
		}
		a, err := p.number("a")
		if err != nil {
			return fail(err)
		}
		b, err := p.number("b")
		if err != nil {
			return fail(err)
		}
		vars, err := p.bindings("vars")
		if err != nil {
			return fail(err)
		}
		val, err := calculus.DefiniteIntegrate(e, v, a, b, vars)
		if err != nil {
			return fail(err)
		}
		return Response{Result: number(val), String: strconv.FormatFloat(val, 'g', -1, 64)}

	case "substitute":
		e, v, err := exprVar()
		if err != nil {
			return fail(err)
		}
		val, err := p.expr("value")
		if err != nil {
			return fail(err)
		}
		return respond(calculus.Substitute(e, v, val))

	case "free_symbols":
		e, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		syms := calculus.FreeSymbols(e)
		return Response{Result: syms, String: fmt.Sprint(syms)}

	case "latex":
		e, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		return Response{LaTeX: calculus.LaTeX(e), String: calculus.LaTeX(e)}

	case "string":
		e, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		return Response{String: calculus.String(e), Nodes: calculus.Size(e)}

	case "compile":
		e, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		name := "f"
		if _, ok := p["name"]; ok {
			if name, err = p.str("name"); err != nil {
				return fail(err)
			}
		}
		fn, err := codegen.Compile(e, name)
		if err != nil {
			return fail(err)
		}
		return Response{
			Result: map[string]interface{}{"name": fn.Name, "params": fn.Params},
			String: fn.String(),
		}

	case "tool_spec":
		return Response{String: Spec()}
	}
	return Response{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// Spec returns the JSON schema of every tool Handle accepts.
func Spec() string {
	expr := map[string]string{"expr": "object"}
	exprVar := map[string]string{"expr": "object", "var": "string"}
	tools := []map[string]interface{}{
		ts("simplify", "One bottom-up simplification pass with constant folding", []string{"expr"}, expr),
		ts("simplify_fixed", "Repeat simplification until the tree stops changing. Optional max_passes", []string{"expr"}, map[string]string{"expr": "object", "max_passes": "integer"}),
		ts("diff", "First derivative d/dvar. Optional simplify (bool)", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string", "simplify": "boolean"}),
		ts("diffn", "nth derivative, simplified after each step", []string{"expr", "var", "n"}, map[string]string{"expr": "object", "var": "string", "n": "integer"}),
		ts("evaluate", "Numeric value. Unbound variables yield NaN with a diagnostic", []string{"expr"}, map[string]string{"expr": "object", "vars": "object"}),
		ts("integrate", "Rule-based antiderivative for simple shapes", []string{"expr", "var"}, exprVar),
		ts("definite_integrate", "Numerical ∫_a^b by Gauss-Legendre quadrature", []string{"expr", "var", "a", "b"}, map[string]string{"expr": "object", "var": "string", "a": "number", "b": "number", "vars": "object"}),
		ts("substitute", "Replace var with value", []string{"expr", "var", "value"}, map[string]string{"expr": "object", "var": "string", "value": "object"}),
		ts("free_symbols", "Sorted variable names", []string{"expr"}, expr),
		ts("latex", "Render as LaTeX", []string{"expr"}, expr),
		ts("string", "Render as fully parenthesized text", []string{"expr"}, expr),
		ts("compile", "Lower to an LLVM IR function of the free symbols. Optional name", []string{"expr"}, map[string]string{"expr": "object", "name": "string"}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	b, _ := json.MarshalIndent(map[string]interface{}{"tools": tools}, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
