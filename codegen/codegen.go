// Package codegen lowers calculus expressions to LLVM IR.
//
// Each compiled expression becomes a single function taking one double per
// free symbol, in sorted order, and returning a double.
package codegen

import (
	"math"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/njchilds90/calculus"
)

// Function is a compiled expression.
type Function struct {
	Name   string
	Params []string
	Module *ir.Module
}

// String renders the module as LLVM IR assembly.
func (f *Function) String() string {
	return f.Module.String()
}

// intrinsics maps unary function names to the declaration each lowers to.
var intrinsics = map[string]string{
	"sin":   "llvm.sin.f64",
	"cos":   "llvm.cos.f64",
	"sqrt":  "llvm.sqrt.f64",
	"log10": "llvm.log10.f64",
	"ln":    "llvm.log.f64",
	"tan":   "tan",
}

// reserved reports whether name may be declared by the lowering.
func reserved(name string) bool {
	if strings.HasPrefix(name, "llvm.") {
		return true
	}
	for _, sym := range intrinsics {
		if sym == name {
			return true
		}
	}
	return false
}

// Compile lowers e to a module holding one function called name.
func Compile(e calculus.Expr, name string) (*Function, error) {
	if name == "" {
		return nil, calculus.NewError(calculus.InvalidArgument, "compile", nil, "function name must not be empty")
	}
	if reserved(name) {
		return nil, calculus.NewError(calculus.InvalidArgument, "compile", nil, "function name %q collides with a declared symbol", name)
	}
	names := calculus.FreeSymbols(e)
	g := newGenerator()
	params := make([]*ir.Param, len(names))
	for i, n := range names {
		params[i] = ir.NewParam(n, types.Double)
		g.locals[n] = params[i]
	}
	fn := g.module.NewFunc(name, types.Double, params...)
	g.block = fn.NewBlock("entry")

	ret, err := g.emit(e)
	if err != nil {
		return nil, err
	}
	g.block.NewRet(ret)
	return &Function{Name: name, Params: names, Module: g.module}, nil
}

type generator struct {
	module *ir.Module
	block  *ir.Block
	locals map[string]value.Value
	// declared functions by symbol name
	decls map[string]*ir.Func
}

func newGenerator() *generator {
	return &generator{
		module: ir.NewModule(),
		locals: make(map[string]value.Value),
		decls:  make(map[string]*ir.Func),
	}
}

var declParams = [...]string{"a", "b"}

// declare returns the external declaration for sym, adding it on first use.
func (g *generator) declare(sym string, arity int) *ir.Func {
	if f, ok := g.decls[sym]; ok {
		return f
	}
	params := make([]*ir.Param, arity)
	for i := range params {
		params[i] = ir.NewParam(declParams[i], types.Double)
	}
	f := g.module.NewFunc(sym, types.Double, params...)
	g.decls[sym] = f
	return f
}

func (g *generator) emit(e calculus.Expr) (value.Value, error) {
	switch v := e.(type) {
	case calculus.Number:
		return constant.NewFloat(types.Double, v.Value), nil
	case calculus.Variable:
		return g.locals[v.Name], nil
	case calculus.BinaryOp:
		l, err := g.emit(v.Left)
		if err != nil {
			return nil, err
		}
		r, err := g.emit(v.Right)
		if err != nil {
			return nil, err
		}
		switch v.Op {
		case calculus.OpAdd:
			return g.block.NewFAdd(l, r), nil
		case calculus.OpSub:
			return g.block.NewFSub(l, r), nil
		case calculus.OpMul:
			return g.block.NewFMul(l, r), nil
		case calculus.OpDiv:
			return g.block.NewFDiv(l, r), nil
		case calculus.OpPow:
			return g.block.NewCall(g.declare("llvm.pow.f64", 2), l, r), nil
		}
	case calculus.Call:
		return g.emitCall(v)
	}
	return nil, calculus.NewError(calculus.UnknownExpressionShape, "compile", e, "unexpected node %T", e)
}

func (g *generator) emitCall(c calculus.Call) (value.Value, error) {
	args := make([]value.Value, len(c.Args))
	for i, a := range c.Args {
		v, err := g.emit(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	if sym, ok := intrinsics[c.Name]; ok {
		if len(args) != 1 {
			return nil, calculus.NewError(calculus.WrongArity, "compile", c, "%s() expects 1 argument, got %d", c.Name, len(args))
		}
		return g.block.NewCall(g.declare(sym, 1), args[0]), nil
	}
	switch c.Name {
	case "max":
		return g.fold("llvm.maxnum.f64", math.Inf(-1), args), nil
	case "min":
		return g.fold("llvm.minnum.f64", math.Inf(1), args), nil
	}
	return nil, calculus.NewError(calculus.UnknownFunction, "compile", c, "unknown function %q", c.Name)
}

// fold chains sym over args starting from seed. maxnum and minnum return the
// non-NaN operand, so NaN arguments are skipped the same way the evaluator
// skips them.
func (g *generator) fold(sym string, seed float64, args []value.Value) value.Value {
	var acc value.Value = constant.NewFloat(types.Double, seed)
	if len(args) == 0 {
		return acc
	}
	f := g.declare(sym, 2)
	for _, a := range args {
		acc = g.block.NewCall(f, acc, a)
	}
	return acc
}
