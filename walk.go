package calculus

import "sort"

// ============================================================
// Tree utilities
// ============================================================

// Clone returns a deep copy of e that shares no slices with it.
func Clone(e Expr) Expr {
	switch v := e.(type) {
	case BinaryOp:
		return BinaryOp{Op: v.Op, Left: Clone(v.Left), Right: Clone(v.Right)}
	case Call:
		args := make([]Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = Clone(a)
		}
		return Call{Name: v.Name, Args: args}
	}
	return e
}

// Substitute replaces every Variable named name with a copy of value. The
// result is not simplified.
func Substitute(e Expr, name string, value Expr) Expr {
	switch v := e.(type) {
	case Variable:
		if v.Name == name {
			return Clone(value)
		}
		return v
	case BinaryOp:
		return BinaryOp{Op: v.Op, Left: Substitute(v.Left, name, value), Right: Substitute(v.Right, name, value)}
	case Call:
		args := make([]Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = Substitute(a, name, value)
		}
		return Call{Name: v.Name, Args: args}
	}
	return e
}

// FreeSymbols returns the sorted, de-duplicated variable names in e.
func FreeSymbols(e Expr) []string {
	seen := map[string]struct{}{}
	collectSymbols(e, seen)
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case Variable:
		out[v.Name] = struct{}{}
	case BinaryOp:
		collectSymbols(v.Left, out)
		collectSymbols(v.Right, out)
	case Call:
		for _, a := range v.Args {
			collectSymbols(a, out)
		}
	}
}

// DependsOn reports whether the variable name occurs in e.
func DependsOn(e Expr, name string) bool {
	switch v := e.(type) {
	case Variable:
		return v.Name == name
	case BinaryOp:
		return DependsOn(v.Left, name) || DependsOn(v.Right, name)
	case Call:
		for _, a := range v.Args {
			if DependsOn(a, name) {
				return true
			}
		}
	}
	return false
}

// Size counts the nodes in e.
func Size(e Expr) int {
	switch v := e.(type) {
	case Number, Variable:
		return 1
	case BinaryOp:
		return 1 + Size(v.Left) + Size(v.Right)
	case Call:
		n := 1
		for _, a := range v.Args {
			n += Size(a)
		}
		return n
	}
	return 0
}

// Depth is the number of nodes on the longest root-to-leaf path.
func Depth(e Expr) int {
	switch v := e.(type) {
	case Number, Variable:
		return 1
	case BinaryOp:
		return 1 + max(Depth(v.Left), Depth(v.Right))
	case Call:
		d := 0
		for _, a := range v.Args {
			d = max(d, Depth(a))
		}
		return 1 + d
	}
	return 0
}
