package flatten

import "github.com/go-modelica/moc/internal/ast"

// evaluateStaticConditionals folds away `if` equations whose condition
// is compile-time foldable using only parameter/constant operands and
// the operators `==, <>, <, <=, >, >=, and, or, not` (§4.3 step 7). An
// `if` equation whose condition can't be folded is left in place for
// the DAE builder to turn into an event-producing condition indicator
// (§4.4 step 3). `when` equations are never folded: their branches are
// always event-triggered, never statically resolved.
func (f *Flattener) evaluateStaticConditionals(flat *FlatClass) {
	env := constantEnv(flat)
	flat.Equations = foldEquations(flat.Equations, env)
	flat.InitialEquations = foldEquations(flat.InitialEquations, env)
}

// constEnv bundles the two kinds of compile-time-known facts static
// folding draws on: literal parameter/constant values, and every
// component's declared dimension expressions (needed to fold
// `size(x, dim)`; a dimension is visible regardless of its owning
// component's variability, since an array's shape is fixed at
// declaration even when the array's elements are not).
type constEnv struct {
	values map[string]any
	dims   map[string][]ast.Expr
}

// constantEnv collects the literal value of every parameter/constant
// component whose start value is itself a literal. Parameters bound to
// a non-literal expression (another parameter, an arithmetic
// expression) are intentionally left out of this one-pass environment;
// their `if` conditions are preserved as dynamic rather than folded,
// which is conservative (never wrongly folds) but not maximally
// aggressive.
func constantEnv(flat *FlatClass) constEnv {
	env := constEnv{values: make(map[string]any), dims: make(map[string][]ast.Expr)}
	for _, name := range flat.Order {
		c := flat.Components[name]
		if len(c.Dims) > 0 {
			env.dims[name] = c.Dims
		}
		if c.Variability != ast.Parameter && c.Variability != ast.Constant {
			continue
		}
		if v, ok := literalValue(c.Start); ok {
			env.values[name] = v
		}
	}
	return env
}

func literalValue(e ast.Expr) (any, bool) {
	switch lit := e.(type) {
	case *ast.IntLit:
		return lit.Value, true
	case *ast.RealLit:
		return lit.Value, true
	case *ast.BoolLit:
		return lit.Value, true
	case *ast.StringLit:
		return lit.Value, true
	default:
		return nil, false
	}
}

func foldEquations(eqs []ast.Equation, env constEnv) []ast.Equation {
	var out []ast.Equation
	for _, eq := range eqs {
		switch e := eq.(type) {
		case *ast.IfEquation:
			folded, ok := foldIfEquation(e, env)
			if ok {
				out = append(out, folded...)
				continue
			}
			rewritten := &ast.IfEquation{Pos: e.Pos, Else: foldEquations(e.Else, env)}
			for _, b := range e.Branches {
				rewritten.Branches = append(rewritten.Branches, ast.CondBlock{Cond: b.Cond, Eqs: foldEquations(b.Eqs, env)})
			}
			out = append(out, rewritten)
		case *ast.ForEquation:
			out = append(out, &ast.ForEquation{Index: e.Index, Range: e.Range, Eqs: foldEquations(e.Eqs, env), Pos: e.Pos})
		default:
			out = append(out, eq)
		}
	}
	return out
}

// foldIfEquation tries to statically select exactly one branch. It
// succeeds only when every branch condition up to and including the
// selected one is foldable: if an earlier condition can't be evaluated,
// the whole if must stay dynamic even if a later branch looks foldable
// in isolation, since which branch fires depends on the earlier guards.
func foldIfEquation(e *ast.IfEquation, env constEnv) ([]ast.Equation, bool) {
	for _, b := range e.Branches {
		v, ok := evalBool(b.Cond, env)
		if !ok {
			return nil, false
		}
		if v {
			return foldEquations(b.Eqs, env), true
		}
	}
	return foldEquations(e.Else, env), true
}

func evalBool(e ast.Expr, env constEnv) (bool, bool) {
	v, ok := evalConst(e, env)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func evalConst(e ast.Expr, env constEnv) (any, bool) {
	switch n := e.(type) {
	case *ast.IntLit:
		return n.Value, true
	case *ast.RealLit:
		return n.Value, true
	case *ast.BoolLit:
		return n.Value, true
	case *ast.ComponentReference:
		if n.Global || len(n.Parts) != 1 {
			return nil, false
		}
		v, ok := env.values[n.Parts[0].Name]
		return v, ok
	case *ast.UnaryExpr:
		if n.Op != "not" {
			return nil, false
		}
		v, ok := evalBool(n.X, env)
		if !ok {
			return nil, false
		}
		return !v, true
	case *ast.BinaryExpr:
		return evalBinary(n, env)
	case *ast.CallExpr:
		if n.Func == "size" {
			return evalSize(n, env)
		}
		return nil, false
	default:
		return nil, false
	}
}

// evalSize folds `size(x, dim)` (§4.3 step 7) when x names a component
// with a statically-known dimension list and dim is itself a foldable
// constant in range. Anything else (an unknown component, a dynamic
// dim index, a dimension expression that isn't itself foldable) is
// left unfolded rather than guessed.
func evalSize(n *ast.CallExpr, env constEnv) (any, bool) {
	if len(n.Args) != 2 {
		return nil, false
	}
	ref, ok := n.Args[0].(*ast.ComponentReference)
	if !ok || ref.Global || len(ref.Parts) != 1 {
		return nil, false
	}
	dims, ok := env.dims[ref.Parts[0].Name]
	if !ok {
		return nil, false
	}
	rawIdx, ok := evalConst(n.Args[1], env)
	if !ok {
		return nil, false
	}
	idx, ok := toInt(rawIdx)
	if !ok || idx < 1 || int(idx) > len(dims) {
		return nil, false
	}
	rawDim, ok := evalConst(dims[idx-1], env)
	if !ok {
		return nil, false
	}
	return toInt(rawDim)
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func evalBinary(n *ast.BinaryExpr, env constEnv) (any, bool) {
	switch n.Op {
	case "and", "or":
		l, ok := evalBool(n.L, env)
		if !ok {
			return nil, false
		}
		r, ok := evalBool(n.R, env)
		if !ok {
			return nil, false
		}
		if n.Op == "and" {
			return l && r, true
		}
		return l || r, true
	}
	l, ok := toFloat(n.L, env)
	if !ok {
		return nil, false
	}
	r, ok := toFloat(n.R, env)
	if !ok {
		return nil, false
	}
	switch n.Op {
	case "==":
		return l == r, true
	case "<>":
		return l != r, true
	case "<":
		return l < r, true
	case "<=":
		return l <= r, true
	case ">":
		return l > r, true
	case ">=":
		return l >= r, true
	default:
		return nil, false
	}
}

func toFloat(e ast.Expr, env constEnv) (float64, bool) {
	v, ok := evalConst(e, env)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
