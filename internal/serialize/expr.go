package serialize

import "github.com/go-modelica/moc/internal/ast"

// exprNode renders e as a tagged tree: a map with a "kind" discriminator
// plus kind-specific keys, walkable by a consumer that never sees a Go
// type. map[string]any marshals with sorted keys (encoding/json sorts
// map keys), so the output is deterministic without extra bookkeeping.
func exprNode(e ast.Expr) map[string]any {
	switch n := e.(type) {
	case *ast.IntLit:
		return map[string]any{"kind": "int", "value": n.Value}
	case *ast.RealLit:
		return map[string]any{"kind": "real", "value": n.Value}
	case *ast.StringLit:
		return map[string]any{"kind": "string", "value": n.Value}
	case *ast.BoolLit:
		return map[string]any{"kind": "bool", "value": n.Value}
	case *ast.ComponentReference:
		return refNode(n)
	case *ast.UnaryExpr:
		return map[string]any{"kind": "unary", "op": n.Op, "x": exprNode(n.X)}
	case *ast.BinaryExpr:
		return map[string]any{"kind": "binary", "op": n.Op, "left": exprNode(n.L), "right": exprNode(n.R)}
	case *ast.IfExpr:
		node := map[string]any{"kind": "if", "branches": ifBranchNodes(n), "else": exprNode(n.Else)}
		return node
	case *ast.CallExpr:
		return callNode(n)
	case *ast.ArrayExpr:
		return map[string]any{"kind": "array", "elements": exprNodes(n.Elements)}
	case *ast.MatrixExpr:
		rows := make([]any, len(n.Rows))
		for i, row := range n.Rows {
			rows[i] = exprNodes(row)
		}
		return map[string]any{"kind": "matrix", "rows": rows}
	case *ast.RangeExpr:
		node := map[string]any{"kind": "range", "start": exprNode(n.Start), "stop": exprNode(n.Stop)}
		if n.Step != nil {
			node["step"] = exprNode(n.Step)
		}
		return node
	case *ast.ColonExpr:
		return map[string]any{"kind": "colon"}
	case *ast.EndExpr:
		return map[string]any{"kind": "end"}
	default:
		return map[string]any{"kind": "unknown"}
	}
}

func refNode(r *ast.ComponentReference) map[string]any {
	parts := make([]any, len(r.Parts))
	for i, p := range r.Parts {
		part := map[string]any{"name": p.Name}
		if len(p.Subscripts) > 0 {
			part["subscripts"] = exprNodes(p.Subscripts)
		}
		parts[i] = part
	}
	node := map[string]any{"kind": "ref", "name": r.Name(), "parts": parts}
	if r.Global {
		node["global"] = true
	}
	return node
}

func callNode(c *ast.CallExpr) map[string]any {
	node := map[string]any{"kind": "call", "func": c.Func, "args": exprNodes(c.Args)}
	if len(c.Named) > 0 {
		named := make([]any, len(c.Named))
		for i, a := range c.Named {
			named[i] = map[string]any{"name": a.Name, "value": exprNode(a.Value)}
		}
		node["named"] = named
	}
	return node
}

func ifBranchNodes(n *ast.IfExpr) []any {
	out := make([]any, len(n.Branches))
	for i, br := range n.Branches {
		out[i] = map[string]any{"cond": exprNode(br.Cond), "then": exprNode(br.Then)}
	}
	return out
}

func exprNodes(exprs []ast.Expr) []any {
	out := make([]any, len(exprs))
	for i, e := range exprs {
		out[i] = exprNode(e)
	}
	return out
}

// equationNode renders one equation as a tagged tree, mirroring exprNode.
func equationNode(eq ast.Equation) map[string]any {
	switch e := eq.(type) {
	case *ast.SimpleEquation:
		return map[string]any{"kind": "equal", "lhs": exprNode(e.Lhs), "rhs": exprNode(e.Rhs)}
	case *ast.IfEquation:
		node := map[string]any{"kind": "if", "branches": condBlockNodes(e.Branches)}
		if len(e.Else) > 0 {
			node["else"] = equationNodes(e.Else)
		}
		return node
	case *ast.ForEquation:
		return map[string]any{
			"kind": "for", "index": e.Index, "range": exprNode(e.Range),
			"equations": equationNodes(e.Eqs),
		}
	case *ast.WhenEquation:
		return map[string]any{"kind": "when", "branches": condBlockNodes(e.Branches)}
	case *ast.ConnectEquation:
		return map[string]any{"kind": "connect", "lhs": refNode(e.Lhs), "rhs": refNode(e.Rhs)}
	case *ast.ReinitEquation:
		return map[string]any{"kind": "reinit", "ref": refNode(e.Ref), "rhs": exprNode(e.Rhs)}
	case *ast.AssertEquation:
		return map[string]any{"kind": "assert", "cond": exprNode(e.Cond), "msg": exprNode(e.Msg)}
	default:
		return map[string]any{"kind": "unknown"}
	}
}

func condBlockNodes(branches []ast.CondBlock) []any {
	out := make([]any, len(branches))
	for i, br := range branches {
		out[i] = map[string]any{"cond": exprNode(br.Cond), "equations": equationNodes(br.Eqs)}
	}
	return out
}

func equationNodes(eqs []ast.Equation) []any {
	if len(eqs) == 0 {
		return nil
	}
	out := make([]any, len(eqs))
	for i, eq := range eqs {
		out[i] = equationNode(eq)
	}
	return out
}
