package flatten

import (
	"strings"

	"github.com/go-modelica/moc/internal/ast"
)

// renameRefs rewrites every ComponentReference in expr whose head
// identifier is one of localNames, replacing the whole dotted chain
// with a single flat, prefix-qualified, underscore-joined name (§4.3
// step 6: "dotted -> flat prefixed form"). References that don't start
// at a local name (builtins like `time`, or names already flattened by
// an enclosing call) pass through unchanged, recursing only into their
// subscripts. Input nodes are never mutated in place, since the same
// class body may be instantiated more than once with different
// prefixes (each ast.ClassDefinition in the module table is shared,
// immutable input).
func renameRefs(expr ast.Expr, localNames map[string]bool, prefix string) ast.Expr {
	if expr == nil {
		return nil
	}
	switch e := expr.(type) {
	case *ast.ComponentReference:
		if e.Global || len(e.Parts) == 0 || !localNames[e.Parts[0].Name] {
			parts := make([]ast.RefPart, len(e.Parts))
			for i, p := range e.Parts {
				parts[i] = ast.RefPart{Name: p.Name, Subscripts: renameExprs(p.Subscripts, localNames, prefix)}
			}
			return &ast.ComponentReference{Global: e.Global, Parts: parts, Pos: e.Pos}
		}
		names := make([]string, len(e.Parts))
		var subs []ast.Expr
		for i, p := range e.Parts {
			names[i] = p.Name
			subs = append(subs, renameExprs(p.Subscripts, localNames, prefix)...)
		}
		flatName := prefix + strings.Join(names, "_")
		return &ast.ComponentReference{
			Parts: []ast.RefPart{{Name: flatName, Subscripts: subs}},
			Pos:   e.Pos,
		}
	case *ast.UnaryExpr:
		return &ast.UnaryExpr{Op: e.Op, X: renameRefs(e.X, localNames, prefix), Pos: e.Pos}
	case *ast.BinaryExpr:
		return &ast.BinaryExpr{Op: e.Op, L: renameRefs(e.L, localNames, prefix), R: renameRefs(e.R, localNames, prefix), Pos: e.Pos}
	case *ast.IfExpr:
		out := &ast.IfExpr{Else: renameRefs(e.Else, localNames, prefix), Pos: e.Pos}
		for _, b := range e.Branches {
			out.Branches = append(out.Branches, struct {
				Cond ast.Expr
				Then ast.Expr
			}{Cond: renameRefs(b.Cond, localNames, prefix), Then: renameRefs(b.Then, localNames, prefix)})
		}
		return out
	case *ast.CallExpr:
		named := make([]ast.NamedArg, len(e.Named))
		for i, n := range e.Named {
			named[i] = ast.NamedArg{Name: n.Name, Value: renameRefs(n.Value, localNames, prefix)}
		}
		return &ast.CallExpr{Func: e.Func, Args: renameExprs(e.Args, localNames, prefix), Named: named, Pos: e.Pos}
	case *ast.ArrayExpr:
		return &ast.ArrayExpr{Elements: renameExprs(e.Elements, localNames, prefix), Pos: e.Pos}
	case *ast.MatrixExpr:
		rows := make([][]ast.Expr, len(e.Rows))
		for i, row := range e.Rows {
			rows[i] = renameExprs(row, localNames, prefix)
		}
		return &ast.MatrixExpr{Rows: rows, Pos: e.Pos}
	case *ast.RangeExpr:
		return &ast.RangeExpr{
			Start: renameRefs(e.Start, localNames, prefix),
			Step:  renameRefs(e.Step, localNames, prefix),
			Stop:  renameRefs(e.Stop, localNames, prefix),
			Pos:   e.Pos,
		}
	default:
		// Literals, ColonExpr, EndExpr: no sub-expressions to rewrite.
		return expr
	}
}

func renameExprs(in []ast.Expr, localNames map[string]bool, prefix string) []ast.Expr {
	if in == nil {
		return nil
	}
	out := make([]ast.Expr, len(in))
	for i, e := range in {
		out[i] = renameRefs(e, localNames, prefix)
	}
	return out
}

// renameEquation rewrites every expression/reference inside eq.
func renameEquation(eq ast.Equation, localNames map[string]bool, prefix string) ast.Equation {
	switch e := eq.(type) {
	case *ast.SimpleEquation:
		return &ast.SimpleEquation{Lhs: renameRefs(e.Lhs, localNames, prefix), Rhs: renameRefs(e.Rhs, localNames, prefix), Pos: e.Pos}
	case *ast.IfEquation:
		out := &ast.IfEquation{Pos: e.Pos, Else: renameEquations(e.Else, localNames, prefix)}
		for _, b := range e.Branches {
			out.Branches = append(out.Branches, ast.CondBlock{Cond: renameRefs(b.Cond, localNames, prefix), Eqs: renameEquations(b.Eqs, localNames, prefix)})
		}
		return out
	case *ast.ForEquation:
		return &ast.ForEquation{Index: e.Index, Range: renameRefs(e.Range, localNames, prefix), Eqs: renameEquations(e.Eqs, localNames, prefix), Pos: e.Pos}
	case *ast.WhenEquation:
		out := &ast.WhenEquation{Pos: e.Pos}
		for _, b := range e.Branches {
			out.Branches = append(out.Branches, ast.CondBlock{Cond: renameRefs(b.Cond, localNames, prefix), Eqs: renameEquations(b.Eqs, localNames, prefix)})
		}
		return out
	case *ast.ConnectEquation:
		lhs, _ := renameRefs(e.Lhs, localNames, prefix).(*ast.ComponentReference)
		rhs, _ := renameRefs(e.Rhs, localNames, prefix).(*ast.ComponentReference)
		return &ast.ConnectEquation{Lhs: lhs, Rhs: rhs, Pos: e.Pos}
	case *ast.ReinitEquation:
		ref, _ := renameRefs(e.Ref, localNames, prefix).(*ast.ComponentReference)
		return &ast.ReinitEquation{Ref: ref, Rhs: renameRefs(e.Rhs, localNames, prefix), Pos: e.Pos}
	case *ast.AssertEquation:
		return &ast.AssertEquation{Cond: renameRefs(e.Cond, localNames, prefix), Msg: renameRefs(e.Msg, localNames, prefix), Pos: e.Pos}
	default:
		return eq
	}
}

func renameEquations(in []ast.Equation, localNames map[string]bool, prefix string) []ast.Equation {
	if in == nil {
		return nil
	}
	out := make([]ast.Equation, len(in))
	for i, eq := range in {
		out[i] = renameEquation(eq, localNames, prefix)
	}
	return out
}

// renameStatement mirrors renameEquation for algorithm statements.
func renameStatement(st ast.Statement, localNames map[string]bool, prefix string) ast.Statement {
	switch s := st.(type) {
	case *ast.AssignStmt:
		return &ast.AssignStmt{Lhs: renameRefs(s.Lhs, localNames, prefix), Rhs: renameRefs(s.Rhs, localNames, prefix), Pos: s.Pos}
	case *ast.IfStmt:
		out := &ast.IfStmt{Pos: s.Pos, Else: renameStatements(s.Else, localNames, prefix)}
		for _, b := range s.Branches {
			out.Branches = append(out.Branches, ast.CondStmtBlock{Cond: renameRefs(b.Cond, localNames, prefix), Stmts: renameStatements(b.Stmts, localNames, prefix)})
		}
		return out
	case *ast.ForStmt:
		return &ast.ForStmt{Index: s.Index, Range: renameRefs(s.Range, localNames, prefix), Stmts: renameStatements(s.Stmts, localNames, prefix), Pos: s.Pos}
	case *ast.WhileStmt:
		return &ast.WhileStmt{Cond: renameRefs(s.Cond, localNames, prefix), Stmts: renameStatements(s.Stmts, localNames, prefix), Pos: s.Pos}
	case *ast.WhenStmt:
		out := &ast.WhenStmt{Pos: s.Pos}
		for _, b := range s.Branches {
			out.Branches = append(out.Branches, ast.CondStmtBlock{Cond: renameRefs(b.Cond, localNames, prefix), Stmts: renameStatements(b.Stmts, localNames, prefix)})
		}
		return out
	case *ast.AssertStmt:
		return &ast.AssertStmt{Cond: renameRefs(s.Cond, localNames, prefix), Msg: renameRefs(s.Msg, localNames, prefix), Pos: s.Pos}
	default:
		return st
	}
}

func renameStatements(in []ast.Statement, localNames map[string]bool, prefix string) []ast.Statement {
	if in == nil {
		return nil
	}
	out := make([]ast.Statement, len(in))
	for i, s := range in {
		out[i] = renameStatement(s, localNames, prefix)
	}
	return out
}
