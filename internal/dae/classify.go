package dae

import (
	"fmt"

	"github.com/go-modelica/moc/internal/ast"
	"github.com/go-modelica/moc/internal/errors"
	"github.com/go-modelica/moc/internal/flatten"
)

// classify sorts flat's components into the Dae partitions (§4.4 step
// 1), raising CLS001 for a contradictory classification (a parameter
// or constant that a der() call also refers to).
func (b *Builder) classify(flat *flatten.FlatClass, dae *Dae, assignedInWhen, assignedElsewhere map[string]bool) error {
	for _, name := range flat.Order {
		c := flat.Components[name]
		v := &Variable{
			Name: c.Name, TypeName: c.TypeName, Dims: c.Dims,
			Variability: c.Variability, Causality: c.Causality,
			Start: c.Start, Description: "",
		}

		switch {
		case c.Variability == ast.Constant:
			if b.derNames[c.Name] {
				return b.classifyConflict(c, "der() applied to a constant")
			}
			dae.Cp = append(dae.Cp, v)
		case c.Variability == ast.Parameter:
			if b.derNames[c.Name] {
				return b.classifyConflict(c, "der() applied to a parameter")
			}
			dae.P = append(dae.P, v)
		case c.Causality == ast.Input:
			dae.U = append(dae.U, v)
		case c.Variability == ast.Discrete:
			isMode := (c.TypeName == "Boolean" || c.TypeName == "Integer") &&
				assignedInWhen[c.Name] && !assignedElsewhere[c.Name]
			if isMode {
				dae.M = append(dae.M, v)
				dae.PreM = append(dae.PreM, preCompanion(v))
			} else {
				dae.Z = append(dae.Z, v)
				dae.PreZ = append(dae.PreZ, preCompanion(v))
			}
		case b.derNames[c.Name]:
			dae.X = append(dae.X, v)
			dae.XDot = append(dae.XDot, &Variable{Name: "der_" + c.Name, TypeName: c.TypeName, Variability: ast.Continuous})
			dae.PreX = append(dae.PreX, preCompanion(v))
		default:
			dae.Y = append(dae.Y, v)
		}
	}
	return nil
}

func preCompanion(v *Variable) *Variable {
	return &Variable{Name: "pre_" + v.Name, TypeName: v.TypeName, Variability: v.Variability}
}

func (b *Builder) classifyConflict(c *flatten.FlatComponent, msg string) error {
	rep := errors.New(errors.CLS001, &ast.Span{Start: c.Pos}, fmt.Sprintf("%s: %s", msg, c.Name)).WithData("name", c.Name)
	b.sink.Add(rep)
	return errors.Wrap(rep)
}

// collectDerNames walks every equation/algorithm in flat, returning the
// set of identifiers appearing as der(<ident>) anywhere, and raising
// FLT003 for der(<non-identifier>) and CLS002 for der(der(v)).
func collectDerNames(flat *flatten.FlatClass, sink *errors.Sink) map[string]bool {
	names := make(map[string]bool)
	walk := &derWalker{names: names, sink: sink}
	for _, eq := range flat.Equations {
		walk.equation(eq)
	}
	for _, eq := range flat.InitialEquations {
		walk.equation(eq)
	}
	for _, alg := range flat.Algorithms {
		for _, s := range alg.Stmts {
			walk.statement(s)
		}
	}
	for _, alg := range flat.InitialAlgorithms {
		for _, s := range alg.Stmts {
			walk.statement(s)
		}
	}
	return names
}

type derWalker struct {
	names map[string]bool
	sink  *errors.Sink
}

func (w *derWalker) expr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.CallExpr:
		if n.Func == "der" && len(n.Args) == 1 {
			w.der(n)
			return
		}
		for _, a := range n.Args {
			w.expr(a)
		}
		for _, a := range n.Named {
			w.expr(a.Value)
		}
	case *ast.UnaryExpr:
		w.expr(n.X)
	case *ast.BinaryExpr:
		w.expr(n.L)
		w.expr(n.R)
	case *ast.IfExpr:
		for _, br := range n.Branches {
			w.expr(br.Cond)
			w.expr(br.Then)
		}
		w.expr(n.Else)
	case *ast.ArrayExpr:
		for _, el := range n.Elements {
			w.expr(el)
		}
	case *ast.MatrixExpr:
		for _, row := range n.Rows {
			for _, el := range row {
				w.expr(el)
			}
		}
	case *ast.RangeExpr:
		w.expr(n.Start)
		w.expr(n.Step)
		w.expr(n.Stop)
	}
}

func (w *derWalker) der(call *ast.CallExpr) {
	arg := call.Args[0]
	if inner, ok := arg.(*ast.CallExpr); ok && inner.Func == "der" {
		rep := errors.New(errors.CLS002, &ast.Span{Start: call.Pos}, "der(der(v)) is not supported")
		w.sink.Add(rep)
		return
	}
	ref, ok := arg.(*ast.ComponentReference)
	if !ok || ref.Global || len(ref.Parts) != 1 {
		rep := errors.New(errors.FLT003, &ast.Span{Start: call.Pos}, "der() argument is not a simple identifier")
		w.sink.Add(rep)
		return
	}
	w.names[ref.Parts[0].Name] = true
}

func (w *derWalker) equation(eq ast.Equation) {
	switch e := eq.(type) {
	case *ast.SimpleEquation:
		w.expr(e.Lhs)
		w.expr(e.Rhs)
	case *ast.IfEquation:
		for _, b := range e.Branches {
			w.expr(b.Cond)
			for _, sub := range b.Eqs {
				w.equation(sub)
			}
		}
		for _, sub := range e.Else {
			w.equation(sub)
		}
	case *ast.ForEquation:
		w.expr(e.Range)
		for _, sub := range e.Eqs {
			w.equation(sub)
		}
	case *ast.WhenEquation:
		for _, b := range e.Branches {
			w.expr(b.Cond)
			for _, sub := range b.Eqs {
				w.equation(sub)
			}
		}
	case *ast.ReinitEquation:
		w.expr(e.Rhs)
	case *ast.AssertEquation:
		w.expr(e.Cond)
		w.expr(e.Msg)
	}
}

func (w *derWalker) statement(s ast.Statement) {
	switch st := s.(type) {
	case *ast.AssignStmt:
		w.expr(st.Lhs)
		w.expr(st.Rhs)
	case *ast.IfStmt:
		for _, b := range st.Branches {
			w.expr(b.Cond)
			for _, sub := range b.Stmts {
				w.statement(sub)
			}
		}
		for _, sub := range st.Else {
			w.statement(sub)
		}
	case *ast.ForStmt:
		w.expr(st.Range)
		for _, sub := range st.Stmts {
			w.statement(sub)
		}
	case *ast.WhileStmt:
		w.expr(st.Cond)
		for _, sub := range st.Stmts {
			w.statement(sub)
		}
	case *ast.WhenStmt:
		for _, b := range st.Branches {
			w.expr(b.Cond)
			for _, sub := range b.Stmts {
				w.statement(sub)
			}
		}
	case *ast.AssertStmt:
		w.expr(st.Cond)
		w.expr(st.Msg)
	}
}

// collectDiscreteAssignments partitions the LHS names assigned inside a
// `when` body from those assigned anywhere else, used to distinguish a
// mode (m) from an ordinary discrete variable (z) (§4.4 step 1).
func collectDiscreteAssignments(flat *flatten.FlatClass) (inWhen, elsewhere map[string]bool) {
	inWhen = make(map[string]bool)
	elsewhere = make(map[string]bool)
	var walkEqs func(eqs []ast.Equation, within bool)
	walkEqs = func(eqs []ast.Equation, within bool) {
		for _, eq := range eqs {
			switch e := eq.(type) {
			case *ast.SimpleEquation:
				recordAssignTarget(e.Lhs, within, inWhen, elsewhere)
			case *ast.IfEquation:
				for _, b := range e.Branches {
					walkEqs(b.Eqs, within)
				}
				walkEqs(e.Else, within)
			case *ast.ForEquation:
				walkEqs(e.Eqs, within)
			case *ast.WhenEquation:
				for _, b := range e.Branches {
					walkEqs(b.Eqs, true)
				}
			}
		}
	}
	var walkStmts func(stmts []ast.Statement, within bool)
	walkStmts = func(stmts []ast.Statement, within bool) {
		for _, s := range stmts {
			switch st := s.(type) {
			case *ast.AssignStmt:
				recordAssignTarget(st.Lhs, within, inWhen, elsewhere)
			case *ast.IfStmt:
				for _, b := range st.Branches {
					walkStmts(b.Stmts, within)
				}
				walkStmts(st.Else, within)
			case *ast.ForStmt:
				walkStmts(st.Stmts, within)
			case *ast.WhileStmt:
				walkStmts(st.Stmts, within)
			case *ast.WhenStmt:
				for _, b := range st.Branches {
					walkStmts(b.Stmts, true)
				}
			}
		}
	}
	walkEqs(flat.Equations, false)
	walkEqs(flat.InitialEquations, false)
	for _, alg := range flat.Algorithms {
		walkStmts(alg.Stmts, false)
	}
	for _, alg := range flat.InitialAlgorithms {
		walkStmts(alg.Stmts, false)
	}
	return inWhen, elsewhere
}

func recordAssignTarget(lhs ast.Expr, within bool, inWhen, elsewhere map[string]bool) {
	ref, ok := lhs.(*ast.ComponentReference)
	if !ok || ref.Global || len(ref.Parts) != 1 {
		return
	}
	if within {
		inWhen[ref.Parts[0].Name] = true
	} else {
		elsewhere[ref.Parts[0].Name] = true
	}
}

// rewriteDerReferences replaces every der(<ident>) call with a reference
// to der_<ident> (§4.4 step 2), leaving everything else structurally
// unchanged.
func rewriteDerReferences(eqs []ast.Equation) []ast.Equation {
	out := make([]ast.Equation, len(eqs))
	for i, eq := range eqs {
		out[i] = rewriteDerEquation(eq)
	}
	return out
}

func rewriteDerEquation(eq ast.Equation) ast.Equation {
	switch e := eq.(type) {
	case *ast.SimpleEquation:
		return &ast.SimpleEquation{Lhs: rewriteDerExpr(e.Lhs), Rhs: rewriteDerExpr(e.Rhs), Pos: e.Pos}
	case *ast.IfEquation:
		out := &ast.IfEquation{Pos: e.Pos, Else: rewriteDerReferences(e.Else)}
		for _, b := range e.Branches {
			out.Branches = append(out.Branches, ast.CondBlock{Cond: rewriteDerExpr(b.Cond), Eqs: rewriteDerReferences(b.Eqs)})
		}
		return out
	case *ast.ForEquation:
		return &ast.ForEquation{Index: e.Index, Range: e.Range, Eqs: rewriteDerReferences(e.Eqs), Pos: e.Pos}
	case *ast.WhenEquation:
		out := &ast.WhenEquation{Pos: e.Pos}
		for _, b := range e.Branches {
			out.Branches = append(out.Branches, ast.CondBlock{Cond: rewriteDerExpr(b.Cond), Eqs: rewriteDerReferences(b.Eqs)})
		}
		return out
	case *ast.ReinitEquation:
		return &ast.ReinitEquation{Ref: e.Ref, Rhs: rewriteDerExpr(e.Rhs), Pos: e.Pos}
	case *ast.AssertEquation:
		return &ast.AssertEquation{Cond: rewriteDerExpr(e.Cond), Msg: rewriteDerExpr(e.Msg), Pos: e.Pos}
	default:
		return eq
	}
}

func rewriteDerExpr(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.CallExpr:
		if n.Func == "der" && len(n.Args) == 1 {
			if ref, ok := n.Args[0].(*ast.ComponentReference); ok && !ref.Global && len(ref.Parts) == 1 {
				return &ast.ComponentReference{Parts: []ast.RefPart{{Name: "der_" + ref.Parts[0].Name}}, Pos: n.Pos}
			}
		}
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = rewriteDerExpr(a)
		}
		return &ast.CallExpr{Func: n.Func, Args: args, Named: n.Named, Pos: n.Pos}
	case *ast.UnaryExpr:
		return &ast.UnaryExpr{Op: n.Op, X: rewriteDerExpr(n.X), Pos: n.Pos}
	case *ast.BinaryExpr:
		return &ast.BinaryExpr{Op: n.Op, L: rewriteDerExpr(n.L), R: rewriteDerExpr(n.R), Pos: n.Pos}
	case *ast.IfExpr:
		out := &ast.IfExpr{Else: rewriteDerExpr(n.Else), Pos: n.Pos}
		for _, b := range n.Branches {
			out.Branches = append(out.Branches, struct {
				Cond ast.Expr
				Then ast.Expr
			}{Cond: rewriteDerExpr(b.Cond), Then: rewriteDerExpr(b.Then)})
		}
		return out
	default:
		return e
	}
}

// algorithmsToEquations desugars a straight-line sequence of assignment
// statements into one equation per distinct assigned LHS (§4.4's
// balance-check note: "algorithm assignment sections contribute one
// equation per distinct LHS assigned").
func algorithmsToEquations(algs []*ast.Algorithm) []ast.Equation {
	var out []ast.Equation
	for _, alg := range algs {
		seen := make(map[string]bool)
		for _, s := range alg.Stmts {
			if assign, ok := s.(*ast.AssignStmt); ok {
				key := exprKey(assign.Lhs)
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, &ast.SimpleEquation{Lhs: rewriteDerExpr(assign.Lhs), Rhs: rewriteDerExpr(assign.Rhs), Pos: assign.Pos})
			}
		}
	}
	return out
}
