package dae

import (
	"fmt"
	"strings"

	"github.com/go-modelica/moc/internal/ast"
)

// extractEvents walks dae.Fx, registering a fresh Boolean indicator for
// every condition of a preserved `if` equation (§4.4 step 3) and moving
// every `when` branch's equations into Fz/Fm/Fr, registering its
// condition as an event trigger.
func (b *Builder) extractEvents(dae *Dae) {
	zNames := varNameSet(dae.Z)
	mNames := varNameSet(dae.M)

	var rewritten []ast.Equation
	for _, eq := range dae.Fx {
		rewritten = append(rewritten, b.extractFromEquation(eq, dae, zNames, mNames)...)
	}
	dae.Fx = rewritten
}

// extractFromEquation returns the equations that should remain in Fx
// after extracting any if/when event structure from eq; for a `when`
// equation this is empty, since its content moves to Fz/Fm/Fr.
func (b *Builder) extractFromEquation(eq ast.Equation, dae *Dae, zNames, mNames map[string]bool) []ast.Equation {
	switch e := eq.(type) {
	case *ast.IfEquation:
		for _, br := range e.Branches {
			ind := b.indicatorFor(dae, br.Cond, false)
			dae.Fx = append(dae.Fx, &ast.SimpleEquation{Lhs: ref(ind.Name), Rhs: br.Cond})
		}
		rewritten := &ast.IfEquation{Pos: e.Pos}
		for _, br := range e.Branches {
			var eqs []ast.Equation
			for _, sub := range br.Eqs {
				eqs = append(eqs, b.extractFromEquation(sub, dae, zNames, mNames)...)
			}
			rewritten.Branches = append(rewritten.Branches, ast.CondBlock{Cond: br.Cond, Eqs: eqs})
		}
		for _, sub := range e.Else {
			rewritten.Else = append(rewritten.Else, b.extractFromEquation(sub, dae, zNames, mNames)...)
		}
		return []ast.Equation{rewritten}

	case *ast.WhenEquation:
		for _, br := range e.Branches {
			b.indicatorFor(dae, br.Cond, true)
			for _, sub := range br.Eqs {
				b.dispatchWhenBody(dae, sub, zNames, mNames)
			}
		}
		return nil

	case *ast.ForEquation:
		var eqs []ast.Equation
		for _, sub := range e.Eqs {
			eqs = append(eqs, b.extractFromEquation(sub, dae, zNames, mNames)...)
		}
		return []ast.Equation{&ast.ForEquation{Index: e.Index, Range: e.Range, Eqs: eqs, Pos: e.Pos}}

	default:
		return []ast.Equation{eq}
	}
}

// dispatchWhenBody routes one equation from inside a `when` branch to
// Fr (reinit), Fz (discrete update), or Fm (mode update).
func (b *Builder) dispatchWhenBody(dae *Dae, eq ast.Equation, zNames, mNames map[string]bool) {
	switch e := eq.(type) {
	case *ast.ReinitEquation:
		dae.Fr = append(dae.Fr, e)
	case *ast.SimpleEquation:
		if ref, ok := e.Lhs.(*ast.ComponentReference); ok && !ref.Global && len(ref.Parts) == 1 {
			name := ref.Parts[0].Name
			if mNames[name] {
				dae.Fm = append(dae.Fm, e)
				return
			}
			if zNames[name] {
				dae.Fz = append(dae.Fz, e)
				return
			}
		}
		// Fallback for a discrete update whose LHS wasn't classified as
		// z or m (e.g. an expression LHS): treat as a mode update, the
		// more conservative of the two since m companions always get a
		// pre_ snapshot.
		dae.Fm = append(dae.Fm, e)
	default:
		dae.Fm = append(dae.Fm, eq)
	}
}

// indicatorFor returns the existing or freshly allocated indicator for
// cond, keyed by its structural form. ast.Expr.String() is a generic
// node-kind label (e.g. every BinaryExpr prints as "(... > ...)"
// regardless of operands), so it can't tell two distinct conditions
// apart; exprKey renders the actual operands instead.
func (b *Builder) indicatorFor(dae *Dae, cond ast.Expr, eventTrigger bool) *Indicator {
	key := exprKey(cond)
	if ind, ok := dae.C[key]; ok {
		if eventTrigger {
			ind.EventTrigger = true
		}
		return ind
	}
	ind := &Indicator{Name: b.mangler.Fresh("cond"), Cond: cond, EventTrigger: eventTrigger}
	dae.C[key] = ind
	return ind
}

// exprKey renders expr's actual operands into a string suitable as a
// map key, so that two syntactically different conditions never
// collide and two syntactically identical ones always share an
// indicator.
func exprKey(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.IntLit:
		return fmt.Sprintf("%d", e.Value)
	case *ast.RealLit:
		return fmt.Sprintf("%g", e.Value)
	case *ast.StringLit:
		return fmt.Sprintf("%q", e.Value)
	case *ast.BoolLit:
		return fmt.Sprintf("%t", e.Value)
	case *ast.ComponentReference:
		var parts []string
		for _, p := range e.Parts {
			s := p.Name
			for _, sub := range p.Subscripts {
				s += "[" + exprKey(sub) + "]"
			}
			parts = append(parts, s)
		}
		prefix := ""
		if e.Global {
			prefix = "."
		}
		return prefix + strings.Join(parts, ".")
	case *ast.UnaryExpr:
		return e.Op + "(" + exprKey(e.X) + ")"
	case *ast.BinaryExpr:
		return "(" + exprKey(e.L) + " " + e.Op + " " + exprKey(e.R) + ")"
	case *ast.IfExpr:
		var b strings.Builder
		for _, br := range e.Branches {
			b.WriteString("if ")
			b.WriteString(exprKey(br.Cond))
			b.WriteString(" then ")
			b.WriteString(exprKey(br.Then))
			b.WriteString(" ")
		}
		b.WriteString("else ")
		b.WriteString(exprKey(e.Else))
		return b.String()
	case *ast.CallExpr:
		var args []string
		for _, a := range e.Args {
			args = append(args, exprKey(a))
		}
		for _, n := range e.Named {
			args = append(args, n.Name+"="+exprKey(n.Value))
		}
		return e.Func + "(" + strings.Join(args, ",") + ")"
	case *ast.ArrayExpr:
		var elems []string
		for _, el := range e.Elements {
			elems = append(elems, exprKey(el))
		}
		return "{" + strings.Join(elems, ",") + "}"
	case *ast.MatrixExpr:
		var rows []string
		for _, row := range e.Rows {
			var cells []string
			for _, c := range row {
				cells = append(cells, exprKey(c))
			}
			rows = append(rows, strings.Join(cells, ","))
		}
		return "[" + strings.Join(rows, ";") + "]"
	case *ast.RangeExpr:
		key := exprKey(e.Start) + ":"
		if e.Step != nil {
			key += exprKey(e.Step) + ":"
		}
		return key + exprKey(e.Stop)
	case *ast.ColonExpr:
		return ":"
	case *ast.EndExpr:
		return "end"
	default:
		return expr.String()
	}
}

func varNameSet(vars []*Variable) map[string]bool {
	out := make(map[string]bool, len(vars))
	for _, v := range vars {
		out[v.Name] = true
	}
	return out
}

func ref(name string) ast.Expr {
	return &ast.ComponentReference{Parts: []ast.RefPart{{Name: name}}}
}
