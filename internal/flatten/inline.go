package flatten

import (
	"fmt"

	"github.com/go-modelica/moc/internal/ast"
	"github.com/go-modelica/moc/internal/errors"
)

// inlineFunctions inlines every call to a locally-defined function
// (§4.3 step 9): external/builtin calls (der, sin, anything the module
// table has no algorithm body for) pass through verbatim. A local call
// gets a fresh mangled temporary per input/output/protected variable
// (via intern.Mangler, so repeated calls to the same function never
// collide), its inputs bound by a new equation per argument, its
// algorithm body turned into one equation per assignment statement
// (sequential statement-to-equation desugaring only works when each
// local variable is assigned exactly once, which covers straight-line
// functions; a function that reassigns a variable is left uninlined
// with its call passed through, since statement order would otherwise
// matter in a context with no order), and the call site replaced by a
// reference to its single output's temporary. A tuple-output call
// assigned to `(a, b, ...) = f(...)` goes through the separate
// inlineTupleAssigns path below, since a tuple assignment lives inside
// an algorithm section rather than an equation's RHS.
func (f *Flattener) inlineFunctions(flat *FlatClass) {
	flat.Equations = f.inlineEquations(flat.Equations, flat)
	flat.InitialEquations = f.inlineEquations(flat.InitialEquations, flat)
	flat.Algorithms = f.inlineTupleAssigns(flat.Algorithms, flat)
	flat.InitialAlgorithms = f.inlineTupleAssigns(flat.InitialAlgorithms, flat)
}

func (f *Flattener) inlineEquations(eqs []ast.Equation, flat *FlatClass) []ast.Equation {
	var out []ast.Equation
	for _, eq := range eqs {
		switch e := eq.(type) {
		case *ast.SimpleEquation:
			var extra []ast.Equation
			lhs := f.inlineExpr(e.Lhs, flat, &extra)
			rhs := f.inlineExpr(e.Rhs, flat, &extra)
			out = append(out, extra...)
			out = append(out, &ast.SimpleEquation{Lhs: lhs, Rhs: rhs, Pos: e.Pos})
		case *ast.IfEquation:
			rewritten := &ast.IfEquation{Pos: e.Pos, Else: f.inlineEquations(e.Else, flat)}
			for _, b := range e.Branches {
				rewritten.Branches = append(rewritten.Branches, ast.CondBlock{Cond: b.Cond, Eqs: f.inlineEquations(b.Eqs, flat)})
			}
			out = append(out, rewritten)
		case *ast.ForEquation:
			out = append(out, &ast.ForEquation{Index: e.Index, Range: e.Range, Eqs: f.inlineEquations(e.Eqs, flat), Pos: e.Pos})
		case *ast.WhenEquation:
			rewritten := &ast.WhenEquation{Pos: e.Pos}
			for _, b := range e.Branches {
				rewritten.Branches = append(rewritten.Branches, ast.CondBlock{Cond: b.Cond, Eqs: f.inlineEquations(b.Eqs, flat)})
			}
			out = append(out, rewritten)
		default:
			out = append(out, eq)
		}
	}
	return out
}

// inlineExpr inlines local function calls found anywhere inside expr,
// appending the equations an inlined call needs to *extra.
func (f *Flattener) inlineExpr(expr ast.Expr, flat *FlatClass, extra *[]ast.Equation) ast.Expr {
	if expr == nil {
		return nil
	}
	switch e := expr.(type) {
	case *ast.CallExpr:
		args := make([]ast.Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = f.inlineExpr(a, flat, extra)
		}
		if result, ok := f.inlineCall(e.Func, args, flat, extra); ok {
			return result
		}
		return &ast.CallExpr{Func: e.Func, Args: args, Named: e.Named, Pos: e.Pos}
	case *ast.UnaryExpr:
		return &ast.UnaryExpr{Op: e.Op, X: f.inlineExpr(e.X, flat, extra), Pos: e.Pos}
	case *ast.BinaryExpr:
		return &ast.BinaryExpr{Op: e.Op, L: f.inlineExpr(e.L, flat, extra), R: f.inlineExpr(e.R, flat, extra), Pos: e.Pos}
	case *ast.IfExpr:
		out := &ast.IfExpr{Else: f.inlineExpr(e.Else, flat, extra), Pos: e.Pos}
		for _, b := range e.Branches {
			out.Branches = append(out.Branches, struct {
				Cond ast.Expr
				Then ast.Expr
			}{Cond: f.inlineExpr(b.Cond, flat, extra), Then: f.inlineExpr(b.Then, flat, extra)})
		}
		return out
	case *ast.ArrayExpr:
		elems := make([]ast.Expr, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = f.inlineExpr(el, flat, extra)
		}
		return &ast.ArrayExpr{Elements: elems, Pos: e.Pos}
	default:
		return expr
	}
}

// inlineCall expands a call to fn if fn names a local, single-output,
// single-assignment-per-variable function. ok is false (args/flat
// untouched) for any call that doesn't qualify, so the caller leaves
// the original CallExpr in place.
func (f *Flattener) inlineCall(fn string, args []ast.Expr, flat *FlatClass, extra *[]ast.Equation) (ast.Expr, bool) {
	fnCls, ok := f.table.Lookup(fn)
	if !ok || fnCls.Kind != ast.KindFunction || len(fnCls.Algorithms) != 1 {
		return nil, false
	}

	var inputs, outputs, locals []*ast.Component
	for _, c := range fnCls.Components {
		switch c.Causality {
		case ast.Input:
			inputs = append(inputs, c)
		case ast.Output:
			outputs = append(outputs, c)
		default:
			locals = append(locals, c)
		}
	}
	if len(outputs) != 1 || len(args) != len(inputs) {
		return nil, false
	}
	if !assignedOnceEach(fnCls.Algorithms[0].Stmts) {
		return nil, false
	}

	mapping := make(map[string]string)
	for _, c := range inputs {
		mapping[c.Name] = f.mangler.Fresh(fn + "_" + c.Name)
	}
	for _, c := range append(append([]*ast.Component{}, outputs...), locals...) {
		mapping[c.Name] = f.mangler.Fresh(fn + "_" + c.Name)
	}

	for i, c := range inputs {
		temp := mapping[c.Name]
		flat.addComponent(&FlatComponent{Name: temp, TypeName: c.TypeName, Variability: ast.Continuous, Pos: c.Pos})
		*extra = append(*extra, &ast.SimpleEquation{Lhs: ref(temp), Rhs: args[i], Pos: c.Pos})
	}
	for _, c := range append(append([]*ast.Component{}, outputs...), locals...) {
		flat.addComponent(&FlatComponent{Name: mapping[c.Name], TypeName: c.TypeName, Variability: ast.Continuous, Pos: c.Pos})
	}

	for _, stmt := range fnCls.Algorithms[0].Stmts {
		assign, ok := stmt.(*ast.AssignStmt)
		if !ok {
			continue
		}
		*extra = append(*extra, &ast.SimpleEquation{
			Lhs: substituteNames(assign.Lhs, mapping),
			Rhs: substituteNames(assign.Rhs, mapping),
			Pos: assign.Pos,
		})
	}

	return ref(mapping[outputs[0].Name]), true
}

// assignedOnceEach reports whether stmts is a flat sequence of plain
// assignments with no control flow and no variable assigned twice,
// i.e. whether it desugars into equations without depending on
// execution order.
func assignedOnceEach(stmts []ast.Statement) bool {
	seen := make(map[string]bool)
	for _, s := range stmts {
		assign, ok := s.(*ast.AssignStmt)
		if !ok {
			return false
		}
		ref, ok := assign.Lhs.(*ast.ComponentReference)
		if !ok || len(ref.Parts) != 1 {
			return false
		}
		if seen[ref.Parts[0].Name] {
			return false
		}
		seen[ref.Parts[0].Name] = true
	}
	return true
}

// substituteNames replaces every single-part ComponentReference named
// in mapping, leaving everything else (including multi-part references,
// which a function body never produces since it has no sub-instances)
// unchanged.
func substituteNames(expr ast.Expr, mapping map[string]string) ast.Expr {
	if expr == nil {
		return nil
	}
	switch e := expr.(type) {
	case *ast.ComponentReference:
		if !e.Global && len(e.Parts) == 1 {
			if mapped, ok := mapping[e.Parts[0].Name]; ok {
				return &ast.ComponentReference{Parts: []ast.RefPart{{Name: mapped, Subscripts: e.Parts[0].Subscripts}}, Pos: e.Pos}
			}
		}
		return e
	case *ast.UnaryExpr:
		return &ast.UnaryExpr{Op: e.Op, X: substituteNames(e.X, mapping), Pos: e.Pos}
	case *ast.BinaryExpr:
		return &ast.BinaryExpr{Op: e.Op, L: substituteNames(e.L, mapping), R: substituteNames(e.R, mapping), Pos: e.Pos}
	case *ast.CallExpr:
		args := make([]ast.Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = substituteNames(a, mapping)
		}
		return &ast.CallExpr{Func: e.Func, Args: args, Named: e.Named, Pos: e.Pos}
	case *ast.IfExpr:
		out := &ast.IfExpr{Else: substituteNames(e.Else, mapping), Pos: e.Pos}
		for _, b := range e.Branches {
			out.Branches = append(out.Branches, struct {
				Cond ast.Expr
				Then ast.Expr
			}{Cond: substituteNames(b.Cond, mapping), Then: substituteNames(b.Then, mapping)})
		}
		return out
	default:
		return expr
	}
}

// inlineTupleAssigns walks a class's algorithm sections looking for
// tuple assignments (Open Question (c): `(a, b) = f(x)` parses as an
// AssignStmt whose Lhs is an *ast.ArrayExpr). A tuple assign to a
// local, single-algorithm function whose output count matches the
// tuple gets expanded in place into one plain assignment per output,
// projected from the inlined call the same way inlineCall projects a
// single-output call into an equation. Anything else (the callee
// isn't a local function, its arity doesn't match, or it reassigns a
// variable) can't be given a defined projection, so the statement is
// dropped and FLT007 is reported instead of passing a nonsensical
// equation on to the DAE builder.
func (f *Flattener) inlineTupleAssigns(algs []*ast.Algorithm, flat *FlatClass) []*ast.Algorithm {
	out := make([]*ast.Algorithm, len(algs))
	for i, alg := range algs {
		var stmts []ast.Statement
		for _, s := range alg.Stmts {
			assign, ok := s.(*ast.AssignStmt)
			if !ok {
				stmts = append(stmts, s)
				continue
			}
			tup, isTuple := assign.Lhs.(*ast.ArrayExpr)
			if !isTuple {
				stmts = append(stmts, s)
				continue
			}
			call, ok := assign.Rhs.(*ast.CallExpr)
			if !ok {
				f.reportUninlinableTuple(assign.Rhs, assign.Pos)
				continue
			}
			expanded, ok := f.inlineTupleCall(tup.Elements, call, flat)
			if !ok {
				f.reportUninlinableTuple(call, assign.Pos)
				continue
			}
			stmts = append(stmts, expanded...)
		}
		out[i] = &ast.Algorithm{Stmts: stmts, Pos: alg.Pos}
	}
	return out
}

// inlineTupleCall is inlineCall generalized to N outputs: it expands a
// call to fn into one assignment per input binding plus one per
// function-body statement plus one final projection assignment per
// declared output, in the function's own output-declaration order
// (the order Modelica matches a tuple LHS against). ok is false for
// any call that doesn't qualify for inlining at all (fn isn't a local
// single-algorithm function, its output count doesn't match outs, or
// its body reassigns a variable).
func (f *Flattener) inlineTupleCall(outs []ast.Expr, call *ast.CallExpr, flat *FlatClass) ([]ast.Statement, bool) {
	fnCls, ok := f.table.Lookup(call.Func)
	if !ok || fnCls.Kind != ast.KindFunction || len(fnCls.Algorithms) != 1 {
		return nil, false
	}

	var inputs, outputs, locals []*ast.Component
	for _, c := range fnCls.Components {
		switch c.Causality {
		case ast.Input:
			inputs = append(inputs, c)
		case ast.Output:
			outputs = append(outputs, c)
		default:
			locals = append(locals, c)
		}
	}
	if len(outputs) != len(outs) || len(call.Args) != len(inputs) {
		return nil, false
	}
	if !assignedOnceEach(fnCls.Algorithms[0].Stmts) {
		return nil, false
	}

	mapping := make(map[string]string)
	for _, c := range inputs {
		mapping[c.Name] = f.mangler.Fresh(call.Func + "_" + c.Name)
	}
	for _, c := range append(append([]*ast.Component{}, outputs...), locals...) {
		mapping[c.Name] = f.mangler.Fresh(call.Func + "_" + c.Name)
	}

	var stmts []ast.Statement
	for i, c := range inputs {
		temp := mapping[c.Name]
		flat.addComponent(&FlatComponent{Name: temp, TypeName: c.TypeName, Variability: ast.Continuous, Pos: c.Pos})
		stmts = append(stmts, &ast.AssignStmt{Lhs: ref(temp), Rhs: call.Args[i], Pos: call.Pos})
	}
	for _, c := range append(append([]*ast.Component{}, outputs...), locals...) {
		flat.addComponent(&FlatComponent{Name: mapping[c.Name], TypeName: c.TypeName, Variability: ast.Continuous, Pos: c.Pos})
	}

	for _, stmt := range fnCls.Algorithms[0].Stmts {
		assign, ok := stmt.(*ast.AssignStmt)
		if !ok {
			continue
		}
		stmts = append(stmts, &ast.AssignStmt{
			Lhs: substituteNames(assign.Lhs, mapping),
			Rhs: substituteNames(assign.Rhs, mapping),
			Pos: assign.Pos,
		})
	}

	for i, c := range outputs {
		stmts = append(stmts, &ast.AssignStmt{Lhs: outs[i], Rhs: ref(mapping[c.Name]), Pos: call.Pos})
	}

	return stmts, true
}

// reportUninlinableTuple records FLT007 for a tuple assignment that
// can't be expanded into projections, naming the call so the
// diagnostic points at what would need to become inlinable.
func (f *Flattener) reportUninlinableTuple(rhs ast.Expr, pos ast.Pos) {
	name := "<non-call expression>"
	if call, ok := rhs.(*ast.CallExpr); ok {
		name = call.Func
	}
	rep := errors.New(errors.FLT007, &ast.Span{Start: pos},
		fmt.Sprintf("tuple-output call to %q could not be inlined; dropping the assignment", name))
	f.sink.Add(rep)
}
