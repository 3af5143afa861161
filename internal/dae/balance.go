package dae

import (
	"github.com/go-modelica/moc/internal/ast"
	"github.com/go-modelica/moc/internal/errors"
	"github.com/go-modelica/moc/internal/flatten"
)

// checkBalance compares the scalar equation count in Fx against
// |x|+|y|+|z| (§4.4 step 4). A mismatch is reported as a warning
// (BAL001/BAL002), never a fatal error; the IR is emitted either way.
func (b *Builder) checkBalance(flat *flatten.FlatClass, dae *Dae) {
	if flat.Abstract {
		dae.Balance = BalanceResult{Status: Balanced}
		return
	}

	eqCount := countEquations(dae.Fx)
	unknowns := len(dae.X) + len(dae.Y) + len(dae.Z)
	delta := eqCount - unknowns

	result := BalanceResult{EquationCount: eqCount, UnknownCount: unknowns, Delta: delta}
	switch {
	case delta > 0:
		result.Status = Overdetermined
		b.sink.Add(errors.New(errors.BAL001, nil, "more scalar equations than unknowns").
			WithData("delta", delta).WithData("equations", eqCount).WithData("unknowns", unknowns))
	case delta < 0:
		result.Status = Underdetermined
		b.sink.Add(errors.New(errors.BAL002, nil, "fewer scalar equations than unknowns").
			WithData("delta", delta).WithData("equations", eqCount).WithData("unknowns", unknowns))
	default:
		result.Status = Balanced
	}
	dae.Balance = result
}

// countEquations counts scalar defining equations: one per
// SimpleEquation, recursively for if/for bodies (a for loop over a
// statically known integer range contributes its range length;
// otherwise, conservatively, the body is counted once, since the range
// length isn't statically known). Assert and reinit
// don't define residuals and aren't counted.
func countEquations(eqs []ast.Equation) int {
	n := 0
	for _, eq := range eqs {
		switch e := eq.(type) {
		case *ast.SimpleEquation:
			n++
		case *ast.IfEquation:
			// The branches are mutually exclusive alternatives for the
			// same unknowns, so only one branch's count is charged; they
			// are required to balance identically in a well-formed model,
			// so the first branch (or else) stands in for all of them.
			if len(e.Branches) > 0 {
				n += countEquations(e.Branches[0].Eqs)
			} else {
				n += countEquations(e.Else)
			}
		case *ast.ForEquation:
			count := countEquations(e.Eqs)
			if reps, ok := staticRangeLength(e.Range); ok {
				n += count * reps
			} else {
				n += count
			}
		}
	}
	return n
}

// staticRangeLength returns the iteration count of a `start:stop` or
// `start:step:stop` range when every bound is an integer literal.
func staticRangeLength(e ast.Expr) (int, bool) {
	r, ok := e.(*ast.RangeExpr)
	if !ok {
		return 0, false
	}
	start, ok := intLit(r.Start)
	if !ok {
		return 0, false
	}
	stop, ok := intLit(r.Stop)
	if !ok {
		return 0, false
	}
	step := int64(1)
	if r.Step != nil {
		step, ok = intLit(r.Step)
		if !ok {
			return 0, false
		}
	}
	if step == 0 || (step > 0 && stop < start) || (step < 0 && stop > start) {
		return 0, false
	}
	return int((stop-start)/step) + 1, true
}

func intLit(e ast.Expr) (int64, bool) {
	lit, ok := e.(*ast.IntLit)
	if !ok {
		return 0, false
	}
	return lit.Value, true
}
