// Package dae implements the DAE Builder (§4.4): it classifies a
// FlatClass's components into the partitions of a hybrid
// differential-algebraic system, rewrites der() references, extracts
// event/condition indicators, and checks the equation/unknown balance.
//
// Grounded on the teacher's internal/types package: a single-pass
// classifier over an already-built tree (here a FlatClass instead of a
// core.Program), producing one small typed result structure consumed
// by later stages (the serializer here, codegen there).
package dae

import (
	"github.com/go-modelica/moc/internal/ast"
	"github.com/go-modelica/moc/internal/errors"
	"github.com/go-modelica/moc/internal/flatten"
	"github.com/go-modelica/moc/internal/intern"
)

// Variable is one scalar unknown or parameter, carrying just enough of
// FlatComponent's metadata for the serializer (§4.5).
type Variable struct {
	Name        string
	TypeName    string
	Dims        []ast.Expr
	Variability ast.Variability
	Causality   ast.Causality
	Start       ast.Expr
	Description string
}

// Indicator is one Boolean condition extracted from a preserved `if`
// or `when` (§4.4 step 3): `c` maps the condition's canonical text to
// its fresh indicator variable. EventTrigger is set for indicators
// coming from a `when`, where crossing the condition fires a discrete
// update/reinit action rather than just re-selecting a branch.
type Indicator struct {
	Name         string
	Cond         ast.Expr
	EventTrigger bool
}

// BalanceStatus is the outcome of the equation/unknown balance check
// (§4.4 step 4).
type BalanceStatus int

const (
	Balanced BalanceStatus = iota
	Overdetermined
	Underdetermined
)

func (b BalanceStatus) String() string {
	switch b {
	case Overdetermined:
		return "Overdetermined"
	case Underdetermined:
		return "Underdetermined"
	default:
		return "Balanced"
	}
}

// BalanceResult records the scalar-equation-count vs. unknown-count
// comparison; Delta = equations - unknowns.
type BalanceResult struct {
	Status        BalanceStatus
	Delta         int
	EquationCount int
	UnknownCount  int
}

// Dae is the translation's final intermediate representation (§3.3).
type Dae struct {
	Name string

	P  []*Variable // parameters
	Cp []*Variable // constants
	T  *Variable   // the independent variable; always present, never declared
	X  []*Variable // continuous states
	// XDot holds one der_<name> companion per X entry, same order
	// (invariant: len(XDot) == len(X)).
	XDot []*Variable
	Y    []*Variable // algebraic continuous
	U    []*Variable // root-class inputs
	Z    []*Variable // discrete continuous-time
	M    []*Variable // discrete Boolean/Integer modes

	PreX []*Variable
	PreZ []*Variable
	PreM []*Variable

	// C maps a condition's canonical text to its extracted indicator.
	C map[string]*Indicator

	Fx     []ast.Equation // continuous residuals
	FxInit []ast.Equation // initial-equation/initial-algorithm residuals; not counted in the balance check, which covers the continuous problem only
	Fz     []ast.Equation // discrete updates
	Fm     []ast.Equation // mode updates
	Fr     []ast.Equation // reinit actions

	Balance BalanceResult
}

// Builder runs the classify -> rewrite-der -> extract-events ->
// balance-check pipeline over one FlatClass.
type Builder struct {
	sink     *errors.Sink
	mangler  *intern.Mangler
	derNames map[string]bool
}

// New creates a Builder that reports diagnostics to sink.
func New(sink *errors.Sink) *Builder {
	return &Builder{sink: sink, mangler: intern.NewMangler()}
}

// Build runs the full DAE Builder algorithm (§4.4) over flat.
func (b *Builder) Build(flat *flatten.FlatClass) (*Dae, error) {
	dae := &Dae{Name: flat.Name, C: make(map[string]*Indicator)}
	dae.T = &Variable{Name: "time", TypeName: "Real", Variability: ast.Continuous}

	b.derNames = collectDerNames(flat, b.sink)
	assignedInWhen, assignedElsewhere := collectDiscreteAssignments(flat)

	if err := b.classify(flat, dae, assignedInWhen, assignedElsewhere); err != nil {
		return nil, err
	}

	dae.Fx = rewriteDerReferences(flat.Equations)
	dae.Fx = append(dae.Fx, algorithmsToEquations(flat.Algorithms)...)
	dae.FxInit = rewriteDerReferences(flat.InitialEquations)
	dae.FxInit = append(dae.FxInit, algorithmsToEquations(flat.InitialAlgorithms)...)

	b.extractEvents(dae)

	b.checkBalance(flat, dae)
	return dae, nil
}
