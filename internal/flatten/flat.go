// Package flatten implements the Flattener (§4.3): it turns a
// StoredDefinition's class table plus a root class name into a
// FlatClass, a single flat component map and equation list with no
// remaining inheritance, modification, or nested-instance structure.
//
// The pipeline is grounded on the shape of the teacher's
// internal/elaborate package: an immutable input tree, a small typed
// mutation/substitution plan applied once per instance, and a
// dedicated cycle guard for the one place this IR can recurse forever
// (the extends chain, mirroring elaborate/scc.go's letrec-group guard).
package flatten

import (
	"github.com/go-modelica/moc/internal/ast"
	"github.com/go-modelica/moc/internal/errors"
	"github.com/go-modelica/moc/internal/intern"
	"github.com/go-modelica/moc/internal/module"
)

// FlatComponent is one scalar or array component of a FlatClass, named
// by its full underscore-joined path from the root instance.
type FlatComponent struct {
	Name        string
	TypeName    string
	Dims        []ast.Expr
	Variability ast.Variability
	Causality   ast.Causality
	Connector   ast.ConnectorPrefix
	Start       ast.Expr
	Condition   ast.Expr
	Final       bool
	Pos         ast.Pos
}

// FlatClass is the output of flattening: one flat component map plus
// the equation/algorithm lists with every reference already rewritten
// to the flat underscore-joined names (§3.2).
type FlatClass struct {
	Name              string
	Abstract          bool // partial/function/package/type root class, exempt from the balance check
	Components        map[string]*FlatComponent
	Order             []string // insertion order, for deterministic serialization
	Equations         []ast.Equation
	InitialEquations  []ast.Equation
	Algorithms        []*ast.Algorithm
	InitialAlgorithms []*ast.Algorithm
}

func newFlatClass(name string) *FlatClass {
	return &FlatClass{Name: name, Components: make(map[string]*FlatComponent)}
}

func (f *FlatClass) addComponent(c *FlatComponent) {
	if _, exists := f.Components[c.Name]; exists {
		return
	}
	f.Components[c.Name] = c
	f.Order = append(f.Order, c.Name)
}

// builtinTypes are the atomic Modelica predefined types; a component
// whose type resolves to one of these is atomic (§4.3 step 5), never a
// nested instance.
var builtinTypes = map[string]bool{
	"Real": true, "Integer": true, "Boolean": true, "String": true,
}

// maxExtendsDepth bounds the extends-chain recursion (§4.3's "must
// detect and refuse infinite extends chains").
const maxExtendsDepth = 64

// Flattener runs the multi-pass flattening algorithm over a populated
// module.Table.
type Flattener struct {
	table    *module.Table
	resolver *module.Resolver
	mangler  *intern.Mangler
	sink     *errors.Sink
}

// New creates a Flattener over an already-loaded class table.
func New(table *module.Table, sink *errors.Sink) *Flattener {
	return &Flattener{
		table:    table,
		resolver: module.NewResolver(table),
		mangler:  intern.NewMangler(),
		sink:     sink,
	}
}

// Flatten runs the full pipeline (§4.3 steps 1-9) against rootName,
// returning the resulting FlatClass.
func (f *Flattener) Flatten(rootName string) (*FlatClass, error) {
	root, ok := f.table.Lookup(rootName)
	if !ok {
		rep := errors.New(errors.RES001, nil, "unknown root class "+rootName)
		f.sink.Add(rep)
		return nil, errors.Wrap(rep)
	}

	inst, err := f.instantiate(root, nil, map[string]bool{}, 0)
	if err != nil {
		return nil, err
	}

	flat := newFlatClass(rootName)
	flat.Abstract = root.IsAbstract()
	f.expandInstance(inst, "", flat, true)
	f.evaluateStaticConditionals(flat)
	f.expandConnects(flat)
	f.inlineFunctions(flat)
	return flat, nil
}
