package flatten

import (
	"github.com/go-modelica/moc/internal/ast"
	"github.com/go-modelica/moc/internal/errors"
)

// expandInstance walks in's merged component set, expanding each
// composite (non-builtin-typed) component into its own sub-instance
// recursively (§4.3 step 4), leaving atomic components as flat scalars
// (step 5), then lifts in's own equations/algorithms into flat with
// every local reference rewritten to the flat prefixed name (step 6).
func (f *Flattener) expandInstance(in *instance, prefix string, flat *FlatClass, isRoot bool) {
	localNames := make(map[string]bool, len(in.order))
	for _, name := range in.order {
		localNames[name] = true
	}

	for _, name := range in.order {
		c := in.components[name]
		flatName := prefix + c.Name

		if builtinTypes[c.TypeName] {
			flat.addComponent(&FlatComponent{
				Name:        flatName,
				TypeName:    c.TypeName,
				Dims:        renameExprs(c.Dims, localNames, prefix),
				Variability: c.Variability,
				Causality:   causalityFor(c, isRoot),
				Connector:   c.Connector,
				Start:       renameRefs(c.Start, localNames, prefix),
				Condition:   renameRefs(c.Condition, localNames, prefix),
				Final:       c.Final,
				Pos:         c.Pos,
			})
			continue
		}

		subCls, err := f.resolver.Resolve(c.TypeName, in.cls, nil)
		if err != nil {
			if rep, ok := errors.AsReport(err); ok {
				f.sink.Add(rep)
			}
			// Fall back to treating it as an atomic scalar so flattening
			// can still produce a partial result for the remaining errors
			// already queued in the sink to be reported together.
			flat.addComponent(&FlatComponent{Name: flatName, TypeName: c.TypeName, Pos: c.Pos})
			continue
		}

		// An enumeration ("type Colors = enumeration(...)") is atomic
		// like Integer (§4.3 step 5's "an enumeration" atomic type),
		// never a nested instance, even though it resolves through the
		// class table the same way a model/record reference does.
		if len(subCls.EnumLiterals) > 0 {
			flat.addComponent(&FlatComponent{
				Name:        flatName,
				TypeName:    c.TypeName,
				Dims:        renameExprs(c.Dims, localNames, prefix),
				Variability: c.Variability,
				Causality:   causalityFor(c, isRoot),
				Connector:   c.Connector,
				Start:       renameRefs(c.Start, localNames, prefix),
				Condition:   renameRefs(c.Condition, localNames, prefix),
				Final:       c.Final,
				Pos:         c.Pos,
			})
			continue
		}

		env := c.TypeModifier
		if c.Modifier != nil {
			env = mergeModifiers(env, c.Modifier)
		}
		subInst, err := f.instantiate(subCls, env, map[string]bool{}, 0)
		if err != nil {
			continue
		}
		f.expandInstance(subInst, flatName+"_", flat, false)
	}

	flat.Equations = append(flat.Equations, renameEquations(in.equations, localNames, prefix)...)
	flat.InitialEquations = append(flat.InitialEquations, renameEquations(in.initialEquations, localNames, prefix)...)
	for _, alg := range in.algorithms {
		flat.Algorithms = append(flat.Algorithms, &ast.Algorithm{Stmts: renameStatements(alg.Stmts, localNames, prefix), Pos: alg.Pos})
	}
	for _, alg := range in.initialAlgorithms {
		flat.InitialAlgorithms = append(flat.InitialAlgorithms, &ast.Algorithm{Stmts: renameStatements(alg.Stmts, localNames, prefix), Pos: alg.Pos})
	}
}

// causalityFor keeps input/output causality only on the root class's
// own components (§4.4: "u is restricted to the root class's declared
// inputs"); a nested sub-model's input/output becomes an ordinary
// algebraic variable once it's been flattened away into its parent.
func causalityFor(c *ast.Component, isRoot bool) ast.Causality {
	if isRoot {
		return c.Causality
	}
	return ast.NoCausality
}
