package flatten

import (
	"fmt"

	"github.com/go-modelica/moc/internal/ast"
	"github.com/go-modelica/moc/internal/errors"
)

// instance is the merged-but-not-yet-expanded result of §4.3 steps 1-3
// for one class: its own components plus everything pulled in through
// its extends chain, with modifier overrides already applied.
type instance struct {
	cls               *ast.ClassDefinition
	components        map[string]*ast.Component
	order             []string
	nested            map[string]*ast.ClassDefinition
	equations         []ast.Equation
	initialEquations  []ast.Equation
	algorithms        []*ast.Algorithm
	initialAlgorithms []*ast.Algorithm
}

func newInstanceOf(cls *ast.ClassDefinition) *instance {
	return &instance{
		cls:        cls,
		components: make(map[string]*ast.Component),
		nested:     make(map[string]*ast.ClassDefinition),
	}
}

func (in *instance) setComponent(c *ast.Component) {
	if _, exists := in.components[c.Name]; !exists {
		in.order = append(in.order, c.Name)
	}
	in.components[c.Name] = c
}

// instantiate builds the merged instance for cls, applying env (the
// modifier environment inherited from whatever referenced cls: an
// extends clause's modifier or a component's inline modifier).
// visited guards the extends chain against cycles (§4.3: "must detect
// and refuse infinite extends chains"), mirroring the teacher's
// elaborate/scc.go strongly-connected-component style guard but scoped
// to one recursion path instead of the whole call graph.
func (f *Flattener) instantiate(cls *ast.ClassDefinition, env *ast.Modifier, visited map[string]bool, depth int) (*instance, error) {
	if depth > maxExtendsDepth {
		rep := errors.New(errors.FLT004, &ast.Span{Start: cls.Pos},
			fmt.Sprintf("extends-chain recursion exceeds depth %d at %s", maxExtendsDepth, cls.Name))
		f.sink.Add(rep)
		return nil, errors.Wrap(rep)
	}

	in := newInstanceOf(cls)

	// Step 2: merge extends, depth-first, left-to-right. Each base
	// contributes its own components first; a local component of the
	// same name declared directly on cls overrides the inherited one
	// entirely, applied below.
	for _, ext := range cls.Extends {
		if visited[ext.TypeName] {
			rep := errors.New(errors.FLT004, &ast.Span{Start: ext.Pos},
				fmt.Sprintf("cyclic extends chain at %q", ext.TypeName))
			f.sink.Add(rep)
			return nil, errors.Wrap(rep)
		}
		base, err := f.resolver.Resolve(ext.TypeName, cls, nil)
		if err != nil {
			if rep, ok := errors.AsReport(err); ok {
				f.sink.Add(rep)
			}
			return nil, err
		}
		visited[ext.TypeName] = true
		baseInst, err := f.instantiate(base, ext.Modifier, visited, depth+1)
		delete(visited, ext.TypeName)
		if err != nil {
			return nil, err
		}
		for _, name := range baseInst.order {
			in.setComponent(baseInst.components[name])
		}
		for name, n := range baseInst.nested {
			in.nested[name] = n
		}
		in.equations = append(in.equations, baseInst.equations...)
		in.initialEquations = append(in.initialEquations, baseInst.initialEquations...)
		in.algorithms = append(in.algorithms, baseInst.algorithms...)
		in.initialAlgorithms = append(in.initialAlgorithms, baseInst.initialAlgorithms...)
	}

	// Step: the class's own components override any inherited component
	// of the same name entirely (§4.3 step 2).
	for _, c := range cls.Components {
		in.setComponent(c)
	}
	for _, n := range cls.Nested {
		in.nested[n.Name] = n
	}
	in.equations = append(in.equations, cls.Equations...)
	in.initialEquations = append(in.initialEquations, cls.InitialEquations...)
	in.algorithms = append(in.algorithms, cls.Algorithms...)
	in.initialAlgorithms = append(in.initialAlgorithms, cls.InitialAlgorithms...)

	// Step 3: apply the inherited modifier environment onto the merged
	// component set by name.
	if err := f.applyModifierEnv(in, env); err != nil {
		return nil, err
	}
	return in, nil
}

// applyModifierEnv applies env's top-level entries onto in's components,
// honoring final (§4.3 step 3): a final component cannot be modified
// again, and modifying an unknown name is an error. The each prefix on
// an entry is not acted on.
func (f *Flattener) applyModifierEnv(in *instance, env *ast.Modifier) error {
	if env == nil {
		return nil
	}
	for _, entry := range env.Entries {
		comp, ok := in.components[entry.Name]
		if !ok {
			rep := errors.New(errors.FLT005, &ast.Span{Start: entry.Pos},
				fmt.Sprintf("modification of unknown name %q", entry.Name))
			f.sink.Add(rep)
			return errors.Wrap(rep)
		}
		if comp.Final && (entry.Value != nil || entry.Nested != nil) {
			rep := errors.New(errors.FLT001, &ast.Span{Start: entry.Pos},
				fmt.Sprintf("cannot modify final element %q", entry.Name))
			f.sink.Add(rep)
			return errors.Wrap(rep)
		}
		merged := cloneComponent(comp)
		if entry.Value != nil {
			merged.Start = entry.Value
		}
		if entry.Nested != nil {
			merged.Modifier = mergeModifiers(merged.Modifier, entry.Nested)
		}
		if entry.Final {
			merged.Final = true
		}
		in.setComponent(merged)
	}
	return nil
}

func cloneComponent(c *ast.Component) *ast.Component {
	clone := *c
	return &clone
}

// mergeModifiers concatenates two modifier trees, with later entries
// (from the more specific override) taking precedence on lookup since
// Modifier.Lookup returns the first match.
func mergeModifiers(base, extra *ast.Modifier) *ast.Modifier {
	if base == nil {
		return extra
	}
	if extra == nil {
		return base
	}
	merged := &ast.Modifier{Pos: base.Pos}
	merged.Entries = append(merged.Entries, extra.Entries...)
	merged.Entries = append(merged.Entries, base.Entries...)
	return merged
}
