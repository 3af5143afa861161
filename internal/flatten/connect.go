package flatten

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-modelica/moc/internal/ast"
	"github.com/go-modelica/moc/internal/errors"
)

// expandConnects replaces every connect(a, b) equation with the
// flow-sum and potential-equality equations it implies (§4.3 step 8).
// Connector instances are unioned with a simple union-find over their
// already-flattened prefix name (e.g. "r_p" for `connect(r.p, ...)`),
// then each connector field is either summed to zero (flow) or chained
// into n-1 equality equations (potential), grouped by field suffix
// across every member of the connection set.
func (f *Flattener) expandConnects(flat *FlatClass) {
	remaining, connects := extractConnects(flat.Equations)
	flat.Equations = remaining
	if len(connects) == 0 {
		return
	}

	uf := newUnionFind()
	for _, c := range connects {
		lhs, rhs := connectorName(c.Lhs), connectorName(c.Rhs)
		if lhs == "" || rhs == "" {
			continue
		}
		uf.union(lhs, rhs)
	}

	groups := make(map[string][]string)
	for _, c := range connects {
		for _, name := range []string{connectorName(c.Lhs), connectorName(c.Rhs)} {
			if name == "" {
				continue
			}
			root := uf.find(name)
			groups[root] = appendUnique(groups[root], name)
		}
	}

	var roots []string
	for root := range groups {
		roots = append(roots, root)
	}
	sort.Strings(roots)

	for _, root := range roots {
		members := groups[root]
		sort.Strings(members)
		f.expandConnectionSet(flat, members)
	}
}

// expandConnectionSet emits the equations implied by one connection
// set (a maximal group of connector instances joined, transitively, by
// connect() calls).
func (f *Flattener) expandConnectionSet(flat *FlatClass, connectors []string) {
	byField := make(map[string][]*FlatComponent)
	var fieldOrder []string
	for _, connPrefix := range connectors {
		suffix := connPrefix + "_"
		for _, name := range flat.Order {
			if !strings.HasPrefix(name, suffix) {
				continue
			}
			field := name[len(suffix):]
			if _, seen := byField[field]; !seen {
				fieldOrder = append(fieldOrder, field)
			}
			byField[field] = append(byField[field], flat.Components[name])
		}
	}
	sort.Strings(fieldOrder)

	for _, field := range fieldOrder {
		members := byField[field]
		if len(members) < 2 {
			continue
		}
		switch members[0].Connector {
		case ast.Stream:
			rep := errors.New(errors.FLT006, &ast.Span{Start: members[0].Pos},
				fmt.Sprintf("stream connector field %q is unsupported", field))
			f.sink.Add(rep)
		case ast.Flow:
			flat.Equations = append(flat.Equations, flowSumEquation(members))
		default:
			flat.Equations = append(flat.Equations, potentialEqualityEquations(members)...)
		}
	}
}

func flowSumEquation(members []*FlatComponent) ast.Equation {
	var sum ast.Expr = ref(members[0].Name)
	for _, m := range members[1:] {
		sum = &ast.BinaryExpr{Op: "+", L: sum, R: ref(m.Name)}
	}
	return &ast.SimpleEquation{Lhs: sum, Rhs: &ast.RealLit{Value: 0}}
}

func potentialEqualityEquations(members []*FlatComponent) []ast.Equation {
	var out []ast.Equation
	for _, m := range members[1:] {
		out = append(out, &ast.SimpleEquation{Lhs: ref(members[0].Name), Rhs: ref(m.Name)})
	}
	return out
}

func ref(name string) ast.Expr {
	return &ast.ComponentReference{Parts: []ast.RefPart{{Name: name}}}
}

// connectorName extracts the flat, already-renamed prefix name a
// connect() operand refers to.
func connectorName(ref *ast.ComponentReference) string {
	if ref == nil || len(ref.Parts) == 0 {
		return ""
	}
	return ref.Parts[0].Name
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

// extractConnects pulls every ConnectEquation out of eqs (recursing
// into if/for bodies, since connect() may appear inside a for loop over
// a connector array), returning the remaining equations separately.
func extractConnects(eqs []ast.Equation) ([]ast.Equation, []*ast.ConnectEquation) {
	var remaining []ast.Equation
	var connects []*ast.ConnectEquation
	for _, eq := range eqs {
		switch e := eq.(type) {
		case *ast.ConnectEquation:
			connects = append(connects, e)
		case *ast.IfEquation:
			rewritten := &ast.IfEquation{Pos: e.Pos}
			for _, b := range e.Branches {
				rem, c := extractConnects(b.Eqs)
				connects = append(connects, c...)
				rewritten.Branches = append(rewritten.Branches, ast.CondBlock{Cond: b.Cond, Eqs: rem})
			}
			rem, c := extractConnects(e.Else)
			connects = append(connects, c...)
			rewritten.Else = rem
			remaining = append(remaining, rewritten)
		case *ast.ForEquation:
			rem, c := extractConnects(e.Eqs)
			connects = append(connects, c...)
			remaining = append(remaining, &ast.ForEquation{Index: e.Index, Range: e.Range, Eqs: rem, Pos: e.Pos})
		default:
			remaining = append(remaining, eq)
		}
	}
	return remaining, connects
}

// unionFind is a small union-by-name structure over connector prefix
// strings, path-compressing on find.
type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string)}
}

func (u *unionFind) find(x string) string {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
		return x
	}
	if u.parent[x] != x {
		u.parent[x] = u.find(u.parent[x])
	}
	return u.parent[x]
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}
