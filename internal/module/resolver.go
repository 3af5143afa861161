package module

import (
	"fmt"
	"strings"

	"github.com/go-modelica/moc/internal/ast"
	"github.com/go-modelica/moc/internal/errors"
)

// Resolver answers name lookups against a Table using the five-step
// cascade from §4.2: local members, extends chain (depth-first), then
// enclosing scopes, then imports (local first, then each enclosing
// class's), then the root table. The first match wins.
type Resolver struct {
	table *Table
}

// NewResolver creates a Resolver over an already-populated Table.
func NewResolver(table *Table) *Resolver {
	return &Resolver{table: table}
}

// Resolve looks up identifier name as seen from inside cls, whose
// lexical enclosing classes are enclosing (innermost first, i.e.
// enclosing[0] is cls's immediate parent).
func (r *Resolver) Resolve(name string, cls *ast.ClassDefinition, enclosing []*ast.ClassDefinition) (*ast.ClassDefinition, error) {
	if strings.HasPrefix(name, ".") {
		return r.resolveRoot(strings.TrimPrefix(name, "."))
	}

	head, rest := splitFirst(name)

	// Step 1: nested classes of cls.
	if nested, ok := cls.NestedByName(head); ok {
		return r.descend(nested, rest)
	}

	// Step 2: extends chain, depth-first, left-to-right. A cyclic
	// extends chain is reported even if a later step would otherwise
	// have resolved the name, since the cycle itself is always an error.
	found, err := r.resolveInExtends(head, rest, cls, map[string]bool{})
	if err != nil {
		return nil, err
	}
	if found != nil {
		return found, nil
	}

	// Step 3: enclosing class scopes, outermost last (i.e. try nearest first).
	for _, enc := range enclosing {
		if nested, ok := enc.NestedByName(head); ok {
			return r.descend(nested, rest)
		}
	}

	// Step 4: local imports of cls, then of each enclosing class.
	scopes := append([]*ast.ClassDefinition{cls}, enclosing...)
	for _, sc := range scopes {
		if found, ok := r.resolveImport(name, sc); ok {
			return found, nil
		}
	}

	// Step 5: root class table, treating name as a top-level name.
	return r.resolveRoot(name)
}

func (r *Resolver) descend(cls *ast.ClassDefinition, rest string) (*ast.ClassDefinition, error) {
	if rest == "" {
		return cls, nil
	}
	head, tail := splitFirst(rest)
	if nested, ok := cls.NestedByName(head); ok {
		return r.descend(nested, tail)
	}
	return nil, r.unknownError(rest)
}

// resolveInExtends searches cls's extends chain depth-first,
// left-to-right, guarding against inheritance cycles with visited.
func (r *Resolver) resolveInExtends(head, rest string, cls *ast.ClassDefinition, visited map[string]bool) (*ast.ClassDefinition, error) {
	for _, ext := range cls.Extends {
		if visited[ext.TypeName] {
			return nil, errors.Wrap(errors.New(errors.RES002, &ast.Span{Start: ext.Pos},
				fmt.Sprintf("cyclic inheritance detected at %q", ext.TypeName)))
		}
		base, ok := r.table.Lookup(ext.TypeName)
		if !ok {
			continue
		}
		if nested, ok := base.NestedByName(head); ok {
			return r.descend(nested, rest)
		}
		visited[ext.TypeName] = true
		if found, err := r.resolveInExtends(head, rest, base, visited); err == nil && found != nil {
			return found, nil
		} else if err != nil {
			return nil, err
		}
		delete(visited, ext.TypeName)
	}
	return nil, nil
}

// resolveImport checks whether name is reachable through one of cls's
// import clauses (§4.2: qualified / rename / wildcard / selective).
func (r *Resolver) resolveImport(name string, cls *ast.ClassDefinition) (*ast.ClassDefinition, bool) {
	head, rest := splitFirst(name)
	for _, imp := range cls.Imports {
		switch imp.Kind {
		case ast.ImportRename:
			if imp.Alias == head {
				if cls, ok := r.table.Lookup(imp.Name); ok {
					if rest == "" {
						return cls, true
					}
					if found, err := r.descend(cls, rest); err == nil {
						return found, true
					}
				}
			}
		case ast.ImportQualified:
			last := lastComponent(imp.Name)
			if last == head {
				if cls, ok := r.table.Lookup(imp.Name); ok {
					if rest == "" {
						return cls, true
					}
					if found, err := r.descend(cls, rest); err == nil {
						return found, true
					}
				}
			}
		case ast.ImportSelective:
			for _, n := range imp.Names {
				if n == head {
					if cls, ok := r.table.Lookup(imp.Name + "." + n); ok {
						if rest == "" {
							return cls, true
						}
						if found, err := r.descend(cls, rest); err == nil {
							return found, true
						}
					}
				}
			}
		case ast.ImportUnqualified:
			if imp.Wildcard {
				if cls, ok := r.table.Lookup(imp.Name + "." + head); ok {
					if rest == "" {
						return cls, true
					}
					if found, err := r.descend(cls, rest); err == nil {
						return found, true
					}
				}
			}
		}
	}
	return nil, false
}

func (r *Resolver) resolveRoot(name string) (*ast.ClassDefinition, error) {
	if cls, ok := r.table.Lookup(name); ok {
		return cls, nil
	}
	return nil, r.unknownError(name)
}

func (r *Resolver) unknownError(name string) error {
	return errors.Wrap(errors.New(errors.RES001, nil, fmt.Sprintf("unknown identifier %q", name)).WithData("name", name))
}

// splitFirst splits a dotted name into its first component and the
// remainder (without the leading dot); rest is "" when name has no dot.
func splitFirst(name string) (head, rest string) {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

func lastComponent(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
