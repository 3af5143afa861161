package flatten

import (
	"testing"

	"github.com/go-modelica/moc/internal/ast"
)

func TestFlattenTreatsEnumerationAsAtomicType(t *testing.T) {
	tbl, sink := loadSources(t, `type Colors = enumeration(Red, Green, Blue);

model Uses
  Colors c;
equation
  c = Colors.Red;
end Uses;`)

	flat, err := New(tbl, sink).Flatten("Uses")
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	comp, ok := flat.Components["c"]
	if !ok {
		t.Fatalf("expected component %q, got %v", "c", flat.Order)
	}
	if comp.TypeName != "Colors" {
		t.Fatalf("expected c's TypeName to stay %q (atomic, not expanded), got %q", "Colors", comp.TypeName)
	}

	var foundAssign bool
	for _, eq := range flat.Equations {
		se, ok := eq.(*ast.SimpleEquation)
		if !ok {
			continue
		}
		ref, ok := se.Rhs.(*ast.ComponentReference)
		if ok && len(ref.Parts) == 2 && ref.Parts[0].Name == "Colors" && ref.Parts[1].Name == "Red" {
			foundAssign = true
		}
	}
	if !foundAssign {
		t.Fatalf("expected c = Colors.Red to survive flattening verbatim, got %#v", flat.Equations)
	}
}
