package flatten

import "testing"

// Import clauses must actually participate in name resolution during
// flattening, not just parse into ast.ImportClause and then sit unused:
// both an extends base class and a component's declared type can be
// reached only through an import, with no directly-qualified spelling
// anywhere in the source.
func TestFlattenResolvesComponentTypeThroughQualifiedImport(t *testing.T) {
	tbl, sink := loadSources(t,
		`within Electrical;
connector Pin
  flow Real i;
  Real v;
end Pin;`,
		`model Root
  import Electrical.Pin;
  Pin a;
  Pin b;
equation
  connect(a, b);
end Root;`)

	flat, err := New(tbl, sink).Flatten("Root")
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if !hasComponent(flat, "a_v") || !hasComponent(flat, "b_v") {
		t.Fatalf("expected a_v/b_v flattened from the imported Pin connector, got %v", flat.Order)
	}
}

func TestFlattenResolvesExtendsBaseThroughRenamedImport(t *testing.T) {
	tbl, sink := loadSources(t,
		`within Electrical;
model Resistor
  parameter Real R = 1.0;
  Real v;
  Real i;
equation
  v = R*i;
end Resistor;`,
		`model Root
  import Res = Electrical.Resistor;
  extends Res(R = 2.0);
end Root;`)

	flat, err := New(tbl, sink).Flatten("Root")
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if !hasComponent(flat, "v") || !hasComponent(flat, "i") {
		t.Fatalf("expected Resistor's components inherited through the renamed import, got %v", flat.Order)
	}
}

func hasComponent(flat *FlatClass, name string) bool {
	_, ok := flat.Components[name]
	return ok
}
