package flatten

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Flattening the same root against the same table must produce
// identical output on every run: same component order, same equation
// order, same expanded names. A fresh Flattener is used each time
// since a Flattener carries its own Mangler state.
func TestFlattenIsDeterministicAcrossRuns(t *testing.T) {
	tbl, sink := loadSources(t, `connector Pin
  flow Real i;
  Real v;
end Pin;

model Resistor
  parameter Real R = 1.0;
  Pin p;
  Pin n;
equation
  n.v - p.v = p.i * R;
  p.i + n.i = 0;
end Resistor;

model Circuit
  Resistor r1;
  Resistor r2;
equation
  connect(r1.n, r2.p);
end Circuit;`)

	first, err := New(tbl, sink).Flatten("Circuit")
	if err != nil {
		t.Fatalf("first Flatten: %v", err)
	}
	second, err := New(tbl, sink).Flatten("Circuit")
	if err != nil {
		t.Fatalf("second Flatten: %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Flatten is not deterministic (-first +second):\n%s", diff)
	}
	if len(first.Order) == 0 {
		t.Fatalf("expected a non-empty component order to compare")
	}
}
