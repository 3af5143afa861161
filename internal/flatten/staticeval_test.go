package flatten

import (
	"testing"

	"github.com/go-modelica/moc/internal/ast"
)

func TestFlattenFoldsStaticSizeCall(t *testing.T) {
	tbl, sink := loadSources(t, `model Sized
  Real x[3];
  Real y;
equation
  if size(x, 1) == 3 then
    y = 1.0;
  else
    y = 0.0;
  end if;
end Sized;`)

	flat, err := New(tbl, sink).Flatten("Sized")
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	for _, eq := range flat.Equations {
		if _, ok := eq.(*ast.IfEquation); ok {
			t.Fatalf("expected size(x,1)==3 to fold statically, if-equation still present: %#v", eq)
		}
	}
	var foundYAssign bool
	for _, eq := range flat.Equations {
		se, ok := eq.(*ast.SimpleEquation)
		if !ok {
			continue
		}
		lit, ok := se.Rhs.(*ast.RealLit)
		if ok && lit.Value == 1.0 {
			foundYAssign = true
		}
	}
	if !foundYAssign {
		t.Fatalf("expected the true branch (y=1.0) to be selected, got %#v", flat.Equations)
	}
}

func TestFlattenLeavesDynamicSizeCallUnfolded(t *testing.T) {
	tbl, sink := loadSources(t, `model Sized
  Real x[3];
  Real y;
  Integer n;
equation
  n = 3;
  if size(x, n) == 3 then
    y = 1.0;
  else
    y = 0.0;
  end if;
end Sized;`)

	flat, err := New(tbl, sink).Flatten("Sized")
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	var foundIf bool
	for _, eq := range flat.Equations {
		if _, ok := eq.(*ast.IfEquation); ok {
			foundIf = true
		}
	}
	if !foundIf {
		t.Fatalf("expected size(x,n) with non-constant n to stay dynamic, got %#v", flat.Equations)
	}
}
