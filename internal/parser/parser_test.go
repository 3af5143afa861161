package parser

import (
	"testing"

	"github.com/go-modelica/moc/internal/ast"
	"github.com/go-modelica/moc/internal/lexer"
)

func mustParse(t *testing.T, src string) *ast.StoredDefinition {
	t.Helper()
	p := New(lexer.New(src, "test.mo"), "test.mo")
	sd := p.Parse()
	if p.Sink().HasErrors() {
		t.Fatalf("unexpected parse errors: %v", p.Sink().Errors())
	}
	return sd
}

func TestParseSimpleModel(t *testing.T) {
	sd := mustParse(t, `model Pendulum
  parameter Real L = 1.0 "length";
  Real theta(start = 0.5);
  Real omega;
equation
  der(theta) = omega;
  der(omega) = -9.81 / L * sin(theta);
end Pendulum;`)

	if len(sd.Classes) != 1 {
		t.Fatalf("expected 1 class, got %d", len(sd.Classes))
	}
	cls := sd.Classes[0]
	if cls.Name != "Pendulum" || cls.Kind != ast.KindModel {
		t.Fatalf("got %s %s", cls.Kind, cls.Name)
	}
	if len(cls.Components) != 3 {
		t.Fatalf("expected 3 components, got %d", len(cls.Components))
	}
	if cls.Components[0].Variability != ast.Parameter {
		t.Errorf("L should be parameter")
	}
	if len(cls.Equations) != 2 {
		t.Fatalf("expected 2 equations, got %d", len(cls.Equations))
	}
	eq, ok := cls.Equations[0].(*ast.SimpleEquation)
	if !ok {
		t.Fatalf("expected SimpleEquation, got %T", cls.Equations[0])
	}
	call, ok := eq.Lhs.(*ast.CallExpr)
	if !ok || call.Func != "der" {
		t.Fatalf("expected der(...) on lhs, got %#v", eq.Lhs)
	}
}

func TestParseExtendsAndModifiers(t *testing.T) {
	sd := mustParse(t, `model Resistor
  extends TwoPin(R(min=0) = 1.0);
equation
  v = i * R;
end Resistor;`)

	cls := sd.Classes[0]
	if len(cls.Extends) != 1 || cls.Extends[0].TypeName != "TwoPin" {
		t.Fatalf("got %#v", cls.Extends)
	}
	entry, ok := cls.Extends[0].Modifier.Lookup("R")
	if !ok {
		t.Fatalf("expected modifier entry for R")
	}
	if entry.Nested == nil {
		t.Fatalf("expected nested modifier (min=0)")
	}
	if entry.Value == nil {
		t.Fatalf("expected R = 1.0 binding")
	}
}

func TestParseConnectEquation(t *testing.T) {
	sd := mustParse(t, `model Circuit
  Pin a;
  Pin b;
equation
  connect(a, b);
end Circuit;`)

	cls := sd.Classes[0]
	ceq, ok := cls.Equations[0].(*ast.ConnectEquation)
	if !ok {
		t.Fatalf("expected ConnectEquation, got %T", cls.Equations[0])
	}
	if ceq.Lhs.Name() != "a" || ceq.Rhs.Name() != "b" {
		t.Fatalf("got %s, %s", ceq.Lhs.Name(), ceq.Rhs.Name())
	}
}

func TestParseIfAndForEquations(t *testing.T) {
	sd := mustParse(t, `model M
  Real x[3];
  Real y;
equation
  for i in 1:3 loop
    x[i] = i;
  end for;
  if y > 0 then
    y = 1;
  else
    y = -1;
  end if;
end M;`)

	cls := sd.Classes[0]
	forEq, ok := cls.Equations[0].(*ast.ForEquation)
	if !ok {
		t.Fatalf("expected ForEquation, got %T", cls.Equations[0])
	}
	if forEq.Index != "i" {
		t.Errorf("got index %q", forEq.Index)
	}
	ifEq, ok := cls.Equations[1].(*ast.IfEquation)
	if !ok {
		t.Fatalf("expected IfEquation, got %T", cls.Equations[1])
	}
	if len(ifEq.Branches) != 1 || len(ifEq.Else) != 1 {
		t.Fatalf("got %d branches, %d else", len(ifEq.Branches), len(ifEq.Else))
	}
}

func TestParseAlgorithmSection(t *testing.T) {
	sd := mustParse(t, `function Square
  input Real x;
  output Real y;
algorithm
  y := x * x;
end Square;`)

	cls := sd.Classes[0]
	if cls.Kind != ast.KindFunction {
		t.Fatalf("expected function kind")
	}
	if len(cls.Algorithms) != 1 || len(cls.Algorithms[0].Stmts) != 1 {
		t.Fatalf("expected 1 algorithm with 1 statement")
	}
	assign, ok := cls.Algorithms[0].Stmts[0].(*ast.AssignStmt)
	if !ok {
		t.Fatalf("expected AssignStmt, got %T", cls.Algorithms[0].Stmts[0])
	}
	if assign.Lhs.Name() == "" {
		// Lhs is a ComponentReference in this case; sanity check via type assert.
		if _, ok := assign.Lhs.(*ast.ComponentReference); !ok {
			t.Fatalf("expected ComponentReference lhs, got %T", assign.Lhs)
		}
	}
}

func TestParseImportForms(t *testing.T) {
	sd := mustParse(t, `package P
  import Modelica.Blocks.Interfaces;
  import SI = Modelica.SIunits;
  import Modelica.Constants.*;
  import Modelica.Math.{sin, cos};
end P;`)

	cls := sd.Classes[0]
	if len(cls.Imports) != 4 {
		t.Fatalf("expected 4 imports, got %d", len(cls.Imports))
	}
	if cls.Imports[0].Kind != ast.ImportQualified {
		t.Errorf("import 0 kind wrong")
	}
	if cls.Imports[1].Kind != ast.ImportRename || cls.Imports[1].Alias != "SI" {
		t.Errorf("import 1 wrong: %#v", cls.Imports[1])
	}
	if cls.Imports[2].Kind != ast.ImportUnqualified || !cls.Imports[2].Wildcard {
		t.Errorf("import 2 wrong: %#v", cls.Imports[2])
	}
	if cls.Imports[3].Kind != ast.ImportSelective || len(cls.Imports[3].Names) != 2 {
		t.Errorf("import 3 wrong: %#v", cls.Imports[3])
	}
}

func TestParseShortClassDefinition(t *testing.T) {
	sd := mustParse(t, `type Voltage = Real(unit = "V");`)
	cls := sd.Classes[0]
	if cls.Kind != ast.KindType || len(cls.Extends) != 1 || cls.Extends[0].TypeName != "Real" {
		t.Fatalf("got %#v", cls)
	}
}

func TestParseWithinClause(t *testing.T) {
	sd := mustParse(t, `within Modelica.Blocks;
block Gain
  input Real u;
  output Real y;
equation
  y = u;
end Gain;`)

	if !sd.WithinSet || sd.Within != "Modelica.Blocks" {
		t.Fatalf("got %#v", sd)
	}
}

func TestParseNestedClassAndReplaceable(t *testing.T) {
	sd := mustParse(t, `model M
  replaceable model Medium = BaseMedium;
  record Data
    Real a;
  end Data;
equation
end M;`)

	cls := sd.Classes[0]
	if len(cls.Nested) != 2 {
		t.Fatalf("expected 2 nested classes, got %d", len(cls.Nested))
	}
	if cls.Nested[0].Name != "Medium" || len(cls.Nested[0].Extends) != 1 {
		t.Errorf("medium nested class mismatch: %#v", cls.Nested[0])
	}
	if cls.Nested[1].Kind != ast.KindRecord {
		t.Errorf("expected record kind for Data")
	}
}
