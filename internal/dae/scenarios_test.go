package dae

import "testing"

// These scenarios mirror the concrete end-to-end walkthroughs used to
// validate the translator against real models: an integrator, a
// parameterized motor, hierarchical composition, static-conditional
// reduction, an extends chain with a modifier override, and a
// connect expansion.

func TestScenarioIntegrator(t *testing.T) {
	d, _ := buildDae(t, "Integrator", `model Integrator
  Real x;
  Real y;
equation
  der(x) = 1.0;
  der(y) = x;
end Integrator;`)

	if !hasVar(d.X, "x") || !hasVar(d.X, "y") {
		t.Fatalf("expected x={x,y}, got %v", d.X)
	}
	if !hasVar(d.XDot, "der_x") || !hasVar(d.XDot, "der_y") {
		t.Fatalf("expected x_dot={der_x,der_y}, got %v", d.XDot)
	}
	if len(d.Fx) != 2 {
		t.Fatalf("expected 2 residuals in fx, got %d", len(d.Fx))
	}
	if d.Balance.Status != Balanced || d.Balance.Delta != 0 {
		t.Errorf("expected balance delta 0, got %s (delta %d)", d.Balance.Status, d.Balance.Delta)
	}
}

func TestScenarioMotorWithParameterAndInput(t *testing.T) {
	d, _ := buildDae(t, "Motor", `model Motor
  parameter Real tau=1;
  input Real omega_ref;
  Real omega;
equation
  der(omega) = (1/tau)*(omega_ref - omega);
end Motor;`)

	if !hasVar(d.P, "tau") {
		t.Errorf("expected p={tau}, got %v", d.P)
	}
	if !hasVar(d.U, "omega_ref") {
		t.Errorf("expected u={omega_ref}, got %v", d.U)
	}
	if !hasVar(d.X, "omega") {
		t.Errorf("expected x={omega}, got %v", d.X)
	}
	if !hasVar(d.XDot, "der_omega") {
		t.Errorf("expected x_dot={der_omega}, got %v", d.XDot)
	}
	if len(d.Fx) != 1 {
		t.Fatalf("expected one equation in fx, got %d", len(d.Fx))
	}
	if d.Balance.Status != Balanced || d.Balance.Delta != 0 {
		t.Errorf("expected balance delta 0, got %s (delta %d)", d.Balance.Status, d.Balance.Delta)
	}
}

func TestScenarioHierarchicalComposition(t *testing.T) {
	d, _ := buildDae(t, "Quadrotor", `model Motor
  parameter Real tau=1;
  input Real omega_ref;
  Real omega;
equation
  der(omega) = (1/tau)*(omega_ref - omega);
end Motor;

model Quadrotor
  Motor m1;
  Motor m2;
equation
  m1.omega_ref = time;
  m2.omega_ref = time;
end Quadrotor;`)

	for _, name := range []string{"m1_tau", "m2_tau"} {
		if !hasVar(d.P, name) {
			t.Errorf("expected parameter %q, got p=%v", name, d.P)
		}
	}
	// At the root class, a sub-instance's input is no longer a
	// root-level input: it is driven by an equation, so it lands in y.
	for _, name := range []string{"m1_omega_ref", "m2_omega_ref"} {
		if !hasVar(d.Y, name) {
			t.Errorf("expected algebraic %q, got y=%v u=%v", name, d.Y, d.U)
		}
	}
	for _, name := range []string{"m1_omega", "m2_omega"} {
		if !hasVar(d.X, name) {
			t.Errorf("expected state %q, got x=%v", name, d.X)
		}
	}
	if len(d.Fx) != 4 {
		t.Fatalf("expected 4 equations total (2 der + 2 driving), got %d", len(d.Fx))
	}
	if d.Balance.Status != Balanced {
		t.Errorf("expected a balanced system, got %s (delta %d)", d.Balance.Status, d.Balance.Delta)
	}
}

func TestScenarioStaticConditionalReduction(t *testing.T) {
	d, _ := buildDae(t, "M", `model M
  parameter Integer n=0;
  input Real u;
  output Real y;
equation
  if n==0 then
    y=u;
  else
    y=2*u;
  end if;
end M;`)

	if len(d.Fx) != 1 {
		t.Fatalf("expected the static conditional folded to 1 equation, got %d", len(d.Fx))
	}
	if !hasVar(d.Y, "y") || len(d.Y) != 1 {
		t.Errorf("expected y={y}, got %v", d.Y)
	}
	if !hasVar(d.U, "u") || len(d.U) != 1 {
		t.Errorf("expected u={u}, got %v", d.U)
	}
	if d.Balance.Status != Balanced || d.Balance.Delta != 0 {
		t.Errorf("expected balance delta 0 (inputs don't count as unknowns), got %s (delta %d)", d.Balance.Status, d.Balance.Delta)
	}
}

func TestScenarioExtendsChainWithModifier(t *testing.T) {
	d, _ := buildDae(t, "Derived", `model Base
  parameter Real k=1;
  Real v;
equation
  der(v) = k*v;
end Base;

model Derived
  extends Base(k=2);
end Derived;`)

	if !hasVar(d.P, "k") {
		t.Fatalf("expected p={k}, got %v", d.P)
	}
	if !hasVar(d.X, "v") || len(d.X) != 1 {
		t.Fatalf("expected x={v}, got %v", d.X)
	}
	if len(d.Fx) != 1 {
		t.Fatalf("expected one equation, got %d", len(d.Fx))
	}
}

func TestScenarioConnectFlowAndPotential(t *testing.T) {
	d, _ := buildDae(t, "Root", `connector Pin
  flow Real i;
  Real v;
end Pin;

model Root
  Pin a;
  Pin b;
equation
  connect(a,b);
end Root;`)

	if !hasVar(d.Y, "a_v") && !hasVar(d.Y, "b_v") {
		t.Errorf("expected the potential equality to leave a_v/b_v as algebraic unknowns, got y=%v", d.Y)
	}
	if len(d.Fx) != 2 {
		t.Fatalf("expected connect to expand into 2 equations (flow sum, potential equality), got %d", len(d.Fx))
	}
}
