package cmd

import "testing"

func TestRunInspectFailsOnUnresolvableRoot(t *testing.T) {
	path := writeSource(t, "Pendulum.mo", pendulumSource)

	inspectRoot = "NotAClass"
	inspectIncludes = nil

	_, err := captureStdout(t, func() error { return runInspect(inspectCmd, []string{path}) })
	if err == nil {
		t.Fatalf("expected an error for an unresolvable root class")
	}
}
