package cmd

import (
	"testing"
)

func TestRunCheckSucceedsOnWellFormedModel(t *testing.T) {
	path := writeSource(t, "Pendulum.mo", pendulumSource)

	checkRoot, checkVerbose = "", false
	checkIncludes = nil

	out, err := captureStdout(t, func() error { return runCheck(checkCmd, []string{path}) })
	if err != nil {
		t.Fatalf("runCheck failed: %v\noutput: %s", err, out)
	}
	if out == "" {
		t.Errorf("expected a confirmation line on stdout")
	}
}

func TestRunCheckFailsOnUnknownRoot(t *testing.T) {
	path := writeSource(t, "Pendulum.mo", pendulumSource)

	checkRoot, checkVerbose = "NotAClass", false
	checkIncludes = nil

	_, err := captureStdout(t, func() error { return runCheck(checkCmd, []string{path}) })
	if err == nil {
		t.Fatalf("expected an error for an unresolvable root class")
	}
}
