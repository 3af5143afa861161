package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const pendulumSource = `model Pendulum
  parameter Real g = 9.81;
  Real theta;
  Real omega;
equation
  der(theta) = omega;
  der(omega) = -g*theta;
end Pendulum;`

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	runErr := fn()
	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String(), runErr
}

func TestRunBuildEmitsJSONDocument(t *testing.T) {
	path := writeSource(t, "Pendulum.mo", pendulumSource)

	buildRoot, buildOut, buildTemplate, buildVerbose = "", "json", "", false
	buildIncludes = nil

	out, err := captureStdout(t, func() error { return runBuild(buildCmd, []string{path}) })
	if err != nil {
		t.Fatalf("runBuild failed: %v\noutput: %s", err, out)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("stdout is not valid JSON: %v\noutput: %s", err, out)
	}
	if doc["name"] != "Pendulum" {
		t.Errorf("expected name Pendulum, got %v", doc["name"])
	}
	if _, ok := doc["states"]; !ok {
		t.Errorf("expected a states key in the document, got %v", doc)
	}
}

func TestRunBuildRejectsUnknownOutputFormat(t *testing.T) {
	path := writeSource(t, "Pendulum.mo", pendulumSource)

	buildRoot, buildOut, buildTemplate, buildVerbose = "", "xml", "", false
	buildIncludes = nil

	_, err := captureStdout(t, func() error { return runBuild(buildCmd, []string{path}) })
	if err == nil {
		t.Fatalf("expected an error for an unknown --out format")
	}
}

func TestRunBuildFailsOnParseError(t *testing.T) {
	path := writeSource(t, "Broken.mo", `model Broken
  Real x
equation
  der(x) = 1;
end Broken;`)

	buildRoot, buildOut, buildTemplate, buildVerbose = "", "json", "", false
	buildIncludes = nil

	_, err := captureStdout(t, func() error { return runBuild(buildCmd, []string{path}) })
	if err == nil {
		t.Fatalf("expected a parse error for a missing semicolon")
	}
}

func TestRunBuildDefaultsRootToSoleTopLevelClass(t *testing.T) {
	path := writeSource(t, "Pendulum.mo", pendulumSource)

	buildRoot, buildOut, buildTemplate, buildVerbose = "", "json", "", false
	buildIncludes = nil

	out, err := captureStdout(t, func() error { return runBuild(buildCmd, []string{path}) })
	if err != nil {
		t.Fatalf("runBuild failed: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, `"Pendulum"`) {
		t.Errorf("expected the resolved root class name in the document, got %s", out)
	}
}
