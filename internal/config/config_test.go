package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ".moc.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadDefaultsOutputToJSON(t *testing.T) {
	path := writeManifest(t, `
search_roots:
  - ./lib
  - ./vendor/modelica
root_class: Pendulum
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Output != OutputJSON {
		t.Errorf("expected default output json, got %q", m.Output)
	}
	if m.RootClass != "Pendulum" {
		t.Errorf("expected root_class Pendulum, got %q", m.RootClass)
	}
	if len(m.SearchRoots) != 2 {
		t.Errorf("expected 2 search roots, got %d", len(m.SearchRoots))
	}
}

func TestLoadRejectsUnknownOutputFormat(t *testing.T) {
	path := writeManifest(t, `output: xml`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for an unknown output format")
	}
}

func TestLoadRequiresTemplatePathForTemplateOutput(t *testing.T) {
	path := writeManifest(t, `output: template`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error when output=template has no template path")
	}

	path = writeManifest(t, `
output: template
template: casadi.tmpl
`)
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Template != "casadi.tmpl" {
		t.Errorf("expected template casadi.tmpl, got %q", m.Template)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing manifest file")
	}
}
