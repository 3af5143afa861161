package module

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-modelica/moc/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadFileRegistersTopLevelClasses(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Pendulum.mo"), `model Pendulum
  Real theta;
equation
  der(theta) = 0;
end Pendulum;`)

	sink := errors.NewSink()
	loader := NewLoader([]string{dir}, sink)
	if err := loader.LoadFile(filepath.Join(dir, "Pendulum.mo")); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Errors())
	}
	cls, ok := loader.Table().Lookup("Pendulum")
	if !ok {
		t.Fatalf("expected Pendulum to be registered")
	}
	if cls.Name != "Pendulum" {
		t.Errorf("got %s", cls.Name)
	}
}

func TestLoadFileHonorsWithinClause(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Gain.mo"), `within Modelica.Blocks;
block Gain
  input Real u;
  output Real y;
equation
  y = u;
end Gain;`)

	sink := errors.NewSink()
	loader := NewLoader([]string{dir}, sink)
	if err := loader.LoadFile(filepath.Join(dir, "Gain.mo")); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if _, ok := loader.Table().Lookup("Modelica.Blocks.Gain"); !ok {
		t.Fatalf("expected Modelica.Blocks.Gain to be registered, got names: %v", loader.Table().Names())
	}
}

func TestLoadPackageDirUsesPackageOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.mo"), `package Blocks
end Blocks;`)
	writeFile(t, filepath.Join(dir, "package.order"), "Sum\nGain\n")
	writeFile(t, filepath.Join(dir, "Gain.mo"), `block Gain
  input Real u;
  output Real y;
equation
  y = u;
end Gain;`)
	writeFile(t, filepath.Join(dir, "Sum.mo"), `block Sum
  input Real u1;
  input Real u2;
  output Real y;
equation
  y = u1 + u2;
end Sum;`)

	sink := errors.NewSink()
	loader := NewLoader([]string{dir}, sink)
	if err := loader.LoadPackageDir(dir); err != nil {
		t.Fatalf("LoadPackageDir: %v", err)
	}
	pkg, ok := loader.Table().Lookup("Blocks")
	if !ok {
		t.Fatalf("expected Blocks package registered")
	}
	if len(pkg.Nested) != 2 {
		t.Fatalf("expected 2 nested classes, got %d", len(pkg.Nested))
	}
	if pkg.Nested[0].Name != "Sum" || pkg.Nested[1].Name != "Gain" {
		t.Errorf("package.order not honored, got order %s, %s", pkg.Nested[0].Name, pkg.Nested[1].Name)
	}
}

func TestLoadPackageDirAlphabeticalWithoutOrderFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.mo"), `package P
end P;`)
	writeFile(t, filepath.Join(dir, "Zeta.mo"), `model Zeta
end Zeta;`)
	writeFile(t, filepath.Join(dir, "Alpha.mo"), `model Alpha
end Alpha;`)

	sink := errors.NewSink()
	loader := NewLoader([]string{dir}, sink)
	if err := loader.LoadPackageDir(dir); err != nil {
		t.Fatalf("LoadPackageDir: %v", err)
	}
	pkg, _ := loader.Table().Lookup("P")
	if len(pkg.Nested) != 2 || pkg.Nested[0].Name != "Alpha" || pkg.Nested[1].Name != "Zeta" {
		t.Fatalf("expected alphabetical order Alpha, Zeta; got %#v", pkg.Nested)
	}
}

func TestLoadRootFindsFilesAndPackages(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Standalone.mo"), `model Standalone
end Standalone;`)
	writeFile(t, filepath.Join(root, "Lib", "package.mo"), `package Lib
end Lib;`)
	writeFile(t, filepath.Join(root, "Lib", "Thing.mo"), `model Thing
end Thing;`)

	sink := errors.NewSink()
	loader := NewLoader([]string{root}, sink)
	if err := loader.LoadRoot(root); err != nil {
		t.Fatalf("LoadRoot: %v", err)
	}
	if _, ok := loader.Table().Lookup("Standalone"); !ok {
		t.Errorf("expected Standalone registered")
	}
	lib, ok := loader.Table().Lookup("Lib")
	if !ok || len(lib.Nested) != 1 || lib.Nested[0].Name != "Thing" {
		t.Fatalf("expected Lib package with nested Thing, got %#v", lib)
	}
}

func TestDuplicateClassReportsResolveError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "A.mo"), `model Dup
end Dup;`)
	writeFile(t, filepath.Join(dir, "B.mo"), `model Dup
end Dup;`)

	sink := errors.NewSink()
	loader := NewLoader([]string{dir}, sink)
	_ = loader.LoadFile(filepath.Join(dir, "A.mo"))
	_ = loader.LoadFile(filepath.Join(dir, "B.mo"))

	if !sink.HasErrors() {
		t.Fatalf("expected a duplicate-definition diagnostic")
	}
	found := false
	for _, rep := range sink.Errors() {
		if rep.Code == errors.RES005 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected RES005 among reported errors, got %v", sink.Errors())
	}
}
