package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-modelica/moc/internal/config"
	"github.com/go-modelica/moc/internal/dae"
	"github.com/go-modelica/moc/internal/errors"
	"github.com/go-modelica/moc/internal/flatten"
	"github.com/go-modelica/moc/internal/module"
)

// sourceSet is the set of files one build/check invocation loads:
// the primary file (or package directory) plus any --include extras.
type sourceSet struct {
	primary  string
	includes []string
	root     string
	manifest *config.Manifest
}

func loadSourceSet(primary string, includes []string, root string) *sourceSet {
	set := &sourceSet{primary: primary, includes: includes, root: root}

	manifestDir := filepath.Dir(primary)
	if info, err := os.Stat(primary); err == nil && info.IsDir() {
		manifestDir = primary
	}
	if m, err := config.Load(filepath.Join(manifestDir, ".moc.yaml")); err == nil {
		set.manifest = m
	}
	return set
}

// loadTable loads the primary source plus includes into a class
// table, reporting load failures on sink. It returns the resolved
// root class name: --root if given, else the manifest's root_class,
// else the primary file's sole top-level class (an error when it
// declares none or more than one).
func loadTable(set *sourceSet, sink *errors.Sink) (*module.Table, string, error) {
	searchRoots := []string{filepath.Dir(set.primary)}
	if set.manifest != nil {
		searchRoots = append(searchRoots, set.manifest.SearchRoots...)
	}
	loader := module.NewLoader(searchRoots, sink)

	if err := loadSource(loader, set.primary); err != nil {
		return nil, "", err
	}
	for _, inc := range set.includes {
		if err := loadSource(loader, inc); err != nil {
			return nil, "", err
		}
	}

	root := set.root
	if root == "" && set.manifest != nil {
		root = set.manifest.RootClass
	}
	if root == "" {
		names := loader.Table().NamesFromOrigin(set.primary)
		if len(names) == 0 {
			return nil, "", fmt.Errorf("no classes found in %s; pass --root explicitly", set.primary)
		}
		if len(names) > 1 {
			return nil, "", fmt.Errorf("%s declares multiple top-level classes (%v); pass --root explicitly", set.primary, names)
		}
		root = names[0]
	}
	return loader.Table(), root, nil
}

func loadSource(loader *module.Loader, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if info.IsDir() {
		return loader.LoadPackageDir(path)
	}
	return loader.LoadFile(path)
}

// flattenAndBuild runs the parse(already done)->resolve->flatten->DAE
// pipeline and returns the resulting Dae. Name resolution (§4.2, extends
// bases and component types, imports included) happens inside Flatten
// itself via the Flattener's Resolver, not as a separate pass here.
// buildDae is false for `moc check`, which stops after flattening.
func flattenAndBuild(table *module.Table, rootClass string, sink *errors.Sink, buildDae bool) (*dae.Dae, *flatten.FlatClass, error) {
	flt := flatten.New(table, sink)
	flat, err := flt.Flatten(rootClass)
	if err != nil {
		return nil, nil, err
	}
	if sink.HasErrors() {
		return nil, flat, fmt.Errorf("flattening %s produced %d error(s)", rootClass, len(sink.Errors()))
	}
	if !buildDae {
		return nil, flat, nil
	}
	d, err := dae.New(sink).Build(flat)
	if err != nil {
		return nil, flat, err
	}
	if sink.HasErrors() {
		return nil, flat, fmt.Errorf("building the DAE for %s produced %d error(s)", rootClass, len(sink.Errors()))
	}
	return d, flat, nil
}

// printDiagnostics writes every collected report to out, coloring
// errors red and warnings yellow, in the order the sink collected
// them.
func printDiagnostics(sink *errors.Sink, out io.Writer) {
	for _, r := range sink.Reports() {
		label := red("error")
		if r.IsWarning() {
			label = yellow("warning")
		}
		loc := ""
		if r.Span != nil {
			loc = fmt.Sprintf("%s:%d:%d: ", r.Span.Start.File, r.Span.Start.Line, r.Span.Start.Column)
		}
		fmt.Fprintf(out, "%s%s %s: %s\n", loc, label, r.Code, r.Message)
		if r.Hint != "" {
			fmt.Fprintf(out, "  %s %s\n", dim("hint:"), r.Hint)
		}
	}
}
