// Package config reads the per-project `.moc.yaml` manifest: the
// MODELICAPATH search roots, the default root class, and the default
// output selector, read once per CLI invocation and never mutated
// afterward (§5's single-threaded-per-request model applies here too).
//
// Grounded on the teacher's internal/eval_harness.LoadSpec: a plain
// exported struct with `yaml:"..."` tags, os.ReadFile + yaml.Unmarshal,
// and field validation that returns a wrapped error rather than a
// zero-value manifest.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects how `moc build` renders its result.
type OutputFormat string

const (
	OutputJSON     OutputFormat = "json"
	OutputTemplate OutputFormat = "template"
)

// Manifest is the `.moc.yaml` project file shape.
type Manifest struct {
	// SearchRoots are additional MODELICAPATH entries, checked before
	// MOC_MODELICAPATH (§6 "MODELICAPATH").
	SearchRoots []string `yaml:"search_roots"`
	// RootClass is the default class `moc build`/`moc check` translate
	// when --root is not given on the command line.
	RootClass string `yaml:"root_class"`
	// Output is the default --out selector.
	Output OutputFormat `yaml:"output"`
	// Template is the default --template path, used when Output is
	// OutputTemplate and --template isn't given explicitly.
	Template string `yaml:"template"`
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if m.Output == "" {
		m.Output = OutputJSON
	}
	if m.Output != OutputJSON && m.Output != OutputTemplate {
		return nil, fmt.Errorf("config: %s: unknown output format %q", path, m.Output)
	}
	if m.Output == OutputTemplate && m.Template == "" {
		return nil, fmt.Errorf("config: %s: output=template requires a template path", path)
	}

	return &m, nil
}
