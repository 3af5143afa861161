// Package module builds the global qualified-class-name table a
// flattener instantiates from: it loads single files and package
// directories (package.mo + package.order + subdirectories) from a
// MODELICAPATH-style list of search roots (§4.2), then answers name
// lookups through the five-step resolution cascade in resolver.go.
package module

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-modelica/moc/internal/ast"
	"github.com/go-modelica/moc/internal/errors"
	"github.com/go-modelica/moc/internal/lexer"
	"github.com/go-modelica/moc/internal/parser"
)

// Table is the global mapping from fully qualified class name
// (dot-separated) to its ClassDefinition, plus enough bookkeeping to
// report where each class came from.
type Table struct {
	mu      sync.RWMutex
	classes map[string]*ast.ClassDefinition
	origin  map[string]string // qualified name -> source file/dir
}

// NewTable creates an empty class table.
func NewTable() *Table {
	return &Table{
		classes: make(map[string]*ast.ClassDefinition),
		origin:  make(map[string]string),
	}
}

// Lookup returns the class registered under the exact qualified name.
func (t *Table) Lookup(qualifiedName string) (*ast.ClassDefinition, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cls, ok := t.classes[qualifiedName]
	return cls, ok
}

// Names returns every qualified name currently registered, sorted.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.classes))
	for name := range t.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NamesFromOrigin returns every qualified name whose class came from
// the given source path, sorted. Used by the CLI driver to default
// --root to "whatever the primary file declared" when the flag is
// omitted.
func (t *Table) NamesFromOrigin(origin string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0)
	for name, o := range t.origin {
		if o == origin {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (t *Table) insert(qualifiedName string, cls *ast.ClassDefinition, origin string) *errors.Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.classes[qualifiedName]; exists {
		return errors.New(errors.RES005, &ast.Span{Start: cls.Pos},
			fmt.Sprintf("class %q already registered (duplicate definition)", qualifiedName)).
			WithData("name", qualifiedName).WithData("origin", origin)
	}
	t.classes[qualifiedName] = cls
	t.origin[qualifiedName] = origin
	return nil
}

// Loader walks the filesystem, parses .mo files, and populates a
// Table. One Loader corresponds to one translation run.
type Loader struct {
	searchRoots []string
	table       *Table
	sink        *errors.Sink
}

// NewLoader creates a Loader over the given search roots (in priority
// order) plus any MOC_MODELICAPATH-separated roots from the
// environment, appended after the explicit ones.
func NewLoader(searchRoots []string, sink *errors.Sink) *Loader {
	roots := append([]string{}, searchRoots...)
	if env := os.Getenv("MOC_MODELICAPATH"); env != "" {
		roots = append(roots, strings.Split(env, string(os.PathListSeparator))...)
	}
	return &Loader{searchRoots: roots, table: NewTable(), sink: sink}
}

// Table returns the table this Loader has been populating.
func (l *Loader) Table() *Table { return l.table }

// LoadFile parses a single .mo file and registers each of its
// top-level classes under "within.ClassName" (or just "ClassName" when
// the file has no within clause).
func (l *Loader) LoadFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return l.reportLoadFailure(path, err)
	}
	sd, perr := l.parseSource(string(content), path)
	if perr != nil {
		return perr
	}
	prefix := ""
	if sd.WithinSet && sd.Within != "" {
		prefix = sd.Within + "."
	}
	for _, cls := range sd.Classes {
		l.register(prefix+cls.Name, cls, path)
	}
	return nil
}

// LoadPackageDir walks a package directory: package.mo supplies the
// package class itself, package.order (if present) fixes the order in
// which sibling files/subdirectories become nested classes of it,
// otherwise alphabetical order is used (§4.2 rule 2).
func (l *Loader) LoadPackageDir(dir string) error {
	packageFile := filepath.Join(dir, "package.mo")
	content, err := os.ReadFile(packageFile)
	if err != nil {
		return l.reportLoadFailure(packageFile, err)
	}
	sd, perr := l.parseSource(string(content), packageFile)
	if perr != nil {
		return perr
	}
	if len(sd.Classes) == 0 {
		return l.reportLoadFailure(packageFile, fmt.Errorf("package.mo defines no class"))
	}
	pkg := sd.Classes[0]

	members, err := l.orderedMembers(dir)
	if err != nil {
		return l.reportLoadFailure(dir, err)
	}
	for _, member := range members {
		childPath := filepath.Join(dir, member)
		if info, statErr := os.Stat(childPath); statErr == nil && info.IsDir() {
			if nested, nerr := l.loadPackageClass(childPath); nerr == nil {
				pkg.Nested = append(pkg.Nested, nested)
			}
			continue
		}
		moPath := childPath
		if !strings.HasSuffix(moPath, ".mo") {
			moPath += ".mo"
		}
		fileContent, rerr := os.ReadFile(moPath)
		if rerr != nil {
			continue
		}
		childSD, perr := l.parseSource(string(fileContent), moPath)
		if perr != nil {
			continue
		}
		pkg.Nested = append(pkg.Nested, childSD.Classes...)
	}

	l.register(pkg.Name, pkg, dir)
	return nil
}

// loadPackageClass loads a subdirectory as a nested package class
// without inserting it into the global table itself.
func (l *Loader) loadPackageClass(dir string) (*ast.ClassDefinition, error) {
	packageFile := filepath.Join(dir, "package.mo")
	content, err := os.ReadFile(packageFile)
	if err != nil {
		return nil, err
	}
	sd, perr := l.parseSource(string(content), packageFile)
	if perr != nil {
		return nil, perr
	}
	if len(sd.Classes) == 0 {
		return nil, fmt.Errorf("package.mo defines no class")
	}
	pkg := sd.Classes[0]
	members, err := l.orderedMembers(dir)
	if err != nil {
		return pkg, nil
	}
	for _, member := range members {
		childPath := filepath.Join(dir, member)
		if info, statErr := os.Stat(childPath); statErr == nil && info.IsDir() {
			if nested, nerr := l.loadPackageClass(childPath); nerr == nil {
				pkg.Nested = append(pkg.Nested, nested)
			}
			continue
		}
		moPath := childPath
		if !strings.HasSuffix(moPath, ".mo") {
			moPath += ".mo"
		}
		fileContent, rerr := os.ReadFile(moPath)
		if rerr != nil {
			continue
		}
		childSD, perr := l.parseSource(string(fileContent), moPath)
		if perr != nil {
			continue
		}
		pkg.Nested = append(pkg.Nested, childSD.Classes...)
	}
	return pkg, nil
}

// orderedMembers lists package.mo's siblings (files and subdirectories,
// excluding package.mo/package.order themselves), ordered by
// package.order when present, alphabetically otherwise.
func (l *Loader) orderedMembers(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if name == "package.mo" || name == "package.order" {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".mo"))
	}

	orderFile := filepath.Join(dir, "package.order")
	orderContent, err := os.ReadFile(orderFile)
	if err != nil {
		sort.Strings(names)
		return names, nil
	}

	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	var ordered []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(strings.NewReader(string(orderContent)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !present[line] || seen[line] {
			continue
		}
		ordered = append(ordered, line)
		seen[line] = true
	}
	// Anything not mentioned in package.order still loads, appended
	// alphabetically, so a stale package.order never silently hides a file.
	var rest []string
	for _, n := range names {
		if !seen[n] {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	return append(ordered, rest...), nil
}

// LoadRoot loads every top-level .mo file and package directory
// directly under root (non-recursive at this level; package
// subdirectories recurse through LoadPackageDir).
func (l *Loader) LoadRoot(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return l.reportLoadFailure(root, err)
	}
	for _, e := range entries {
		name := e.Name()
		full := filepath.Join(root, name)
		if e.IsDir() {
			if _, err := os.Stat(filepath.Join(full, "package.mo")); err == nil {
				if err := l.LoadPackageDir(full); err != nil {
					return err
				}
			}
			continue
		}
		if strings.HasSuffix(name, ".mo") && name != "package.mo" {
			if err := l.LoadFile(full); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Loader) parseSource(src, file string) (*ast.StoredDefinition, error) {
	normalized := lexer.Normalize([]byte(src))
	p := parser.New(lexer.New(string(normalized), file), file)
	sd := p.Parse()
	for _, rep := range p.Sink().Reports() {
		l.sink.Add(rep)
	}
	if p.Sink().HasErrors() {
		return nil, fmt.Errorf("parse errors in %s", file)
	}
	return sd, nil
}

func (l *Loader) register(qualifiedName string, cls *ast.ClassDefinition, origin string) {
	if rep := l.table.insert(qualifiedName, cls, origin); rep != nil {
		l.sink.Add(rep)
	}
}

func (l *Loader) reportLoadFailure(path string, cause error) error {
	rep := errors.New(errors.RES005, nil, fmt.Sprintf("failed to load %s: %v", path, cause))
	l.sink.Add(rep)
	return errors.Wrap(rep)
}
