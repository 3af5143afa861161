// Package intern provides a symbol interner for qualified component and
// class names, plus a monotonic fresh-name generator used by the
// flattener when inlining functions and lifting temporaries (§4.3
// inlining, grounded on the teacher's internal/elaborate freshVar).
package intern

import (
	"fmt"
	"sync"
)

// Table interns strings to small integer symbols so the flattener and
// DAE builder can compare qualified names by value instead of by
// repeated string allocation and comparison.
type Table struct {
	mu      sync.Mutex
	bySym   []string
	byName  map[string]Symbol
}

// Symbol is an interned string handle. The zero Symbol is invalid.
type Symbol int

// NewTable creates an empty interning table.
func NewTable() *Table {
	return &Table{byName: make(map[string]Symbol), bySym: []string{""}}
}

// Intern returns the Symbol for name, creating one if this is the
// first time name has been seen.
func (t *Table) Intern(name string) Symbol {
	t.mu.Lock()
	defer t.mu.Unlock()
	if sym, ok := t.byName[name]; ok {
		return sym
	}
	sym := Symbol(len(t.bySym))
	t.bySym = append(t.bySym, name)
	t.byName[name] = sym
	return sym
}

// Lookup reverses Intern; it returns ("", false) for the zero Symbol
// or any Symbol not produced by this table.
func (t *Table) Lookup(sym Symbol) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if sym <= 0 || int(sym) >= len(t.bySym) {
		return "", false
	}
	return t.bySym[sym], true
}

// Len reports how many distinct names have been interned.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.bySym) - 1
}

// Mangler generates fresh, collision-free identifiers for a single
// translation stage: one per function variable at each inlined call
// site in the flattener, one per condition indicator in the DAE
// builder. Names are scoped by
// a caller-supplied prefix so temporaries from different inlined
// functions stay visually distinguishable in a rendered Dae.
type Mangler struct {
	mu      sync.Mutex
	counter int
	seen    map[string]bool
}

// NewMangler creates a Mangler whose counter starts at zero.
func NewMangler() *Mangler {
	return &Mangler{seen: make(map[string]bool)}
}

// Fresh returns a name of the form "<prefix>__<n>" guaranteed not to
// have been returned before by this Mangler, bumping the internal
// counter (monotonically, never hash-map iteration order) until a
// collision-free name is found.
func (m *Mangler) Fresh(prefix string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		m.counter++
		name := fmt.Sprintf("%s__%d", prefix, m.counter)
		if !m.seen[name] {
			m.seen[name] = true
			return name
		}
	}
}

// Reserve marks name as already in use, so a later Fresh call never
// returns it even if it happens to match the "<prefix>__<n>" pattern.
func (m *Mangler) Reserve(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[name] = true
}
