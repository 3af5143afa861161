package intern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableInternReuse(t *testing.T) {
	tbl := NewTable()
	a := tbl.Intern("Modelica.Blocks.Gain")
	b := tbl.Intern("Modelica.Blocks.Gain")
	c := tbl.Intern("Modelica.Blocks.Sum")

	assert.Equal(t, a, b, "interning the same name twice should return the same symbol")
	assert.NotEqual(t, a, c)
	assert.Equal(t, 2, tbl.Len())
}

func TestTableLookupRoundTrip(t *testing.T) {
	tbl := NewTable()
	sym := tbl.Intern("x")
	name, ok := tbl.Lookup(sym)
	require.True(t, ok)
	assert.Equal(t, "x", name)
}

func TestTableLookupUnknownSymbol(t *testing.T) {
	tbl := NewTable()
	_, ok := tbl.Lookup(Symbol(99))
	assert.False(t, ok)
	_, ok = tbl.Lookup(Symbol(0))
	assert.False(t, ok)
}

func TestManglerFreshNamesAreUnique(t *testing.T) {
	m := NewMangler()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		name := m.Fresh("tmp")
		require.False(t, seen[name], "duplicate fresh name %q", name)
		seen[name] = true
	}
}

func TestManglerReserveAvoidsCollision(t *testing.T) {
	m := NewMangler()
	m.Reserve("tmp__1")
	name := m.Fresh("tmp")
	assert.NotEqual(t, "tmp__1", name)
}
