package lacc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespace_ScopesAndShadowing(t *testing.T) {
	ns := NewNamespace("identifiers")
	assert.Equal(t, 0, ns.Depth())

	outer, err := ns.Add(&Symbol{Name: "x", Type: Integer(4), SymType: Sym_Tentative})
	require.NoError(t, err)
	assert.Equal(t, 0, outer.Depth)

	ns.PushScope()
	assert.Equal(t, 1, ns.Depth())
	inner, err := ns.Add(&Symbol{Name: "x", Type: Integer(1), SymType: Sym_Definition})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.Depth)

	assert.Same(t, inner, ns.Lookup("x"))
	ns.PopScope()
	assert.Same(t, outer, ns.Lookup("x"))
	assert.Nil(t, ns.Lookup("y"))
}

func TestNamespace_FileScopeMerge(t *testing.T) {
	ns := NewNamespace("identifiers")

	first, err := ns.Add(&Symbol{Name: "n", Type: Integer(4), SymType: Sym_Tentative})
	require.NoError(t, err)

	// A compatible redeclaration merges into the same symbol.
	second, err := ns.Add(&Symbol{Name: "n", Type: Integer(4), SymType: Sym_Declaration})
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, Sym_Tentative, first.SymType)

	// The more defined symtype wins.
	third, err := ns.Add(&Symbol{Name: "n", Type: Integer(4), SymType: Sym_Definition})
	require.NoError(t, err)
	assert.Same(t, first, third)
	assert.Equal(t, Sym_Definition, first.SymType)

	// A second definition is an error.
	_, err = ns.Add(&Symbol{Name: "n", Type: Integer(4), SymType: Sym_Definition})
	assert.Error(t, err)

	// Only one symbol exists at file scope.
	assert.Len(t, ns.FileScope(), 1)
}

func TestNamespace_ConflictingTypes(t *testing.T) {
	ns := NewNamespace("identifiers")
	_, err := ns.Add(&Symbol{Name: "n", Type: Integer(4), SymType: Sym_Tentative})
	require.NoError(t, err)
	_, err = ns.Add(&Symbol{Name: "n", Type: Integer(8), SymType: Sym_Tentative})
	assert.Error(t, err)
}

func TestNamespace_BlockScopeRedeclaration(t *testing.T) {
	ns := NewNamespace("identifiers")
	ns.PushScope()
	_, err := ns.Add(&Symbol{Name: "x", Type: Integer(4), SymType: Sym_Definition})
	require.NoError(t, err)
	_, err = ns.Add(&Symbol{Name: "x", Type: Integer(4), SymType: Sym_Definition})
	assert.Error(t, err)
}

func TestNamespace_TypedefDoesNotMerge(t *testing.T) {
	ns := NewNamespace("identifiers")
	_, err := ns.Add(&Symbol{Name: "t", Type: Integer(4), SymType: Sym_Typedef})
	require.NoError(t, err)
	_, err = ns.Add(&Symbol{Name: "t", Type: Integer(4), SymType: Sym_Tentative})
	assert.Error(t, err)
}

func TestNamespace_Temp(t *testing.T) {
	ns := NewNamespace("identifiers")
	a := ns.Temp(Integer(4))
	b := ns.Temp(Integer(8))
	assert.Equal(t, ".t0", a.Name)
	assert.Equal(t, ".t1", b.Name)
	assert.NotEqual(t, a.Name, b.Name)
	assert.Equal(t, Sym_Definition, a.SymType)
}

func TestNamespace_PopDiscards(t *testing.T) {
	ns := NewNamespace("tags")
	ns.PushScope()
	_, err := ns.Add(&Symbol{Name: "S", Type: Object(), SymType: Sym_Declaration})
	require.NoError(t, err)
	ns.PopScope()
	assert.Nil(t, ns.Lookup("S"))
	assert.Empty(t, ns.FileScope())
}
