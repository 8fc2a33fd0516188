package parabdd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, varnum int) *Manager {
	t.Helper()
	m, err := New(varnum, NodeTableSize(10), CacheSize(8), Workers(4))
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func vars3(t *testing.T) (*Manager, Edge, Edge, Edge) {
	m := newTestManager(t, 3)
	a, err := m.Ithvar(0)
	require.NoError(t, err)
	b, err := m.Ithvar(1)
	require.NoError(t, err)
	c, err := m.Ithvar(2)
	require.NoError(t, err)
	return m, a, b, c
}

func TestDoubleNegation(t *testing.T) {
	m, a, _, _ := vars3(t)
	require.Equal(t, a, m.Not(m.Not(a)))
}

func TestIdentities(t *testing.T) {
	m, a, b, _ := vars3(t)
	require.Equal(t, a, m.And(a, True))
	require.Equal(t, a, m.Or(a, False))
	require.Equal(t, a, m.Ite(True, a, b))
	require.Equal(t, b, m.Ite(False, a, b))
}

func TestCommutativity(t *testing.T) {
	m, a, b, _ := vars3(t)
	require.Equal(t, m.And(a, b), m.And(b, a))
	require.Equal(t, m.Or(a, b), m.Or(b, a))
	require.Equal(t, m.Xor(a, b), m.Xor(b, a))
	require.Equal(t, m.Biimp(a, b), m.Biimp(b, a))
}

func TestDeMorgan(t *testing.T) {
	m, a, b, _ := vars3(t)
	require.Equal(t, m.Not(m.And(a, b)), m.Or(m.Not(a), m.Not(b)))
}

func TestIteExpansion(t *testing.T) {
	m, a, b, c := vars3(t)
	lhs := m.Ite(a, b, c)
	rhs := m.Or(m.And(a, b), m.And(m.Not(a), c))
	require.Equal(t, lhs, rhs)
}

func TestXorViaIte(t *testing.T) {
	m, a, b, _ := vars3(t)
	require.Equal(t, m.Xor(a, b), m.Ite(a, m.Not(b), b))
}

func TestDiffIdentities(t *testing.T) {
	m, a, b, _ := vars3(t)
	want := m.And(a, m.Not(b))
	require.Equal(t, want, m.Diff(a, b))
	require.Equal(t, want, m.Ite(b, False, a))
}

func TestSupport(t *testing.T) {
	m, a, b, _ := vars3(t)
	f := m.And(a, b)
	sup := m.Support(f)
	require.Equal(t, int32(0), m.Var(sup))
	require.Equal(t, False, m.Low(sup))
	require.Equal(t, int32(1), m.Var(m.High(sup)))
}

func TestNodecount(t *testing.T) {
	m, a, b, _ := vars3(t)
	f := m.And(a, b)
	require.Equal(t, 2, m.Nodecount(f))
}

func TestStatsReportsProducedNodes(t *testing.T) {
	m, a, b, _ := vars3(t)
	before := m.Stats()
	m.And(a, b)
	after := m.Stats()
	require.NotEqual(t, before, after, "Stats should reflect the newly produced conjunction node")
}

func TestSatcountCubeFixedCube(t *testing.T) {
	m, a, b, c := vars3(t)
	full := m.And(a, m.And(b, c))
	v := m.Support(full)
	require.Equal(t, float64(1), m.Satcount(full, v))
}

func TestSatcountTrueFalse(t *testing.T) {
	m, a, b, _ := vars3(t)
	v := m.Support(m.And(a, b))
	require.Equal(t, float64(4), m.Satcount(True, v))
	require.Equal(t, float64(0), m.Satcount(False, v))
}

func TestCubeExactAssignment(t *testing.T) {
	m := newTestManager(t, 3)
	a, _ := m.Ithvar(0)
	b, _ := m.Ithvar(1)
	c, _ := m.Ithvar(2)
	vars := m.Support(m.And(a, m.And(b, c)))
	cube := m.Cube(vars, []int{1, 0, 1})
	require.Equal(t, float64(1), m.Satcount(cube, vars))
}

func TestPathcountDistinctFromSatcount(t *testing.T) {
	m, a, b, _ := vars3(t)
	f := m.Or(a, b)
	vars := m.Support(f)

	// satcount counts full assignments (a,b) in {(1,0),(0,1),(1,1)} = 3;
	// pathcount counts distinct paths through the reduced graph, where the
	// a=1 branch needs no further test of b = 2 paths.
	require.Equal(t, float64(3), m.Satcount(f, vars))
	require.Equal(t, float64(2), m.Pathcount(f))
}

func TestPathcountMatchesSatcountWhenFullySpecified(t *testing.T) {
	m, a, b, _ := vars3(t)
	f := m.And(a, b)
	vars := m.Support(f)
	require.Equal(t, m.Satcount(f, vars), m.Pathcount(f))
}

func TestPickCubeImpliesFunction(t *testing.T) {
	m, a, b, c := vars3(t)
	f := m.Ite(a, b, c)
	picked := m.PickCube(f)
	require.NotEqual(t, False, picked)
	require.Equal(t, picked, m.And(picked, f))
}

func TestPickCubeOmitsVariablesFNeverTests(t *testing.T) {
	m, a, b, c := vars3(t)
	f := m.And(a, b) // never tests c
	allVars := m.Support(m.And(a, m.And(b, c)))

	// SatOne resolves every variable named in the vars cube, even ones f
	// doesn't depend on.
	one := m.SatOne(f, allVars)
	require.Equal(t, 3, m.Nodecount(one))

	// PickCube only tests the variables f itself branches on.
	picked := m.PickCube(f)
	require.Equal(t, f, picked)
	require.Equal(t, 2, m.Nodecount(picked))
}

func TestEnumFirstNextEnumeratesAllPaths(t *testing.T) {
	m, a, b, _ := vars3(t)
	f := m.And(a, b) // fully specified: exactly one path, no don't-cares
	vars := m.Support(f)

	arr := make([]int, 2)
	require.True(t, m.EnumFirst(f, vars, arr))
	require.Equal(t, []int{1, 1}, arr)
	require.False(t, m.EnumNext(f, vars, arr))
}

func TestEnumFirstNextCompressesDontCareBranches(t *testing.T) {
	m, a, b, _ := vars3(t)
	f := m.Or(a, b)
	vars := m.Support(f)

	arr := make([]int, 2)
	var got [][]int
	for ok := m.EnumFirst(f, vars, arr); ok; ok = m.EnumNext(f, vars, arr) {
		got = append(got, append([]int(nil), arr...))
	}
	// Matches Pathcount(f) == 2: the a=1 branch is a single path that
	// leaves b as a don't-care (value 2), rather than splitting into the
	// two separate assignments Satcount would count.
	require.ElementsMatch(t, [][]int{{0, 1}, {1, 2}}, got)
}

func TestRefDerefSurvivesGC(t *testing.T) {
	m, a, b, _ := vars3(t)
	e := m.Ref(m.And(a, b))
	for i := 0; i < 5; i++ {
		m.requestGC()
	}
	require.NotEqual(t, Invalid, e)
	require.Equal(t, e, m.And(a, b))
	m.Deref(e)
}
