package reach

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parabdd/parabdd"
)

// system builds the spec's three-bit example transition system:
// T = {000 -> 111, not(000) -> 000}, current-state bits at even variable
// indices 0/2/4, next-state bits at odd indices 1/3/5, so BFS/PAR/SAT
// starting from {001} all converge on {000, 001, 111}.
type system struct {
	m       *parabdd.Manager
	part    Partition
	cur001  parabdd.Edge
	fixed   parabdd.Edge // {000, 001, 111}
}

func newSystem(t *testing.T, workers int) *system {
	t.Helper()
	m, err := parabdd.New(6, parabdd.NodeTableSize(10), parabdd.CacheSize(8), parabdd.Workers(workers))
	require.NoError(t, err)
	t.Cleanup(m.Close)

	x0, _ := m.Ithvar(0)
	x1, _ := m.Ithvar(2)
	x2, _ := m.Ithvar(4)
	nx0, _ := m.Ithvar(1)
	nx1, _ := m.Ithvar(3)
	nx2, _ := m.Ithvar(5)

	curVars := m.Support(m.And(x0, m.And(x1, x2)))
	nextVars := m.Support(m.And(nx0, m.And(nx1, nx2)))

	cur000 := m.Cube(curVars, []int{0, 0, 0})
	cur001 := m.Cube(curVars, []int{0, 0, 1})
	cur111 := m.Cube(curVars, []int{1, 1, 1})
	next000 := m.Cube(nextVars, []int{0, 0, 0})
	next111 := m.Cube(nextVars, []int{1, 1, 1})

	rel := m.Or(m.And(cur000, next111), m.And(m.Not(cur000), next000))

	return &system{
		m:      m,
		part:   Partition{Rel: rel, Vars: curVars},
		cur001: cur001,
		fixed:  m.Or(cur000, m.Or(cur001, cur111)),
	}
}

func TestBFSFixpoint(t *testing.T) {
	s := newSystem(t, 1)
	got := BFS(s.m, s.cur001, []Partition{s.part})
	require.Equal(t, s.fixed, got)
}

func TestPARFixpointAgreesAcrossWorkerCounts(t *testing.T) {
	for _, workers := range []int{1, 2, 4, 8} {
		s := newSystem(t, workers)
		got := PAR(s.m, s.cur001, []Partition{s.part})
		require.Equal(t, s.fixed, got, "worker count %d", workers)
	}
}

func TestSATFixpointAgreesWithBFS(t *testing.T) {
	s := newSystem(t, 2)
	got := SAT(s.m, s.cur001, []Partition{s.part})
	require.Equal(t, s.fixed, got)
}

func TestSortByTopVarOrdersAscending(t *testing.T) {
	s := newSystem(t, 1)
	unsorted := []Partition{s.part, s.part, s.part}
	sorted := sortByTopVar(s.m, unsorted)
	require.Len(t, sorted, 3)
	for i := 1; i < len(sorted); i++ {
		require.LessOrEqual(t, topVarOrLast(s.m, sorted[i-1]), topVarOrLast(s.m, sorted[i]))
	}
}
