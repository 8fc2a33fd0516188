package parabdd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForallIsDeMorganOfExists(t *testing.T) {
	m := newTestManager(t, 4)
	a, _ := m.Ithvar(0)
	b, _ := m.Ithvar(1)
	c, _ := m.Ithvar(2)
	f := m.Ite(a, b, c)
	v := m.Support(a)
	require.Equal(t, m.Forall(f, v), m.Not(m.Exists(m.Not(f), v)))
}

func TestExistsUnionOfCubesIsSequential(t *testing.T) {
	m := newTestManager(t, 4)
	a, _ := m.Ithvar(0)
	b, _ := m.Ithvar(1)
	c, _ := m.Ithvar(2)
	d, _ := m.Ithvar(3)
	f := m.Ite(a, m.Ite(b, c, d), m.Not(c))

	vw := m.Support(m.And(a, b))
	oneShot := m.Exists(f, vw)

	v := m.Support(a)
	w := m.Support(b)
	sequential := m.Exists(m.Exists(f, v), w)
	require.Equal(t, oneShot, sequential)
}

// relationTest builds the three-bit transition system from the spec's
// relational-product example: T = {000 -> 111, not(000) -> 000}, current-
// state bits at even variable indices 0/2/4, next-state bits at odd
// indices 1/3/5.
type relationTest struct {
	m                         *Manager
	curVars, nextVars         Edge
	cur000, cur001, cur111    Edge
	next000, next111          Edge
	rel                       Edge
}

func newRelationTest(t *testing.T) *relationTest {
	t.Helper()
	m := newTestManager(t, 6)
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

	return &relationTest{
		m: m, curVars: curVars, nextVars: nextVars,
		cur000: cur000, cur001: cur001, cur111: cur111,
		next000: next000, next111: next111, rel: rel,
	}
}

func TestRelNextExamples(t *testing.T) {
	rt := newRelationTest(t)
	m := rt.m

	require.Equal(t, rt.cur000, m.RelNext(rt.cur001, rt.rel, rt.curVars))
	require.Equal(t, rt.cur111, m.RelNext(rt.cur000, rt.rel, rt.curVars))
}

func TestRelPrevExamples(t *testing.T) {
	rt := newRelationTest(t)
	m := rt.m

	require.Equal(t, rt.cur000, m.RelPrev(rt.rel, rt.next111, rt.nextVars))
	require.Equal(t, m.Not(rt.cur000), m.RelPrev(rt.rel, rt.next000, rt.nextVars))
}

func TestReachabilityFixpointBFS(t *testing.T) {
	rt := newRelationTest(t)
	m := rt.m
	expected := m.Or(rt.cur000, m.Or(rt.cur001, rt.cur111))

	visited := rt.cur001
	newStates := rt.cur001
	for newStates != False {
		succ := m.RelNext(newStates, rt.rel, rt.curVars)
		newStates = m.Diff(succ, visited)
		visited = m.Or(visited, newStates)
	}
	require.Equal(t, expected, visited)
}
