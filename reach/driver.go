// Package reach implements the reachability fixpoint strategies of §4.7:
// breadth-first level expansion (bfs.go), the same fixpoint with a
// divide-and-conquer union over partitions (par.go), and chaining/
// saturation ordered by top variable (sat.go), plus deadlock detection
// (deadlock.go). None of this exists in the teacher (dalzilio/rudd is a
// BDD library, not a model checker); it is grounded on
// original_source/examples/mc.c's strategy selection and partitioned
// transition-relation shape (see DESIGN.md).
package reach

import "github.com/parabdd/parabdd"

// Partition is one relation R[i] of a partitioned transition relation,
// paired with the variable cube relnext/relprev quantify over (§4.7).
type Partition struct {
	Rel  parabdd.Edge
	Vars parabdd.Edge
}

// unionAll folds Or across edges left to right. bfs.go and deadlock.go use
// this directly; par.go replaces it with a divide-and-conquer spawn tree.
func unionAll(m *parabdd.Manager, edges []parabdd.Edge) parabdd.Edge {
	acc := parabdd.False
	for _, e := range edges {
		acc = m.Or(acc, e)
	}
	return acc
}

// topVarOrLast returns a partition's top variable for sort-by-top-variable
// purposes (§4.7's saturation precondition), treating a constant relation
// (no variable of its own) as sorting after every real variable rather than
// before index 0.
func topVarOrLast(m *parabdd.Manager, p Partition) int32 {
	v := m.Var(p.Rel)
	if v < 0 {
		return 1<<30 - 1
	}
	return v
}

// sortByTopVar returns a copy of parts ordered by ascending top variable,
// via a gnome sort (§4.7: "a simple gnome sort on the R[] array suffices;
// all orderings are externally equivalent so sort stability is
// unimportant").
func sortByTopVar(m *parabdd.Manager, parts []Partition) []Partition {
	sorted := make([]Partition, len(parts))
	copy(sorted, parts)
	i := 1
	for i < len(sorted) {
		if topVarOrLast(m, sorted[i-1]) <= topVarOrLast(m, sorted[i]) {
			i++
		} else {
			sorted[i-1], sorted[i] = sorted[i], sorted[i-1]
			if i > 1 {
				i--
			} else {
				i++
			}
		}
	}
	return sorted
}

// runRelNext applies relnext across every partition and unions the results,
// the per-level image computation shared by bfs.go, par.go and
// deadlock.go. union selects how the per-partition results are combined (plain
// left-fold in bfs.go, divide-and-conquer spawn in par.go).
func runRelNext(m *parabdd.Manager, states parabdd.Edge, parts []Partition, union func(*parabdd.Manager, []parabdd.Edge) parabdd.Edge) parabdd.Edge {
	succs := make([]parabdd.Edge, len(parts))
	for i, p := range parts {
		succs[i] = m.RelNext(states, p.Rel, p.Vars)
	}
	return union(m, succs)
}
