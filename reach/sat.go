package reach

import "github.com/parabdd/parabdd"

// SAT computes the reachability fixpoint by chaining/saturation: partitions
// are processed in ascending top-variable order so a block sharing a top
// variable can be applied to local fixpoint before descending into the
// rest of the state DD (§4.7). Grounded on original_source/examples/mc.c's
// saturation strategy (`-s sat`) and spec's pseudocode for `sat(S, idx)`.
func SAT(m *parabdd.Manager, init parabdd.Edge, parts []Partition) parabdd.Edge {
	sorted := sortByTopVar(m, parts)
	return satRec(m, init, sorted, 0)
}

// satRec implements §4.7's sat(S, idx) pseudocode. idx ranges over sorted;
// n = len(sorted). Each partition carries its own vars cube (p.Vars), so
// unlike the spec's pseudocode — which threads one shared vars cube
// through every recursive call — satRec has no cube of its own to thread:
// every RelNext call below already resolves its vars from the partition
// it's chaining.
func satRec(m *parabdd.Manager, s parabdd.Edge, sorted []Partition, idx int) parabdd.Edge {
	n := len(sorted)
	if s == parabdd.False || idx == n {
		return s
	}

	v := topVarOrLast(m, sorted[idx])
	k := runLength(m, sorted, idx, v)

	sVar := m.Var(s)
	if sVar < 0 || sVar >= v {
		// S is a terminal or its top variable is at least v: this block
		// of relations can be chained to local fixpoint before descending.
		for {
			next := satRec(m, s, sorted, idx+k) // deeper first
			for j := 0; j < k; j++ {
				p := sorted[idx+j]
				next = m.Or(next, m.RelNext(next, p.Rel, p.Vars))
			}
			if next == s {
				break
			}
			s = next
		}
		return s
	}

	// Shannon-expand on var(S): descend into both cofactors before this
	// block of relations becomes relevant.
	lo := satRec(m, m.Low(s), sorted, idx)
	hi := satRec(m, m.High(s), sorted, idx)
	return m.MakeNode(sVar, lo, hi)
}

// runLength returns the size of the maximal run of partitions starting at
// idx whose top variable equals v (§4.7's "k = size of maximal run of
// relations whose top == v starting at idx").
func runLength(m *parabdd.Manager, sorted []Partition, idx int, v int32) int {
	k := 0
	for idx+k < len(sorted) && topVarOrLast(m, sorted[idx+k]) == v {
		k++
	}
	return k
}
