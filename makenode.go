package parabdd

// makenode implements §4.5's node-construction invariants and §4.2's
// insert-with-retry-after-gc loop. It is the single chokepoint every
// recursive operation in operations.go/quantify.go calls through, exactly
// as the teacher's Kernel.makenode (bkernel.go) is the chokepoint for
// bdd.go's Ite/And/... — generalized here to be safe for concurrent
// callers and to retry across a stop-the-world collection instead of
// assuming exclusive access.
//
// Invariants enforced (§3, §4.5):
//
//	I3 (no redundant test):      low == high  => return low, no node made.
//	I4 (canonical complement):   the node stored in the table always has an
//	                             uncomplemented low edge; if the caller's low
//	                             edge is complemented, both children are
//	                             flipped before lookup and the result edge
//	                             is complemented on the way out.
//	I1 (hash-consing):           enforced by uniqueTable.lookupOrCreate.
func (m *Manager) makenode(v int32, low, high Edge) (Edge, error) {
	if low == high {
		return low, nil
	}

	flip := low.complemented()
	if flip {
		low, high = low.Not(), high.Not()
	}

	idx, created, ok, nearFull := m.table.lookupOrCreate(v, low, high)
	if !ok {
		// The probe found no slot to claim: the table is full under the
		// current recursive call tree's RLock. Unwind to atomically's
		// safepoint, which will collect and retry the whole operation.
		panic(needGC{})
	}
	if created {
		m.produced.Add(1)
	}
	if nearFull {
		m.gcPending.Store(true)
	}
	return newEdge(idx, flip), nil
}
