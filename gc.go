package parabdd

import (
	"sync/atomic"
)

// gc runs the stop-the-world mark-and-sweep pass (§4.2). It must only be
// called while every worker is parked at the task runtime's safepoint
// (see requestGC below, which takes worldMu's write lock as the barrier).
//
// This generalizes the teacher's single-threaded gbc (bkernel.go): clearing
// mark bits, walking reference roots, sweeping dead slots to EMPTY. The
// parallel mark walk uses the task runtime's together primitive instead of
// the teacher's sequential markrec, per §4.2's "run mark_rec in parallel
// via the task runtime's together primitive".
func (m *Manager) gc() {
	m.log.Debug().Msg("gc: start")
	m.gcCount.Add(1)

	for i := range m.table.slots {
		atomic.StoreUint32(&m.table.slots[i].varMark, m.table.slots[i].varMark&^varMarkMarkBit)
	}

	roots := m.refs.liveRoots()
	// Also mark every edge currently parked on a worker's refs/spawn stack
	// (§4.3's "thread-local refs stack ... GC walks every worker's stack").
	roots = append(roots, m.runtime.liveWorkerEdges()...)

	// Mark in parallel via the task runtime's together primitive (§4.2):
	// each worker claims roots off a shared index cursor and marks them;
	// the mark-bit CAS in markRec ensures each node recurses exactly once
	// even when two workers reach it from different roots concurrently.
	var next atomic.Int64
	m.runtime.together(func() {
		for {
			i := next.Add(1) - 1
			if i >= int64(len(roots)) {
				return
			}
			m.markRec(roots[i])
		}
	})

	m.cache.clear()
	m.satCache.Range(func(key, _ any) bool {
		m.satCache.Delete(key)
		return true
	})

	var live, freed int64
	for i := range m.table.slots {
		slot := &m.table.slots[i]
		header := atomic.LoadUint32(&slot.header)
		if headerStatus(header) != statusLive {
			continue
		}
		if slot.marked() {
			live++
			continue
		}
		atomic.StoreUint32(&slot.header, packHeader(statusEmpty, 0))
		slot.low, slot.high = Edge(0), Edge(0)
		freed++
	}
	m.table.count.Store(live)

	m.log.Debug().Int64("live", live).Int64("freed", freed).Msg("gc: done")
}

// markRec marks e and, if it is a newly-marked internal node, recurses
// into its children. Mirrors the teacher's markrec (bkernel.go), extended
// for complement edges (marking follows the index regardless of polarity).
func (m *Manager) markRec(e Edge) {
	if e.IsConstant() {
		return
	}
	idx := e.index()
	n := m.table.get(idx)
	for {
		old := atomic.LoadUint32(&n.varMark)
		if old&varMarkMarkBit != 0 {
			return // already marked (by us or a racing worker)
		}
		if atomic.CompareAndSwapUint32(&n.varMark, old, old|varMarkMarkBit) {
			break
		}
	}
	m.markRec(n.low)
	m.markRec(n.high)
}

// maybeGC implements §4.2 step 5: if a fill-fraction threshold is crossed,
// request a GC (and, if the table is still too full afterwards, resize is
// not supported — the spec treats a full table as fatal, see errors.go).
func (m *Manager) maybeGC() {
	if m.table.fillFraction() >= m.table.gcThreshold {
		m.requestGC()
	}
}

// requestGC stops the world (§4.1's safepoint, implemented as an RWMutex
// barrier — see worldMu in manager.go) and runs one mark-and-sweep pass.
func (m *Manager) requestGC() {
	m.worldMu.Lock()
	defer m.worldMu.Unlock()
	m.gc()
}
