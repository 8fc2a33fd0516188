package parabdd

import "sync"

// refRoots implements §4.3's two orthogonal external root mechanisms:
// sharded reference counts and a set of protected pointers. Both are
// consulted by gc.go's mark phase.
//
// Grounded on the teacher's retnode/pushref/popref accounting
// (bkernel.go), made concurrent: the teacher's single int refcou field per
// node becomes a sharded map so concurrent Ref/Deref calls from different
// goroutines don't serialize on one global lock, following
// calvinalkan/agent-task's pkg/slotcache/lock.go sharded-registry idiom
// (sync.Map keyed by identity, per-shard mutex).
type refRoots struct {
	shards [refShardCount]refShard

	protected sync.Map // map[*Edge]struct{}
}

const refShardCount = 32

type refShard struct {
	mu     sync.Mutex
	counts map[uint32]int
}

func newRefRoots() *refRoots {
	rr := &refRoots{}
	for i := range rr.shards {
		rr.shards[i].counts = make(map[uint32]int)
	}
	return rr
}

func (rr *refRoots) shardFor(index uint32) *refShard {
	return &rr.shards[index%refShardCount]
}

// Ref increments the reference count on e and returns e so calls can be
// chained (§4.3). Constants are ignored; this call never fails.
func (m *Manager) Ref(e Edge) Edge {
	if e.IsConstant() {
		return e
	}
	idx := e.index()
	s := m.refs.shardFor(idx)
	s.mu.Lock()
	s.counts[idx]++
	s.mu.Unlock()
	return e
}

// Deref decrements the reference count on e and returns e (§4.3). A count
// reaching zero unregisters the node as a root but does not free its slot;
// only a subsequent GC sweep does that.
func (m *Manager) Deref(e Edge) Edge {
	if e.IsConstant() {
		return e
	}
	idx := e.index()
	s := m.refs.shardFor(idx)
	s.mu.Lock()
	if c := s.counts[idx]; c > 0 {
		if c == 1 {
			delete(s.counts, idx)
		} else {
			s.counts[idx] = c - 1
		}
	}
	s.mu.Unlock()
	return e
}

// Protect registers the memory location p as a GC root: every subsequent
// collection dereferences p and marks whatever edge it currently holds
// (§4.3's "protected pointers"). This supports client idioms where an edge
// variable is the root and is mutated in place.
func (m *Manager) Protect(p *Edge) {
	m.refs.protected.Store(p, struct{}{})
}

// Unprotect removes a pointer registered with Protect.
func (m *Manager) Unprotect(p *Edge) {
	m.refs.protected.Delete(p)
}

// liveRoots returns every edge currently reachable from a reference-counted
// root or a protected pointer, for gc.go's mark phase.
func (rr *refRoots) liveRoots() []Edge {
	var out []Edge
	for i := range rr.shards {
		s := &rr.shards[i]
		s.mu.Lock()
		for idx, c := range s.counts {
			if c > 0 {
				out = append(out, newEdge(idx, false))
			}
		}
		s.mu.Unlock()
	}
	rr.protected.Range(func(key, _ any) bool {
		p := key.(*Edge)
		out = append(out, *p)
		return true
	})
	return out
}
