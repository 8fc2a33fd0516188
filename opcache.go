package parabdd

import (
	"sync/atomic"
)

// opcode identifies which recursive DD operation an operation-cache entry
// belongs to, so that different operations never collide by content (§4.4).
// Dense small integers, following the teacher's cacheidREPLACE/cacheidEXIST
// modifiers in cache.go, generalized into one enumeration shared by a
// single cache instead of five separately-typed caches.
type opcode uint8

const (
	opITE opcode = iota
	opNOT
	opEXISTS
	opFORALL
	opRELNEXT
	opRELPREV
	opSATCOUNT
	opCOMPOSE
	opSUPPORT
)

// cacheEntry is one direct-mapped cache line: opcode, up to three operand
// edges, and a result edge (§4.4). It is read and written under a seqlock
// generation counter so that readers can detect a torn write without
// taking a lock, following calvinalkan/agent-task's pkg/slotcache seqlock
// generation-counter pattern (scan.go: odd generation = write in flight,
// re-read until the generation is stable and unchanged).
type cacheEntry struct {
	generation atomic.Uint64
	op         opcode
	a, b, c    Edge
	result     Edge
}

// operationCache is the shared, lock-free, fixed-size memoization table for
// recursive DD operations (§4.4). It is a lossy cache: a write always wins,
// and correctness never depends on a hit.
type operationCache struct {
	lines []cacheEntry
	size  uint64
}

func newOperationCache(log2Size int) *operationCache {
	size := uint64(1) << uint(log2Size)
	return &operationCache{
		lines: make([]cacheEntry, size),
		size:  size,
	}
}

func (c *operationCache) index(op opcode, a, b, cc Edge) uint64 {
	h := uint64(op)*0x9E3779B185EBCA87 ^
		uint64(a)*0xC2B2AE3D27D4EB4F ^
		uint64(b)*0x165667B19E3779F9 ^
		uint64(cc)*0x27D4EB2F165667C5
	return h & (c.size - 1)
}

// Get performs an optimistic seqlock read: read the generation, read the
// payload, re-read the generation; if both reads agree and are even (no
// writer in flight) and the key matches, the result is returned (§4.4).
func (c *operationCache) Get(op opcode, a, b, cc Edge) (Edge, bool) {
	line := &c.lines[c.index(op, a, b, cc)]
	g1 := line.generation.Load()
	if g1&1 != 0 {
		return Edge(0), false // write in flight
	}
	gotOp, gotA, gotB, gotC, gotRes := line.op, line.a, line.b, line.c, line.result
	g2 := line.generation.Load()
	if g1 != g2 {
		return Edge(0), false // torn read
	}
	if gotOp != op || gotA != a || gotB != b || gotC != cc {
		return Edge(0), false
	}
	return gotRes, true
}

// Put unconditionally overwrites the slot with a new version; older
// entries evaporate (§4.4, a lossy cache by design).
func (c *operationCache) Put(op opcode, a, b, cc, result Edge) {
	line := &c.lines[c.index(op, a, b, cc)]
	g := line.generation.Add(1) // now odd: writer in flight
	line.op, line.a, line.b, line.c, line.result = op, a, b, cc, result
	line.generation.Store(g + 1) // back to even: write published
}

// clear resets every header to empty in O(size); called on every GC (§4.4).
func (c *operationCache) clear() {
	for i := range c.lines {
		c.lines[i].generation.Store(0)
		c.lines[i].op = 0
		c.lines[i].a, c.lines[i].b, c.lines[i].c, c.lines[i].result = 0, 0, 0, 0
	}
}
