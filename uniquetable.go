package parabdd

import (
	"hash/maphash"
	"math/bits"
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog"
)

func runtimeGosched() { runtime.Gosched() }

// uniqueTable is the shared, lock-free, fixed-capacity unique node table
// (§4.2). It enforces hash-consing (invariant I1) and is swept by
// stop-the-world mark-and-sweep garbage collection (gc.go).
//
// The table is a Go-idiomatic reworking of the teacher's single-threaded
// chained-hash design (bkernel.go's makenode/gbc/noderesize): instead of a
// hash-chain-per-bucket with a free list, slots are open-addressed and
// claimed with a compare-and-swap on the header word, following
// calvinalkan/agent-task's pkg/slotcache lock/open.go CAS-claim idiom.
type uniqueTable struct {
	slots    []node // atomically accessed via atomic.Pointer-free raw CAS on header
	capacity int
	seed     maphash.Seed // random per-table salt; the operation cache hashes unsalted

	count atomic.Int64 // live slot count, used for the fill-fraction check

	gcThreshold float64
	log         *zerolog.Logger
}

func newUniqueTable(log2Capacity int, gcThreshold float64, log *zerolog.Logger) *uniqueTable {
	capacity := 1 << uint(log2Capacity)
	if capacity > maxTableCapacity {
		capacity = maxTableCapacity
	}
	return &uniqueTable{
		slots:       make([]node, capacity),
		capacity:    capacity,
		seed:        maphash.MakeSeed(),
		gcThreshold: gcThreshold,
		log:         log,
	}
}

// nodeHash computes the FNV-style mixed hash of a (var, low, high) triple,
// salted with the table's random seed so that GC-mark recomputations are
// stable within one process run (§4.2).
func (t *uniqueTable) nodeHash(v int32, low, high Edge) uint64 {
	var buf [12]byte
	putU32(buf[0:4], uint32(v))
	putU32(buf[4:8], uint32(low))
	putU32(buf[8:12], uint32(high))
	var h maphash.Hash
	h.SetSeed(t.seed)
	_, _ = h.Write(buf[:])
	return h.Sum64()
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// probeStart returns the first slot to probe for a given hash. We use a
// simple linear probe from the hash modulo capacity, acceptable per §4.2
// ("the choice is free provided it yields acceptable clustering"), since
// the table is a power-of-two size and linear probing keeps the stride
// cache-friendly.
func (t *uniqueTable) probeStart(h uint64) int {
	return int(h & uint64(t.capacity-1))
}

// lookupOrCreate implements §4.2's insert algorithm. It returns the index
// of a live slot holding (v, low, high), creating one if none exists.
//
// ok is false only when the probe was exhausted without finding or
// claiming any slot (the table is full); the caller (makenode.go) must
// run a GC pass and retry in that case. nearFull is set alongside a
// successful insert when the fill fraction has crossed the configured
// threshold, signalling that the caller should schedule a GC soon even
// though this particular insert succeeded (§4.2 step 5).
func (t *uniqueTable) lookupOrCreate(v int32, low, high Edge) (index uint32, created bool, ok bool, nearFull bool) {
	h := t.nodeHash(v, low, high)
	hashFrag := uint32(h) & headerHashMask
	start := t.probeStart(h)
	maxProbe := t.capacity

probe:
	for i := 0; i < maxProbe; i++ {
		idx := (start + i) % t.capacity
		if idx == 0 {
			continue // index 0 is reserved for the False/True terminals
		}
		slot := &t.slots[idx]

		for {
			header := atomic.LoadUint32(&slot.header)
			status := headerStatus(header)

			switch status {
			case statusEmpty:
				newHeader := packHeader(statusClaimed, hashFrag)
				if !atomic.CompareAndSwapUint32(&slot.header, header, newHeader) {
					continue // lost the race for this slot, retry the load/CAS
				}
				// We own the slot: publish the payload then LIVE.
				slot.varMark = uint32(v) & varMarkVarMask
				slot.low = low
				slot.high = high
				atomic.StoreUint32(&slot.header, packHeader(statusLive, hashFrag))
				t.count.Add(1)
				return uint32(idx), true, true, t.fillFraction() >= t.gcThreshold

			case statusLive:
				if headerHash(header) == hashFrag &&
					slot.variable() == v && slot.low == low && slot.high == high {
					return uint32(idx), false, true, false
				}
				continue probe

			case statusClaimed:
				if headerHash(header) == hashFrag {
					// Racing insert of (possibly) the same key: spin until
					// it resolves, bounded to one cache-miss worth of
					// spinning per §4.2 step 4.
					runtimeGosched()
					continue
				}
				continue probe

			case statusTombstone:
				continue probe
			}
		}
	}
	// Probe exhausted without finding a slot: the table needs a GC/resize.
	return 0, false, false, true
}

func (t *uniqueTable) fillFraction() float64 {
	return float64(t.count.Load()) / float64(t.capacity)
}

func (t *uniqueTable) get(index uint32) *node {
	return &t.slots[index]
}

// bitLen returns the bit length of the table capacity; kept here since it
// is a property of capacity.
func (t *uniqueTable) bitLen() int {
	return bits.Len(uint(t.capacity))
}
