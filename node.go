package parabdd

import (
	"fmt"
	"math"
)

// maxVar is the largest representable variable index: 24 bits, as spec §3
// requires ("24 bits suffice for the core"), leaving 8 bits of bookkeeping
// alongside it in the same 32-bit word.
const maxVar int32 = 1<<24 - 1

// slotStatus is the 2-bit status word of a unique-table slot (§4.2).
type slotStatus uint8

const (
	statusEmpty slotStatus = iota
	statusClaimed
	statusLive
	statusTombstone
)

// node is the 16-byte payload of a unique-table slot (§3): a 32-bit header
// (the status/hash word a CAS claims the slot on, §4.2 step 1), a second
// 32-bit word packing the variable plus the GC mark bit and the
// single-threaded "aux" flag used by nodecount/serialization, and the two
// 32-bit edges. Splitting header (CAS target) from varMark (plain write,
// only touched by the claiming goroutine before the LIVE publish) mirrors
// the teacher's separation of hash-chain bookkeeping (bkernel.go's
// next/hash fields) from payload (level/low/high) while adding the status
// word spec §4.2 requires for lock-free claiming.
//
// low is always uncomplemented per invariant I4; the node's own polarity
// is carried on whatever edge points at it, never on the node itself.
type node struct {
	header  uint32 // status(2) | hash fragment(30), atomic CAS target
	varMark uint32 // reserved(6) | aux(1) | mark(1) | variable(24)
	low     Edge   // 4 bytes
	high    Edge   // 4 bytes
}

const (
	headerStatusMask  uint32 = 0x3 << 30
	headerStatusShift        = 30
	headerHashMask    uint32 = 1<<30 - 1

	varMarkVarMask  uint32 = 1<<24 - 1
	varMarkMarkBit  uint32 = 1 << 24
	varMarkAuxBit   uint32 = 1 << 25
)

func packHeader(status slotStatus, hashFrag uint32) uint32 {
	return hashFrag&headerHashMask | uint32(status)<<headerStatusShift
}

func headerStatus(header uint32) slotStatus {
	return slotStatus((header & headerStatusMask) >> headerStatusShift)
}

func headerHash(header uint32) uint32 {
	return header & headerHashMask
}

func (n *node) status() slotStatus {
	return headerStatus(n.header)
}

func (n *node) variable() int32 {
	return int32(n.varMark & varMarkVarMask)
}

func (n *node) marked() bool {
	return n.varMark&varMarkMarkBit != 0
}

func (n *node) aux() bool {
	return n.varMark&varMarkAuxBit != 0
}

// humanSize renders a byte count with a binary-prefix suffix, following
// the teacher's humanSize helper referenced from cache.go's String methods.
func humanSize(n int, elemSize uintptr) string {
	bytes := float64(n) * float64(elemSize)
	const unit = 1024.0
	if bytes < unit {
		return formatBytes(bytes, "B")
	}
	units := []string{"KiB", "MiB", "GiB", "TiB"}
	exp := 0
	for bytes >= unit*unit && exp < len(units)-1 {
		bytes /= unit
		exp++
	}
	bytes /= unit
	return formatBytes(bytes, units[exp])
}

func formatBytes(v float64, unit string) string {
	if math.Trunc(v) == v {
		return fmt.Sprintf("%d%s", int(v), unit)
	}
	return fmt.Sprintf("%.1f%s", v, unit)
}
