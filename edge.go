package parabdd

import "fmt"

// Edge is a 32-bit handle into the unique table: a complement bit and an
// index (§3, which allows either a 64-bit or 32-bit encoding — we pick
// 32-bit so the node payload packs into the mandated 16 bytes, see node.go).
// Edges are values, not objects — unlike the teacher's Node (a *int with a
// runtime finalizer, see bkernel.go's retnode), an Edge carries no
// destructor; its lifetime is tracked logically through ref counts and
// protected pointers (refs.go).
//
// Layout: bit 31 is the complement mark, bits 0..30 are the table index.
// Two reserved edges exist at index 0: False (uncomplemented) and True
// (complemented) — they are never allocated as table slots.
type Edge uint32

const (
	complementBit uint32 = 1 << 31
	indexMask     uint32 = complementBit - 1

	// invalidIndex is a sentinel index distinguishable from any node the
	// table can ever allocate, since maxTableCapacity is bounded below it.
	invalidIndex = indexMask
)

// False and True are the two canonical terminal edges (§3, §4.5): distinct
// literals, with True the complement of the index-0 slot.
const (
	False Edge = Edge(0)
	True  Edge = Edge(complementBit)
)

// Invalid is a sentinel edge distinguishable from both constants; observing
// it where an internal node is expected is a program bug (§7).
var Invalid = Edge(complementBit | invalidIndex)

// maxTableCapacity is the largest index an Edge can address, leaving the
// top bit for the complement mark and one reserved value for Invalid.
const maxTableCapacity = int(invalidIndex - 1)

func newEdge(index uint32, complemented bool) Edge {
	e := Edge(index & indexMask)
	if complemented {
		e |= Edge(complementBit)
	}
	return e
}

func (e Edge) index() uint32 {
	return uint32(e) & indexMask
}

// complemented reports whether e carries the complement mark.
func (e Edge) complemented() bool {
	return uint32(e)&complementBit != 0
}

// Not returns the negation of e in O(1): toggle the complement bit (§4.6,
// "not(a): toggle complement bit — constant time, no recursion").
func (e Edge) Not() Edge {
	return Edge(uint32(e) ^ complementBit)
}

// IsConstant reports whether e denotes one of the two terminals.
func (e Edge) IsConstant() bool {
	return e.index() == 0
}

// IsValid reports whether e is distinguishable from the Invalid sentinel.
func (e Edge) IsValid() bool {
	return e != Invalid
}

// withComplement XORs in a pending complement mark, used when propagating
// a deferred negation through makenode (§4.5 rule 2, the I4.a XOR rule).
func (e Edge) withComplement(flip bool) Edge {
	if !flip {
		return e
	}
	return e.Not()
}

func (e Edge) String() string {
	if e == Invalid {
		return "<invalid>"
	}
	if e == True {
		return "true"
	}
	if e == False {
		return "false"
	}
	sign := ""
	if e.complemented() {
		sign = "!"
	}
	return fmt.Sprintf("%s%d", sign, e.index())
}
