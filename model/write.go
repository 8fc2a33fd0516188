package model

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/parabdd/parabdd"
)

// Write serializes mdl back to the wire format Read expects (§6's
// save_bdd/load_bdd pair), primarily so round-trip tests can assert the
// reader reconstructs an equivalent DAG. Child nodes are always emitted
// before their parents, matching Read's expectation that "the reader
// reconstructs nodes in the same order so makenode rebuilds an equivalent
// DAG."
func Write(m *parabdd.Manager, w io.Writer, mdl *Model) error {
	if err := binary.Write(w, binary.LittleEndian, mdl.VectorSize); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, mdl.StatebitsPerInteger); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, mdl.ActionBits); err != nil {
		return err
	}

	if err := writeEdgeSet(m, w, mdl.Init, mdl.InitVars, &mdl.VectorSize); err != nil {
		return fmt.Errorf("initial state set: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, int32(len(mdl.Partitions))); err != nil {
		return err
	}
	for i, p := range mdl.Partitions {
		if err := writeEdgeSet(m, w, p.Rel, p.Vars, nil); err != nil {
			return fmt.Errorf("partition %d: %w", i, err)
		}
	}
	return nil
}

// writeEdgeSet emits one edge stream covering both root and vars, then
// the trailer fields (root, [vector size], support root). vectorSize is
// nil for a transition-relation partition, which has no vector-size
// trailer field of its own (§6).
func writeEdgeSet(m *parabdd.Manager, w io.Writer, root, vars parabdd.Edge, vectorSize *int32) error {
	order, indexOf := collectStream(m, []parabdd.Edge{root, vars})

	if err := binary.Write(w, binary.LittleEndian, uint32(len(order))); err != nil {
		return err
	}
	for _, canon := range order {
		lo := m.Low(canon)
		hi := m.High(canon)
		rec := edgeRecord{
			low:  encodeField(lo, indexOf),
			high: encodeField(hi, indexOf),
			v:    uint32(m.Var(canon)),
		}
		if err := binary.Write(w, binary.LittleEndian, rec.low); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, rec.high); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, rec.v); err != nil {
			return err
		}
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(encodeField(root, indexOf))); err != nil {
		return err
	}
	if vectorSize != nil {
		if err := binary.Write(w, binary.LittleEndian, uint64(*vectorSize)); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(encodeField(vars, indexOf))); err != nil {
		return err
	}
	return nil
}

// collectStream walks every node reachable from roots, emitting children
// before parents, and returns the emission order (as canonical,
// uncomplemented edges) plus a map from a node's raw index to its
// position in that order.
func collectStream(m *parabdd.Manager, roots []parabdd.Edge) ([]parabdd.Edge, map[uint32]uint32) {
	var order []parabdd.Edge
	indexOf := make(map[uint32]uint32)

	var visit func(e parabdd.Edge)
	visit = func(e parabdd.Edge) {
		if e == parabdd.True || e == parabdd.False {
			return
		}
		key := uint32(e) &^ complementMark
		if _, ok := indexOf[key]; ok {
			return
		}
		canon := parabdd.Edge(key)
		visit(m.Low(canon))
		visit(m.High(canon))
		indexOf[key] = uint32(len(order))
		order = append(order, canon)
	}
	for _, r := range roots {
		visit(r)
	}
	return order, indexOf
}

// encodeField turns an edge into the wire representation decodeFieldEdge
// expects: the two constants pass through as their canonical encodings,
// anything else becomes (complement mark | stream position).
func encodeField(e parabdd.Edge, indexOf map[uint32]uint32) uint32 {
	if e == parabdd.True {
		return uint32(parabdd.True)
	}
	if e == parabdd.False {
		return uint32(parabdd.False)
	}
	key := uint32(e) &^ complementMark
	field := indexOf[key]
	if uint32(e)&complementMark != 0 {
		field |= complementMark
	}
	return field
}
