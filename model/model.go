// Package model reads the little-endian model file format consumed by the
// reachability example driver (§6/§7): a vector-size/statebits/actionbits
// header, a serialized initial-state set, and an ordered array of
// partitioned transition relations, each carrying its own support cube.
// Grounded on original_source/examples/mc.c's load_model, adapted to
// spec.md's own wire description rather than sylvan's actual
// serialization routine (mc.c calls into sylvan_serialize_fromfile, which
// the retrieved source doesn't itself define in the portable terms this
// spec lays out).
package model

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/parabdd/parabdd"
)

// Header holds the three int32 fields that open every model file (§6).
type Header struct {
	VectorSize          int32
	StatebitsPerInteger  int32
	ActionBits           int32
}

// Partition is one transition-relation group: its edge and the support
// cube relnext/relprev should quantify over.
type Partition struct {
	Rel  parabdd.Edge
	Vars parabdd.Edge
}

// Model is a fully reconstructed reachability model, ready to hand to the
// reach package's drivers.
type Model struct {
	Header
	Init       parabdd.Edge
	InitVars   parabdd.Edge
	VectorSize int32 // the initial-state set's own recorded vector size
	Partitions []Partition
}

// errf wraps a read failure as this package's *ErrDeserialize, so every
// parse failure of Read reaches the caller as that one error type.
func errf(format string, args ...any) error {
	return &ErrDeserialize{Reason: fmt.Sprintf(format, args...)}
}

// ErrDeserialize reports a malformed model file (§7); the CLI translates
// it into a non-zero exit status.
type ErrDeserialize struct {
	Reason string
}

func (e *ErrDeserialize) Error() string {
	return fmt.Sprintf("model: malformed model file: %s", e.Reason)
}

// Read parses a complete model file from r, reconstructing every edge via
// m.MakeNode so the resulting DAG is shared with whatever else lives in m
// (§6: "the reader reconstructs nodes in the same order so makenode
// rebuilds an equivalent DAG; because node-table indices may differ,
// readers must not depend on them").
func Read(m *parabdd.Manager, r io.Reader) (*Model, error) {
	var hdr Header
	if err := binary.Read(r, binary.LittleEndian, &hdr.VectorSize); err != nil {
		return nil, errf("header vector_size: %v", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr.StatebitsPerInteger); err != nil {
		return nil, errf("header statebits_per_integer: %v", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr.ActionBits); err != nil {
		return nil, errf("header actionbits: %v", err)
	}

	initEdge, err := readEdgeStream(m, r)
	if err != nil {
		return nil, errf("initial state set: %v", err)
	}
	var initRoot, initVectorSize, initSupportRoot uint64
	for _, field := range []*uint64{&initRoot, &initVectorSize, &initSupportRoot} {
		if err := binary.Read(r, binary.LittleEndian, field); err != nil {
			return nil, errf("initial state set trailer: %v", err)
		}
	}
	initVars, err := resolveRoot(initEdge, initSupportRoot)
	if err != nil {
		return nil, errf("initial state set support root: %v", err)
	}
	init, err := resolveRoot(initEdge, initRoot)
	if err != nil {
		return nil, errf("initial state set root: %v", err)
	}

	var nextCount int32
	if err := binary.Read(r, binary.LittleEndian, &nextCount); err != nil {
		return nil, errf("next_count: %v", err)
	}
	if nextCount < 0 {
		return nil, errf("next_count is negative: %d", nextCount)
	}

	parts := make([]Partition, 0) // next_count is untrusted: grow as records are read
	for i := int32(0); i < nextCount; i++ {
		stream, err := readEdgeStream(m, r)
		if err != nil {
			return nil, errf("partition %d: %v", i, err)
		}
		var relRoot, supportRoot uint64
		if err := binary.Read(r, binary.LittleEndian, &relRoot); err != nil {
			return nil, errf("partition %d root: %v", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &supportRoot); err != nil {
			return nil, errf("partition %d support root: %v", i, err)
		}
		rel, err := resolveRoot(stream, relRoot)
		if err != nil {
			return nil, errf("partition %d root resolve: %v", i, err)
		}
		vars, err := resolveRoot(stream, supportRoot)
		if err != nil {
			return nil, errf("partition %d support resolve: %v", i, err)
		}
		parts = append(parts, Partition{Rel: rel, Vars: vars})
	}

	return &Model{
		Header:     hdr,
		Init:       init,
		InitVars:   initVars,
		VectorSize: int32(initVectorSize),
		Partitions: parts,
	}, nil
}

// edgeRecord is one (low, high, var) triple from a serialized edge stream
// (§6). low/high index prior records in the stream; the top bit of the
// most significant byte of each is the complement mark.
type edgeRecord struct {
	low, high, v uint32
}

const complementMark = uint32(1) << 31

// readEdgeStream reads a 4-byte count N followed by N edgeRecords and
// reconstructs them, in order, as table-resident nodes via m.MakeNode,
// returning the list of resulting edges (index i in the returned slice
// corresponds to record i in the file — resolveRoot translates a file
// root index, which may also directly be a constant encoding, into one of
// these).
func readEdgeStream(m *parabdd.Manager, r io.Reader) ([]parabdd.Edge, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("edge stream count: %w", err)
	}

	built := make([]parabdd.Edge, 0, n)
	for i := uint32(0); i < n; i++ {
		var rec edgeRecord
		if err := binary.Read(r, binary.LittleEndian, &rec.low); err != nil {
			return nil, fmt.Errorf("record %d low: %w", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &rec.high); err != nil {
			return nil, fmt.Errorf("record %d high: %w", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &rec.v); err != nil {
			return nil, fmt.Errorf("record %d var: %w", i, err)
		}

		low, err := decodeFieldEdge(built, rec.low)
		if err != nil {
			return nil, fmt.Errorf("record %d low field: %w", i, err)
		}
		high, err := decodeFieldEdge(built, rec.high)
		if err != nil {
			return nil, fmt.Errorf("record %d high field: %w", i, err)
		}
		built = append(built, m.MakeNode(int32(rec.v), low, high))
	}
	return built, nil
}

// decodeFieldEdge interprets one low/high field of a record: the
// complement mark (bit 31) aside, the remaining bits are either a prior
// record index or one of the two canonical constant encodings (§6: "the
// constants true and false are their canonical edge encodings rather than
// indices").
func decodeFieldEdge(built []parabdd.Edge, field uint32) (parabdd.Edge, error) {
	complemented := field&complementMark != 0
	idx := field &^ complementMark

	switch parabdd.Edge(field) {
	case parabdd.True:
		return parabdd.True, nil
	case parabdd.False:
		return parabdd.False, nil
	}

	if idx >= uint32(len(built)) {
		return parabdd.Invalid, fmt.Errorf("field index %d out of range (have %d records)", idx, len(built))
	}
	e := built[idx]
	if complemented {
		e = e.Not()
	}
	return e, nil
}

// resolveRoot turns a trailer's size_t root reference into one of stream's
// built edges, or a constant if the reference directly encodes one (§6).
func resolveRoot(stream []parabdd.Edge, root uint64) (parabdd.Edge, error) {
	switch parabdd.Edge(root) {
	case parabdd.True:
		return parabdd.True, nil
	case parabdd.False:
		return parabdd.False, nil
	}
	idx := root &^ uint64(complementMark)
	complemented := root&uint64(complementMark) != 0
	if idx >= uint64(len(stream)) {
		if len(stream) == 0 {
			// An empty stream's root is always one of the two constants;
			// anything else here is a malformed file.
			return parabdd.Invalid, fmt.Errorf("root %d references an empty edge stream", root)
		}
		return parabdd.Invalid, fmt.Errorf("root index %d out of range (have %d records)", idx, len(stream))
	}
	e := stream[idx]
	if complemented {
		e = e.Not()
	}
	return e, nil
}
