package model

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/parabdd/parabdd"
)

func newTestManager(t *testing.T) *parabdd.Manager {
	t.Helper()
	m, err := parabdd.New(6, parabdd.NodeTableSize(10), parabdd.CacheSize(8), parabdd.Workers(2))
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

// buildThreeBitSystem reproduces the spec's three-bit relational-product
// example: T = {000 -> 111, not(000) -> 000}, current-state bits at even
// variable indices 0/2/4, next-state bits at odd indices 1/3/5.
func buildThreeBitSystem(t *testing.T, m *parabdd.Manager) (init, initVars parabdd.Edge, part Partition) {
	t.Helper()
	x0, _ := m.Ithvar(0)
	x1, _ := m.Ithvar(2)
	x2, _ := m.Ithvar(4)
	nx0, _ := m.Ithvar(1)
	nx1, _ := m.Ithvar(3)
	nx2, _ := m.Ithvar(5)

	curVars := m.Support(m.And(x0, m.And(x1, x2)))
	nextVars := m.Support(m.And(nx0, m.And(nx1, nx2)))

	cur000 := m.Cube(curVars, []int{0, 0, 0})
	cur001 := m.Cube(curVars, []int{0, 0, 1})
	next000 := m.Cube(nextVars, []int{0, 0, 0})
	next111 := m.Cube(nextVars, []int{1, 1, 1})

	rel := m.Or(m.And(cur000, next111), m.And(m.Not(cur000), next000))
	return cur001, curVars, Partition{Rel: rel, Vars: nextVars}
}

func TestWriteReadRoundTrip(t *testing.T) {
	m := newTestManager(t)
	init, initVars, part := buildThreeBitSystem(t, m)

	mdl := &Model{
		Header:     Header{VectorSize: 3, StatebitsPerInteger: 1, ActionBits: 0},
		Init:       init,
		InitVars:   initVars,
		VectorSize: 3,
		Partitions: []Partition{part},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(m, &buf, mdl))

	got, err := Read(m, &buf)
	require.NoError(t, err)

	// The Manager field aside (Model carries no such field, so this is a
	// plain value comparison), a round trip should reproduce every field
	// exactly; go-cmp reports which one didn't if it doesn't.
	if diff := cmp.Diff(mdl, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteReadRoundTripConstantInit(t *testing.T) {
	m := newTestManager(t)
	_, initVars, part := buildThreeBitSystem(t, m)

	mdl := &Model{
		Header:     Header{VectorSize: 3, StatebitsPerInteger: 1, ActionBits: 0},
		Init:       parabdd.False,
		InitVars:   initVars,
		VectorSize: 3,
		Partitions: []Partition{part},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(m, &buf, mdl))

	got, err := Read(m, &buf)
	require.NoError(t, err)
	require.Equal(t, parabdd.False, got.Init)
}

func TestReadRejectsTruncatedHeader(t *testing.T) {
	m := newTestManager(t)
	buf := bytes.NewReader([]byte{1, 2, 3})
	_, err := Read(m, buf)
	require.Error(t, err)
	var derr *ErrDeserialize
	require.ErrorAs(t, err, &derr)
}

func TestReadRejectsOversizedPartitionCount(t *testing.T) {
	m := newTestManager(t)
	mdl := &Model{
		Header:     Header{VectorSize: 1, StatebitsPerInteger: 1, ActionBits: 0},
		Init:       parabdd.False,
		InitVars:   parabdd.False,
		VectorSize: 1,
		Partitions: nil,
	}
	var buf bytes.Buffer
	require.NoError(t, Write(m, &buf, mdl))

	raw := buf.Bytes()
	// Corrupt next_count (the int32 right after the initial-state-set
	// section, which here is fixed-size: an empty edge stream plus its
	// 3 uint64 trailer fields) to a wildly out-of-range partition count.
	offset := 4 + 4 + 4 + 4 + 8*3 // header + empty-stream count + 3 trailer uint64s
	raw[offset] = 0x7f
	raw[offset+1] = 0x7f
	raw[offset+2] = 0x7f
	raw[offset+3] = 0x7f

	_, err := Read(m, bytes.NewReader(raw))
	require.Error(t, err)
}
