package mccli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parabdd/parabdd"
	"github.com/parabdd/parabdd/model"
)

// writeThreeBitModel serializes the spec's three-bit transition-system
// example to a temp file and returns its path.
func writeThreeBitModel(t *testing.T) string {
	t.Helper()
	m, err := parabdd.New(6, parabdd.NodeTableSize(10), parabdd.CacheSize(8), parabdd.Workers(1))
	require.NoError(t, err)
	defer m.Close()

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

	mdl := &model.Model{
		Header:     model.Header{VectorSize: 3, StatebitsPerInteger: 1, ActionBits: 0},
		Init:       cur001,
		InitVars:   curVars,
		VectorSize: 3,
		Partitions: []model.Partition{{Rel: rel, Vars: nextVars}},
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "model.bin")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, model.Write(m, f, mdl))
	return path
}

func TestRunBFSReportsCounts(t *testing.T) {
	path := writeThreeBitModel(t)
	var out, errOut bytes.Buffer
	code := Run(&out, &errOut, []string{"mc", "-s", "bfs", "--count-states", "--count-nodes", path})
	require.Equal(t, 0, code, "stderr: %s", errOut.String())
	require.Contains(t, out.String(), "states:")
	require.Contains(t, out.String(), "nodes:")
}

func TestRunUnknownStrategyFails(t *testing.T) {
	path := writeThreeBitModel(t)
	var out, errOut bytes.Buffer
	code := Run(&out, &errOut, []string{"mc", "-s", "bogus", path})
	require.NotEqual(t, 0, code)
}

func TestRunMissingModelArgFails(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run(&out, &errOut, []string{"mc"})
	require.NotEqual(t, 0, code)
}

func TestRunDeadlocksFlag(t *testing.T) {
	path := writeThreeBitModel(t)
	var out, errOut bytes.Buffer
	code := Run(&out, &errOut, []string{"mc", "--deadlocks", path})
	require.Equal(t, 0, code, "stderr: %s", errOut.String())
}
