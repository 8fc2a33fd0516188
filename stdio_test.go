package parabdd

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrintDotWellFormed(t *testing.T) {
	m, a, b, _ := vars3(t)
	f := m.And(a, b)

	var buf bytes.Buffer
	require.NoError(t, m.PrintDot(&buf, f))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "digraph G {\n"))
	require.True(t, strings.HasSuffix(out, "}\n"))
	require.Contains(t, out, `0 [shape=box, label="0"`)
	require.Contains(t, out, `1 [shape=box, label="1"`)

	aIdx := f.index()
	bIdx := m.High(f).index()
	require.Contains(t, out, fmt.Sprintf("%d [label=\"0\"];", aIdx))
	require.Contains(t, out, fmt.Sprintf("%d [label=\"1\"];", bIdx))
	require.Contains(t, out, fmt.Sprintf("%d -> 0 [style=dotted];", aIdx))
	require.Contains(t, out, fmt.Sprintf("%d -> %d [style=solid];", aIdx, bIdx))
	require.Contains(t, out, fmt.Sprintf("%d -> 0 [style=dotted];", bIdx))
	require.Contains(t, out, fmt.Sprintf("%d -> 1 [style=solid];", bIdx))
}

func TestPrintDotConstantRootsEmitOnlyTerminals(t *testing.T) {
	m := newTestManager(t, 3)

	var buf bytes.Buffer
	require.NoError(t, m.PrintDot(&buf, True, False))

	out := buf.String()
	require.Equal(t, "digraph G {\n"+
		`0 [shape=box, label="0", style=filled, height=0.3, width=0.3];`+"\n"+
		`1 [shape=box, label="1", style=filled, height=0.3, width=0.3];`+"\n"+
		"}\n", out)
}
