package reach

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/parabdd/parabdd"
)

// PAR computes the same fixpoint as BFS, but the union over partitions at
// each level is a divide-and-conquer tree that spawns the left and right
// halves independently (§4.7: "the union over i is computed by a divide-
// and-conquer tree that spawns left and right halves. The per-iteration
// result is the same DD up to internal scheduling; only the wall-clock
// differs."). Unlike together (taskruntime.go), the branches here are
// independent subtasks that could in principle fail on their own, which is
// exactly errgroup.Group's case rather than a plain sync.WaitGroup
// broadcast (see DESIGN.md's Task runtime entry).
func PAR(m *parabdd.Manager, init parabdd.Edge, parts []Partition) parabdd.Edge {
	visited, _ := PARLevels(m, init, parts)
	return visited
}

// PARLevels is PAR with the round count reported back.
func PARLevels(m *parabdd.Manager, init parabdd.Edge, parts []Partition) (parabdd.Edge, int) {
	visited := init
	newStates := init
	levels := 0

	for newStates != parabdd.False {
		succ := runRelNext(m, newStates, parts, divideAndConquerUnion)
		newStates = m.Diff(succ, visited)
		if newStates == parabdd.False {
			break
		}
		visited = m.Or(visited, newStates)
		levels++
	}
	return visited, levels
}

// divideAndConquerUnion unions edges by recursively splitting the slice in
// half and spawning each half on an errgroup.Group, down to a sequential
// base case of one element.
func divideAndConquerUnion(m *parabdd.Manager, edges []parabdd.Edge) parabdd.Edge {
	return unionTree(context.Background(), m, edges)
}

func unionTree(ctx context.Context, m *parabdd.Manager, edges []parabdd.Edge) parabdd.Edge {
	switch len(edges) {
	case 0:
		return parabdd.False
	case 1:
		return edges[0]
	}

	mid := len(edges) / 2
	left, right := edges[:mid], edges[mid:]

	g, _ := errgroup.WithContext(ctx)
	var leftResult, rightResult parabdd.Edge
	g.Go(func() error {
		leftResult = unionTree(ctx, m, left)
		return nil
	})
	g.Go(func() error {
		rightResult = unionTree(ctx, m, right)
		return nil
	})
	_ = g.Wait() // neither branch can error; nil-returning goroutines only

	return m.Or(leftResult, rightResult)
}
