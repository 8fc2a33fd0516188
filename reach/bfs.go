package reach

import "github.com/parabdd/parabdd"

// BFS computes the reachable state set μX. init ∪ relnext(X, R[*], *) by
// single-threaded level expansion, parallelism confined to inside each
// relnext/or call (§4.7). Grounded on original_source/examples/mc.c's BFS
// strategy (`-s bfs`).
func BFS(m *parabdd.Manager, init parabdd.Edge, parts []Partition) parabdd.Edge {
	visited, _ := BFSLevels(m, init, parts)
	return visited
}

// BFSLevels is BFS with the count of expansion rounds that added new
// states reported back.
func BFSLevels(m *parabdd.Manager, init parabdd.Edge, parts []Partition) (parabdd.Edge, int) {
	visited := init
	newStates := init
	levels := 0

	for newStates != parabdd.False {
		succ := runRelNext(m, newStates, parts, unionAll)
		newStates = m.Diff(succ, visited)
		if newStates == parabdd.False {
			break
		}
		visited = m.Or(visited, newStates)
		levels++
	}
	return visited, levels
}
