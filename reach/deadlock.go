package reach

import "github.com/parabdd/parabdd"

// DeadlockReport is returned by WithDeadlocks: the reachable set (identical
// to BFS's result) plus the first non-empty deadlock set found and the
// level at which it was found, or a zero Level and False States if none
// was found before the fixpoint closed.
type DeadlockReport struct {
	Deadlocks parabdd.Edge
	Level     int
	Found     bool
}

// WithDeadlocks runs the same BFS level expansion as BFS, but at each level
// also computes the deadlock states per §4.7: "D = cur and, as each
// partition is applied, remove from D every state that has at least one
// successor under that partition (using relprev(R[i], succᵢ, vars)). What
// remains in D after all partitions is the set of deadlock states at that
// level." Accounting stops after the first non-empty finding ("to avoid
// repeated noise").
func WithDeadlocks(m *parabdd.Manager, init parabdd.Edge, parts []Partition) (parabdd.Edge, DeadlockReport) {
	visited := init
	newStates := init
	level := 0

	for newStates != parabdd.False {
		cur := newStates
		d := cur
		succ := parabdd.False
		for _, p := range parts {
			succI := m.RelNext(cur, p.Rel, p.Vars)
			succ = m.Or(succ, succI)
			if succI != parabdd.False {
				hasSucc := m.RelPrev(p.Rel, succI, p.Vars)
				d = m.Diff(d, hasSucc)
			}
		}
		if d != parabdd.False {
			return reachRest(m, visited, newStates, parts), DeadlockReport{Deadlocks: d, Level: level, Found: true}
		}

		newStates = m.Diff(succ, visited)
		if newStates == parabdd.False {
			break
		}
		visited = m.Or(visited, newStates)
		level++
	}
	return visited, DeadlockReport{Deadlocks: parabdd.False, Level: level, Found: false}
}

// reachRest finishes the plain BFS fixpoint once deadlock accounting has
// stopped (§4.7: "stop deadlock accounting after the first non-empty
// finding"), so WithDeadlocks' reachable-set return stays consistent with
// BFS's regardless of when the deadlock was found.
func reachRest(m *parabdd.Manager, visited, newStates parabdd.Edge, parts []Partition) parabdd.Edge {
	for newStates != parabdd.False {
		succ := runRelNext(m, newStates, parts, unionAll)
		newStates = m.Diff(succ, visited)
		if newStates == parabdd.False {
			break
		}
		visited = m.Or(visited, newStates)
	}
	return visited
}
