package parabdd

import "math"

// Exists and Forall quantify a out of every variable in the vars cube
// (§4.6). The recursive shape (terminal check, cache probe, skip-ahead
// over variables below the current node, quantify-or-descend, cache
// populate) is adapted from original_source/src/sylvan.c's
// sylvan_exists_do/sylvan_forall_do; this engine's cube convention differs
// from sylvan's (§3/GLOSSARY: "a right-spined BDD with high-edges leading
// to true", vars' low edge is always False and its high edge is the rest
// of the cube), so every LOW/HIGH cube-chain access below is the mirror of
// the source's — see DESIGN.md.
func (m *Manager) Exists(a, vars Edge) Edge {
	return m.atomically(func() Edge {
		scratch, end := m.runtime.beginOp()
		defer end()
		return m.existsRec(a, vars, 0, true, scratch)
	})
}

func (m *Manager) existsRec(a, vars Edge, callerVar int32, cacheNow bool, scratch *opScratch) Edge {
	if a.IsConstant() {
		return a
	}
	if cacheNow {
		if res, hit := m.cache.Get(opEXISTS, a, vars, 0); hit {
			return res
		}
	}

	n := m.table.get(a.index())
	level := n.variable()
	comp := a.complemented()
	aLow := n.low.withComplement(comp)
	aHigh := n.high.withComplement(comp)

	childCacheNow := m.cfg.granularity < 2 ||
		callerVar/int32(m.cfg.granularity) != level/int32(m.cfg.granularity)

	for vars != True && m.table.get(vars.index()).variable() < level {
		vars = m.table.get(vars.index()).high
	}

	var result Edge
	switch {
	case vars == True:
		result = a

	case m.table.get(vars.index()).variable() == level:
		restVars := m.table.get(vars.index()).high
		scratch.push(aLow)
		scratch.push(aHigh)
		low := m.existsRec(aLow, restVars, level, childCacheNow, scratch)
		if low == True {
			result = True
		} else {
			high := m.existsRec(aHigh, restVars, level, childCacheNow, scratch)
			switch {
			case high == True:
				result = True
			case low == False && high == False:
				result = False
			default:
				result = m.iteRec(low, True, high, level, childCacheNow, scratch)
			}
		}
		scratch.pop(2)

	default:
		scratch.push(aLow)
		scratch.push(aHigh)
		fut := m.runtime.spawn(func() Edge {
			return m.existsRec(aLow, vars, level, childCacheNow, scratch)
		})
		high := m.existsRec(aHigh, vars, level, childCacheNow, scratch)
		low := m.runtime.sync(fut)
		scratch.pop(2)
		result, _ = m.makenode(level, low, high)
	}

	if cacheNow {
		m.cache.Put(opEXISTS, a, vars, 0, result)
	}
	return result
}

// Forall quantifies universally; grounded the same way as Exists but with
// AND in place of OR at the quantify step, mirroring sylvan_forall_do.
func (m *Manager) Forall(a, vars Edge) Edge {
	return m.atomically(func() Edge {
		scratch, end := m.runtime.beginOp()
		defer end()
		return m.forallRec(a, vars, 0, true, scratch)
	})
}

func (m *Manager) forallRec(a, vars Edge, callerVar int32, cacheNow bool, scratch *opScratch) Edge {
	if a.IsConstant() {
		return a
	}
	if cacheNow {
		if res, hit := m.cache.Get(opFORALL, a, vars, 0); hit {
			return res
		}
	}

	n := m.table.get(a.index())
	level := n.variable()
	comp := a.complemented()
	aLow := n.low.withComplement(comp)
	aHigh := n.high.withComplement(comp)

	childCacheNow := m.cfg.granularity < 2 ||
		callerVar/int32(m.cfg.granularity) != level/int32(m.cfg.granularity)

	for vars != True && m.table.get(vars.index()).variable() < level {
		vars = m.table.get(vars.index()).high
	}

	var result Edge
	switch {
	case vars == True:
		result = a

	case m.table.get(vars.index()).variable() == level:
		restVars := m.table.get(vars.index()).high
		scratch.push(aLow)
		scratch.push(aHigh)
		low := m.forallRec(aLow, restVars, level, childCacheNow, scratch)
		if low == False {
			result = False
		} else {
			high := m.forallRec(aHigh, restVars, level, childCacheNow, scratch)
			switch {
			case high == False:
				result = False
			case low == True && high == True:
				result = True
			default:
				result = m.iteRec(low, high, False, level, childCacheNow, scratch)
			}
		}
		scratch.pop(2)

	default:
		scratch.push(aLow)
		scratch.push(aHigh)
		fut := m.runtime.spawn(func() Edge {
			return m.forallRec(aLow, vars, level, childCacheNow, scratch)
		})
		high := m.forallRec(aHigh, vars, level, childCacheNow, scratch)
		low := m.runtime.sync(fut)
		scratch.pop(2)
		result, _ = m.makenode(level, low, high)
	}

	if cacheNow {
		m.cache.Put(opFORALL, a, vars, 0, result)
	}
	return result
}

// pairedVar maps a next-state variable index (odd) to its paired
// current-state index (even, one lower) per §4.6's "for X′ variables not
// in vars it renames to the paired X (decrementing the variable index by
// one)". Current-state variables are unaffected.
func pairedVar(v int32) int32 {
	if v%2 == 1 {
		return v - 1
	}
	return v
}

// RelNext computes exists vars . (states ∧ rel) with the implicit X′→X
// renaming fused in (§4.6): "treats even variable indices as the
// current-state bit X and odd indices as next-state X′... for X′
// variables not in vars it renames to the paired X". Grounded on
// original_source/src/sylvan.c's sylvan_relnext signature shape (no
// matching source body survives in the retrieved original_source subset,
// so the recursive shape below is this engine's direct expression of
// §4.6's relnext paragraph using the same Shannon-descent machinery as
// Ite/Exists).
func (m *Manager) RelNext(states, rel, vars Edge) Edge {
	return m.atomically(func() Edge {
		scratch, end := m.runtime.beginOp()
		defer end()
		return m.relNextRec(states, rel, vars, 0, true, scratch)
	})
}

func (m *Manager) relNextRec(states, rel, vars Edge, callerVar int32, cacheNow bool, scratch *opScratch) Edge {
	if states == False || rel == False {
		return False
	}
	if cacheNow {
		if res, hit := m.cache.Get(opRELNEXT, states, rel, vars); hit {
			return res
		}
	}

	level := m.topVar(states, rel)
	if level == int32(math.MaxInt32) { // both constants, states/rel == True here
		result := True
		if cacheNow {
			m.cache.Put(opRELNEXT, states, rel, vars, result)
		}
		return result
	}

	childCacheNow := m.cfg.granularity < 2 ||
		callerVar/int32(m.cfg.granularity) != level/int32(m.cfg.granularity)

	sLow, sHigh := m.cofactor(states, level)
	rLow, rHigh := m.cofactor(rel, level)

	scratch.push(sLow)
	scratch.push(sHigh)
	scratch.push(rLow)
	scratch.push(rHigh)
	fut := m.runtime.spawn(func() Edge {
		return m.relNextRec(sLow, rLow, vars, level, childCacheNow, scratch)
	})
	hi := m.relNextRec(sHigh, rHigh, vars, level, childCacheNow, scratch)
	lo := m.runtime.sync(fut)
	scratch.pop(4)

	var result Edge
	switch {
	case inCube(m, vars, level):
		// A variable named in vars is existentially quantified, whether
		// it is a current-state or next-state index (§4.6: "for each
		// variable in vars it quantifies").
		result = m.iteRec(lo, True, hi, level, childCacheNow, scratch)
	case level%2 == 1:
		// Next-state X′ not in vars: rename to its paired current-state
		// index (decrement by one), no quantification.
		result, _ = m.makenode(pairedVar(level), lo, hi)
	default:
		// Current-state X not in vars: passes through unchanged.
		result, _ = m.makenode(level, lo, hi)
	}

	if cacheNow {
		m.cache.Put(opRELNEXT, states, rel, vars, result)
	}
	return result
}

// RelPrev is the mirror image of RelNext: it shares the exact same
// "quantify if named, rename if left dangling on the opposite parity,
// passthrough otherwise" combinator, just run with vars as the X′ cube
// instead of the X cube, and next playing rel's second operand instead of
// states — the output stays in current-state (even) encoding, exactly
// like RelNext's, so callers can Or/Diff a RelPrev result directly against
// a state set (§4.7's reachability drivers do exactly that).
func (m *Manager) RelPrev(rel, next, vars Edge) Edge {
	return m.atomically(func() Edge {
		scratch, end := m.runtime.beginOp()
		defer end()
		return m.relPrevRec(rel, next, vars, 0, true, scratch)
	})
}

func (m *Manager) relPrevRec(rel, next, vars Edge, callerVar int32, cacheNow bool, scratch *opScratch) Edge {
	if rel == False || next == False {
		return False
	}
	if cacheNow {
		if res, hit := m.cache.Get(opRELPREV, rel, next, vars); hit {
			return res
		}
	}

	level := m.topVar(rel, next)
	if level == int32(math.MaxInt32) {
		result := True
		if cacheNow {
			m.cache.Put(opRELPREV, rel, next, vars, result)
		}
		return result
	}

	childCacheNow := m.cfg.granularity < 2 ||
		callerVar/int32(m.cfg.granularity) != level/int32(m.cfg.granularity)

	rLow, rHigh := m.cofactor(rel, level)
	nLow, nHigh := m.cofactor(next, level)

	scratch.push(rLow)
	scratch.push(rHigh)
	scratch.push(nLow)
	scratch.push(nHigh)
	fut := m.runtime.spawn(func() Edge {
		return m.relPrevRec(rLow, nLow, vars, level, childCacheNow, scratch)
	})
	hi := m.relPrevRec(rHigh, nHigh, vars, level, childCacheNow, scratch)
	lo := m.runtime.sync(fut)
	scratch.pop(4)

	var result Edge
	switch {
	case inCube(m, vars, level):
		// §4.6: quantification over X′ for the variables named in vars.
		result = m.iteRec(lo, True, hi, level, childCacheNow, scratch)
	case level%2 == 1:
		// A next-state index left dangling by an atypical partial vars
		// cube: rename to its paired current-state index, same fallback
		// RelNext applies to an un-quantified X′.
		result, _ = m.makenode(pairedVar(level), lo, hi)
	default:
		// Current-state index: already in the output's encoding, passes
		// through unchanged.
		result, _ = m.makenode(level, lo, hi)
	}

	if cacheNow {
		m.cache.Put(opRELPREV, rel, next, vars, result)
	}
	return result
}

// inCube reports whether variable v appears in the vars cube.
func inCube(m *Manager, vars Edge, v int32) bool {
	for vars != True {
		n := m.table.get(vars.index())
		if n.variable() == v {
			return true
		}
		if n.variable() > v {
			return false
		}
		vars = n.high
	}
	return false
}
