package parabdd

import (
	"math"
	"sort"
)

// standardTriples implements the canonical-triple reduction the teacher's
// domain (and sylvan's sylvan_triples, original_source/src/sylvan.c) applies
// before any recursive ite: it resolves the handful of triples that
// terminate without recursion and, for everything else, rewrites (f,g,h) in
// place to the representative of its Shannon-equivalence class so the
// operation cache sees one key per class regardless of how a caller phrased
// the connective (§4.6 step 2). ok reports a ready answer; otherwise nf,
// ng, nh replace f, g, h for the caller, and complement reports whether the
// caller must toggle whatever the recursive ite returns (the De Morgan
// "~ite(A,~B,~C)" identity).
func standardTriples(f, g, h Edge) (nf, ng, nh, result Edge, ok, complement bool) {
	if f == True {
		return f, g, h, g, true, false
	}
	if f == False {
		return f, g, h, h, true, false
	}

	// ite(A,A,C) = ite(A,True,C); ite(A,~A,C) = ite(A,False,C)
	if f.index() == g.index() {
		if f == g {
			g = True
		} else {
			g = False
		}
	}
	// ite(A,B,A) = ite(A,B,False); ite(A,B,~A) = ite(A,B,True)
	if f.index() == h.index() {
		if f != h {
			h = True
		} else {
			h = False
		}
	}

	if g == h {
		return f, g, h, g, true, false
	}
	if g == True && h == False {
		return f, g, h, f, true, false
	}
	if g == False && h == True {
		return f, g, h, f.Not(), true, false
	}

	if g.IsConstant() && h.index() < f.index() {
		if g == False {
			// ite(A,F,C) = ite(~C,F,~A)
			t := f
			f = h.Not()
			h = t.Not()
		} else {
			// ite(A,T,C) = ite(C,T,A)
			t := f
			f = h
			h = t
		}
	}

	if h.IsConstant() && g.index() < f.index() {
		if h == False {
			// ite(A,B,F) = ite(B,A,F)
			t := f
			f = g
			g = t
		} else {
			// ite(A,B,T) = ite(~B,~A,T)
			t := f
			f = g.Not()
			g = t.Not()
		}
	}

	if g.index() == h.index() && f.index() > g.index() {
		// ite(A,B,~B) with A > B: rephrase as ite(B,A,~A)
		t := f
		f = h.Not()
		g = t
		h = t.Not()
	}

	// ite(~A,B,C) = ite(A,C,B)
	if f.complemented() {
		f = f.Not()
		g, h = h, g
	}

	// De Morgan: ite(A,B,C) = ~ite(A,~B,~C)
	if g.complemented() {
		g, h = g.Not(), h.Not()
		return f, g, h, Invalid, false, true
	}

	return f, g, h, Invalid, false, false
}

// topVar returns the minimum variable level among the given edges,
// treating constants as having no level (§4.6 step 4, "compute the top
// variable v = min(var(args))").
func (m *Manager) topVar(edges ...Edge) int32 {
	level := int32(math.MaxInt32)
	for _, e := range edges {
		if e.IsConstant() {
			continue
		}
		if v := m.table.get(e.index()).variable(); v < level {
			level = v
		}
	}
	return level
}

// cofactor returns e's (low, high) branches if e's own variable equals
// level, or (e, e) unchanged otherwise — e doesn't yet depend on level.
func (m *Manager) cofactor(e Edge, level int32) (lo, hi Edge) {
	if e.IsConstant() {
		return e, e
	}
	n := m.table.get(e.index())
	if n.variable() != level {
		return e, e
	}
	comp := e.complemented()
	return n.low.withComplement(comp), n.high.withComplement(comp)
}

// Ite is the fundamental operation (§4.6): if f then g else h. Every binary
// connective below is a thin wrapper around it.
func (m *Manager) Ite(f, g, h Edge) Edge {
	return m.atomically(func() Edge {
		scratch, end := m.runtime.beginOp()
		defer end()
		return m.iteRec(f, g, h, 0, true, scratch)
	})
}

func (m *Manager) iteRec(f, g, h Edge, callerVar int32, cacheNow bool, scratch *opScratch) Edge {
	nf, ng, nh, result, ok, complement := standardTriples(f, g, h)
	if ok {
		return result
	}
	f, g, h = nf, ng, nh

	if cacheNow {
		if res, hit := m.cache.Get(opITE, f, g, h); hit {
			if complement {
				return res.Not()
			}
			return res
		}
	}

	level := m.topVar(f, g, h)
	childCacheNow := m.cfg.granularity < 2 ||
		callerVar/int32(m.cfg.granularity) != level/int32(m.cfg.granularity)

	fLow, fHigh := m.cofactor(f, level)
	gLow, gHigh := m.cofactor(g, level)
	hLow, hHigh := m.cofactor(h, level)

	scratch.push(fLow)
	scratch.push(fHigh)
	scratch.push(gLow)
	scratch.push(gHigh)
	scratch.push(hLow)
	scratch.push(hHigh)

	fut := m.runtime.spawn(func() Edge {
		return m.iteRec(fLow, gLow, hLow, level, childCacheNow, scratch)
	})
	high := m.iteRec(fHigh, gHigh, hHigh, level, childCacheNow, scratch)
	low := m.runtime.sync(fut)
	scratch.pop(6)

	result, _ = m.makenode(level, low, high)
	if cacheNow {
		m.cache.Put(opITE, f, g, h, result)
	}
	if complement {
		return result.Not()
	}
	return result
}

// Not toggles the complement bit: O(1), no recursion, no table access
// (§4.6: "not(a): toggle complement bit").
func (m *Manager) Not(a Edge) Edge {
	return a.Not()
}

// And, Or, Xor, Imp, Biimp, Diff, Nand, Nor, Less, Invimp are thin Ite
// wrappers, exactly as listed in §4.6 ("as in the source") and grounded on
// original_source/src/sylvan.c's sylvan_and/xor/or/nand/nor/imp/biimp/
// diff/less/invimp, which derive every connective from a single ite call.
func (m *Manager) And(a, b Edge) Edge    { return m.Ite(a, b, False) }
func (m *Manager) Or(a, b Edge) Edge     { return m.Ite(a, True, b) }
func (m *Manager) Xor(a, b Edge) Edge    { return m.Ite(a, b.Not(), b) }
func (m *Manager) Nand(a, b Edge) Edge   { return m.Ite(a, b.Not(), True) }
func (m *Manager) Nor(a, b Edge) Edge    { return m.Ite(a, False, b.Not()) }
func (m *Manager) Imp(a, b Edge) Edge    { return m.Ite(a, b, True) }
func (m *Manager) Biimp(a, b Edge) Edge  { return m.Ite(a, b, b.Not()) }
func (m *Manager) Diff(a, b Edge) Edge   { return m.Ite(a, b.Not(), False) }
func (m *Manager) Less(a, b Edge) Edge   { return m.Ite(a, False, b) }
func (m *Manager) Invimp(a, b Edge) Edge { return m.Ite(a, True, b.Not()) }

// Support returns the cube of every variable appearing in a (§4.6).
// Grounded on the teacher's single-threaded nodecount-style traversal
// (nodecount mutates the aux flag and must hold the GC at bay): a support
// computation walks the whole DAG marking visited nodes so it costs
// O(size(a)) rather than re-visiting shared subgraphs, then unmarks on a
// second pass, exactly like nodecount below.
func (m *Manager) Support(a Edge) Edge {
	return m.atomically(func() Edge {
		seen := make(map[int32]struct{})
		m.markVars(a, seen)
		m.unmark(a)

		vars := make([]int32, 0, len(seen))
		for v := range seen {
			vars = append(vars, v)
		}
		sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })

		cube := True
		for i := len(vars) - 1; i >= 0; i-- {
			cube, _ = m.makenode(vars[i], False, cube)
		}
		return cube
	})
}

func (m *Manager) markVars(e Edge, seen map[int32]struct{}) {
	if e.IsConstant() {
		return
	}
	n := m.table.get(e.index())
	if n.aux() {
		return
	}
	n.varMark |= varMarkAuxBit
	seen[n.variable()] = struct{}{}
	m.markVars(n.low, seen)
	m.markVars(n.high, seen)
}

func (m *Manager) unmark(e Edge) {
	if e.IsConstant() {
		return
	}
	n := m.table.get(e.index())
	if !n.aux() {
		return
	}
	n.varMark &^= varMarkAuxBit
	m.unmark(n.low)
	m.unmark(n.high)
}

// Nodecount returns the number of distinct internal nodes reachable from a
// (§4.6). Single-threaded: it mutates the aux flag bit directly, so callers
// must not run it concurrently with another traversal over a shared edge.
func (m *Manager) Nodecount(a Edge) int {
	return atomically(m, func() int {
		count := 0
		m.countRec(a, &count)
		m.unmark(a)
		return count
	})
}

func (m *Manager) countRec(e Edge, count *int) {
	if e.IsConstant() {
		return
	}
	n := m.table.get(e.index())
	if n.aux() {
		return
	}
	n.varMark |= varMarkAuxBit
	*count++
	m.countRec(n.low, count)
	m.countRec(n.high, count)
}

// satcountKey identifies a memoized satcount call; see Manager.satCache.
type satcountKey struct {
	a, vars Edge
}

// Satcount returns the number of satisfying assignments of a over the
// variables in the vars cube, as a float64 (§4.6; sylvan returns a double
// for the same reason: the count can exceed any practical integer width
// for wide variable sets). Cached by its own key, separate from the
// Edge-only operation cache, because its result isn't an Edge.
func (m *Manager) Satcount(a, vars Edge) float64 {
	return atomically(m, func() float64 {
		return m.satcountRec(a, vars)
	})
}

func (m *Manager) satcountRec(a, vars Edge) float64 {
	if a == False {
		return 0
	}
	if vars == True {
		return 1
	}
	key := satcountKey{a, vars}
	if v, hit := m.satCache.Load(key); hit {
		return v.(float64)
	}

	vv := m.table.get(vars.index()).variable()
	var result float64
	if a == True {
		result = math.Pow(2, float64(m.cubeLen(vars)))
	} else {
		av := m.table.get(a.index()).variable()
		restVars := m.table.get(vars.index()).high
		if av > vv {
			result = 2 * m.satcountRec(a, restVars)
		} else {
			lo, hi := m.cofactor(a, av)
			result = m.satcountRec(lo, restVars) + m.satcountRec(hi, restVars)
		}
	}
	m.satCache.Store(key, result)
	return result
}

// Pathcount returns the number of paths from a to True, counting a path
// through a variable a doesn't test exactly once rather than scaling by
// 2^skipped — unlike Satcount, it takes no vars cube (§6's `pathcount`,
// distinct from `satcount`). Grounded on
// original_source/src/sylvan.c's sylvan_pathcount, which is likewise
// uncached and uses no vars argument.
func (m *Manager) Pathcount(a Edge) float64 {
	return atomically(m, func() float64 {
		return m.pathcountRec(a)
	})
}

func (m *Manager) pathcountRec(a Edge) float64 {
	if a == False {
		return 0
	}
	if a == True {
		return 1
	}
	n := m.table.get(a.index())
	comp := a.complemented()
	low := n.low.withComplement(comp)
	high := n.high.withComplement(comp)
	return m.pathcountRec(low) + m.pathcountRec(high)
}

// cubeLen counts the variables remaining in a cube spine.
func (m *Manager) cubeLen(vars Edge) int {
	n := 0
	for vars != True {
		n++
		vars = m.table.get(vars.index()).high
	}
	return n
}

// Cube builds the conjunction of literals described by bits (indexed by
// position in the vars cube; -1 means "don't care", 0 means negative
// literal, any other value a positive literal), following §4.6's
// `cube(vars, cube[])`.
func (m *Manager) Cube(vars Edge, bits []int) Edge {
	return m.atomically(func() Edge {
		varList := make([]int32, 0, len(bits))
		for v := vars; v != True; v = m.table.get(v.index()).high {
			varList = append(varList, m.table.get(v.index()).variable())
		}
		result := True
		for i := len(varList) - 1; i >= 0; i-- {
			if i >= len(bits) || bits[i] < 0 {
				continue
			}
			if bits[i] == 0 {
				result, _ = m.makenode(varList[i], result, False)
			} else {
				result, _ = m.makenode(varList[i], False, result)
			}
		}
		return result
	})
}

// SatOne returns one satisfying path of a restricted to vars, with
// "don't care" variables resolved arbitrarily toward false (§6's
// `sat_one`). Distinct from PickCube: SatOne always resolves every
// variable named in the caller-supplied vars cube, while PickCube takes
// no vars cube at all and only tests the variables a itself branches on.
func (m *Manager) SatOne(a, vars Edge) Edge {
	return m.atomically(func() Edge {
		return m.satOneRec(a, vars)
	})
}

func (m *Manager) satOneRec(a, vars Edge) Edge {
	if a == False {
		return False
	}
	if vars == True {
		return True
	}
	vn := m.table.get(vars.index())
	v := vn.variable()
	rest := vn.high

	if a.IsConstant() {
		lo := m.satOneRec(a, rest)
		result, _ := m.makenode(v, lo, False)
		return result
	}
	an := m.table.get(a.index())
	if an.variable() != v {
		lo := m.satOneRec(a, rest)
		result, _ := m.makenode(v, lo, False)
		return result
	}
	comp := a.complemented()
	low := an.low.withComplement(comp)
	high := an.high.withComplement(comp)
	if low == False {
		hi := m.satOneRec(high, rest)
		result, _ := m.makenode(v, False, hi)
		return result
	}
	lo := m.satOneRec(low, rest)
	result, _ := m.makenode(v, lo, False)
	return result
}

// PickCube returns an arbitrary cube implying a, without a vars cube: it
// only tests the variables a itself branches on along the path it picks,
// leaving every other variable untested (§6's `pick_cube`, distinct from
// `sat_one`). No surviving body for sylvan_pick_cube exists in the
// retrieved original_source/ subset (only its call sites in
// test/test_basic.c), so the low/high preference below is this engine's
// own choice, consistent with SatOne's preference for the low branch
// when available.
func (m *Manager) PickCube(a Edge) Edge {
	return m.atomically(func() Edge {
		return m.pickCubeRec(a)
	})
}

func (m *Manager) pickCubeRec(a Edge) Edge {
	if a == False {
		return False
	}
	if a == True {
		return True
	}
	n := m.table.get(a.index())
	comp := a.complemented()
	v := n.variable()
	low := n.low.withComplement(comp)
	high := n.high.withComplement(comp)
	if low != False {
		lo := m.pickCubeRec(low)
		result, _ := m.makenode(v, lo, False)
		return result
	}
	hi := m.pickCubeRec(high)
	result, _ := m.makenode(v, False, hi)
	return result
}

// EnumFirst begins enumerating the satisfying paths of a over vars,
// writing one entry per variable in vars into arr (0 for a false
// literal, 1 for a true literal, 2 for a don't-care) and reporting
// whether a satisfying path exists at all. A subsequent EnumNext(a,
// vars, arr) advances the same arr to the next path. Grounded on
// original_source/src/sylvan_zdd.c's mtbdd_enum_first, adapted from
// MTBDD leaves to this engine's True/False terminals (dropping the
// filter callback, which has no analogue for a plain Boolean function).
func (m *Manager) EnumFirst(a, vars Edge, arr []int) bool {
	return m.atomically(func() bool {
		return m.enumFirstRec(a, vars, arr)
	})
}

func (m *Manager) enumFirstRec(a, vars Edge, arr []int) bool {
	if a == False {
		return false
	}
	if a == True {
		i := 0
		for v := vars; v != True; v = m.table.get(v.index()).high {
			arr[i] = 2
			i++
		}
		return true
	}

	vn := m.table.get(vars.index())
	v := vn.variable()
	rest := vn.high

	n := m.table.get(a.index())
	if n.variable() != v {
		arr[0] = 2
		return m.enumFirstRec(a, rest, arr[1:])
	}

	comp := a.complemented()
	low := n.low.withComplement(comp)
	high := n.high.withComplement(comp)

	if m.enumFirstRec(low, rest, arr[1:]) {
		arr[0] = 0
		return true
	}
	if m.enumFirstRec(high, rest, arr[1:]) {
		arr[0] = 1
		return true
	}
	return false
}

// EnumNext advances a path enumeration state in arr, as last populated by
// EnumFirst or EnumNext, to the next satisfying path of a over vars,
// reporting false once the paths are exhausted. Grounded on
// original_source/src/sylvan_zdd.c's mtbdd_enum_next, same adaptation as
// EnumFirst.
func (m *Manager) EnumNext(a, vars Edge, arr []int) bool {
	return m.atomically(func() bool {
		return m.enumNextRec(a, vars, arr)
	})
}

func (m *Manager) enumNextRec(a, vars Edge, arr []int) bool {
	if a.IsConstant() {
		// We've returned to a leaf already reported by a prior
		// EnumFirst/EnumNext call: nothing further to enumerate here.
		return false
	}

	rest := m.table.get(vars.index()).high
	n := m.table.get(a.index())
	comp := a.complemented()
	low := n.low.withComplement(comp)
	high := n.high.withComplement(comp)

	switch arr[0] {
	case 0:
		if m.enumNextRec(low, rest, arr[1:]) {
			return true
		}
		if m.enumFirstRec(high, rest, arr[1:]) {
			arr[0] = 1
			return true
		}
		return false
	case 1:
		return m.enumNextRec(high, rest, arr[1:])
	default:
		return m.enumNextRec(a, rest, arr[1:])
	}
}

// mapLookup finds the substitution edge for variable v in a map spine (a
// right-spined chain like a cube, but each node's high edge carries the
// replacement target for that variable instead of True); the spine is
// sorted ascending by variable so the walk stops as soon as it passes v.
func (m *Manager) mapLookup(mapping Edge, v int32) (g Edge, found bool) {
	for mapping != True {
		n := m.table.get(mapping.index())
		switch {
		case n.variable() == v:
			return n.high, true
		case n.variable() > v:
			return Invalid, false
		default:
			mapping = n.low
		}
	}
	return Invalid, false
}

// MapPair is one (variable, replacement) entry for NewMap.
type MapPair struct {
	Var    int32
	Target Edge
}

// NewMap builds a substitution spine for Compose from pairs sorted
// ascending by Var. Unlike every other node this engine ever allocates,
// a map node's high edge carries an arbitrary replacement target rather
// than a cofactor, so it cannot be built through makenode (whose
// normalization would collapse a pair with rest == target and flip both
// edges when rest is complemented, as True is); it is inserted
// directly into the unique table's storage instead. Map nodes are never
// passed to any operation except Compose's mapLookup/composeRec, which
// read the two fields as (rest-of-spine, substitution) rather than as a
// Shannon cofactor pair.
func (m *Manager) NewMap(pairs []MapPair) Edge {
	return m.atomically(func() Edge {
		rest := True
		for i := len(pairs) - 1; i >= 0; i-- {
			rest = m.insertMapNode(pairs[i].Var, rest, pairs[i].Target)
		}
		return rest
	})
}

func (m *Manager) insertMapNode(v int32, rest, target Edge) Edge {
	for {
		idx, _, ok, nearFull := m.table.lookupOrCreate(v, rest, target)
		if !ok {
			panic(needGC{})
		}
		if nearFull {
			m.gcPending.Store(true)
		}
		return newEdge(idx, false)
	}
}

// Compose substitutes, for every node variable v with an entry (v, g) in
// mapping, that node by ite(g, high, low) (§4.6's `compose`).
func (m *Manager) Compose(a, mapping Edge) Edge {
	return m.atomically(func() Edge {
		scratch, end := m.runtime.beginOp()
		defer end()
		return m.composeRec(a, mapping, scratch)
	})
}

func (m *Manager) composeRec(a, mapping Edge, scratch *opScratch) Edge {
	if a.IsConstant() {
		return a
	}
	n := m.table.get(a.index())
	comp := a.complemented()
	v := n.variable()
	low := n.low.withComplement(comp)
	high := n.high.withComplement(comp)

	scratch.push(low)
	scratch.push(high)
	newLow := m.composeRec(low, mapping, scratch)
	newHigh := m.composeRec(high, mapping, scratch)
	scratch.pop(2)

	if g, found := m.mapLookup(mapping, v); found {
		return m.iteRec(g, newHigh, newLow, 0, true, scratch)
	}
	result, _ := m.makenode(v, newLow, newHigh)
	return result
}
