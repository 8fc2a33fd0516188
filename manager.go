package parabdd

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Manager owns one unique table, one operation cache, and one task
// runtime; it is the subsystem handle described in spec §9's "Global
// mutable state" design note. The teacher exposes the equivalent state as
// a BDD struct (bdd.go); we keep that per-instance-handle shape rather
// than a process-wide singleton, since a handle is simpler to test and
// the task runtime is already a member of it, not a separate singleton.
type Manager struct {
	table   *uniqueTable
	cache   *operationCache
	refs    *refRoots
	runtime *taskRuntime

	cfg *config
	log zerolog.Logger

	// worldMu implements the stop-the-world safepoint (§4.1, §5): every
	// public recursive entry point RLocks it for its whole call tree;
	// requestGC (gc.go) takes the write lock, which Go's sync.RWMutex
	// guarantees drains in-flight readers and blocks new ones without any
	// worker needing to poll a flag.
	worldMu sync.RWMutex

	varnum  int32
	ithvars []Edge // [varnum] positive literals, built once at SetVarnum time
	nithvar []Edge // [varnum] negative literals

	gcCount atomic.Int64
	// produced counts every node ever claimed via lookupOrCreate, lifetime
	// total, independent of how many survive the next GC sweep — table.count
	// tracks the current live count, this tracks cumulative churn.
	produced atomic.Int64
	lastErr  atomic.Pointer[string]

	// gcPending is set by makenode when the table crosses its fill
	// threshold on an otherwise-successful insert (§4.2 step 5); atomically
	// requesting GC there would deadlock against the RLock an in-flight
	// top-level call already holds (see atomically below), so the request
	// is deferred until that call tree unwinds.
	gcPending atomic.Bool

	// satCache memoizes Satcount, keyed by (a, vars) (§4.6: "cached under
	// its own opcode keyed by a and |vars|"). It is separate from the
	// operation cache in opcache.go because that cache's cache line only
	// has room for an Edge result, not a float64; cleared on every GC
	// alongside the operation cache (gc.go).
	satCache sync.Map
}

// needGC is the panic payload makenode raises when the unique table probe
// is exhausted with no slot to claim (§4.2: "the table needs a GC/resize").
// atomically recovers it, runs a collection, and retries the whole
// top-level call — safe because every DD operation is a pure function of
// its arguments and the operation cache is only ever a memo, never a
// source of truth.
type needGC struct{}

// atomically is the safepoint boundary described in §4.1/§5: it RLocks
// worldMu for the duration of one top-level public call (Ite, Exists, ...),
// so that requestGC's write-lock in gc.go can only proceed once every such
// call has returned or is blocked trying to acquire a new one. A makenode
// failure deep in the recursion unwinds here via panic/recover, since
// threading a "please retry from the top" error return through every
// recursive operation would obscure the §4.6 algorithm shape the teacher's
// code follows.
func (m *Manager) atomically(fn func() Edge) Edge {
	return atomically(m, fn)
}

// atomically is a free function, not a method, only because Go methods
// cannot carry their own type parameters: Nodecount/Satcount need the same
// safepoint and needGC-retry machinery as Ite but return int/float64
// instead of Edge.
func atomically[T any](m *Manager, fn func() T) T {
	for {
		before := m.table.fillFraction()
		result, retry := runOnce(m, fn)
		if !retry {
			if m.gcPending.CompareAndSwap(true, false) {
				m.requestGC()
			}
			return result
		}
		m.requestGC()
		if m.table.fillFraction() >= before {
			panicTableFull(&m.log, m.table.capacity, m.table.fillFraction())
		}
	}
}

// makeRootNode wraps makenode with a bare (lock-free) retry-after-gc loop,
// for use only during construction before any caller could be holding
// worldMu's RLock.
func (m *Manager) makeRootNode(v int32, low, high Edge) Edge {
	for {
		before := m.table.fillFraction()
		e, retry := m.tryMakeNode(v, low, high)
		if !retry {
			return e
		}
		m.requestGC()
		if m.table.fillFraction() >= before {
			panicTableFull(&m.log, m.table.capacity, m.table.fillFraction())
		}
	}
}

func (m *Manager) tryMakeNode(v int32, low, high Edge) (e Edge, retry bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(needGC); ok {
				retry = true
				return
			}
			panic(r)
		}
	}()
	e, _ = m.makenode(v, low, high)
	return e, false
}

func runOnce[T any](m *Manager, fn func() T) (result T, retry bool) {
	m.worldMu.RLock()
	defer m.worldMu.RUnlock()
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(needGC); ok {
				retry = true
				return
			}
			panic(r)
		}
	}()
	return fn(), false
}

// New creates a Manager configured with varnum initial variables and the
// given options (§6's init). It mirrors the teacher's New/makeconfigs
// (config.go), generalized to spec's parallel, power-of-two capacities.
func New(varnum int, opts ...Option) (*Manager, error) {
	cfg := defaultConfig(varnum)
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	log := cfg.logger
	if log == nil {
		disabled := zerolog.Nop()
		log = &disabled
	}

	m := &Manager{
		table:   newUniqueTable(cfg.nodeTableLog2, cfg.gcThreshold, log),
		cache:   newOperationCache(cfg.cacheLog2),
		refs:    newRefRoots(),
		runtime: newTaskRuntime(cfg.workers),
		cfg:     cfg,
		log:     *log,
	}
	if err := m.setVarnum(varnum); err != nil {
		return nil, err
	}
	return m, nil
}

// Close tears down the Manager (§6's quit). Clients must ensure no
// operation is in flight; Close does not attempt to cancel in-flight work
// (§5, "not supported in the core").
func (m *Manager) Close() {
	m.worldMu.Lock()
	defer m.worldMu.Unlock()
	m.log.Debug().Msg("quit")
}

// Varnum returns the number of defined variables.
func (m *Manager) Varnum() int {
	return int(atomic.LoadInt32(&m.varnum))
}

// setVarnum builds the ithvar/nithvar literal tables, following the
// teacher's SetVarnum (varnum.go), generalized since this engine's
// makenode is lock-free and doesn't need a pre-reserved refstack.
func (m *Manager) setVarnum(num int) error {
	if num < 0 || int32(num) > maxVar {
		return errBadVarnum
	}
	ith := make([]Edge, num)
	nith := make([]Edge, num)
	for v := 0; v < num; v++ {
		// No other goroutine can be holding worldMu's RLock yet (New has
		// not returned), so a bare requestGC on a needGC panic is safe
		// here; atomically's recursive-call protection isn't needed until
		// after construction.
		pos := m.makeRootNode(int32(v), False, True)
		neg := m.makeRootNode(int32(v), True, False)
		m.Ref(pos)
		m.Ref(neg)
		ith[v] = pos
		nith[v] = neg
	}
	m.ithvars = ith
	m.nithvar = nith
	atomic.StoreInt32(&m.varnum, int32(num))
	return nil
}

// Ithvar returns the Edge for the i'th variable in its positive form (§6).
func (m *Manager) Ithvar(i int) (Edge, error) {
	if i < 0 || i >= len(m.ithvars) {
		return Invalid, errVarOutOfRange
	}
	return m.ithvars[i], nil
}

// NIthvar returns the Edge for the negation of the i'th variable (§6).
func (m *Manager) NIthvar(i int) (Edge, error) {
	if i < 0 || i >= len(m.nithvar) {
		return Invalid, errVarOutOfRange
	}
	return m.nithvar[i], nil
}

// Var returns the variable level of an internal edge, or -1 for a constant.
func (m *Manager) Var(e Edge) int32 {
	if e.IsConstant() {
		return -1
	}
	return m.table.get(e.index()).variable()
}

// Low returns the false branch of e, propagating e's complement per I4.a.
func (m *Manager) Low(e Edge) Edge {
	if e.IsConstant() {
		return Invalid
	}
	n := m.table.get(e.index())
	return n.low.withComplement(e.complemented())
}

// High returns the true branch of e, propagating e's complement per I4.a.
func (m *Manager) High(e Edge) Edge {
	if e.IsConstant() {
		return Invalid
	}
	n := m.table.get(e.index())
	return n.high.withComplement(e.complemented())
}

// MakeNode builds (or reuses, per the ROBDD reduction rule I3) the node
// for variable v with the given low/high branches, under the same
// safepoint/GC-retry protocol as every other public entry point. Exposed
// for reach/sat.go's Shannon-expansion step, which reconstructs a node
// directly rather than going through Ite.
func (m *Manager) MakeNode(v int32, low, high Edge) Edge {
	return m.atomically(func() Edge {
		e, _ := m.makenode(v, low, high)
		return e
	})
}

// Err reports the error recorded in the Manager's last-error slot, or nil,
// following the teacher's Error/Errored (errors.go). No operation of this
// engine records an error there: every fallible call returns its error
// directly, so Err returns nil.
func (m *Manager) Err() error {
	p := m.lastErr.Load()
	if p == nil {
		return nil
	}
	return fmt.Errorf("%s", *p)
}

// Stats reports table usage, GC count, and the lifetime count of produced
// nodes (see SPEC_FULL.md's supplemented sylvan_stats_report), grounded on
// the teacher's cache.go String() methods. No cache hit ratio is tracked.
func (m *Manager) Stats() string {
	return fmt.Sprintf(
		"table: %d/%d (%.1f%% full, %s)\ngc: %d passes\nproduced: %d nodes (lifetime)\n",
		m.table.count.Load(), m.table.capacity, m.table.fillFraction()*100,
		humanSize(m.table.capacity, 16),
		m.gcCount.Load(),
		m.produced.Load(),
	)
}
