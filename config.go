package parabdd

import "github.com/rs/zerolog"

// Default configuration values, following the teacher's config.go
// conventions (_MINFREENODES, _DEFAULTMAXNODEINC, ...) but sized for the
// parallel, power-of-two-capacity table mandated by spec §4.2.
const (
	defaultNodeTableLog2 = 20 // 2^20 slots
	defaultCacheLog2     = 18 // 2^18 cache lines
	defaultGranularity   = 6
	defaultGCThreshold   = 0.5 // fill fraction that triggers GC, per §4.2 step 5
)

// config holds every parameter accepted by New. It is built from the
// functional options below, following the teacher's makeconfigs/Nodesize
// pattern in config.go.
type config struct {
	varnum          int
	nodeTableLog2   int
	cacheLog2       int
	workers         int
	granularity     int
	gcThreshold     float64
	logger          *zerolog.Logger
	deadlockChecks  bool
}

func defaultConfig(varnum int) *config {
	return &config{
		varnum:        varnum,
		nodeTableLog2: defaultNodeTableLog2,
		cacheLog2:     defaultCacheLog2,
		workers:       0, // autodetect
		granularity:   defaultGranularity,
		gcThreshold:   defaultGCThreshold,
	}
}

// Option configures a Manager at construction time.
type Option func(*config)

// NodeTableSize sets log2(capacity) of the unique table. Typical production
// values are 25..28 (see §4.2); tests use much smaller values.
func NodeTableSize(log2 int) Option {
	return func(c *config) { c.nodeTableLog2 = log2 }
}

// CacheSize sets log2(capacity) of the operation cache. Sized independently
// of the node table (typical 24..26 in production, §4.4).
func CacheSize(log2 int) Option {
	return func(c *config) { c.cacheLog2 = log2 }
}

// Workers sets the number of task-runtime worker goroutines. Zero (the
// default) autodetects from runtime.GOMAXPROCS, following §4.1.
func Workers(n int) Option {
	return func(c *config) { c.workers = n }
}

// Granularity sets the recursion-depth quotient at which DD operations
// consult the operation cache (§4.6 step 3). The default is 6, matching
// the reference implementation this spec distills from.
func Granularity(g int) Option {
	return func(c *config) { c.granularity = g }
}

// GCThreshold sets the table fill fraction (in (0,1]) that triggers a
// garbage collection during makenode (§4.2 step 5). The default is 0.5.
func GCThreshold(f float64) Option {
	return func(c *config) { c.gcThreshold = f }
}

// WithLogger attaches a structured logger (github.com/rs/zerolog) used for
// GC and table-full diagnostics. The default is a disabled
// logger, so Manager is silent unless a logger is supplied.
func WithLogger(log *zerolog.Logger) Option {
	return func(c *config) { c.logger = log }
}

// WithDeadlockDetection sets the deadlock-detection flag in the Manager's
// configuration. No reachability driver reads this flag: the deadlock
// pass runs only when a caller uses reach.WithDeadlocks.
func WithDeadlockDetection() Option {
	return func(c *config) { c.deadlockChecks = true }
}

func (c *config) validate() error {
	if c.varnum < 0 || c.varnum > maxVar {
		return errBadVarnum
	}
	if c.nodeTableLog2 < 4 || c.nodeTableLog2 > 31 {
		return errBadNodeSize
	}
	if c.cacheLog2 < 4 || c.cacheLog2 > 31 {
		return errBadCacheSize
	}
	if c.granularity < 1 {
		return errBadGranularity
	}
	if c.workers < 0 {
		return errBadWorkerCount
	}
	if c.gcThreshold <= 0 || c.gcThreshold > 1 {
		return errBadGranularity
	}
	return nil
}
