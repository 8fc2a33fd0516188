package parabdd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Sentinel errors returned from Init-time configuration and from the
// model-file / deserialization paths (§7). Internal DD operations never
// return an error; the single unrecoverable condition, a full unique
// table after garbage collection, aborts the process (see panicTableFull).
var (
	errBadVarnum      = errors.New("parabdd: variable count out of range")
	errBadNodeSize    = errors.New("parabdd: node table size out of range")
	errBadCacheSize   = errors.New("parabdd: operation cache size out of range")
	errBadGranularity = errors.New("parabdd: granularity out of range")
	errBadWorkerCount = errors.New("parabdd: worker count out of range")
	errClosed         = errors.New("parabdd: manager is closed")
	errInvalidEdge    = errors.New("parabdd: invalid edge")
	errVarOutOfRange  = errors.New("parabdd: variable index out of range")
)

// ErrDeserialize wraps a malformed model file (§6, §7); the CLI translates
// it into a non-zero exit status.
type ErrDeserialize struct {
	Reason string
}

func (e *ErrDeserialize) Error() string {
	return fmt.Sprintf("parabdd: malformed model file: %s", e.Reason)
}

// panicTableFull is the one place the core aborts the process: an insert
// into the unique table failed even after a garbage collection pass. The
// rationale (see §7) is that partial construction of a DD leaves no safe
// recoverable state, since intermediate nodes are already shared.
func panicTableFull(log *zerolog.Logger, capacity int, fillFraction float64) {
	log.Error().
		Int("capacity", capacity).
		Float64("fill_fraction", fillFraction).
		Msg("unique table full after garbage collection")
	fmt.Fprintf(os.Stderr, "parabdd: unique table full (capacity=%d, fill=%.3f)\n", capacity, fillFraction)
	os.Exit(1)
}
