// Package parabdd implements a multi-core Reduced Ordered Binary Decision
// Diagram (ROBDD) engine for symbolic model checking.
//
// Boolean functions and sets or relations over fixed-size Boolean state
// vectors are represented as edges into a process-wide, hash-consed unique
// table shared by every worker goroutine. Clients build functions from
// primitives (constant true/false, single-variable functions), combine them
// with the usual Boolean connectives and quantifiers, and compute image and
// pre-image of a transition relation for reachability analysis.
//
// # Basics
//
// A Manager owns one unique table, one operation cache, and one task
// runtime; it is created with New and must be closed with Close. Every
// Manager variable is an index in [0, Varnum) called a level. Constants
// True and False are distinguished edges, never allocated in the table.
//
// # Concurrency
//
// Manager methods are safe for concurrent use from multiple goroutines,
// except Support and Nodecount, which set and clear a per-node flag and
// must not run concurrently with another traversal of a shared edge.
// Recursive operations fork their low cofactor onto the task runtime and
// compute the high cofactor inline, following a classic work-stealing
// fork-join schedule; garbage collection stops the world, marks from the
// reference roots, wipes the operation cache, and sweeps the table.
//
// # Scope
//
// This package implements the core engine: the unique table, operation
// cache, reference roots, the node/edge layer, and the recursive DD
// algorithms (ite and its derived connectives, quantification, relational
// product). The reachability drivers (bfs, par, sat) live in the reach
// sub-package, the model file reader in model, and the CLI front end in
// cmd/mc. No multi-terminal or zero-suppressed variant is implemented.
package parabdd
