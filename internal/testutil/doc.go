// Package testutil contains shared helpers for constructing workflows, steps
// and stub agents in tests. It is internal so production code cannot grow a
// dependency on test conveniences.
package testutil
