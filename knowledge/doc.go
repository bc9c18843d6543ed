// Package knowledge provides the in-memory knowledge store backing planning
// context retrieval and workflow persistence: generic key/value entries plus
// a small document index with substring search and a deterministic
// pseudo-embedding for local similarity. The Store interface allows swapping
// in a real vector backend without touching the conductor.
package knowledge
