// Package dag is the composition graph at the heart of jigsaw. A Graph holds
// pieces as nodes, wires output ports to input ports with edges, refuses any
// edge that would close a cycle, and runs nodes in a deterministic
// topological order: when several nodes are ready at once, the one added
// first runs first.
//
// Structural problems (duplicate ids, unknown nodes or ports, port conflicts,
// cycles, unsatisfied inputs) are reported as typed errors before any piece
// is invoked. Errors returned by a piece abort the run and reach the caller
// unchanged.
package dag
