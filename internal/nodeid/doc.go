/*
Package nodeid provides a structured, type-safe representation for node
identifiers and port references within a composition graph.

A node id is a single segment such as `encoder` or `loss_1`. A port
reference is written `node.port`, e.g. `encoder.out`. Port names may
themselves contain dots, which is how ports re-exported by a nested
composite are spelled: `pair.p.in` addresses port `p.in` of node `pair`.

This package centralizes all formatting and parsing logic so the graph,
the loaders and the CLI agree on a single spelling.
*/
package nodeid
