/*
Package builder turns a format-agnostic config.Model into a ready-to-run
*dag.Graph. It is the bridge between the definition loaders and the engine.

Construction happens in two phases per graph:

 1. Node creation: every node definition is resolved to a piece, either
    through the registry or, when the kind names a composite defined in the
    same model, by recursively building that composite's own graph.

 2. Linking: edges are added, extra outputs are marked and, for the top-level
    graph only, literal input values are parsed into port references.

Each composite instance gets a fresh graph, so the same composite kind can be
used by several nodes. A composite that instantiates itself, directly or
through other composites, is rejected.
*/
package builder
