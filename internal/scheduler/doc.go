// Package scheduler provides the decision-making engine for graph execution.
// Its role is to track which nodes have all their dependencies satisfied and
// hand them out one at a time, in a deterministic order.
package scheduler
