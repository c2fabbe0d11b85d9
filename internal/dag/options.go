package dag

import "github.com/vk/jigsaw/internal/nodestore"

// RunOption customizes a single run.
type RunOption func(*runConfig)

type runConfig struct {
	workers  int
	store    nodestore.Store
	observer func(nodeID string)
}

// WithWorkers runs independent branches on up to n goroutines. Values of n
// below 2 select the default serial mode. Results are identical in both
// modes; only the overlap between nodes changes.
func WithWorkers(n int) RunOption {
	return func(c *runConfig) {
		c.workers = n
	}
}

// WithStore records per-node state into s instead of a private store, so the
// caller can inspect statuses, outputs and errors after the run.
func WithStore(s nodestore.Store) RunOption {
	return func(c *runConfig) {
		c.store = s
	}
}

// WithObserver registers fn to be called with each node's id just before its
// piece is invoked. In parallel mode fn may be called from several goroutines
// at once.
func WithObserver(fn func(nodeID string)) RunOption {
	return func(c *runConfig) {
		c.observer = fn
	}
}
