package dag

import (
	"context"
	"slices"
	"sync"

	"github.com/vk/jigsaw/internal/ctxlog"
	"github.com/vk/jigsaw/internal/inmemorystore"
	"github.com/vk/jigsaw/internal/nodeid"
	"github.com/vk/jigsaw/internal/nodestore"
	"github.com/vk/jigsaw/internal/piece"
	"github.com/zclconf/go-cty/cty"
)

// plan is an immutable snapshot of the graph taken when a run begins.
type plan struct {
	nodes      []*Node
	index      map[string]int
	order      []int
	dependents [][]int
	sources    map[nodeid.Port]nodeid.Port
	outputs    []nodeid.Port
	// needed holds every output port something reads: edge sources and
	// reported graph outputs.
	needed map[nodeid.Port]struct{}
}

// begin validates the graph, freezes its structure and returns a plan.
// Callers must call g.end once the run finishes.
func (g *Graph) begin() (*plan, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	order, err := g.orderLocked()
	if err != nil {
		return nil, err
	}
	g.running.Add(1)

	p := &plan{
		nodes:      slices.Clone(g.ordered),
		index:      make(map[string]int, len(g.ordered)),
		order:      order,
		dependents: g.dependentIndices(),
		sources:    make(map[nodeid.Port]nodeid.Port, len(g.sources)),
		outputs:    g.outputsLocked(),
		needed:     make(map[nodeid.Port]struct{}),
	}
	for i, n := range p.nodes {
		p.index[n.id] = i
	}
	for to, from := range g.sources {
		p.sources[to] = from
		p.needed[from] = struct{}{}
	}
	for _, out := range p.outputs {
		p.needed[out] = struct{}{}
	}
	return p, nil
}

func (g *Graph) end() {
	g.running.Add(-1)
}

// checkInputs verifies the externally supplied values against the plan
// before anything runs.
func (p *plan) checkInputs(inputs map[nodeid.Port]cty.Value) error {
	supplied := make([]nodeid.Port, 0, len(inputs))
	for port := range inputs {
		supplied = append(supplied, port)
	}
	nodeid.SortPorts(supplied)

	for _, port := range supplied {
		i, ok := p.index[port.Node]
		if !ok {
			return &UnknownNodeError{ID: port.Node, Role: "input"}
		}
		if !p.nodes[i].hasInput(port.Name) {
			return &UnknownPortError{Port: port, Direction: "input"}
		}
		if src, fed := p.sources[port]; fed {
			return &PortConflictError{Port: port, Existing: src.String(), Attempted: "external value"}
		}
	}

	var missing []nodeid.Port
	for _, n := range p.nodes {
		for _, in := range n.inputs {
			port := nodeid.NewPort(n.id, in)
			if _, fed := p.sources[port]; fed {
				continue
			}
			if _, ok := inputs[port]; !ok {
				missing = append(missing, port)
			}
		}
	}
	if len(missing) > 0 {
		return &UnsatisfiedInputError{Ports: missing}
	}
	return nil
}

// Run executes every node in topological order and returns the values of the
// graph outputs: all declared outputs of exit nodes plus marked ports.
//
// inputs must supply a value for each input port that has no incoming edge.
// Structural problems are reported before any piece runs. An error returned
// by a piece stops the run and is returned as is.
func (g *Graph) Run(ctx context.Context, inputs map[nodeid.Port]cty.Value) (map[nodeid.Port]cty.Value, error) {
	return g.RunWithOptions(ctx, inputs)
}

// RunWithOptions is Run with per-run options.
func (g *Graph) RunWithOptions(ctx context.Context, inputs map[nodeid.Port]cty.Value, opts ...RunOption) (map[nodeid.Port]cty.Value, error) {
	cfg := runConfig{workers: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.store == nil {
		cfg.store = inmemorystore.New()
	}

	p, err := g.begin()
	if err != nil {
		return nil, err
	}
	defer g.end()

	if err := p.checkInputs(inputs); err != nil {
		return nil, err
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Graph run starting.", "nodes", len(p.nodes), "workers", cfg.workers)

	r := &run{
		plan:    p,
		cfg:     cfg,
		inputs:  inputs,
		results: make([]piece.Values, len(p.nodes)),
	}
	if cfg.workers > 1 {
		err = r.parallel(ctx)
	} else {
		err = r.serial(ctx)
	}
	if err != nil {
		r.skipPending(ctx)
		logger.Debug("Graph run aborted.", "error", err)
		return nil, err
	}

	logger.Debug("Graph run finished.", "outputs", len(p.outputs))
	return r.collect(), nil
}

// run holds the mutable state of one execution.
type run struct {
	plan   *plan
	cfg    runConfig
	inputs map[nodeid.Port]cty.Value

	mu      sync.Mutex
	results []piece.Values
}

func (r *run) serial(ctx context.Context) error {
	for _, i := range r.plan.order {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.invoke(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// gather assembles the input values for node n from upstream results and
// external inputs.
func (r *run) gather(n *Node) piece.Values {
	r.mu.Lock()
	defer r.mu.Unlock()

	vals := make(piece.Values, len(n.inputs))
	for _, in := range n.inputs {
		port := nodeid.NewPort(n.id, in)
		if src, ok := r.plan.sources[port]; ok {
			vals[in] = r.results[r.plan.index[src.Node]][src.Name]
			continue
		}
		vals[in] = r.inputs[port]
	}
	return vals
}

func (r *run) invoke(ctx context.Context, i int) error {
	n := r.plan.nodes[i]
	logger := ctxlog.FromContext(ctx).With("node", n.id)

	in := r.gather(n)
	r.setStatus(ctx, n.id, nodestore.StatusRunning)
	if r.cfg.observer != nil {
		r.cfg.observer(n.id)
	}

	logger.Debug("Invoking piece.", "piece", piece.NameOf(n.piece))
	out, err := n.piece.Invoke(ctx, in)
	if err != nil {
		r.fail(ctx, n.id, err)
		logger.Debug("Piece failed.", "error", err)
		return err
	}

	kept := make(piece.Values, len(n.outputs))
	for _, name := range n.outputs {
		port := nodeid.NewPort(n.id, name)
		v, ok := out[name]
		if !ok {
			if _, needed := r.plan.needed[port]; needed {
				missing := &MissingOutputError{Port: port}
				r.fail(ctx, n.id, missing)
				return missing
			}
			continue
		}
		kept[name] = v
	}
	if len(kept) < len(out) {
		logger.Debug("Dropping undeclared piece outputs.", "returned", len(out), "declared", len(n.outputs))
	}

	r.mu.Lock()
	r.results[i] = kept
	r.mu.Unlock()

	if err := r.cfg.store.SetOutput(ctx, n.id, kept.Clone()); err != nil {
		logger.Warn("Failed to record node output.", "error", err)
	}
	r.setStatus(ctx, n.id, nodestore.StatusCompleted)
	logger.Debug("Piece completed.")
	return nil
}

func (r *run) setStatus(ctx context.Context, id string, status nodestore.Status) {
	if err := r.cfg.store.SetStatus(ctx, id, status); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to record node status.", "node", id, "status", status.String(), "error", err)
	}
}

func (r *run) fail(ctx context.Context, id string, nodeErr error) {
	r.setStatus(ctx, id, nodestore.StatusFailed)
	if err := r.cfg.store.SetError(ctx, id, nodeErr); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to record node error.", "node", id, "error", err)
	}
}

// skipPending marks every node that never started as skipped.
func (r *run) skipPending(ctx context.Context) {
	// The caller's context may already be cancelled; state recording must
	// still happen.
	ctx = context.WithoutCancel(ctx)
	for _, n := range r.plan.nodes {
		status, err := r.cfg.store.GetStatus(ctx, n.id)
		if err == nil && status == nodestore.StatusPending {
			r.setStatus(ctx, n.id, nodestore.StatusSkipped)
		}
	}
}

func (r *run) collect() map[nodeid.Port]cty.Value {
	out := make(map[nodeid.Port]cty.Value, len(r.plan.outputs))
	for _, port := range r.plan.outputs {
		out[port] = r.results[r.plan.index[port.Node]][port.Name]
	}
	return out
}
