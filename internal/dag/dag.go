package dag

import (
	"fmt"
	"slices"

	"github.com/vk/jigsaw/internal/nodeid"
	"github.com/vk/jigsaw/internal/piece"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		sources: make(map[nodeid.Port]nodeid.Port),
	}
}

// AddNode registers p under id. It fails with DuplicateIDError if the id is
// taken, InvalidIDError or InvalidPortError for malformed names, and
// NestingError if p owns this graph somewhere beneath it.
func (g *Graph) AddNode(id string, p piece.Piece) (*Node, error) {
	if p == nil {
		return nil, fmt.Errorf("node %q: piece must not be nil", id)
	}
	if err := nodeid.ValidateID(id); err != nil {
		return nil, &InvalidIDError{ID: id, Err: err}
	}

	inputs := p.Inputs()
	outputs := p.Outputs()
	if err := checkPortNames(id, inputs); err != nil {
		return nil, err
	}
	if err := checkPortNames(id, outputs); err != nil {
		return nil, err
	}
	if g.containedBy(p) {
		return nil, &NestingError{ID: id}
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	if err := g.checkMutableLocked(); err != nil {
		return nil, err
	}
	if _, ok := g.nodes[id]; ok {
		return nil, &DuplicateIDError{ID: id}
	}

	n := &Node{
		id:      id,
		index:   len(g.ordered),
		piece:   p,
		inputs:  slices.Clone(inputs),
		outputs: slices.Clone(outputs),
	}
	g.nodes[id] = n
	g.ordered = append(g.ordered, n)
	return n, nil
}

func checkPortNames(node string, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if err := nodeid.ValidatePortName(name); err != nil {
			return &InvalidPortError{Node: node, Port: name, Reason: err.Error()}
		}
		if _, dup := seen[name]; dup {
			return &InvalidPortError{Node: node, Port: name, Reason: "declared twice"}
		}
		seen[name] = struct{}{}
	}
	return nil
}

// containedBy reports whether g is reachable through p's nested graphs.
func (g *Graph) containedBy(p piece.Piece) bool {
	nester, ok := p.(Nester)
	if !ok {
		return false
	}
	seen := make(map[*Graph]struct{})
	stack := nester.Subgraphs()
	for len(stack) > 0 {
		sub := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if sub == nil {
			continue
		}
		if sub == g {
			return true
		}
		if _, ok := seen[sub]; ok {
			continue
		}
		seen[sub] = struct{}{}
		for _, n := range sub.Nodes() {
			if inner, ok := n.piece.(Nester); ok {
				stack = append(stack, inner.Subgraphs()...)
			}
		}
	}
	return false
}

// AddEdge connects output port from to input port to, meaning to's node
// depends on from's node. The graph is left unchanged when an error is
// returned.
func (g *Graph) AddEdge(from, to nodeid.Port) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if err := g.checkMutableLocked(); err != nil {
		return err
	}

	fromNode, ok := g.nodes[from.Node]
	if !ok {
		return &UnknownNodeError{ID: from.Node, Role: "edge source"}
	}
	toNode, ok := g.nodes[to.Node]
	if !ok {
		return &UnknownNodeError{ID: to.Node, Role: "edge destination"}
	}
	if !fromNode.hasOutput(from.Name) {
		return &UnknownPortError{Port: from, Direction: "output"}
	}
	if !toNode.hasInput(to.Name) {
		return &UnknownPortError{Port: to, Direction: "input"}
	}
	if existing, ok := g.sources[to]; ok {
		return &PortConflictError{Port: to, Existing: existing.String(), Attempted: from.String()}
	}
	if path := g.pathLocked(toNode.id, fromNode.id); path != nil {
		return &CycleDetectedError{Path: append([]string{fromNode.id}, path...)}
	}

	g.sources[to] = from
	g.edges = append(g.edges, Edge{From: from, To: to})
	if !slices.Contains(fromNode.dependents, toNode.id) {
		fromNode.dependents = append(fromNode.dependents, toNode.id)
		toNode.deps = append(toNode.deps, fromNode.id)
	}
	return nil
}

// Seal freezes the graph structure. Runs are still allowed; AddNode, AddEdge
// and MarkOutput fail with ErrGraphSealed from then on.
func (g *Graph) Seal() {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.sealed.Store(true)
}

// Sealed reports whether Seal has been called.
func (g *Graph) Sealed() bool { return g.sealed.Load() }

func (g *Graph) checkMutableLocked() error {
	if g.sealed.Load() {
		return ErrGraphSealed
	}
	if g.running.Load() > 0 {
		return ErrGraphRunning
	}
	return nil
}

// Connect is AddEdge with port references in their `node.port` string form.
func (g *Graph) Connect(from, to string) error {
	fromPort, err := nodeid.ParsePort(from)
	if err != nil {
		return err
	}
	toPort, err := nodeid.ParsePort(to)
	if err != nil {
		return err
	}
	return g.AddEdge(fromPort, toPort)
}

// pathLocked returns the node ids along a dependency path from src to dst,
// both included, or nil if dst is unreachable. Neighbours are explored in
// edge insertion order so the reported path is stable.
func (g *Graph) pathLocked(src, dst string) []string {
	if src == dst {
		return []string{src}
	}
	visited := map[string]bool{src: true}
	var walk func(id string) []string
	walk = func(id string) []string {
		for _, next := range g.nodes[id].dependents {
			if next == dst {
				return []string{id, dst}
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			if rest := walk(next); rest != nil {
				return append([]string{id}, rest...)
			}
		}
		return nil
	}
	return walk(src)
}

// MarkOutput designates port as a graph output in addition to the outputs of
// exit nodes.
func (g *Graph) MarkOutput(port nodeid.Port) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if err := g.checkMutableLocked(); err != nil {
		return err
	}
	n, ok := g.nodes[port.Node]
	if !ok {
		return &UnknownNodeError{ID: port.Node, Role: "output"}
	}
	if !n.hasOutput(port.Name) {
		return &UnknownPortError{Port: port, Direction: "output"}
	}
	if !slices.Contains(g.marked, port) {
		g.marked = append(g.marked, port)
	}
	return nil
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (*Node, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return slices.Clone(g.ordered)
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return slices.Clone(g.edges)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return len(g.ordered)
}

// Source returns the output port feeding input port to, if any.
func (g *Graph) Source(to nodeid.Port) (nodeid.Port, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	from, ok := g.sources[to]
	return from, ok
}

// Dependencies returns the ids of the nodes id directly depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, &UnknownNodeError{ID: id}
	}
	return slices.Clone(n.deps), nil
}

// Dependents returns the ids of the nodes that directly depend on id.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, &UnknownNodeError{ID: id}
	}
	return slices.Clone(n.dependents), nil
}

// FreeInputs returns the input ports with no incoming edge, in node
// insertion order then declaration order. These are the ports a run must
// supply externally.
func (g *Graph) FreeInputs() []nodeid.Port {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var free []nodeid.Port
	for _, n := range g.ordered {
		for _, in := range n.inputs {
			p := nodeid.NewPort(n.id, in)
			if _, fed := g.sources[p]; !fed {
				free = append(free, p)
			}
		}
	}
	return free
}

// Outputs returns the ports a run reports: every declared output of each exit
// node (a node with no outgoing edges), followed by explicitly marked ports
// not already included.
func (g *Graph) Outputs() []nodeid.Port {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return g.outputsLocked()
}

func (g *Graph) outputsLocked() []nodeid.Port {
	var out []nodeid.Port
	seen := make(map[nodeid.Port]struct{})
	for _, n := range g.ordered {
		if len(n.dependents) > 0 {
			continue
		}
		for _, name := range n.outputs {
			p := nodeid.NewPort(n.id, name)
			out = append(out, p)
			seen[p] = struct{}{}
		}
	}
	for _, p := range g.marked {
		if _, ok := seen[p]; !ok {
			out = append(out, p)
		}
	}
	return out
}
