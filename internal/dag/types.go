package dag

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/vk/jigsaw/internal/nodeid"
	"github.com/vk/jigsaw/internal/piece"
)

// Graph is a collection of pieces and the edges between their ports. It is
// always acyclic: AddEdge refuses edges that would close a cycle.
//
// All methods are safe for concurrent use. Structure is frozen while a run is
// in progress; mutations during a run fail with ErrGraphRunning. A sealed
// graph is frozen for good and mutations fail with ErrGraphSealed.
type Graph struct {
	// mutex protects the structural fields below.
	mutex sync.RWMutex
	// running counts runs currently executing against this graph.
	running atomic.Int32
	// sealed is set once by Seal and never cleared.
	sealed atomic.Bool

	// nodes stores all nodes, keyed by id.
	nodes map[string]*Node
	// ordered stores nodes in insertion order; Node.index is the position.
	ordered []*Node
	// edges stores edges in insertion order.
	edges []Edge
	// sources maps an input port to the output port that feeds it.
	sources map[nodeid.Port]nodeid.Port
	// marked holds ports explicitly designated as graph outputs.
	marked []nodeid.Port
}

// Node is a single vertex in the graph. Its port declarations are captured
// when the node is added, so a piece cannot change its ports under a built
// graph.
type Node struct {
	id      string
	index   int
	piece   piece.Piece
	inputs  []string
	outputs []string

	// dependents and deps hold node ids, de-duplicated, in edge insertion order.
	dependents []string
	deps       []string
}

// ID returns the node's unique identifier.
func (n *Node) ID() string { return n.id }

// Index returns the node's insertion position.
func (n *Node) Index() int { return n.index }

// Piece returns the wrapped piece.
func (n *Node) Piece() piece.Piece { return n.piece }

// Inputs returns the declared input ports.
func (n *Node) Inputs() []string { return slices.Clone(n.inputs) }

// Outputs returns the declared output ports.
func (n *Node) Outputs() []string { return slices.Clone(n.outputs) }

func (n *Node) hasInput(name string) bool  { return slices.Contains(n.inputs, name) }
func (n *Node) hasOutput(name string) bool { return slices.Contains(n.outputs, name) }

// Edge connects an output port to an input port.
type Edge struct {
	From nodeid.Port
	To   nodeid.Port
}

// String renders the edge as `from -> to`.
func (e Edge) String() string {
	return e.From.String() + " -> " + e.To.String()
}

// Nester is implemented by pieces that own graphs of their own, such as
// composites. The graph uses it to refuse placing a graph inside itself.
type Nester interface {
	Subgraphs() []*Graph
}
