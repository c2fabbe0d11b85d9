package config

import (
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of a definition: the
// top-level graph, the composite kinds it may instantiate and the literal
// values bound to its free input ports.
type Model struct {
	Graph      *GraphDef
	Composites map[string]*CompositeDef
}

// NewModel returns an empty model ready to be filled by a loader.
func NewModel() *Model {
	return &Model{
		Graph:      &GraphDef{},
		Composites: make(map[string]*CompositeDef),
	}
}

// GraphDef describes one graph: its nodes, the edges between their ports,
// extra outputs to report and literal input values.
type GraphDef struct {
	Nodes   []*NodeDef
	Edges   []*EdgeDef
	Outputs []string
	Inputs  []*InputValue
}

// NodeDef is a single node. Piece names either a registered kind or a
// composite defined in the same model.
type NodeDef struct {
	ID    string
	Piece string
	Args  map[string]cty.Value
	// Source is the file and position the node was declared at, used in
	// error messages.
	Source string
}

// EdgeDef connects two ports given in their `node.port` form.
type EdgeDef struct {
	From string
	To   string
}

// InputValue binds a literal value to a free input port.
type InputValue struct {
	Port  string
	Value cty.Value
}

// CompositeDef is a reusable sub-graph exposed as a piece kind.
type CompositeDef struct {
	Name    string
	Graph   *GraphDef
	Inputs  []*Binding
	Outputs []*Binding
	Source  string
}

// Binding exposes an internal port of a composite under Name.
type Binding struct {
	Name string
	Port string
}
