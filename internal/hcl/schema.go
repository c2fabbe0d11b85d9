package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Nodes      []*NodeBlock      `hcl:"node,block"`
	Edges      []*EdgeBlock      `hcl:"edge,block"`
	Inputs     []*InputBlock     `hcl:"input,block"`
	Composites []*CompositeBlock `hcl:"composite,block"`
	Outputs    []string          `hcl:"output,optional"`
}

// NodeBlock is a `node "<id>" { ... }` block.
type NodeBlock struct {
	ID     string         `hcl:"id,label"`
	Piece  string         `hcl:"piece"`
	Args   hcl.Expression `hcl:"args,optional"`
	Inputs hcl.Expression `hcl:"inputs,optional"`
}

// EdgeBlock is an `edge { from = "..." to = "..." }` block.
type EdgeBlock struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}

// InputBlock binds a literal value to a free input port of the top-level
// graph. The optional type converts the value before it is used.
type InputBlock struct {
	Port  string         `hcl:"port,label"`
	Value hcl.Expression `hcl:"value"`
	Type  hcl.Expression `hcl:"type,optional"`
}

// CompositeBlock defines a reusable sub-graph usable as a piece kind.
type CompositeBlock struct {
	Name    string          `hcl:"name,label"`
	Inputs  []*BindingBlock `hcl:"input,block"`
	Outputs []*BindingBlock `hcl:"output,block"`
	Nodes   []*NodeBlock    `hcl:"node,block"`
	Edges   []*EdgeBlock    `hcl:"edge,block"`
}

// BindingBlock exposes an internal port of a composite.
type BindingBlock struct {
	Name string `hcl:"name,label"`
	Port string `hcl:"port"`
}
