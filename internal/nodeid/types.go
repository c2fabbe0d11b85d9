package nodeid

// Port identifies a named input or output slot on a node.
type Port struct {
	Node string
	Name string
}

// NewPort creates a port reference without validating it.
func NewPort(node, name string) Port {
	return Port{Node: node, Name: name}
}

// IsZero reports whether the reference is empty.
func (p Port) IsZero() bool {
	return p.Node == "" && p.Name == ""
}
