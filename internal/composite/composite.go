package composite

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/jigsaw/internal/ctxlog"
	"github.com/vk/jigsaw/internal/dag"
	"github.com/vk/jigsaw/internal/nodeid"
	"github.com/vk/jigsaw/internal/piece"
	"github.com/zclconf/go-cty/cty"
)

// Composite is a piece backed by a graph. Each exposed input feeds one or
// more unconnected input ports of the graph; each exposed output reads one
// output port. The graph must not be modified once the composite is built.
type Composite struct {
	name  string
	graph *dag.Graph

	inputs  []string
	outputs []string

	inBind  map[string][]nodeid.Port
	outBind map[string]nodeid.Port
}

var (
	_ piece.Piece = (*Composite)(nil)
	_ piece.Named = (*Composite)(nil)
	_ dag.Nester  = (*Composite)(nil)
)

type binding struct {
	name string
	port nodeid.Port
}

type options struct {
	inputs  []binding
	outputs []binding
}

// Option configures how a composite exposes the ports of its graph.
type Option func(*options)

// BindInput exposes the internal input port under name. Binding the same name
// to several ports fans the value out to all of them.
func BindInput(name string, port nodeid.Port) Option {
	return func(o *options) {
		o.inputs = append(o.inputs, binding{name: name, port: port})
	}
}

// BindOutput exposes the internal output port under name.
func BindOutput(name string, port nodeid.Port) Option {
	return func(o *options) {
		o.outputs = append(o.outputs, binding{name: name, port: port})
	}
}

// New wraps g as a piece called name and takes ownership of it: g is sealed
// once New succeeds, so later AddNode, AddEdge or MarkOutput calls on it fail
// with dag.ErrGraphSealed. A failed New leaves g untouched.
//
// Unconnected input ports that are not bound explicitly are exposed under
// their `node.port` reference. When no output is bound, every graph output is
// exposed the same way.
func New(name string, g *dag.Graph, opts ...Option) (*Composite, error) {
	if g == nil {
		return nil, fmt.Errorf("composite %q: graph must not be nil", name)
	}
	if g.Sealed() {
		return nil, fmt.Errorf("composite %q: graph is already owned: %w", name, dag.ErrGraphSealed)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("composite %q: %w", name, err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Composite{
		name:    name,
		graph:   g,
		inBind:  make(map[string][]nodeid.Port),
		outBind: make(map[string]nodeid.Port),
	}
	if err := c.bindInputs(o.inputs); err != nil {
		return nil, err
	}
	if err := c.bindOutputs(o.outputs); err != nil {
		return nil, err
	}
	g.Seal()
	return c, nil
}

func (c *Composite) bindInputs(bindings []binding) error {
	free := c.graph.FreeInputs()
	bound := make(map[nodeid.Port]string, len(bindings))

	for _, b := range bindings {
		if err := nodeid.ValidatePortName(b.name); err != nil {
			return &BindingError{Composite: c.name, Name: b.name, Reason: err.Error()}
		}
		if err := c.checkInputPort(b.port); err != nil {
			return err
		}
		if prev, ok := bound[b.port]; ok {
			return &BindingError{Composite: c.name, Name: b.name,
				Reason: fmt.Sprintf("port %s is already bound to input %q", b.port, prev)}
		}
		bound[b.port] = b.name
		if _, seen := c.inBind[b.name]; !seen {
			c.inputs = append(c.inputs, b.name)
		}
		c.inBind[b.name] = append(c.inBind[b.name], b.port)
	}

	for _, port := range free {
		if _, ok := bound[port]; ok {
			continue
		}
		name := port.String()
		if _, taken := c.inBind[name]; taken {
			return &BindingError{Composite: c.name, Name: name,
				Reason: "name collides with an unbound internal port"}
		}
		c.inputs = append(c.inputs, name)
		c.inBind[name] = []nodeid.Port{port}
	}
	return nil
}

func (c *Composite) checkInputPort(port nodeid.Port) error {
	n, ok := c.graph.Node(port.Node)
	if !ok {
		return &dag.UnknownNodeError{ID: port.Node, Role: "composite input"}
	}
	if !slices.Contains(n.Inputs(), port.Name) {
		return &dag.UnknownPortError{Port: port, Direction: "input"}
	}
	if src, fed := c.graph.Source(port); fed {
		return &dag.PortConflictError{Port: port, Existing: src.String(), Attempted: "composite input"}
	}
	return nil
}

func (c *Composite) bindOutputs(bindings []binding) error {
	if len(bindings) == 0 {
		for _, port := range c.graph.Outputs() {
			c.outputs = append(c.outputs, port.String())
			c.outBind[port.String()] = port
		}
		return nil
	}

	outBind := make(map[string]nodeid.Port, len(bindings))
	for _, b := range bindings {
		if err := nodeid.ValidatePortName(b.name); err != nil {
			return &BindingError{Composite: c.name, Name: b.name, Reason: err.Error()}
		}
		if _, dup := outBind[b.name]; dup {
			return &BindingError{Composite: c.name, Name: b.name, Reason: "output bound twice"}
		}
		n, ok := c.graph.Node(b.port.Node)
		if !ok {
			return &dag.UnknownNodeError{ID: b.port.Node, Role: "composite output"}
		}
		if !slices.Contains(n.Outputs(), b.port.Name) {
			return &dag.UnknownPortError{Port: b.port, Direction: "output"}
		}
		outBind[b.name] = b.port
	}

	// Every binding is valid; only now touch the graph.
	for _, b := range bindings {
		if err := c.graph.MarkOutput(b.port); err != nil {
			return fmt.Errorf("composite %q: %w", c.name, err)
		}
		c.outputs = append(c.outputs, b.name)
	}
	c.outBind = outBind
	return nil
}

// Name returns the composite's name.
func (c *Composite) Name() string { return c.name }

// Graph returns the owned graph.
func (c *Composite) Graph() *dag.Graph { return c.graph }

// Subgraphs implements dag.Nester.
func (c *Composite) Subgraphs() []*dag.Graph { return []*dag.Graph{c.graph} }

// Inputs returns the exposed input names.
func (c *Composite) Inputs() []string { return slices.Clone(c.inputs) }

// Outputs returns the exposed output names.
func (c *Composite) Outputs() []string { return slices.Clone(c.outputs) }

// Binding returns the internal port an exposed output reads from.
func (c *Composite) Binding(output string) (nodeid.Port, bool) {
	p, ok := c.outBind[output]
	return p, ok
}

// Invoke runs the owned graph serially. Errors from inner pieces are
// returned unchanged.
func (c *Composite) Invoke(ctx context.Context, inputs piece.Values) (piece.Values, error) {
	logger := ctxlog.FromContext(ctx).With("composite", c.name)

	graphInputs := make(map[nodeid.Port]cty.Value)
	for _, name := range c.inputs {
		v, ok := inputs[name]
		if !ok {
			return nil, fmt.Errorf("composite %q: missing input %q", c.name, name)
		}
		for _, port := range c.inBind[name] {
			graphInputs[port] = v
		}
	}

	logger.Debug("Running nested graph.", "nodes", c.graph.Len())
	results, err := c.graph.Run(ctxlog.WithLogger(ctx, logger), graphInputs)
	if err != nil {
		return nil, err
	}

	out := make(piece.Values, len(c.outputs))
	for _, name := range c.outputs {
		out[name] = results[c.outBind[name]]
	}
	return out, nil
}
