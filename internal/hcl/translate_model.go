// This file translates the decoded HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jigsaw/internal/config"
	"github.com/vk/jigsaw/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

func (l *Loader) translateFile(ctx context.Context, filename string, root *fileRoot) (*config.Model, error) {
	model := config.NewModel()

	graph, err := l.translateGraph(ctx, filename, root.Nodes, root.Edges)
	if err != nil {
		return nil, err
	}
	graph.Outputs = root.Outputs
	model.Graph = graph

	for _, in := range root.Inputs {
		val, err := l.translateInput(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("in %s: %w", filename, err)
		}
		model.Graph.Inputs = append(model.Graph.Inputs, val)
	}

	for _, c := range root.Composites {
		if _, dup := model.Composites[c.Name]; dup {
			return nil, fmt.Errorf("in %s: composite %q defined twice", filename, c.Name)
		}
		def, err := l.translateComposite(ctx, filename, c)
		if err != nil {
			return nil, err
		}
		model.Composites[c.Name] = def
	}
	return model, nil
}

// translateGraph converts node and edge blocks. Port references found in a
// node's inputs attribute become edges after the explicit ones; literals
// become input values.
func (l *Loader) translateGraph(ctx context.Context, filename string, nodes []*NodeBlock, edges []*EdgeBlock) (*config.GraphDef, error) {
	g := &config.GraphDef{}
	for _, e := range edges {
		g.Edges = append(g.Edges, &config.EdgeDef{From: e.From, To: e.To})
	}

	for _, n := range nodes {
		logger := ctxlog.FromContext(ctx).With("node", n.ID)
		nodeCtx := ctxlog.WithLogger(ctx, logger)

		args, err := evalArgs(nodeCtx, n.Args)
		if err != nil {
			return nil, fmt.Errorf("in %s: node %q: %w", filename, n.ID, err)
		}
		g.Nodes = append(g.Nodes, &config.NodeDef{
			ID:     n.ID,
			Piece:  n.Piece,
			Args:   args,
			Source: filename,
		})

		links, values, err := splitInputs(nodeCtx, n.ID, n.Inputs)
		if err != nil {
			return nil, fmt.Errorf("in %s: node %q: %w", filename, n.ID, err)
		}
		g.Edges = append(g.Edges, links...)
		g.Inputs = append(g.Inputs, values...)
		logger.Debug("Translated node.", "piece", n.Piece, "args", len(args), "links", len(links), "values", len(values))
	}
	return g, nil
}

func (l *Loader) translateInput(ctx context.Context, in *InputBlock) (*config.InputValue, error) {
	val, diags := in.Value.Value(evalContext())
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid value for input %q: %w", in.Port, diags)
	}

	if isExprDefined(ctx, in.Type, "type") {
		ty, err := typeExprToCtyType(ctx, in.Type)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", in.Port, err)
		}
		converted, err := convert.Convert(val, ty)
		if err != nil {
			return nil, fmt.Errorf("input %q: value does not conform to %s: %w", in.Port, ty.FriendlyName(), err)
		}
		val = converted
	}
	return &config.InputValue{Port: in.Port, Value: val}, nil
}

func (l *Loader) translateComposite(ctx context.Context, filename string, c *CompositeBlock) (*config.CompositeDef, error) {
	ctx = ctxlog.WithLogger(ctx, ctxlog.FromContext(ctx).With("composite", c.Name))

	graph, err := l.translateGraph(ctx, filename, c.Nodes, c.Edges)
	if err != nil {
		return nil, fmt.Errorf("composite %q: %w", c.Name, err)
	}
	def := &config.CompositeDef{
		Name:   c.Name,
		Graph:  graph,
		Source: filename,
	}
	for _, b := range c.Inputs {
		def.Inputs = append(def.Inputs, &config.Binding{Name: b.Name, Port: b.Port})
	}
	for _, b := range c.Outputs {
		def.Outputs = append(def.Outputs, &config.Binding{Name: b.Name, Port: b.Port})
	}
	return def, nil
}

// evalArgs evaluates a node's args attribute into a map of values.
func evalArgs(ctx context.Context, expr hcl.Expression) (map[string]cty.Value, error) {
	if !isExprDefined(ctx, expr, "args") {
		return nil, nil
	}
	val, diags := expr.Value(evalContext())
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid args: %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("args must be an object, got %s", ty.FriendlyName())
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("args must be known at load time")
	}
	return val.AsValueMap(), nil
}
