package builder

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/jigsaw/internal/config"
	"github.com/vk/jigsaw/internal/ctxlog"
	"github.com/vk/jigsaw/internal/dag"
	"github.com/vk/jigsaw/internal/nodeid"
	"github.com/vk/jigsaw/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Result is a built definition: the top-level graph and the literal values
// for its free input ports.
type Result struct {
	Graph  *dag.Graph
	Inputs map[nodeid.Port]cty.Value
}

type builder struct {
	model *config.Model
	reg   *registry.Registry
}

// Build constructs and validates the graph described by model.
func Build(ctx context.Context, model *config.Model, reg *registry.Registry) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")

	if model == nil || model.Graph == nil {
		return nil, fmt.Errorf("definition model is empty")
	}
	b := &builder{model: model, reg: reg}
	if err := b.checkShadowing(); err != nil {
		return nil, err
	}

	g, err := b.buildGraph(ctx, model.Graph, nil)
	if err != nil {
		return nil, err
	}
	inputs, err := literalInputs(model.Graph.Inputs)
	if err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("error validating graph: %w", err)
	}

	logger.Info("Build: Graph construction successful.", "nodes", g.Len(), "edges", len(g.Edges()), "inputs", len(inputs))
	return &Result{Graph: g, Inputs: inputs}, nil
}

// checkShadowing rejects composites named like a registered kind, which
// would make node definitions ambiguous.
func (b *builder) checkShadowing() error {
	var clashes []string
	for name := range b.model.Composites {
		if _, ok := b.reg.Lookup(name); ok {
			clashes = append(clashes, name)
		}
	}
	if len(clashes) > 0 {
		return fmt.Errorf("composites shadow registered piece kinds: %s", strings.Join(clashes, ", "))
	}
	return nil
}

// buildGraph creates the nodes of def, then links them. stack holds the
// composite kinds currently being built, outermost first.
func (b *builder) buildGraph(ctx context.Context, def *config.GraphDef, stack []string) (*dag.Graph, error) {
	g := dag.New()
	if err := b.createNodes(ctx, g, def, stack); err != nil {
		return nil, err
	}
	if err := linkNodes(ctx, g, def); err != nil {
		return nil, err
	}
	return g, nil
}

func literalInputs(values []*config.InputValue) (map[nodeid.Port]cty.Value, error) {
	inputs := make(map[nodeid.Port]cty.Value, len(values))
	for _, in := range values {
		port, err := nodeid.ParsePort(in.Port)
		if err != nil {
			return nil, fmt.Errorf("input value: %w", err)
		}
		if _, dup := inputs[port]; dup {
			return nil, fmt.Errorf("input %s given more than one value", port)
		}
		inputs[port] = in.Value
	}
	return inputs, nil
}
