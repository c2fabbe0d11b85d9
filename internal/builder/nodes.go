package builder

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/vk/jigsaw/internal/composite"
	"github.com/vk/jigsaw/internal/config"
	"github.com/vk/jigsaw/internal/ctxlog"
	"github.com/vk/jigsaw/internal/dag"
	"github.com/vk/jigsaw/internal/nodeid"
	"github.com/vk/jigsaw/internal/piece"
)

// createNodes resolves every node definition to a piece and adds it to g.
func (b *builder) createNodes(ctx context.Context, g *dag.Graph, def *config.GraphDef, stack []string) error {
	for _, n := range def.Nodes {
		logger := ctxlog.FromContext(ctx).With("node", n.ID, "piece", n.Piece)
		nodeCtx := ctxlog.WithLogger(ctx, logger)

		p, err := b.buildPiece(nodeCtx, n, stack)
		if err != nil {
			return fmt.Errorf("node %q (%s): %w", n.ID, n.Source, err)
		}
		if _, err := g.AddNode(n.ID, p); err != nil {
			return fmt.Errorf("node %q (%s): %w", n.ID, n.Source, err)
		}
		logger.Debug("Build: Node created.")
	}
	return nil
}

func (b *builder) buildPiece(ctx context.Context, n *config.NodeDef, stack []string) (piece.Piece, error) {
	def, isComposite := b.model.Composites[n.Piece]
	if !isComposite {
		return b.reg.Build(ctx, n.Piece, n.ID, n.Args)
	}

	if slices.Contains(stack, def.Name) {
		cycle := append(slices.Clone(stack), def.Name)
		return nil, fmt.Errorf("composite %q instantiates itself: %s", def.Name, strings.Join(cycle, " -> "))
	}
	if len(n.Args) > 0 {
		return nil, fmt.Errorf("composite %q takes no arguments", def.Name)
	}
	return b.buildComposite(ctx, n.ID, def, append(slices.Clone(stack), def.Name))
}

func (b *builder) buildComposite(ctx context.Context, name string, def *config.CompositeDef, stack []string) (*composite.Composite, error) {
	if len(def.Graph.Inputs) > 0 {
		return nil, fmt.Errorf("composite %q: literal input values are only allowed in the top-level graph", def.Name)
	}

	g, err := b.buildGraph(ctx, def.Graph, stack)
	if err != nil {
		return nil, fmt.Errorf("composite %q: %w", def.Name, err)
	}

	var opts []composite.Option
	for _, in := range def.Inputs {
		port, err := nodeid.ParsePort(in.Port)
		if err != nil {
			return nil, fmt.Errorf("composite %q: input %q: %w", def.Name, in.Name, err)
		}
		opts = append(opts, composite.BindInput(in.Name, port))
	}
	for _, out := range def.Outputs {
		port, err := nodeid.ParsePort(out.Port)
		if err != nil {
			return nil, fmt.Errorf("composite %q: output %q: %w", def.Name, out.Name, err)
		}
		opts = append(opts, composite.BindOutput(out.Name, port))
	}

	c, err := composite.New(name, g, opts...)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Build: Composite instantiated.", "composite", def.Name, "inputs", c.Inputs(), "outputs", c.Outputs())
	return c, nil
}
