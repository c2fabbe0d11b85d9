package builder

import (
	"context"
	"fmt"

	"github.com/vk/jigsaw/internal/config"
	"github.com/vk/jigsaw/internal/ctxlog"
	"github.com/vk/jigsaw/internal/dag"
	"github.com/vk/jigsaw/internal/nodeid"
)

// linkNodes adds the edges of def to g and marks its extra outputs.
func linkNodes(ctx context.Context, g *dag.Graph, def *config.GraphDef) error {
	logger := ctxlog.FromContext(ctx)

	for _, e := range def.Edges {
		if err := g.Connect(e.From, e.To); err != nil {
			return fmt.Errorf("edge %s -> %s: %w", e.From, e.To, err)
		}
		logger.Debug("Build: Edge linked.", "from", e.From, "to", e.To)
	}

	for _, raw := range def.Outputs {
		port, err := nodeid.ParsePort(raw)
		if err != nil {
			return fmt.Errorf("output: %w", err)
		}
		if err := g.MarkOutput(port); err != nil {
			return fmt.Errorf("output %s: %w", port, err)
		}
	}
	return nil
}
