package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/jigsaw/internal/builder"
	"github.com/vk/jigsaw/internal/ctxlog"
	"github.com/vk/jigsaw/internal/dag"
)

// Run loads the definition, builds its graph, executes it and writes the
// graph outputs to the App's output writer as a JSON object.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	model, err := a.loader.Load(ctx, a.config.DefinitionPaths...)
	if err != nil {
		return fmt.Errorf("failed to load definitions: %w", err)
	}
	a.logger.Debug("Definitions loaded and translated into unified model.")

	res, err := builder.Build(ctx, model, a.registry)
	if err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}

	if a.config.PrintOrder {
		order, err := res.Graph.Order()
		if err != nil {
			return err
		}
		fmt.Fprintf(a.outW, "order: %s\n", strings.Join(order, " -> "))
	}

	if res.Graph.Len() == 0 {
		a.logger.Warn("No nodes found in graph, execution not required.")
		return writeOutputs(a.outW, nil)
	}

	a.logger.Info("Starting graph run.", "nodes", res.Graph.Len(), "workers", a.config.Workers)
	outputs, err := res.Graph.RunWithOptions(ctx, res.Inputs, dag.WithWorkers(a.config.Workers))
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("Graph run finished.", "outputs", len(outputs))

	return writeOutputs(a.outW, outputs)
}
