package config

import (
	"context"
	"fmt"

	"github.com/vk/jigsaw/internal/ctxlog"
)

// MultiLoader runs several format loaders over the same paths and merges
// what they find. Each loader only picks up files with its own extensions.
type MultiLoader struct {
	loaders []Loader
}

// NewMultiLoader combines loaders into one.
func NewMultiLoader(loaders ...Loader) *MultiLoader {
	return &MultiLoader{loaders: loaders}
}

// Load implements Loader.
func (l *MultiLoader) Load(ctx context.Context, paths ...string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)

	model := NewModel()
	for _, loader := range l.loaders {
		m, err := loader.Load(ctx, paths...)
		if err != nil {
			return nil, err
		}
		if err := model.Merge(m); err != nil {
			return nil, fmt.Errorf("failed to merge definitions: %w", err)
		}
	}
	logger.Debug("Definitions merged.", "nodes", len(model.Graph.Nodes), "composites", len(model.Composites))
	return model, nil
}
