package yaml

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/jigsaw/internal/config"
	"github.com/vk/jigsaw/internal/ctxlog"
	"github.com/vk/jigsaw/internal/fsutil"
	"gopkg.in/yaml.v3"
)

// Extensions lists the file extensions picked up by the loader.
var Extensions = []string{".yaml", ".yml"}

// Loader is the YAML implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new YAML definition loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every YAML file reachable from paths and merges them.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	files, err := fsutil.Collect(paths, Extensions...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered YAML files.", "count", len(files))

	model := config.NewModel()
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("yaml: read %s: %w", file, err)
		}
		m, err := l.Parse(ctx, file, data)
		if err != nil {
			return nil, err
		}
		if err := model.Merge(m); err != nil {
			return nil, fmt.Errorf("yaml: %s: %w", file, err)
		}
	}

	logger.Debug("YAML loading complete.", "nodes", len(model.Graph.Nodes), "edges", len(model.Graph.Edges), "composites", len(model.Composites))
	return model, nil
}

// Parse translates the documents in data. filename is only used in errors
// and node sources.
func (l *Loader) Parse(ctx context.Context, filename string, data []byte) (*config.Model, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	model := config.NewModel()
	for i := 0; ; i++ {
		var doc document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("yaml: decode %s: %w", filename, err)
		}

		m, err := translate(filename, &doc)
		if err != nil {
			return nil, fmt.Errorf("yaml: %s (document %d): %w", filename, i+1, err)
		}
		if err := model.Merge(m); err != nil {
			return nil, fmt.Errorf("yaml: %s (document %d): %w", filename, i+1, err)
		}
	}
	ctxlog.FromContext(ctx).Debug("Parsed YAML file.", "file", filename, "nodes", len(model.Graph.Nodes))
	return model, nil
}
