package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/jigsaw/internal/config"
	"github.com/vk/jigsaw/internal/ctxlog"
	"github.com/vk/jigsaw/internal/fsutil"
)

// Extension is the file extension picked up by the loader.
const Extension = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL definition loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file reachable from paths and merges them into one
// model. Files are processed in the order they are found.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.Collect(paths, Extension)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	model := config.NewModel()
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read HCL file %s: %w", file, err)
		}
		m, err := l.parse(ctx, parser, file, src)
		if err != nil {
			return nil, err
		}
		if err := model.Merge(m); err != nil {
			return nil, fmt.Errorf("in HCL file %s: %w", file, err)
		}
	}

	logger.Debug("HCL loading complete.", "nodes", len(model.Graph.Nodes), "edges", len(model.Graph.Edges), "composites", len(model.Composites))
	return model, nil
}

// Parse translates a single in-memory HCL document. filename is only used in
// diagnostics.
func (l *Loader) Parse(ctx context.Context, filename string, src []byte) (*config.Model, error) {
	return l.parse(ctx, hclparse.NewParser(), filename, src)
}

func (l *Loader) parse(ctx context.Context, parser *hclparse.Parser, filename string, src []byte) (*config.Model, error) {
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	return l.translateFile(ctx, filename, &root)
}
