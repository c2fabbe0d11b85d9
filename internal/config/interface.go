package config

import "context"

// Loader is the interface for a format-specific definition loader.
type Loader interface {
	// Load reads every definition file reachable from paths (files or
	// directories), translates them into the format-agnostic model and
	// merges the result.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
