// Package config defines the format-agnostic model of a graph definition,
// along with the Loader interface implemented by the concrete file formats.
//
// The `config.Model` is the single source of truth for the builder package.
// Concrete loaders, such as for HCL and YAML, live in separate packages.
package config
