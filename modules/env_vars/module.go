// Package env_vars provides the env piece, which reads one environment
// variable into the graph.
package env_vars

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/jigsaw/internal/piece"
	"github.com/vk/jigsaw/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Args selects the variable to read.
type Args struct {
	Name    string  `cty:"name"`
	Default *string `cty:"default"`
}

// Register registers the env piece kind.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.Kind{
		Name:        "env",
		Description: "Emits the value of an environment variable as a string on \"out\".",
		NewArgs:     func() any { return new(Args) },
		New: func(name string, args any) (piece.Piece, error) {
			a := args.(*Args)
			if a.Name == "" {
				return nil, fmt.Errorf("name must not be empty")
			}
			return Env(name, a.Name, a.Default), nil
		},
	})
}

// Env creates a piece with no inputs that emits the variable named key. The
// variable is read when the piece runs, not when it is built. If it is unset
// and def is nil, the run fails.
func Env(name, key string, def *string) *piece.Func {
	return piece.NewFunc(name, nil, []string{"out"}, func(context.Context, piece.Values) (piece.Values, error) {
		v, ok := os.LookupEnv(key)
		if !ok {
			if def == nil {
				return nil, fmt.Errorf("%s: environment variable %q is not set", name, key)
			}
			v = *def
		}
		return piece.Values{"out": cty.StringVal(v)}, nil
	})
}
