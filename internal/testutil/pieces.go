package testutil

import (
	"context"

	"github.com/vk/jigsaw/internal/piece"
	"github.com/zclconf/go-cty/cty"
)

// Identity returns a piece passing "in" through to "out".
func Identity(name string) *piece.Func {
	return piece.NewFunc(name, []string{"in"}, []string{"out"}, func(_ context.Context, in piece.Values) (piece.Values, error) {
		return piece.Values{"out": in["in"]}, nil
	})
}

// AddN returns a piece adding n to "in" and writing "out".
func AddN(name string, n int64) *piece.Func {
	return piece.NewFunc(name, []string{"in"}, []string{"out"}, func(_ context.Context, in piece.Values) (piece.Values, error) {
		return piece.Values{"out": in["in"].Add(cty.NumberIntVal(n))}, nil
	})
}

// MulN returns a piece multiplying "in" by n and writing "out".
func MulN(name string, n int64) *piece.Func {
	return piece.NewFunc(name, []string{"in"}, []string{"out"}, func(_ context.Context, in piece.Values) (piece.Values, error) {
		return piece.Values{"out": in["in"].Multiply(cty.NumberIntVal(n))}, nil
	})
}

// Failing returns a piece that always returns err.
func Failing(name string, err error) *piece.Func {
	return piece.NewFunc(name, []string{"in"}, []string{"out"}, func(context.Context, piece.Values) (piece.Values, error) {
		return nil, err
	})
}
