// Package arith provides the bundled arithmetic pieces: identity, const,
// add, scale, multiply and sum.
package arith

import (
	"context"
	"fmt"

	"github.com/vk/jigsaw/internal/piece"
	"github.com/vk/jigsaw/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// AddArgs configures the add piece.
type AddArgs struct {
	Amount float64 `cty:"amount"`
}

// ScaleArgs configures the scale piece.
type ScaleArgs struct {
	Factor float64 `cty:"factor"`
}

// ConstArgs configures the const piece.
type ConstArgs struct {
	Value cty.Value `cty:"value"`
}

// SumArgs configures the sum piece.
type SumArgs struct {
	Inputs []string `cty:"inputs"`
}

// Register registers the arithmetic piece kinds.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.Kind{
		Name:        "identity",
		Description: "Passes in through to out.",
		New: func(name string, _ any) (piece.Piece, error) {
			return Identity(name), nil
		},
	})
	r.Register(&registry.Kind{
		Name:        "const",
		Description: "Emits a fixed value on out.",
		NewArgs:     func() any { return new(ConstArgs) },
		New: func(name string, args any) (piece.Piece, error) {
			return Const(name, args.(*ConstArgs).Value), nil
		},
	})
	r.Register(&registry.Kind{
		Name:        "add",
		Description: "Adds amount to in.",
		NewArgs:     func() any { return new(AddArgs) },
		Defaults:    map[string]any{"amount": 1.0},
		New: func(name string, args any) (piece.Piece, error) {
			return Add(name, args.(*AddArgs).Amount), nil
		},
	})
	r.Register(&registry.Kind{
		Name:        "scale",
		Description: "Multiplies in by factor.",
		NewArgs:     func() any { return new(ScaleArgs) },
		New: func(name string, args any) (piece.Piece, error) {
			return Scale(name, args.(*ScaleArgs).Factor), nil
		},
	})
	r.Register(&registry.Kind{
		Name:        "multiply",
		Description: "Multiplies a by b.",
		New: func(name string, _ any) (piece.Piece, error) {
			return Multiply(name), nil
		},
	})
	r.Register(&registry.Kind{
		Name:        "sum",
		Description: "Adds up every port listed in inputs.",
		NewArgs:     func() any { return new(SumArgs) },
		New: func(name string, args any) (piece.Piece, error) {
			return Sum(name, args.(*SumArgs).Inputs...)
		},
	})
}

// Identity passes "in" through unchanged.
func Identity(name string) *piece.Func {
	return piece.NewFunc(name, []string{"in"}, []string{"out"}, func(_ context.Context, in piece.Values) (piece.Values, error) {
		vals, err := piece.Require(in, "in")
		if err != nil {
			return nil, err
		}
		return piece.Values{"out": vals[0]}, nil
	})
}

// Const emits v on "out" and takes no inputs.
func Const(name string, v cty.Value) *piece.Func {
	return piece.NewFunc(name, nil, []string{"out"}, func(context.Context, piece.Values) (piece.Values, error) {
		return piece.Values{"out": v}, nil
	})
}

// Add adds amount to "in".
func Add(name string, amount float64) *piece.Func {
	delta := cty.NumberFloatVal(amount)
	return unary(name, func(v cty.Value) cty.Value { return v.Add(delta) })
}

// Scale multiplies "in" by factor.
func Scale(name string, factor float64) *piece.Func {
	f := cty.NumberFloatVal(factor)
	return unary(name, func(v cty.Value) cty.Value { return v.Multiply(f) })
}

// Multiply multiplies "a" by "b".
func Multiply(name string) *piece.Func {
	return piece.NewFunc(name, []string{"a", "b"}, []string{"out"}, func(_ context.Context, in piece.Values) (piece.Values, error) {
		nums, err := numbers(in, "a", "b")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return piece.Values{"out": nums[0].Multiply(nums[1])}, nil
	})
}

// Sum adds up the named input ports.
func Sum(name string, inputs ...string) (*piece.Func, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("sum needs at least one input")
	}
	return piece.NewFunc(name, inputs, []string{"out"}, func(_ context.Context, in piece.Values) (piece.Values, error) {
		nums, err := numbers(in, inputs...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		total := cty.Zero
		for _, n := range nums {
			total = total.Add(n)
		}
		return piece.Values{"out": total}, nil
	}), nil
}

func unary(name string, op func(cty.Value) cty.Value) *piece.Func {
	return piece.NewFunc(name, []string{"in"}, []string{"out"}, func(_ context.Context, in piece.Values) (piece.Values, error) {
		nums, err := numbers(in, "in")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return piece.Values{"out": op(nums[0])}, nil
	})
}

// numbers fetches the named inputs as known, non-null numbers.
func numbers(in piece.Values, names ...string) ([]cty.Value, error) {
	vals, err := piece.Require(in, names...)
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		n, err := convert.Convert(v, cty.Number)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", names[i], err)
		}
		if n.IsNull() || !n.IsKnown() {
			return nil, fmt.Errorf("input %q must be a known number", names[i])
		}
		vals[i] = n
	}
	return vals, nil
}
