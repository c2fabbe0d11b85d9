// Package loss provides the bundled loss pieces. Each loss reads a
// prediction and a target port and writes one output named after the node.
package loss

import (
	"fmt"
	"math/big"

	"github.com/vk/jigsaw/internal/piece"
	"github.com/vk/jigsaw/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Args names the ports a loss reads.
type Args struct {
	Input  string `cty:"input"`
	Target string `cty:"target"`
}

var defaultPorts = map[string]any{"input": "prediction", "target": "target"}

// Register registers the mse and l1 piece kinds.
func (m *Module) Register(r *registry.Registry) {
	for kind, fn := range map[string]piece.LossFn{"mse": MeanSquared, "l1": MeanAbsolute} {
		kind, fn := kind, fn // per-iteration copies; go.mod targets go1.21 loop semantics
		r.Register(&registry.Kind{
			Name:        kind,
			Description: fmt.Sprintf("Computes the %s loss between input and target.", kind),
			NewArgs:     func() any { return new(Args) },
			Defaults:    defaultPorts,
			New: func(name string, args any) (piece.Piece, error) {
				a := args.(*Args)
				if a.Input == a.Target {
					return nil, fmt.Errorf("input and target must be different ports, both are %q", a.Input)
				}
				return piece.NewLoss(name, a.Input, a.Target, fn), nil
			},
		})
	}
}

// MeanSquared returns the mean of the squared element-wise differences.
func MeanSquared(input, target cty.Value) (cty.Value, error) {
	return reduce(input, target, func(d *big.Float) *big.Float {
		return new(big.Float).Mul(d, d)
	})
}

// MeanAbsolute returns the mean of the absolute element-wise differences.
func MeanAbsolute(input, target cty.Value) (cty.Value, error) {
	return reduce(input, target, func(d *big.Float) *big.Float {
		return new(big.Float).Abs(d)
	})
}

func reduce(input, target cty.Value, term func(*big.Float) *big.Float) (cty.Value, error) {
	xs, err := asNumbers(input)
	if err != nil {
		return cty.NilVal, fmt.Errorf("input: %w", err)
	}
	ys, err := asNumbers(target)
	if err != nil {
		return cty.NilVal, fmt.Errorf("target: %w", err)
	}
	if len(xs) != len(ys) {
		return cty.NilVal, fmt.Errorf("input has %d elements but target has %d", len(xs), len(ys))
	}
	if len(xs) == 0 {
		return cty.NilVal, fmt.Errorf("cannot compute a loss over empty values")
	}

	total := new(big.Float)
	for i := range xs {
		d := new(big.Float).Sub(xs[i], ys[i])
		total.Add(total, term(d))
	}
	mean := total.Quo(total, new(big.Float).SetInt64(int64(len(xs))))
	return cty.NumberVal(mean), nil
}

// asNumbers accepts a single number or any list-like value of numbers.
func asNumbers(v cty.Value) ([]*big.Float, error) {
	if v.IsNull() || !v.IsWhollyKnown() {
		return nil, fmt.Errorf("value must be known and not null")
	}
	if v.Type() == cty.Number {
		return []*big.Float{v.AsBigFloat()}, nil
	}

	list, err := convert.Convert(v, cty.List(cty.Number))
	if err != nil {
		return nil, fmt.Errorf("expected a number or a list of numbers: %w", err)
	}
	out := make([]*big.Float, 0, list.LengthInt())
	for it := list.ElementIterator(); it.Next(); {
		_, el := it.Element()
		if el.IsNull() {
			return nil, fmt.Errorf("list elements must not be null")
		}
		out = append(out, el.AsBigFloat())
	}
	return out, nil
}
