package piece

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// LossFn computes a loss from a prediction and a target.
type LossFn func(input, target cty.Value) (cty.Value, error)

// Loss wraps a loss function as a piece. It reads two ports, the prediction
// and the target, and writes a single output named after the loss itself.
type Loss struct {
	name   string
	input  string
	target string
	fn     LossFn
}

// NewLoss creates a loss piece. The output port carries the loss name, so
// several losses can live in one graph and be told apart downstream.
func NewLoss(name, input, target string, fn LossFn) *Loss {
	return &Loss{name: name, input: input, target: target, fn: fn}
}

// Name returns the loss name, which is also its output port.
func (l *Loss) Name() string { return l.name }

// Inputs returns the prediction and target port names.
func (l *Loss) Inputs() []string { return []string{l.input, l.target} }

// Outputs returns the single loss output port.
func (l *Loss) Outputs() []string { return []string{l.name} }

// Invoke computes the loss.
func (l *Loss) Invoke(_ context.Context, inputs Values) (Values, error) {
	vals, err := Require(inputs, l.input, l.target)
	if err != nil {
		return nil, fmt.Errorf("loss %s: %w", l.name, err)
	}
	v, err := l.fn(vals[0], vals[1])
	if err != nil {
		return nil, err
	}
	return Values{l.name: v}, nil
}
