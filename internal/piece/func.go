package piece

import (
	"context"
	"slices"
)

// FuncBody is the computation wrapped by a Func piece.
type FuncBody func(ctx context.Context, inputs Values) (Values, error)

// Func is a leaf piece backed by a plain Go function. It is the building
// block used by modules and by tests.
type Func struct {
	name    string
	inputs  []string
	outputs []string
	body    FuncBody
}

// NewFunc wraps body as a piece with the given port declarations.
func NewFunc(name string, inputs, outputs []string, body FuncBody) *Func {
	return &Func{
		name:    name,
		inputs:  slices.Clone(inputs),
		outputs: slices.Clone(outputs),
		body:    body,
	}
}

// Name returns the piece's name.
func (f *Func) Name() string { return f.name }

// Inputs returns the declared input ports.
func (f *Func) Inputs() []string { return slices.Clone(f.inputs) }

// Outputs returns the declared output ports.
func (f *Func) Outputs() []string { return slices.Clone(f.outputs) }

// Invoke calls the wrapped function.
func (f *Func) Invoke(ctx context.Context, inputs Values) (Values, error) {
	return f.body(ctx, inputs)
}
