package piece

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Values maps port names to the values flowing through them.
type Values map[string]cty.Value

// Clone returns a shallow copy of v. cty values are immutable, so a shallow
// copy is enough to give each invocation its own map.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Piece is anything that can be invoked with named inputs and produce named
// outputs. Port declarations must be stable: the graph snapshots them when
// the piece is added.
type Piece interface {
	// Inputs returns the names of the inputs required by this piece.
	Inputs() []string
	// Outputs returns the names of the outputs produced by this piece.
	Outputs() []string
	// Invoke performs the computation. The returned map should contain a
	// value for every declared output.
	Invoke(ctx context.Context, inputs Values) (Values, error)
}

// Named is implemented by pieces that carry a human-readable name.
type Named interface {
	Name() string
}

// NameOf returns the piece's name if it has one, or its Go type otherwise.
func NameOf(p Piece) string {
	if n, ok := p.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}

// Require fetches a set of inputs, failing with a descriptive error if any
// of them is absent.
func Require(inputs Values, names ...string) ([]cty.Value, error) {
	out := make([]cty.Value, 0, len(names))
	for _, name := range names {
		v, ok := inputs[name]
		if !ok {
			return nil, fmt.Errorf("missing required input %q", name)
		}
		out = append(out, v)
	}
	return out, nil
}
