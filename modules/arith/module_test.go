package arith

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/jigsaw/internal/piece"
	"github.com/vk/jigsaw/internal/registry"
	"github.com/vk/jigsaw/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

func TestPieces(t *testing.T) {
	sum, err := Sum("total", "x", "y", "z")
	require.NoError(t, err)

	testCases := []struct {
		name  string
		piece piece.Piece
		in    piece.Values
		want  float64
	}{
		{name: "identity", piece: Identity("id"), in: piece.Values{"in": cty.NumberIntVal(4)}, want: 4},
		{name: "const", piece: Const("c", cty.NumberIntVal(9)), in: nil, want: 9},
		{name: "add", piece: Add("inc", 1), in: piece.Values{"in": cty.NumberIntVal(5)}, want: 6},
		{name: "add converts strings", piece: Add("inc", 0.5), in: piece.Values{"in": cty.StringVal("2")}, want: 2.5},
		{name: "scale", piece: Scale("double", 2), in: piece.Values{"in": cty.NumberIntVal(6)}, want: 12},
		{name: "multiply", piece: Multiply("mul"), in: piece.Values{"a": cty.NumberIntVal(3), "b": cty.NumberIntVal(-4)}, want: -12},
		{name: "sum", piece: sum, in: piece.Values{"x": cty.NumberIntVal(1), "y": cty.NumberIntVal(2), "z": cty.NumberIntVal(3)}, want: 6},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := tc.piece.Invoke(context.Background(), tc.in)
			require.NoError(t, err)
			testutil.RequireNumber(t, tc.want, out["out"])
		})
	}
}

func TestPieces_Errors(t *testing.T) {
	_, err := Add("inc", 1).Invoke(context.Background(), piece.Values{})
	assert.ErrorContains(t, err, `missing required input "in"`)

	_, err = Multiply("mul").Invoke(context.Background(), piece.Values{"a": cty.True, "b": cty.NumberIntVal(1)})
	assert.ErrorContains(t, err, `mul: input "a"`)

	_, err = Scale("s", 2).Invoke(context.Background(), piece.Values{"in": cty.NullVal(cty.Number)})
	assert.ErrorContains(t, err, `input "in" must be a known number`)

	_, err = Sum("empty")
	assert.EqualError(t, err, "sum needs at least one input")
}

func TestRegister(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)
	require.NoError(t, r.Validate(context.Background()))
	assert.Equal(t, []string{"add", "const", "identity", "multiply", "scale", "sum"}, r.Kinds())

	ctx := context.Background()
	testCases := []struct {
		kind    string
		args    map[string]cty.Value
		inputs  []string
		in      piece.Values
		wantOut float64
	}{
		{kind: "add", args: nil, inputs: []string{"in"}, in: piece.Values{"in": cty.NumberIntVal(1)}, wantOut: 2},
		{kind: "add", args: map[string]cty.Value{"amount": cty.NumberIntVal(10)}, inputs: []string{"in"}, in: piece.Values{"in": cty.NumberIntVal(1)}, wantOut: 11},
		{kind: "scale", args: map[string]cty.Value{"factor": cty.NumberIntVal(3)}, inputs: []string{"in"}, in: piece.Values{"in": cty.NumberIntVal(2)}, wantOut: 6},
		{kind: "const", args: map[string]cty.Value{"value": cty.NumberIntVal(7)}, inputs: nil, wantOut: 7},
		{
			kind:    "sum",
			args:    map[string]cty.Value{"inputs": cty.TupleVal([]cty.Value{cty.StringVal("p"), cty.StringVal("q")})},
			inputs:  []string{"p", "q"},
			in:      piece.Values{"p": cty.NumberIntVal(1), "q": cty.NumberIntVal(2)},
			wantOut: 3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.kind, func(t *testing.T) {
			p, err := r.Build(ctx, tc.kind, "node", tc.args)
			require.NoError(t, err)
			if tc.inputs == nil {
				assert.Empty(t, p.Inputs())
			} else {
				assert.Equal(t, tc.inputs, p.Inputs())
			}
			assert.Equal(t, []string{"out"}, p.Outputs())

			out, err := p.Invoke(ctx, tc.in)
			require.NoError(t, err)
			testutil.RequireNumber(t, tc.wantOut, out["out"])
		})
	}

	_, err := r.Build(ctx, "scale", "node", nil)
	assert.ErrorContains(t, err, `missing required argument "factor"`)
}
