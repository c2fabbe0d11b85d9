package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// RequireNumber asserts that v is a known number equal to want.
func RequireNumber(t *testing.T, want float64, v cty.Value, msgAndArgs ...any) {
	t.Helper()

	require.True(t, v.IsKnown() && !v.IsNull(), "value must be known and non-null")
	require.Equal(t, cty.Number, v.Type(), msgAndArgs...)
	got, _ := v.AsBigFloat().Float64()
	require.InDelta(t, want, got, 1e-9, msgAndArgs...)
}

// Numbers converts a list of float64 into a cty list of numbers.
func Numbers(values ...float64) cty.Value {
	if len(values) == 0 {
		return cty.ListValEmpty(cty.Number)
	}
	elems := make([]cty.Value, len(values))
	for i, v := range values {
		elems[i] = cty.NumberFloatVal(v)
	}
	return cty.ListVal(elems)
}
