package hcl

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jigsaw/internal/ctxlog"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder populates omitted optional fields with zero-width
// placeholder expressions, so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}

	// A real attribute occupies bytes in the file; a placeholder has a
	// zero-width range.
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// evalContext returns the context literal expressions are evaluated in. It
// has no variables, only a small set of pure functions.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"abs":        stdlib.AbsoluteFunc,
			"concat":     stdlib.ConcatFunc,
			"jsonencode": stdlib.JSONEncodeFunc,
			"length":     stdlib.LengthFunc,
			"lower":      stdlib.LowerFunc,
			"max":        stdlib.MaxFunc,
			"min":        stdlib.MinFunc,
			"range":      stdlib.RangeFunc,
			"upper":      stdlib.UpperFunc,
		},
	}
}
