package hcl

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/jigsaw/internal/config"
	"github.com/vk/jigsaw/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// splitInputs reads a node's inputs attribute. Each item whose value is a
// bare reference such as `a.out` becomes an edge into the node; any other
// value is evaluated and bound as a literal. Items keep their source order.
func splitInputs(ctx context.Context, nodeID string, expr hcl.Expression) ([]*config.EdgeDef, []*config.InputValue, error) {
	if !isExprDefined(ctx, expr, "inputs") {
		return nil, nil, nil
	}
	logger := ctxlog.FromContext(ctx)

	pairs, diags := hcl.ExprMap(expr)
	if diags.HasErrors() {
		return nil, nil, fmt.Errorf("inputs must be an object: %w", diags)
	}

	var edges []*config.EdgeDef
	var values []*config.InputValue
	seen := make(map[string]struct{}, len(pairs))
	for _, pair := range pairs {
		keyVal, diags := pair.Key.Value(nil)
		if diags.HasErrors() || keyVal.Type() != cty.String || keyVal.IsNull() {
			return nil, nil, fmt.Errorf("inputs keys must be port names")
		}
		name := keyVal.AsString()
		if _, dup := seen[name]; dup {
			return nil, nil, fmt.Errorf("input %q assigned twice", name)
		}
		seen[name] = struct{}{}
		to := nodeID + "." + name

		if len(pair.Value.Variables()) > 0 {
			from, err := portRef(pair.Value)
			if err != nil {
				return nil, nil, fmt.Errorf("input %q: %w", name, err)
			}
			logger.Debug("Found port reference.", "from", from, "to", to)
			edges = append(edges, &config.EdgeDef{From: from, To: to})
			continue
		}

		val, diags := pair.Value.Value(evalContext())
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("input %q: %w", name, diags)
		}
		values = append(values, &config.InputValue{Port: to, Value: val})
	}
	return edges, values, nil
}

// portRef renders a `node.port` traversal expression in its string form.
// Port names may themselves contain dots, so any number of attribute steps
// is accepted; index steps are not.
func portRef(expr hcl.Expression) (string, error) {
	traversal, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() {
		return "", fmt.Errorf("references must be plain node.port traversals")
	}
	if len(traversal) < 2 {
		return "", fmt.Errorf("reference %q names a node but no port", traversal.RootName())
	}

	parts := []string{traversal.RootName()}
	for _, step := range traversal[1:] {
		attr, ok := step.(hcl.TraverseAttr)
		if !ok {
			return "", fmt.Errorf("reference to %q may only use attribute access", traversal.RootName())
		}
		parts = append(parts, attr.Name)
	}
	return strings.Join(parts, "."), nil
}
