package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/jigsaw/internal/ctxlog"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Validate checks every registered kind: argument structs must map to a cty
// object type, and each default must name a field and convert to its type.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.Kinds() {
		k := r.kinds[name]
		if k.NewArgs == nil {
			if len(k.Defaults) > 0 {
				errs = append(errs, fmt.Sprintf("kind '%s': defaults given but the kind takes no arguments", name))
			}
			continue
		}

		ty, err := argsType(k.NewArgs())
		if err != nil {
			errs = append(errs, fmt.Sprintf("kind '%s': %v", name, err))
			continue
		}
		attrTypes := ty.AttributeTypes()
		for arg, def := range k.Defaults {
			attrTy, ok := attrTypes[arg]
			if !ok {
				errs = append(errs, fmt.Sprintf("kind '%s': default for unknown argument '%s'", name, arg))
				continue
			}
			if _, err := gocty.ToCtyValue(def, attrTy); err != nil {
				errs = append(errs, fmt.Sprintf("kind '%s': default for '%s' does not match type %s: %v", name, arg, attrTy.FriendlyName(), err))
			}
		}
		logger.Debug("Validated piece kind.", "kind", name, "arguments", len(attrTypes))
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
