// Package print provides the print piece, a pass-through tap that logs every
// value flowing through it.
package print

import (
	"context"

	"github.com/vk/jigsaw/internal/ctxlog"
	"github.com/vk/jigsaw/internal/piece"
	"github.com/vk/jigsaw/internal/registry"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the print piece kind.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.Kind{
		Name:        "print",
		Description: "Logs \"in\" and passes it through to \"out\" unchanged.",
		New: func(name string, _ any) (piece.Piece, error) {
			return Print(name), nil
		},
	})
}

// Print creates a tap that logs "in" at info level and forwards it.
func Print(name string) *piece.Func {
	return piece.NewFunc(name, []string{"in"}, []string{"out"}, func(ctx context.Context, in piece.Values) (piece.Values, error) {
		vals, err := piece.Require(in, "in")
		if err != nil {
			return nil, err
		}
		v := vals[0]
		logger := ctxlog.FromContext(ctx)

		if !v.IsWhollyKnown() {
			logger.Info("Printing value.", "piece", name, "value", "(unknown)")
			return piece.Values{"out": v}, nil
		}
		raw, err := ctyjson.Marshal(v, v.Type())
		if err != nil {
			return nil, err
		}
		logger.Info("Printing value.", "piece", name, "type", v.Type().FriendlyName(), "value", string(raw))
		return piece.Values{"out": v}, nil
	})
}
