package registry

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/vk/jigsaw/internal/ctxlog"
	"github.com/vk/jigsaw/internal/piece"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// UnknownKindError is returned by Build for a kind nobody registered.
type UnknownKindError struct {
	Kind  string
	Known []string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown piece kind %q (known: %s)", e.Kind, strings.Join(e.Known, ", "))
}

// Build instantiates a piece of the given kind, decoding args into the
// kind's argument struct.
func (r *Registry) Build(ctx context.Context, kind, name string, args map[string]cty.Value) (piece.Piece, error) {
	k, ok := r.kinds[kind]
	if !ok {
		return nil, &UnknownKindError{Kind: kind, Known: r.Kinds()}
	}
	logger := ctxlog.FromContext(ctx).With("kind", kind, "name", name)

	var decoded any
	if k.NewArgs == nil {
		if len(args) > 0 {
			return nil, fmt.Errorf("piece kind %q takes no arguments, got %s", kind, strings.Join(sortedKeys(args), ", "))
		}
	} else {
		decoded = k.NewArgs()
		if err := decodeArgs(k, args, decoded); err != nil {
			return nil, fmt.Errorf("piece kind %q: %w", kind, err)
		}
	}

	p, err := k.New(name, decoded)
	if err != nil {
		return nil, fmt.Errorf("piece kind %q: %w", kind, err)
	}
	logger.Debug("Built piece.", "inputs", p.Inputs(), "outputs", p.Outputs())
	return p, nil
}

// decodeArgs converts each argument to the type of its struct field and
// decodes the resulting object into target.
func decodeArgs(k *Kind, args map[string]cty.Value, target any) error {
	objType, err := argsType(target)
	if err != nil {
		return err
	}
	attrTypes := objType.AttributeTypes()

	for name := range args {
		if _, ok := attrTypes[name]; !ok {
			return fmt.Errorf("unsupported argument %q", name)
		}
	}

	optional := optionalFields(target)
	attrs := make(map[string]cty.Value, len(attrTypes))
	for name, ty := range attrTypes {
		raw, present := args[name]
		if !present || raw.IsNull() {
			def, hasDefault := k.Defaults[name]
			switch {
			case hasDefault:
				dv, err := gocty.ToCtyValue(def, ty)
				if err != nil {
					return fmt.Errorf("default for argument %q: %w", name, err)
				}
				raw = dv
			case optional[name]:
				continue
			default:
				return fmt.Errorf("missing required argument %q", name)
			}
		}
		converted, err := convert.Convert(raw, ty)
		if err != nil {
			return fmt.Errorf("argument %q: %w", name, err)
		}
		attrs[name] = converted
	}

	if len(attrs) == 0 {
		return nil
	}
	obj := cty.ObjectVal(attrs)
	if err := gocty.FromCtyValue(obj, target); err != nil {
		return fmt.Errorf("decoding arguments: %w", err)
	}
	return nil
}

// argsType infers the object type of an argument struct pointer.
func argsType(target any) (cty.Type, error) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return cty.NilType, fmt.Errorf("argument holder must be a pointer to a struct, got %T", target)
	}
	ty, err := gocty.ImpliedType(rv.Elem().Interface())
	if err != nil {
		return cty.NilType, fmt.Errorf("could not imply cty type from %T: %w", target, err)
	}
	if !ty.IsObjectType() || len(ty.AttributeTypes()) == 0 {
		return cty.NilType, fmt.Errorf("argument struct %T has no cty-tagged fields", target)
	}
	return ty, nil
}

// optionalFields returns the cty attribute names of pointer, slice and map
// fields, which may be left unset.
func optionalFields(target any) map[string]bool {
	out := make(map[string]bool)
	st := reflect.TypeOf(target).Elem()
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		tag := f.Tag.Get("cty")
		if tag == "" || !f.IsExported() {
			continue
		}
		switch f.Type.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map:
			out[tag] = true
		}
	}
	return out
}

func sortedKeys(m map[string]cty.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
