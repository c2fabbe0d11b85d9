package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vk/jigsaw/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// writeOutputs renders outputs as one indented JSON object keyed by
// `node.port`, keys in sorted order.
func writeOutputs(w io.Writer, outputs map[nodeid.Port]cty.Value) error {
	obj := cty.EmptyObjectVal
	if len(outputs) > 0 {
		attrs := make(map[string]cty.Value, len(outputs))
		for port, v := range outputs {
			attrs[port.String()] = v
		}
		obj = cty.ObjectVal(attrs)
	}

	raw, err := ctyjson.Marshal(obj, obj.Type())
	if err != nil {
		return fmt.Errorf("failed to encode outputs: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("failed to encode outputs: %w", err)
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}
