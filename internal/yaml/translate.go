package yaml

import (
	"fmt"
	"slices"

	"github.com/vk/jigsaw/internal/config"
	"github.com/vk/jigsaw/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

func translate(filename string, doc *document) (*config.Model, error) {
	model := config.NewModel()

	graph, err := translateGraph(filename, doc.Nodes, doc.Edges)
	if err != nil {
		return nil, err
	}
	graph.Outputs = doc.Outputs
	model.Graph = graph

	inputs, err := mappingEntries(&doc.Inputs)
	if err != nil {
		return nil, fmt.Errorf("inputs: %w", err)
	}
	for _, in := range inputs {
		model.Graph.Inputs = append(model.Graph.Inputs, &config.InputValue{Port: in.key, Value: in.value})
	}

	for _, c := range doc.Composites {
		if c.Name == "" {
			return nil, fmt.Errorf("composite without a name")
		}
		if _, dup := model.Composites[c.Name]; dup {
			return nil, fmt.Errorf("composite %q defined twice", c.Name)
		}
		g, err := translateGraph(filename, c.Nodes, c.Edges)
		if err != nil {
			return nil, fmt.Errorf("composite %q: %w", c.Name, err)
		}
		def := &config.CompositeDef{Name: c.Name, Graph: g, Source: filename}
		for _, b := range c.Inputs {
			def.Inputs = append(def.Inputs, &config.Binding{Name: b.Name, Port: b.Port})
		}
		for _, b := range c.Outputs {
			def.Outputs = append(def.Outputs, &config.Binding{Name: b.Name, Port: b.Port})
		}
		model.Composites[c.Name] = def
	}
	return model, nil
}

// translateGraph converts node and edge entries. Connections written in a
// node's inputs map become edges after the explicit ones, in port name order.
func translateGraph(filename string, nodes []nodeDoc, edges []edgeDoc) (*config.GraphDef, error) {
	g := &config.GraphDef{}
	for _, e := range edges {
		if e.From.IsZero() || e.To.IsZero() {
			return nil, fmt.Errorf("edge needs both from and to")
		}
		g.Edges = append(g.Edges, &config.EdgeDef{From: e.From.String(), To: e.To.String()})
	}
	for _, n := range nodes {
		if n.ID == "" || n.Piece == "" {
			return nil, fmt.Errorf("node %q: both id and piece are required", n.ID)
		}
		args, err := mappingEntries(&n.Args)
		if err != nil {
			return nil, fmt.Errorf("node %q: args: %w", n.ID, err)
		}
		var argMap map[string]cty.Value
		if len(args) > 0 {
			argMap = make(map[string]cty.Value, len(args))
			for _, a := range args {
				argMap[a.key] = a.value
			}
		}
		g.Nodes = append(g.Nodes, &config.NodeDef{ID: n.ID, Piece: n.Piece, Args: argMap, Source: filename})

		inputNames := make([]string, 0, len(n.Inputs))
		for name := range n.Inputs {
			inputNames = append(inputNames, name)
		}
		slices.Sort(inputNames)
		for _, name := range inputNames {
			if err := nodeid.ValidatePortName(name); err != nil {
				return nil, fmt.Errorf("node %q: inputs: %w", n.ID, err)
			}
			src := n.Inputs[name]
			if src.IsZero() {
				return nil, fmt.Errorf("node %q: input %q has no source", n.ID, name)
			}
			g.Edges = append(g.Edges, &config.EdgeDef{From: src.String(), To: nodeid.NewPort(n.ID, name).String()})
		}
	}
	return g, nil
}

type entry struct {
	key   string
	value cty.Value
}

// mappingEntries converts a mapping node into its entries, in document
// order. An absent node yields no entries.
func mappingEntries(node *yaml.Node) ([]entry, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	node = resolve(node)
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", node.Line)
	}

	entries := make([]entry, 0, len(node.Content)/2)
	seen := make(map[string]struct{}, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := resolve(node.Content[i])
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
		}
		if _, dup := seen[key.Value]; dup {
			return nil, fmt.Errorf("line %d: key %q repeated", key.Line, key.Value)
		}
		seen[key.Value] = struct{}{}

		val, err := toCty(node.Content[i+1])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{key: key.Value, value: val})
	}
	return entries, nil
}

// toCty converts a YAML node into the equivalent cty value: sequences become
// tuples and mappings become objects.
func toCty(node *yaml.Node) (cty.Value, error) {
	node = resolve(node)

	switch node.Kind {
	case yaml.ScalarNode:
		return scalarToCty(node)

	case yaml.SequenceNode:
		if len(node.Content) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := toCty(item)
			if err != nil {
				return cty.NilVal, err
			}
			elems = append(elems, v)
		}
		return cty.TupleVal(elems), nil

	case yaml.MappingNode:
		entries, err := mappingEntries(node)
		if err != nil {
			return cty.NilVal, err
		}
		if len(entries) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(entries))
		for _, e := range entries {
			attrs[e.key] = e.value
		}
		return cty.ObjectVal(attrs), nil

	default:
		return cty.NilVal, fmt.Errorf("line %d: unsupported YAML node", node.Line)
	}
}

func scalarToCty(node *yaml.Node) (cty.Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return cty.NullVal(cty.DynamicPseudoType), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return cty.NilVal, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return cty.BoolVal(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			return cty.NilVal, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return cty.NumberIntVal(i), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return cty.NilVal, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return cty.NumberFloatVal(f), nil
	default:
		return cty.StringVal(node.Value), nil
	}
}

// resolve unwraps document and alias nodes.
func resolve(node *yaml.Node) *yaml.Node {
	for {
		switch {
		case node.Kind == yaml.DocumentNode && len(node.Content) > 0:
			node = node.Content[0]
		case node.Kind == yaml.AliasNode && node.Alias != nil:
			node = node.Alias
		default:
			return node
		}
	}
}
