package config

import "fmt"

// Merge folds other into m. Nodes, edges, outputs and inputs are appended in
// order; composites must not be defined twice and node ids must stay unique.
func (m *Model) Merge(other *Model) error {
	if other == nil {
		return nil
	}
	if m.Graph == nil {
		m.Graph = &GraphDef{}
	}
	if m.Composites == nil {
		m.Composites = make(map[string]*CompositeDef)
	}

	if other.Graph != nil {
		seen := make(map[string]*NodeDef, len(m.Graph.Nodes))
		for _, n := range m.Graph.Nodes {
			seen[n.ID] = n
		}
		for _, n := range other.Graph.Nodes {
			if prev, ok := seen[n.ID]; ok {
				return fmt.Errorf("node %q defined twice (%s and %s)", n.ID, prev.Source, n.Source)
			}
			seen[n.ID] = n
		}
		m.Graph.Nodes = append(m.Graph.Nodes, other.Graph.Nodes...)
		m.Graph.Edges = append(m.Graph.Edges, other.Graph.Edges...)
		m.Graph.Outputs = append(m.Graph.Outputs, other.Graph.Outputs...)
		m.Graph.Inputs = append(m.Graph.Inputs, other.Graph.Inputs...)
	}

	for name, def := range other.Composites {
		if prev, ok := m.Composites[name]; ok {
			return fmt.Errorf("composite %q defined twice (%s and %s)", name, prev.Source, def.Source)
		}
		m.Composites[name] = def
	}
	return nil
}
