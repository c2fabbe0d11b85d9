package yaml

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/jigsaw/internal/config"
	"github.com/zclconf/go-cty/cty"
)

const pipelineYAML = `
nodes:
  - id: a
    piece: identity
  - id: b
    piece: add
    args:
      amount: 1.5
  - id: s
    piece: sum
    args: {inputs: [x, y], enabled: true, note: ~}
edges:
  - {from: a.out, to: b.in}
inputs:
  a.in: 5
  s.x: [1, 2]
  s.y: {k: v}
outputs: [b.out]
composites:
  - name: pair
    inputs: [{name: x, port: p.in}]
    outputs: [{name: y, port: q.out}]
    nodes:
      - {id: p, piece: identity}
      - {id: q, piece: scale, args: {factor: 2}}
    edges:
      - {from: p.out, to: q.in}
`

func TestParse(t *testing.T) {
	m, err := NewLoader().Parse(context.Background(), "pipeline.yaml", []byte(pipelineYAML))
	require.NoError(t, err)

	require.Len(t, m.Graph.Nodes, 3)
	assert.Equal(t, "a", m.Graph.Nodes[0].ID)
	assert.Nil(t, m.Graph.Nodes[0].Args)
	assert.True(t, m.Graph.Nodes[1].Args["amount"].RawEquals(cty.NumberFloatVal(1.5)))

	sArgs := m.Graph.Nodes[2].Args
	assert.True(t, sArgs["inputs"].RawEquals(cty.TupleVal([]cty.Value{cty.StringVal("x"), cty.StringVal("y")})))
	assert.True(t, sArgs["enabled"].RawEquals(cty.True))
	assert.True(t, sArgs["note"].IsNull())

	assert.Equal(t, []*config.EdgeDef{{From: "a.out", To: "b.in"}}, m.Graph.Edges)
	assert.Equal(t, []string{"b.out"}, m.Graph.Outputs)

	require.Len(t, m.Graph.Inputs, 3)
	assert.Equal(t, "a.in", m.Graph.Inputs[0].Port)
	assert.True(t, m.Graph.Inputs[0].Value.RawEquals(cty.NumberIntVal(5)))
	assert.True(t, m.Graph.Inputs[1].Value.RawEquals(cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)})))
	assert.True(t, m.Graph.Inputs[2].Value.RawEquals(cty.ObjectVal(map[string]cty.Value{"k": cty.StringVal("v")})))

	require.Contains(t, m.Composites, "pair")
	pair := m.Composites["pair"]
	assert.Equal(t, []*config.Binding{{Name: "x", Port: "p.in"}}, pair.Inputs)
	assert.Equal(t, []*config.Binding{{Name: "y", Port: "q.out"}}, pair.Outputs)
	require.Len(t, pair.Graph.Nodes, 2)
	assert.True(t, pair.Graph.Nodes[1].Args["factor"].RawEquals(cty.NumberIntVal(2)))
}

func TestParse_MultipleDocuments(t *testing.T) {
	src := `
nodes: [{id: a, piece: identity}]
---
nodes: [{id: b, piece: identity}]
edges: [{from: a.out, to: b.in}]
`
	m, err := NewLoader().Parse(context.Background(), "multi.yaml", []byte(src))
	require.NoError(t, err)
	require.Len(t, m.Graph.Nodes, 2)
	assert.Len(t, m.Graph.Edges, 1)

	empty, err := NewLoader().Parse(context.Background(), "empty.yaml", nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Graph.Nodes)
}

func TestParse_NodeInputs(t *testing.T) {
	src := `
nodes:
  - {id: a, piece: identity}
  - {id: s, piece: sum, args: {inputs: [y, x]}, inputs: {y: a.out, x: a.out}}
edges:
  - {from: s.out, to: z.in}
composites:
  - name: pair
    nodes:
      - {id: p, piece: identity}
      - {id: q, piece: identity, inputs: {in: p.out}}
`
	m, err := NewLoader().Parse(context.Background(), "inputs.yaml", []byte(src))
	require.NoError(t, err)

	want := []*config.EdgeDef{
		{From: "s.out", To: "z.in"},
		{From: "a.out", To: "s.x"},
		{From: "a.out", To: "s.y"},
	}
	if diff := cmp.Diff(want, m.Graph.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, m.Graph.Inputs)
	assert.Equal(t, []*config.EdgeDef{{From: "p.out", To: "q.in"}}, m.Composites["pair"].Graph.Edges)
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantErr string
	}{
		{name: "unknown field", src: "steps: []", wantErr: "field steps not found"},
		{name: "node without piece", src: "nodes: [{id: a}]", wantErr: `node "a": both id and piece are required`},
		{name: "edge without target", src: "edges: [{from: a.out}]", wantErr: "edge needs both from and to"},
		{name: "args not a mapping", src: "nodes: [{id: a, piece: p, args: [1]}]", wantErr: "expected a mapping"},
		{name: "repeated input", src: "inputs: {a.in: 1, a.in: 2}", wantErr: `key "a.in" repeated`},
		{name: "duplicate node across documents", src: "nodes: [{id: a, piece: p}]\n---\nnodes: [{id: a, piece: p}]", wantErr: `node "a" defined twice`},
		{name: "unnamed composite", src: "composites: [{nodes: []}]", wantErr: "composite without a name"},
		{name: "edge without port", src: "edges: [{from: a, to: b.in}]", wantErr: `port reference "a" must have the form node.port`},
		{name: "node input without port", src: "nodes: [{id: b, piece: p, inputs: {in: a}}]", wantErr: `port reference "a" must have the form node.port`},
		{name: "node input bad name", src: "nodes: [{id: b, piece: p, inputs: {bad name: a.out}}]", wantErr: `node "b": inputs:`},
		{name: "node input without source", src: "nodes: [{id: b, piece: p, inputs: {in: ~}}]", wantErr: `node "b": input "in" has no source`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader().Parse(context.Background(), "bad.yaml", []byte(tc.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("nodes: [{id: a, piece: identity}]"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte("nodes: [{id: b, piece: identity}]"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.hcl"), []byte(`node "c" {}`), 0o600))

	m, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, m.Graph.Nodes, 2)
	assert.Equal(t, "a", m.Graph.Nodes[0].ID)
	assert.Equal(t, "b", m.Graph.Nodes[1].ID)
}
