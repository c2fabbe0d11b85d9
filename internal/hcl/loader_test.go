package hcl

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

const pipelineHCL = `
node "a" {
  piece = "identity"
}

node "b" {
  piece = "add"
  args  = { amount = 1 }
}

node "c" {
  piece  = "multiply"
  inputs = {
    a = b.out
    b = 2
  }
}

node "s" {
  piece = "sum"
  args  = { inputs = [for i in range(3) : "x${i}"] }
}

edge {
  from = "a.out"
  to   = "b.in"
}

input "a.in" {
  value = 5
}

input "s.x0" {
  value = "7"
  type  = number
}

output = ["b.out"]

composite "pair" {
  input "x" {
    port = "p.in"
  }
  output "y" {
    port = "q.out"
  }

  node "p" {
    piece = "identity"
  }
  node "q" {
    piece  = "scale"
    args   = { factor = 2 }
    inputs = { in = p.out }
  }
}
`

func TestParse(t *testing.T) {
	m, err := NewLoader().Parse(context.Background(), "pipeline.hcl", []byte(pipelineHCL))
	require.NoError(t, err)

	var ids, pieces []string
	for _, n := range m.Graph.Nodes {
		ids = append(ids, n.ID)
		pieces = append(pieces, n.Piece)
		assert.Equal(t, "pipeline.hcl", n.Source)
	}
	assert.Equal(t, []string{"a", "b", "c", "s"}, ids)
	assert.Equal(t, []string{"identity", "add", "multiply", "sum"}, pieces)

	assert.Nil(t, m.Graph.Nodes[0].Args)
	assert.True(t, m.Graph.Nodes[1].Args["amount"].RawEquals(cty.NumberIntVal(1)))
	assert.True(t, m.Graph.Nodes[3].Args["inputs"].RawEquals(cty.TupleVal([]cty.Value{
		cty.StringVal("x0"), cty.StringVal("x1"), cty.StringVal("x2"),
	})))

	wantEdges := []*config.EdgeDef{
		{From: "a.out", To: "b.in"},
		{From: "b.out", To: "c.a"},
	}
	if diff := cmp.Diff(wantEdges, m.Graph.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"b.out"}, m.Graph.Outputs)

	inputs := make(map[string]cty.Value)
	for _, in := range m.Graph.Inputs {
		inputs[in.Port] = in.Value
	}
	require.Len(t, inputs, 3)
	assert.True(t, inputs["c.b"].RawEquals(cty.NumberIntVal(2)))
	assert.True(t, inputs["a.in"].RawEquals(cty.NumberIntVal(5)))
	assert.True(t, inputs["s.x0"].RawEquals(cty.NumberIntVal(7)), "typed input is converted")

	require.Contains(t, m.Composites, "pair")
	pair := m.Composites["pair"]
	assert.Equal(t, []*config.Binding{{Name: "x", Port: "p.in"}}, pair.Inputs)
	assert.Equal(t, []*config.Binding{{Name: "y", Port: "q.out"}}, pair.Outputs)
	require.Len(t, pair.Graph.Nodes, 2)
	assert.Equal(t, []*config.EdgeDef{{From: "p.out", To: "q.in"}}, pair.Graph.Edges)
	assert.True(t, pair.Graph.Nodes[1].Args["factor"].RawEquals(cty.NumberIntVal(2)))
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "syntax error",
			src:     `node "a" {`,
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "missing piece",
			src:     `node "a" {}`,
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "unknown block",
			src:     `step "a" {}`,
			wantErr: "failed to decode HCL file",
		},
		{
			name: "args not an object",
			src: `node "a" {
  piece = "identity"
  args  = [1, 2]
}`,
			wantErr: `node "a": args must be an object`,
		},
		{
			name: "computed reference",
			src: `node "a" {
  piece  = "identity"
  inputs = { in = b.out + 1 }
}`,
			wantErr: "references must be plain node.port traversals",
		},
		{
			name: "reference without port",
			src: `node "a" {
  piece  = "identity"
  inputs = { in = b }
}`,
			wantErr: `names a node but no port`,
		},
		{
			name: "indexed reference",
			src: `node "a" {
  piece  = "identity"
  inputs = { in = b.out[0] }
}`,
			wantErr: "may only use attribute access",
		},
		{
			name: "unknown input type",
			src: `input "a.in" {
  value = 1
  type  = tensor
}`,
			wantErr: `unknown primitive type "tensor"`,
		},
		{
			name: "value does not convert",
			src: `input "a.in" {
  value = "seven"
  type  = number
}`,
			wantErr: "value does not conform to number",
		},
		{
			name: "duplicate composite",
			src: `composite "c" {}
composite "c" {}`,
			wantErr: `composite "c" defined twice`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader().Parse(context.Background(), "bad.hcl", []byte(tc.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) {
		require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600))
	}
	write("a.hcl", `node "a" {
  piece = "identity"
}`)
	write("nested/b.hcl", `node "b" {
  piece  = "identity"
  inputs = { in = a.out }
}`)
	write("ignored.yaml", "nodes: []")

	m, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, m.Graph.Nodes, 2)
	assert.Equal(t, "a", m.Graph.Nodes[0].ID)
	assert.Equal(t, "b", m.Graph.Nodes[1].ID)
	assert.Equal(t, []*config.EdgeDef{{From: "a.out", To: "b.in"}}, m.Graph.Edges)

	write("dup.hcl", `node "a" {
  piece = "identity"
}`)
	_, err = NewLoader().Load(context.Background(), dir)
	assert.ErrorContains(t, err, `node "a" defined twice`)

	_, err = NewLoader().Load(context.Background(), filepath.Join(dir, "missing.hcl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
