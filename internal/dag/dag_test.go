package dag

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/jigsaw/internal/nodeid"
	"github.com/vk/jigsaw/internal/piece"
	"github.com/vk/jigsaw/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

func port(raw string) nodeid.Port {
	return nodeid.MustParsePort(raw)
}

// chain builds a graph with the given ids connected out -> in in sequence.
func chain(t *testing.T, ids ...string) *Graph {
	t.Helper()
	g := New()
	for i, id := range ids {
		_, err := g.AddNode(id, testutil.Identity(id))
		require.NoError(t, err)
		if i > 0 {
			require.NoError(t, g.Connect(ids[i-1]+".out", id+".in"))
		}
	}
	return g
}

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.Empty(t, g.Nodes())
	assert.Empty(t, g.Edges())
	assert.Equal(t, 0, g.Len())
}

func TestAddNode(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		n, err := g.AddNode("a", testutil.Identity("id"))
		require.NoError(t, err)
		assert.Equal(t, "a", n.ID())
		assert.Equal(t, 0, n.Index())
		assert.Equal(t, []string{"in"}, n.Inputs())
		assert.Equal(t, []string{"out"}, n.Outputs())

		b, err := g.AddNode("b", testutil.Identity("id"))
		require.NoError(t, err)
		assert.Equal(t, 1, b.Index())

		got, ok := g.Node("a")
		require.True(t, ok)
		assert.Same(t, n, got)
	})

	t.Run("duplicate id", func(t *testing.T) {
		g := New()
		_, err := g.AddNode("a", testutil.Identity("x"))
		require.NoError(t, err)

		_, err = g.AddNode("a", testutil.Identity("y"))
		var dup *DuplicateIDError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "a", dup.ID)
		assert.ErrorIs(t, err, ErrDuplicateID)
		assert.ErrorIs(t, err, ErrStructural)
		assert.Equal(t, 1, g.Len())
	})

	t.Run("invalid id", func(t *testing.T) {
		g := New()
		_, err := g.AddNode("a.b", testutil.Identity("x"))
		assert.ErrorIs(t, err, ErrInvalidID)
		_, err = g.AddNode("", testutil.Identity("x"))
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("nil piece", func(t *testing.T) {
		g := New()
		_, err := g.AddNode("a", nil)
		assert.ErrorContains(t, err, "piece must not be nil")
	})

	t.Run("port declared twice", func(t *testing.T) {
		g := New()
		p := piece.NewFunc("twice", []string{"x", "x"}, []string{"y"}, nil)
		_, err := g.AddNode("a", p)
		var portErr *InvalidPortError
		require.ErrorAs(t, err, &portErr)
		assert.Equal(t, "x", portErr.Port)
	})
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := chain(t, "a", "b")

		deps, err := g.Dependencies("b")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, deps)

		dependents, err := g.Dependents("a")
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, dependents)

		src, ok := g.Source(port("b.in"))
		require.True(t, ok)
		assert.Equal(t, port("a.out"), src)
	})

	t.Run("output fans out to several inputs", func(t *testing.T) {
		g := chain(t, "a", "b")
		_, err := g.AddNode("c", testutil.Identity("c"))
		require.NoError(t, err)
		require.NoError(t, g.Connect("a.out", "c.in"))

		dependents, err := g.Dependents("a")
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c"}, dependents)
	})

	t.Run("unknown nodes", func(t *testing.T) {
		g := chain(t, "a")

		err := g.Connect("dne.out", "a.in")
		var unknown *UnknownNodeError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "dne", unknown.ID)
		assert.ErrorContains(t, err, "edge source")

		err = g.Connect("a.out", "dne.in")
		assert.ErrorIs(t, err, ErrUnknownNode)
		assert.ErrorContains(t, err, "edge destination")
	})

	t.Run("unknown ports", func(t *testing.T) {
		g := chain(t, "a", "b")

		err := g.Connect("a.nope", "b.in")
		var unknown *UnknownPortError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "output", unknown.Direction)

		err = g.Connect("a.out", "b.out")
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "input", unknown.Direction)
		assert.Equal(t, port("b.out"), unknown.Port)
	})

	t.Run("second incoming edge is a port conflict", func(t *testing.T) {
		g := chain(t, "a", "b")
		_, err := g.AddNode("x", testutil.Identity("x"))
		require.NoError(t, err)

		err = g.Connect("x.out", "b.in")
		var conflict *PortConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, port("b.in"), conflict.Port)
		assert.Equal(t, "a.out", conflict.Existing)
		assert.Equal(t, "x.out", conflict.Attempted)
		assert.Len(t, g.Edges(), 1)
	})

	t.Run("malformed reference", func(t *testing.T) {
		g := chain(t, "a")
		assert.Error(t, g.Connect("a", "a.in"))
	})
}

func TestAddEdge_Cycles(t *testing.T) {
	t.Run("two node cycle is rejected", func(t *testing.T) {
		g := New()
		p := piece.NewFunc("p", []string{"in"}, []string{"out"}, nil)
		_, err := g.AddNode("a", p)
		require.NoError(t, err)
		_, err = g.AddNode("b", p)
		require.NoError(t, err)
		require.NoError(t, g.Connect("a.out", "b.in"))

		err = g.Connect("b.out", "a.in")
		var cycle *CycleDetectedError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, []string{"b", "a", "b"}, cycle.Path)
		assert.EqualError(t, err, "cycle detected: b -> a -> b")
	})

	t.Run("self edge is a cycle", func(t *testing.T) {
		g := New()
		_, err := g.AddNode("a", piece.NewFunc("p", []string{"in"}, []string{"out"}, nil))
		require.NoError(t, err)

		err = g.Connect("a.out", "a.in")
		var cycle *CycleDetectedError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, []string{"a", "a"}, cycle.Path)
	})

	t.Run("longer cycle names every node", func(t *testing.T) {
		g := New()
		p := piece.NewFunc("p", []string{"in", "back"}, []string{"out"}, nil)
		for _, id := range []string{"a", "b", "c", "d"} {
			_, err := g.AddNode(id, p)
			require.NoError(t, err)
		}
		require.NoError(t, g.Connect("a.out", "b.in"))
		require.NoError(t, g.Connect("b.out", "c.in"))
		require.NoError(t, g.Connect("c.out", "d.in"))

		err := g.Connect("d.out", "a.back")
		var cycle *CycleDetectedError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, []string{"d", "a", "b", "c", "d"}, cycle.Path)
	})

	t.Run("graph stays usable after a rejected edge", func(t *testing.T) {
		g := New()
		_, err := g.AddNode("a", testutil.Identity("a"))
		require.NoError(t, err)
		_, err = g.AddNode("b", testutil.AddN("b", 1))
		require.NoError(t, err)
		require.NoError(t, g.Connect("a.out", "b.in"))

		require.ErrorIs(t, g.Connect("b.out", "a.in"), ErrCycleDetected)

		assert.Len(t, g.Edges(), 1)
		deps, err := g.Dependencies("a")
		require.NoError(t, err)
		assert.Empty(t, deps)
		require.NoError(t, g.Validate())

		out, err := g.Run(context.Background(), map[nodeid.Port]cty.Value{port("a.in"): cty.NumberIntVal(1)})
		require.NoError(t, err)
		testutil.RequireNumber(t, 2, out[port("b.out")])
	})
}

func TestValidate(t *testing.T) {
	t.Run("empty graph has no cycles", func(t *testing.T) {
		assert.NoError(t, New().Validate())
	})

	t.Run("valid dag with transitive edge", func(t *testing.T) {
		g := New()
		p := piece.NewFunc("p", []string{"x", "y"}, []string{"out"}, nil)
		for _, id := range []string{"a", "b", "c", "d"} {
			_, err := g.AddNode(id, p)
			require.NoError(t, err)
		}
		require.NoError(t, g.Connect("a.out", "b.x"))
		require.NoError(t, g.Connect("b.out", "c.x"))
		require.NoError(t, g.Connect("a.out", "c.y"))
		require.NoError(t, g.Connect("c.out", "d.x"))
		assert.NoError(t, g.Validate())
	})

	t.Run("cycle injected behind the api is reported with its path", func(t *testing.T) {
		g := chain(t, "a", "b", "c")
		// Close c -> a directly on the internals, bypassing AddEdge.
		g.nodes["c"].dependents = append(g.nodes["c"].dependents, "a")
		g.nodes["a"].deps = append(g.nodes["a"].deps, "c")

		err := g.Validate()
		var cycle *CycleDetectedError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, []string{"a", "b", "c", "a"}, cycle.Path)

		_, err = g.Run(context.Background(), nil)
		assert.ErrorIs(t, err, ErrCycleDetected)
	})
}

func TestOrder(t *testing.T) {
	t.Run("respects every edge", func(t *testing.T) {
		g := New()
		p := piece.NewFunc("p", []string{"x", "y"}, []string{"out"}, nil)
		ids := []string{"e", "d", "c", "b", "a", "f"}
		for _, id := range ids {
			_, err := g.AddNode(id, p)
			require.NoError(t, err)
		}
		require.NoError(t, g.Connect("a.out", "b.x"))
		require.NoError(t, g.Connect("b.out", "c.x"))
		require.NoError(t, g.Connect("a.out", "d.x"))
		require.NoError(t, g.Connect("d.out", "e.x"))
		require.NoError(t, g.Connect("c.out", "e.y"))
		require.NoError(t, g.Connect("f.out", "d.y"))

		order, err := g.Order()
		require.NoError(t, err)
		require.Len(t, order, len(ids))

		pos := make(map[string]int, len(order))
		for i, id := range order {
			pos[id] = i
		}
		for _, e := range g.Edges() {
			assert.Less(t, pos[e.From.Node], pos[e.To.Node], "edge %s out of order", e)
		}
	})

	t.Run("ties broken by insertion order", func(t *testing.T) {
		g := chain(t, "a1", "a2")
		_, err := g.AddNode("b1", testutil.Identity("b1"))
		require.NoError(t, err)
		_, err = g.AddNode("b2", testutil.Identity("b2"))
		require.NoError(t, err)
		require.NoError(t, g.Connect("b1.out", "b2.in"))

		order, err := g.Order()
		require.NoError(t, err)
		if diff := cmp.Diff([]string{"a1", "a2", "b1", "b2"}, order); diff != "" {
			t.Errorf("Order() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("identical construction gives identical order", func(t *testing.T) {
		build := func() []string {
			g := New()
			p := piece.NewFunc("p", []string{"x"}, []string{"out"}, nil)
			for _, id := range []string{"z", "y", "x", "w"} {
				_, err := g.AddNode(id, p)
				require.NoError(t, err)
			}
			require.NoError(t, g.Connect("w.out", "z.x"))
			require.NoError(t, g.Connect("x.out", "y.x"))
			order, err := g.Order()
			require.NoError(t, err)
			return order
		}
		first := build()
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, build())
		}
		assert.Equal(t, []string{"x", "y", "w", "z"}, first)
	})
}

func TestMarkOutput(t *testing.T) {
	g := chain(t, "a", "b")

	require.NoError(t, g.MarkOutput(port("a.out")))
	require.NoError(t, g.MarkOutput(port("a.out")), "marking twice is harmless")
	assert.Equal(t, []nodeid.Port{port("b.out"), port("a.out")}, g.Outputs())

	assert.ErrorIs(t, g.MarkOutput(port("dne.out")), ErrUnknownNode)
	assert.ErrorIs(t, g.MarkOutput(port("a.in")), ErrUnknownPort)
}

func TestSeal(t *testing.T) {
	g := chain(t, "a", "b")
	assert.False(t, g.Sealed())
	g.Seal()
	assert.True(t, g.Sealed())

	_, err := g.AddNode("c", testutil.Identity("c"))
	assert.ErrorIs(t, err, ErrGraphSealed)
	assert.ErrorIs(t, g.Connect("b.out", "a.in"), ErrGraphSealed)
	assert.ErrorIs(t, g.MarkOutput(port("a.out")), ErrGraphSealed)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []nodeid.Port{port("b.out")}, g.Outputs())

	out, err := g.Run(context.Background(), map[nodeid.Port]cty.Value{port("a.in"): cty.NumberIntVal(3)})
	require.NoError(t, err, "a sealed graph still runs")
	testutil.RequireNumber(t, 3, out[port("b.out")])
}

func TestFreeInputs(t *testing.T) {
	g := New()
	_, err := g.AddNode("a", testutil.Identity("a"))
	require.NoError(t, err)
	_, err = g.AddNode("m", piece.NewFunc("m", []string{"x", "y"}, []string{"out"}, nil))
	require.NoError(t, err)
	require.NoError(t, g.Connect("a.out", "m.y"))

	assert.Equal(t, []nodeid.Port{port("a.in"), port("m.x")}, g.FreeInputs())
}

func TestErrorMessages(t *testing.T) {
	testCases := []struct {
		err  error
		want string
	}{
		{&DuplicateIDError{ID: "a"}, `node "a" already exists`},
		{&UnknownNodeError{ID: "a"}, `node "a" not found`},
		{&UnknownPortError{Port: port("a.x"), Direction: "input"}, `node "a" has no input port "x"`},
		{&UnsatisfiedInputError{Ports: []nodeid.Port{port("a.in"), port("b.x")}}, "unsatisfied input ports: a.in, b.x"},
		{&NestingError{ID: "c"}, `node "c" would contain its own graph`},
		{&MissingOutputError{Port: port("a.out")}, `node "a" did not produce output "out"`},
	}
	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			assert.EqualError(t, tc.err, tc.want)
		})
	}

	assert.False(t, errors.Is(&MissingOutputError{}, ErrStructural), "missing output is a run-time error")
}
