package composite

import (
	"fmt"

	"github.com/vk/jigsaw/internal/dag"
	"github.com/vk/jigsaw/internal/nodeid"
	"github.com/vk/jigsaw/internal/piece"
)

// Assemble builds a composite from pieces wired together by port name: an
// input named x is fed by whichever piece declares an output named x. Inputs
// that no piece produces become the composite's inputs; every output is
// exposed under its plain name.
//
// Node ids come from the pieces' names when usable and unique, and fall back
// to pieceN, N being the position in pieces.
func Assemble(name string, pieces ...piece.Piece) (*Composite, error) {
	g := dag.New()
	ids := make([]string, len(pieces))
	producers := make(map[string]int)

	for i, p := range pieces {
		id := nodeIDFor(g, p, i)
		if _, err := g.AddNode(id, p); err != nil {
			return nil, fmt.Errorf("composite %q: %w", name, err)
		}
		ids[i] = id

		for _, out := range p.Outputs() {
			if first, ok := producers[out]; ok {
				return nil, &OutputRedefinitionError{
					Composite: name,
					Output:    out,
					Nodes:     []string{ids[first], id},
					Indices:   []int{first, i},
				}
			}
			producers[out] = i
		}
	}

	var opts []Option
	for i, p := range pieces {
		for _, in := range p.Inputs() {
			to := nodeid.NewPort(ids[i], in)
			src, ok := producers[in]
			if !ok {
				opts = append(opts, BindInput(in, to))
				continue
			}
			if err := g.AddEdge(nodeid.NewPort(ids[src], in), to); err != nil {
				return nil, fmt.Errorf("composite %q: %w", name, err)
			}
		}
	}
	for i, p := range pieces {
		for _, out := range p.Outputs() {
			opts = append(opts, BindOutput(out, nodeid.NewPort(ids[i], out)))
		}
	}

	return New(name, g, opts...)
}

func nodeIDFor(g *dag.Graph, p piece.Piece, i int) string {
	if named, ok := p.(piece.Named); ok {
		id := named.Name()
		if nodeid.ValidateID(id) == nil {
			if _, taken := g.Node(id); !taken {
				return id
			}
		}
	}
	return fmt.Sprintf("piece%d", i)
}
