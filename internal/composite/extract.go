package composite

// Extract returns every piece of type T inside c in execution order. Nested
// composites that are not themselves a T are searched recursively.
func Extract[T any](c *Composite) []T {
	order, err := c.graph.Order()
	if err != nil {
		return nil
	}

	var found []T
	for _, id := range order {
		n, _ := c.graph.Node(id)
		switch p := n.Piece().(type) {
		case T:
			found = append(found, p)
		case *Composite:
			found = append(found, Extract[T](p)...)
		}
	}
	return found
}
