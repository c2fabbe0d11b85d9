package composite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/jigsaw/internal/dag"
)

// ErrOutputRedefinition is matched by OutputRedefinitionError.
var ErrOutputRedefinition = errors.New("output redefined")

// ErrBinding is matched by BindingError.
var ErrBinding = errors.New("invalid port binding")

// OutputRedefinitionError is returned by Assemble when two pieces produce an
// output with the same name.
type OutputRedefinitionError struct {
	Composite string
	Output    string
	// Nodes and Indices identify the two producers, first one first.
	Nodes   []string
	Indices []int
}

func (e *OutputRedefinitionError) Error() string {
	return fmt.Sprintf("composite %q: output %q produced by more than one piece: %s at indices %v",
		e.Composite, e.Output, strings.Join(e.Nodes, ", "), e.Indices)
}

func (e *OutputRedefinitionError) Is(target error) bool {
	return target == ErrOutputRedefinition || target == dag.ErrStructural
}

// BindingError reports an exposed port name that cannot be bound.
type BindingError struct {
	Composite string
	Name      string
	Reason    string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("composite %q: port %q: %s", e.Composite, e.Name, e.Reason)
}

func (e *BindingError) Is(target error) bool {
	return target == ErrBinding || target == dag.ErrStructural
}
