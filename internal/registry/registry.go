package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/jigsaw/internal/piece"
)

// Module is the interface that all piece modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Kind describes a piece kind that definitions can instantiate.
type Kind struct {
	// Name is the identifier used in definition files.
	Name        string
	Description string
	// NewArgs returns a pointer to a fresh argument struct whose exported
	// fields carry `cty:"..."` tags. Pointer fields are optional; Defaults
	// fill them when absent. Nil means the kind takes no arguments.
	NewArgs  func() any
	Defaults map[string]any
	// New builds a piece. args is the decoded struct from NewArgs, or nil.
	New func(name string, args any) (piece.Piece, error)
}

// Registry holds the piece kinds known to a single application instance.
type Registry struct {
	kinds map[string]*Kind
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{kinds: make(map[string]*Kind)}
}

// Register adds kind. Registering the same name twice is a programmer error
// and panics.
func (r *Registry) Register(kind *Kind) {
	if kind == nil || kind.Name == "" || kind.New == nil {
		panic("piece kind must have a name and a constructor")
	}
	if _, exists := r.kinds[kind.Name]; exists {
		panic(fmt.Sprintf("piece kind with name '%s' already registered", kind.Name))
	}
	slog.Debug("Registering piece kind.", "name", kind.Name)
	r.kinds[kind.Name] = kind
}

// Lookup returns the kind registered under name.
func (r *Registry) Lookup(name string) (*Kind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// Kinds returns the registered kind names in sorted order.
func (r *Registry) Kinds() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered kinds.
func (r *Registry) Len() int {
	return len(r.kinds)
}
