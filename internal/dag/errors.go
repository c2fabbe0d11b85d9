package dag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/jigsaw/internal/nodeid"
)

var (
	// ErrStructural matches every error caused by the shape of the graph
	// rather than by a piece.
	ErrStructural = errors.New("structural graph error")

	ErrInvalidID        = errors.New("invalid node id")
	ErrInvalidPort      = errors.New("invalid port declaration")
	ErrDuplicateID      = errors.New("duplicate node id")
	ErrUnknownNode      = errors.New("unknown node")
	ErrUnknownPort      = errors.New("unknown port")
	ErrPortConflict     = errors.New("port conflict")
	ErrCycleDetected    = errors.New("cycle detected")
	ErrUnsatisfiedInput = errors.New("unsatisfied input")
	ErrNesting          = errors.New("graph nested inside itself")

	// ErrGraphRunning is returned when the graph is mutated while a run is
	// in progress.
	ErrGraphRunning = errors.New("graph is running")

	// ErrGraphSealed is returned when a sealed graph is mutated.
	ErrGraphSealed = errors.New("graph is sealed")

	// ErrMissingOutput is returned when a piece does not produce a declared
	// output that the graph needs. It is not structural: it is detected
	// during a run.
	ErrMissingOutput = errors.New("missing piece output")
)

func isStructural(target, kind error) bool {
	return target == kind || target == ErrStructural
}

// InvalidIDError reports a node id that is not a valid identifier.
type InvalidIDError struct {
	ID  string
	Err error
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid node id %q: %v", e.ID, e.Err)
}

func (e *InvalidIDError) Is(target error) bool { return isStructural(target, ErrInvalidID) }

// InvalidPortError reports a malformed or repeated port declaration on a
// piece being added.
type InvalidPortError struct {
	Node   string
	Port   string
	Reason string
}

func (e *InvalidPortError) Error() string {
	return fmt.Sprintf("node %q declares invalid port %q: %s", e.Node, e.Port, e.Reason)
}

func (e *InvalidPortError) Is(target error) bool { return isStructural(target, ErrInvalidPort) }

// DuplicateIDError reports an AddNode call reusing an existing id.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("node %q already exists", e.ID)
}

func (e *DuplicateIDError) Is(target error) bool { return isStructural(target, ErrDuplicateID) }

// UnknownNodeError reports a reference to a node that is not in the graph.
type UnknownNodeError struct {
	ID string
	// Role describes where the reference came from, e.g. "edge source".
	Role string
}

func (e *UnknownNodeError) Error() string {
	if e.Role == "" {
		return fmt.Sprintf("node %q not found", e.ID)
	}
	return fmt.Sprintf("%s node %q not found", e.Role, e.ID)
}

func (e *UnknownNodeError) Is(target error) bool { return isStructural(target, ErrUnknownNode) }

// UnknownPortError reports a port its node does not declare.
type UnknownPortError struct {
	Port nodeid.Port
	// Direction is "input" or "output".
	Direction string
}

func (e *UnknownPortError) Error() string {
	return fmt.Sprintf("node %q has no %s port %q", e.Port.Node, e.Direction, e.Port.Name)
}

func (e *UnknownPortError) Is(target error) bool { return isStructural(target, ErrUnknownPort) }

// PortConflictError reports a second source for an input port that already
// has one.
type PortConflictError struct {
	Port nodeid.Port
	// Existing describes the current source: a port reference or "external value".
	Existing string
	// Attempted describes the rejected source.
	Attempted string
}

func (e *PortConflictError) Error() string {
	return fmt.Sprintf("input port %s already fed by %s, cannot also connect %s", e.Port, e.Existing, e.Attempted)
}

func (e *PortConflictError) Is(target error) bool { return isStructural(target, ErrPortConflict) }

// CycleDetectedError names one cycle as a node sequence whose first and last
// elements are the same node.
type CycleDetectedError struct {
	Path []string
}

func (e *CycleDetectedError) Error() string {
	if len(e.Path) == 0 {
		return "cycle detected"
	}
	return "cycle detected: " + strings.Join(e.Path, " -> ")
}

func (e *CycleDetectedError) Is(target error) bool { return isStructural(target, ErrCycleDetected) }

// UnsatisfiedInputError lists the input ports that have neither an incoming
// edge nor an external value at run start.
type UnsatisfiedInputError struct {
	Ports []nodeid.Port
}

func (e *UnsatisfiedInputError) Error() string {
	names := make([]string, len(e.Ports))
	for i, p := range e.Ports {
		names[i] = p.String()
	}
	return "unsatisfied input ports: " + strings.Join(names, ", ")
}

func (e *UnsatisfiedInputError) Is(target error) bool {
	return isStructural(target, ErrUnsatisfiedInput)
}

// NestingError reports an attempt to place a graph inside itself through a
// composite piece.
type NestingError struct {
	ID string
}

func (e *NestingError) Error() string {
	return fmt.Sprintf("node %q would contain its own graph", e.ID)
}

func (e *NestingError) Is(target error) bool { return isStructural(target, ErrNesting) }

// MissingOutputError reports a declared output a piece failed to return.
type MissingOutputError struct {
	Port nodeid.Port
}

func (e *MissingOutputError) Error() string {
	return fmt.Sprintf("node %q did not produce output %q", e.Port.Node, e.Port.Name)
}

func (e *MissingOutputError) Is(target error) bool { return target == ErrMissingOutput }
