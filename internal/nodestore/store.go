// Package nodestore defines the interface for storing and retrieving the
// mutable execution state of nodes during a single graph run.
//
// The graph structure (nodes, ports, edges) is fixed once a run begins; the
// node store holds everything that changes while the run progresses: each
// node's status, the values it produced and the error that stopped it.
//
// A fresh store is created for every run unless the caller supplies one, which
// lets tests and tooling inspect what happened after Run returns.
//
// # State Transitions
//
// Nodes follow this lifecycle:
//
//	Pending → Running → Completed (with outputs) OR Failed (with error)
//	Pending → Skipped (the run stopped before the node was reached)
package nodestore

import (
	"context"

	"github.com/vk/jigsaw/internal/piece"
)

// Status is the execution state of a node within one run.
type Status int32

const (
	// StatusPending means the node has not started.
	StatusPending Status = iota
	// StatusRunning means the node's piece is being invoked.
	StatusRunning
	// StatusCompleted means the piece returned successfully.
	StatusCompleted
	// StatusFailed means the piece returned an error.
	StatusFailed
	// StatusSkipped means the run ended before the node could start.
	StatusSkipped
)

// String returns a lower-case name for the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Store manages the mutable execution state of nodes during a run.
//
// Implementations MUST be safe for concurrent use: in parallel mode several
// goroutines update different nodes at once.
type Store interface {
	// SetStatus updates the execution status of a node.
	SetStatus(ctx context.Context, id string, status Status) error

	// GetStatus retrieves the current status of a node. Nodes that were never
	// touched report StatusPending.
	GetStatus(ctx context.Context, id string) (Status, error)

	// SetOutput records the values a node produced.
	SetOutput(ctx context.Context, id string, output piece.Values) error

	// GetOutput retrieves the values a completed node produced, or nil.
	GetOutput(ctx context.Context, id string) (piece.Values, error)

	// SetError records the error that failed a node.
	SetError(ctx context.Context, id string, nodeErr error) error

	// GetError retrieves the recorded error of a failed node, or nil.
	GetError(ctx context.Context, id string) (error, error)
}
