// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the nodestore.Store interface.
//
// It uses sync.Map because the key space (node ids) is fixed for a run while
// values are written once per node, often from different goroutines when a
// graph runs in parallel mode.
package inmemorystore

import (
	"context"
	"sync"

	"github.com/vk/jigsaw/internal/nodestore"
	"github.com/vk/jigsaw/internal/piece"
)

// Store is an in-memory implementation of nodestore.Store.
type Store struct {
	states  sync.Map // Key: node ID, Value: nodestore.Status
	outputs sync.Map // Key: node ID, Value: piece.Values
	errors  sync.Map // Key: node ID, Value: error
}

// New creates a new, empty in-memory node state store.
func New() *Store {
	return &Store{}
}

var _ nodestore.Store = (*Store)(nil)

// SetStatus updates the execution status of a specific node.
func (s *Store) SetStatus(ctx context.Context, id string, status nodestore.Status) error {
	s.states.Store(id, status)
	return nil
}

// GetStatus retrieves the execution status of a specific node.
// If a status has not been set, it returns StatusPending.
func (s *Store) GetStatus(ctx context.Context, id string) (nodestore.Status, error) {
	status, ok := s.states.Load(id)
	if !ok {
		return nodestore.StatusPending, nil
	}
	return status.(nodestore.Status), nil
}

// SetOutput records the successful output of a node.
func (s *Store) SetOutput(ctx context.Context, id string, output piece.Values) error {
	s.outputs.Store(id, output)
	return nil
}

// GetOutput retrieves the recorded output of a completed node.
func (s *Store) GetOutput(ctx context.Context, id string) (piece.Values, error) {
	output, ok := s.outputs.Load(id)
	if !ok {
		return nil, nil
	}
	return output.(piece.Values), nil
}

// SetError records the failure error of a node.
func (s *Store) SetError(ctx context.Context, id string, nodeErr error) error {
	s.errors.Store(id, nodeErr)
	return nil
}

// GetError retrieves the recorded error of a failed node.
func (s *Store) GetError(ctx context.Context, id string) (error, error) {
	err, ok := s.errors.Load(id)
	if !ok {
		return nil, nil
	}
	return err.(error), nil
}
