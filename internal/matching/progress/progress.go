// Package progress publishes bulk batch liveness updates. The memory sink
// serves single-process deployments and tests; the Redis sink lets operator
// UIs poll progress across instances.
package progress

import (
	"context"
	"sync"

	"carebridge/internal/matching/models"
	id "carebridge/pkg/domain"
	"carebridge/pkg/platform/sentinel"
)

// MemorySink keeps the latest progress per batch in a map.
type MemorySink struct {
	mu      sync.RWMutex
	batches map[id.BatchID]models.BulkProgress
}

// NewMemory constructs an empty in-memory progress sink.
func NewMemory() *MemorySink {
	return &MemorySink{batches: make(map[id.BatchID]models.BulkProgress)}
}

func (s *MemorySink) Publish(_ context.Context, progress models.BulkProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[progress.BatchID] = progress
	return nil
}

func (s *MemorySink) Fetch(_ context.Context, batchID id.BatchID) (*models.BulkProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	progress, ok := s.batches[batchID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &progress, nil
}
