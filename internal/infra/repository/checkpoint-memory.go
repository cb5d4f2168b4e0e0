package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"support-connector/internal/domain/entities"
	Irepository "support-connector/internal/domain/interfaces/repository"
)

// MemoryCheckpointRepository is the process-local fallback store used while
// the shared backend is unreachable. It is not shared across instances:
// callers must be sticky-routed to this instance for the rest of the call.
type MemoryCheckpointRepository struct {
	mu    sync.Mutex
	items map[string][]byte
}

func NewMemoryCheckpointRepository() *MemoryCheckpointRepository {
	return &MemoryCheckpointRepository{
		items: make(map[string][]byte),
	}
}

func (r *MemoryCheckpointRepository) Load(ctx context.Context, sessionID string) (entities.CallSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload, ok := r.items[sessionID]
	if !ok {
		return entities.CallSession{}, Irepository.ErrNotFound
	}

	var session entities.CallSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return entities.CallSession{}, fmt.Errorf("failed to decode checkpoint for %s: %w", sessionID, err)
	}
	return session, nil
}

func (r *MemoryCheckpointRepository) Save(ctx context.Context, sessionID string, session entities.CallSession, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if payload, ok := r.items[sessionID]; ok {
		var current entities.CallSession
		if err := json.Unmarshal(payload, &current); err != nil {
			return fmt.Errorf("failed to decode checkpoint for %s: %w", sessionID, err)
		}
		if current.Version != expectedVersion {
			return Irepository.ErrVersionConflict
		}
	} else if expectedVersion != 0 {
		return Irepository.ErrVersionConflict
	}

	session.Version = expectedVersion + 1
	// Stored as serialized bytes so callers never share references with the
	// store, matching the shared backend's semantics.
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint for %s: %w", sessionID, err)
	}
	r.items[sessionID] = payload
	return nil
}

func (r *MemoryCheckpointRepository) Exists(ctx context.Context, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.items[sessionID]
	return ok, nil
}

func (r *MemoryCheckpointRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, sessionID)
	return nil
}
