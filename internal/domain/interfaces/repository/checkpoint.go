package repository

import (
	"context"
	"errors"

	"support-connector/internal/domain/entities"
)

var (
	// ErrNotFound signals no checkpoint exists for the session.
	ErrNotFound = errors.New("checkpoint not found")
	// ErrVersionConflict signals the stored version no longer matches the
	// version the caller read. The caller must reload and reapply.
	ErrVersionConflict = errors.New("checkpoint version conflict")
	// ErrUnavailable signals the shared backend cannot be reached.
	ErrUnavailable = errors.New("checkpoint backend unavailable")
)

// CheckpointRepository is the durable per-call session store. Save enforces
// optimistic concurrency: the stored version must equal expectedVersion
// (0 for a new session) and is bumped to expectedVersion+1 on success.
type CheckpointRepository interface {
	Load(ctx context.Context, sessionID string) (entities.CallSession, error)
	Save(ctx context.Context, sessionID string, session entities.CallSession, expectedVersion int64) error
	Exists(ctx context.Context, sessionID string) (bool, error)
	Delete(ctx context.Context, sessionID string) error
}
