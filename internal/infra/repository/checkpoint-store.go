package repository

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"support-connector/internal/domain/entities"
	Irepository "support-connector/internal/domain/interfaces/repository"
	"support-connector/internal/infra/logger"
)

const (
	ModeShared        = "shared"
	ModeLocalFallback = "local-fallback"
)

// CheckpointStore routes checkpoint operations to the shared backend and
// degrades to the process-local store when it is unreachable. Mode is exposed
// on the readiness surface so operators can sticky-route callers while
// degraded.
type CheckpointStore struct {
	Logger   *logger.Logger
	shared   Irepository.CheckpointRepository
	local    Irepository.CheckpointRepository
	degraded atomic.Bool
}

func NewCheckpointStore(log *logger.Logger, shared Irepository.CheckpointRepository, local Irepository.CheckpointRepository) *CheckpointStore {
	return &CheckpointStore{Logger: log, shared: shared, local: local}
}

// Mode reports which backend served the most recent operation.
func (s *CheckpointStore) Mode() string {
	if s.degraded.Load() {
		return ModeLocalFallback
	}
	return ModeShared
}

func (s *CheckpointStore) Ready() bool {
	return !s.degraded.Load()
}

func (s *CheckpointStore) Load(ctx context.Context, sessionID string) (entities.CallSession, error) {
	session, err := s.shared.Load(ctx, sessionID)
	if errors.Is(err, Irepository.ErrUnavailable) {
		s.enterFallback(err)
		return s.local.Load(ctx, sessionID)
	}
	if err == nil || errors.Is(err, Irepository.ErrNotFound) {
		s.leaveFallback()
	}
	return session, err
}

func (s *CheckpointStore) Save(ctx context.Context, sessionID string, session entities.CallSession, expectedVersion int64) error {
	err := s.shared.Save(ctx, sessionID, session, expectedVersion)
	if errors.Is(err, Irepository.ErrUnavailable) {
		s.enterFallback(err)
		return s.local.Save(ctx, sessionID, session, expectedVersion)
	}
	if err == nil || errors.Is(err, Irepository.ErrVersionConflict) {
		s.leaveFallback()
	}
	return err
}

func (s *CheckpointStore) Exists(ctx context.Context, sessionID string) (bool, error) {
	exists, err := s.shared.Exists(ctx, sessionID)
	if errors.Is(err, Irepository.ErrUnavailable) {
		s.enterFallback(err)
		return s.local.Exists(ctx, sessionID)
	}
	if err == nil {
		s.leaveFallback()
	}
	return exists, err
}

func (s *CheckpointStore) Delete(ctx context.Context, sessionID string) error {
	err := s.shared.Delete(ctx, sessionID)
	if errors.Is(err, Irepository.ErrUnavailable) {
		s.enterFallback(err)
		return s.local.Delete(ctx, sessionID)
	}
	if err == nil {
		s.leaveFallback()
	}
	return err
}

func (s *CheckpointStore) enterFallback(cause error) {
	if s.degraded.CompareAndSwap(false, true) {
		s.Logger.Warn(fmt.Sprintf("Shared checkpoint store unreachable, entering local-fallback mode: %v", cause))
	}
}

func (s *CheckpointStore) leaveFallback() {
	if s.degraded.CompareAndSwap(true, false) {
		s.Logger.Info("Shared checkpoint store reachable again, leaving local-fallback mode")
	}
}
