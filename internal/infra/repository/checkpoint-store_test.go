package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"support-connector/internal/domain/entities"
	Irepository "support-connector/internal/domain/interfaces/repository"
	"support-connector/internal/infra/logger"
)

// flakySharedRepository simulates a shared backend that can be taken down.
type flakySharedRepository struct {
	inner *MemoryCheckpointRepository
	down  bool
}

func (r *flakySharedRepository) unavailable() error {
	return fmt.Errorf("%w: connection refused", Irepository.ErrUnavailable)
}

func (r *flakySharedRepository) Load(ctx context.Context, sessionID string) (entities.CallSession, error) {
	if r.down {
		return entities.CallSession{}, r.unavailable()
	}
	return r.inner.Load(ctx, sessionID)
}

func (r *flakySharedRepository) Save(ctx context.Context, sessionID string, session entities.CallSession, expectedVersion int64) error {
	if r.down {
		return r.unavailable()
	}
	return r.inner.Save(ctx, sessionID, session, expectedVersion)
}

func (r *flakySharedRepository) Exists(ctx context.Context, sessionID string) (bool, error) {
	if r.down {
		return false, r.unavailable()
	}
	return r.inner.Exists(ctx, sessionID)
}

func (r *flakySharedRepository) Delete(ctx context.Context, sessionID string) error {
	if r.down {
		return r.unavailable()
	}
	return r.inner.Delete(ctx, sessionID)
}

func TestCheckpointStoreFallsBackWhenSharedIsDown(t *testing.T) {
	shared := &flakySharedRepository{inner: NewMemoryCheckpointRepository(), down: true}
	local := NewMemoryCheckpointRepository()
	store := NewCheckpointStore(logger.NewLogger(context.Background(), false), shared, local)
	ctx := context.Background()

	require.Equal(t, ModeShared, store.Mode())

	session := entities.NewCallSession("call-1", "default", "+5511988887777")
	require.NoError(t, store.Save(ctx, "call-1", session, 0))

	require.Equal(t, ModeLocalFallback, store.Mode())
	require.False(t, store.Ready())

	// The session is served from the local store while degraded.
	loaded, err := store.Load(ctx, "call-1")
	require.NoError(t, err)
	require.Equal(t, int64(1), loaded.Version)
}

func TestCheckpointStoreRecoversToSharedMode(t *testing.T) {
	shared := &flakySharedRepository{inner: NewMemoryCheckpointRepository(), down: true}
	local := NewMemoryCheckpointRepository()
	store := NewCheckpointStore(logger.NewLogger(context.Background(), false), shared, local)
	ctx := context.Background()

	session := entities.NewCallSession("call-1", "default", "+5511988887777")
	require.NoError(t, store.Save(ctx, "call-1", session, 0))
	require.Equal(t, ModeLocalFallback, store.Mode())

	shared.down = false

	require.NoError(t, store.Save(ctx, "call-2", session, 0))
	require.Equal(t, ModeShared, store.Mode())
	require.True(t, store.Ready())
}

func TestCheckpointStorePropagatesVersionConflictFromShared(t *testing.T) {
	shared := &flakySharedRepository{inner: NewMemoryCheckpointRepository()}
	local := NewMemoryCheckpointRepository()
	store := NewCheckpointStore(logger.NewLogger(context.Background(), false), shared, local)
	ctx := context.Background()

	session := entities.NewCallSession("call-1", "default", "+5511988887777")
	require.NoError(t, store.Save(ctx, "call-1", session, 0))

	err := store.Save(ctx, "call-1", session, 0)
	require.ErrorIs(t, err, Irepository.ErrVersionConflict)
	// A conflict is an answer from the shared backend, not an outage.
	require.Equal(t, ModeShared, store.Mode())
}
