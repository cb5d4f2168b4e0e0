package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"support-connector/internal/domain/entities"
	Irepository "support-connector/internal/domain/interfaces/repository"
)

const checkpointKeyPrefix = "checkpoint:"

// RedisCheckpointRepository is the shared checkpoint backend. Any server
// instance can load the next turn of a call from it. Save runs under WATCH so
// two concurrent saves with the same expected version cannot both win.
type RedisCheckpointRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCheckpointRepository(client *redis.Client, ttl time.Duration) *RedisCheckpointRepository {
	return &RedisCheckpointRepository{client: client, ttl: ttl}
}

func checkpointKey(sessionID string) string {
	return checkpointKeyPrefix + sessionID
}

func (r *RedisCheckpointRepository) Load(ctx context.Context, sessionID string) (entities.CallSession, error) {
	payload, err := r.client.Get(ctx, checkpointKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return entities.CallSession{}, Irepository.ErrNotFound
	}
	if err != nil {
		return entities.CallSession{}, fmt.Errorf("%w: %v", Irepository.ErrUnavailable, err)
	}

	var session entities.CallSession
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return entities.CallSession{}, fmt.Errorf("failed to decode checkpoint for %s: %w", sessionID, err)
	}
	return session, nil
}

func (r *RedisCheckpointRepository) Save(ctx context.Context, sessionID string, session entities.CallSession, expectedVersion int64) error {
	key := checkpointKey(sessionID)

	txn := func(tx *redis.Tx) error {
		stored, err := tx.Get(ctx, key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			if expectedVersion != 0 {
				return Irepository.ErrVersionConflict
			}
		case err != nil:
			return fmt.Errorf("%w: %v", Irepository.ErrUnavailable, err)
		default:
			var current entities.CallSession
			if decodeErr := json.Unmarshal([]byte(stored), &current); decodeErr != nil {
				return fmt.Errorf("failed to decode checkpoint for %s: %w", sessionID, decodeErr)
			}
			if current.Version != expectedVersion {
				return Irepository.ErrVersionConflict
			}
		}

		session.Version = expectedVersion + 1
		payload, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("failed to encode checkpoint for %s: %w", sessionID, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		if err != nil {
			return fmt.Errorf("%w: %v", Irepository.ErrUnavailable, err)
		}
		return nil
	}

	err := r.client.Watch(ctx, txn, key)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		// The watched key changed between read and write: a concurrent save
		// won the race.
		return Irepository.ErrVersionConflict
	case errors.Is(err, Irepository.ErrVersionConflict),
		errors.Is(err, Irepository.ErrUnavailable):
		return err
	default:
		// Watch failing before the txn ran is a connectivity problem.
		return fmt.Errorf("%w: %v", Irepository.ErrUnavailable, err)
	}
}

func (r *RedisCheckpointRepository) Exists(ctx context.Context, sessionID string) (bool, error) {
	count, err := r.client.Exists(ctx, checkpointKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", Irepository.ErrUnavailable, err)
	}
	return count > 0, nil
}

func (r *RedisCheckpointRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, checkpointKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", Irepository.ErrUnavailable, err)
	}
	return nil
}

// Ping reports shared backend reachability for the readiness surface.
func (r *RedisCheckpointRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", Irepository.ErrUnavailable, err)
	}
	return nil
}
