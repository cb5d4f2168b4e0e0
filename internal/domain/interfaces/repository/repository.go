package repository

import (
	"context"
	"time"
)

type Repository[T any] interface {
	Create(ctx context.Context, collectionName string, entity T) (T, error)
	Upsert(ctx context.Context, collectionName string, sessionID string, entity T) (T, error)
	Delete(ctx context.Context, collectionName string, sessionID string) error
	FindBySessionID(ctx context.Context, collectionName string, sessionID string) (T, error)
	FindByCallerSince(ctx context.Context, collectionName string, fromNumber string, tenantID string, since time.Time) ([]T, error)
}
