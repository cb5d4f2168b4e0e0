package Iservices

import (
	"context"
	"support-connector/internal/domain/entities"
)

type ICallerHistoryService interface {
	GetCallerHistory(ctx context.Context, fromNumber string, tenantID string) (entities.CallerHistory, error)
	// ContextSummary is best-effort: any lookup failure yields "".
	ContextSummary(ctx context.Context, fromNumber string, tenantID string) string
}
