package Iservices

import (
	"context"
	"support-connector/internal/domain/entities"
)

// MaterializeResult reports whether the external sync succeeded. The local
// durable write is the source of truth either way.
type MaterializeResult string

const (
	MaterializeOk       MaterializeResult = "ok"
	MaterializeDegraded MaterializeResult = "degraded"
)

type ITicketService interface {
	Materialize(ctx context.Context, session entities.CallSession, outcome entities.Outcome) (MaterializeResult, error)
	FindBySessionID(ctx context.Context, sessionID string) (entities.TicketRecord, error)
}
