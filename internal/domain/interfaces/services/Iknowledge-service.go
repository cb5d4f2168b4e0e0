package Iservices

import (
	"context"
	"support-connector/internal/domain/entities"
)

type IKnowledgeService interface {
	Retrieve(ctx context.Context, tenantID string, query string, category string) []entities.Snippet
	MatchesTechnicalSignal(text string) bool
	BackendReady() bool
}
