package Iservices

import (
	"context"
	"support-connector/internal/domain/dto"
)

type IQueryAIService interface {
	ExecuteQueryAI(ctx context.Context, queryText string, messageContext string) (dto.QueryAIResponse, error)
}
