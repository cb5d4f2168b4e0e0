package provider

import (
	"context"
	"support-connector/internal/domain/dto"
)

type IKnowledgeProvider interface {
	Search(ctx context.Context, request dto.KnowledgeSearchRequest) (dto.KnowledgeSearchResponse, error)
}

type ITicketingProvider interface {
	CreateOrUpdateTicket(ctx context.Context, request dto.TicketingCreateRequest) (dto.TicketingCreateResponse, error)
}
