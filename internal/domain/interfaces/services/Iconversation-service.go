package Iservices

import (
	"context"
	"support-connector/internal/domain/dto"
	"support-connector/internal/domain/entities"
)

type IConversationService interface {
	HandleTurn(ctx context.Context, request dto.TurnRequest) (dto.TurnResponse, error)
}

type IDecisionService interface {
	Decide(generatedText string, session entities.CallSession) entities.Outcome
}
