package services

import (
	"context"
	"errors"
	"fmt"
	"support-connector/internal/config"
	"support-connector/internal/domain/dto"
	"support-connector/internal/domain/entities"
	"support-connector/internal/domain/interfaces/repository"
	repocontants "support-connector/internal/domain/interfaces/repository/contants"
	Iservices "support-connector/internal/domain/interfaces/services"
	"support-connector/internal/infra/logger"
	"support-connector/internal/infra/provider"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// TicketService materializes terminal call outcomes. The local durable write
// is the source of truth; the forward to the external ticketing collaborator
// is best-effort and retried out of band when it fails.
type TicketService struct {
	Logger            *logger.Logger
	TicketRepository  repository.Repository[entities.TicketRecord]
	TicketingProvider provider.ITicketingProvider
	syncTimeout       time.Duration
	retryInterval     time.Duration
	retryQueue        chan entities.TicketRecord
}

func NewTicketService(log *logger.Logger, ticketRepository repository.Repository[entities.TicketRecord], ticketingProvider provider.ITicketingProvider) *TicketService {
	return &TicketService{
		Logger:            log,
		TicketRepository:  ticketRepository,
		TicketingProvider: ticketingProvider,
		syncTimeout:       config.GetEnvDurationDefault("TICKET_SYNC_TIMEOUT", 5*time.Second),
		retryInterval:     config.GetEnvDurationDefault("TICKET_SYNC_RETRY_INTERVAL", 30*time.Second),
		retryQueue:        make(chan entities.TicketRecord, 64),
	}
}

// Materialize writes the TicketRecord keyed by session_id and forwards it to
// the ticketing collaborator. Repeated calls for the same session overwrite
// the same record, so webhook retries cannot duplicate tickets.
func (th *TicketService) Materialize(ctx context.Context, session entities.CallSession, outcome entities.Outcome) (Iservices.MaterializeResult, error) {
	record := th.buildRecord(ctx, session, outcome)

	if _, err := th.TicketRepository.Upsert(ctx, repocontants.TICKETS_COLLECTION, session.SessionID, record); err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to persist ticket record for session %s: %v", session.SessionID, err))
		return Iservices.MaterializeDegraded, nil
	}

	syncCtx, cancel := context.WithTimeout(ctx, th.syncTimeout)
	defer cancel()

	response, err := th.TicketingProvider.CreateOrUpdateTicket(syncCtx, dto.TicketingCreateRequest{
		TicketID:      record.TicketID,
		SessionID:     record.SessionID,
		TenantID:      record.TenantID,
		FromNumber:    record.FromNumber,
		IssueType:     record.IssueType,
		Description:   record.Description,
		Severity:      record.Severity,
		Status:        string(record.Status),
		KnowledgeRefs: record.KnowledgeRefs,
	})
	if err != nil {
		th.Logger.Warn(fmt.Sprintf("External ticket sync failed for session %s, queueing retry: %v", session.SessionID, err))
		th.enqueueRetry(record)
		return Iservices.MaterializeDegraded, nil
	}

	record.ExternalTicketID = response.ExternalTicketID
	record.Synced = true
	record.UpdatedAt = time.Now().UTC()
	if _, err := th.TicketRepository.Upsert(ctx, repocontants.TICKETS_COLLECTION, session.SessionID, record); err != nil {
		th.Logger.Warn(fmt.Sprintf("Failed to record external ticket id for session %s: %v", session.SessionID, err))
	}

	return Iservices.MaterializeOk, nil
}

func (th *TicketService) FindBySessionID(ctx context.Context, sessionID string) (entities.TicketRecord, error) {
	record, err := th.TicketRepository.FindBySessionID(ctx, repocontants.TICKETS_COLLECTION, sessionID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return entities.TicketRecord{}, fmt.Errorf("ticket for session %s: %w", sessionID, err)
	}
	return record, err
}

// buildRecord reuses the ticket id of an already materialized record so
// re-materialization after a webhook retry stays idempotent.
func (th *TicketService) buildRecord(ctx context.Context, session entities.CallSession, outcome entities.Outcome) entities.TicketRecord {
	ticketID := ""
	if existing, err := th.TicketRepository.FindBySessionID(ctx, repocontants.TICKETS_COLLECTION, session.SessionID); err == nil && existing.TicketID != "" {
		ticketID = existing.TicketID
	}
	if ticketID == "" {
		ticketID = uuid.NewString()
	}

	status := entities.TicketStatusEscalated
	if outcome == entities.OutcomeResolved {
		status = entities.TicketStatusResolved
	}

	now := time.Now().UTC()
	return entities.TicketRecord{
		TicketID:      ticketID,
		SessionID:     session.SessionID,
		TenantID:      session.TenantID,
		FromNumber:    session.FromNumber,
		IssueType:     session.TicketDraft.IssueType,
		Description:   session.TicketDraft.Description,
		Severity:      session.TicketDraft.Severity,
		Status:        status,
		KnowledgeRefs: session.TicketDraft.KnowledgeRefs,
		TurnCount:     len(session.Transcript),
		CreatedAt:     session.CreatedAt,
		UpdatedAt:     now,
	}
}

func (th *TicketService) enqueueRetry(record entities.TicketRecord) {
	select {
	case th.retryQueue <- record:
	default:
		th.Logger.Error(fmt.Sprintf("Ticket sync retry queue full, dropping retry for session %s (record remains durable locally)", record.SessionID))
	}
}

// StartSyncWorker drains the retry queue until the context is canceled. Each
// record is retried at the configured interval; the external createOrUpdate
// contract is idempotent, so re-sending a synced record is harmless.
func (th *TicketService) StartSyncWorker(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case record := <-th.retryQueue:
				select {
				case <-ctx.Done():
					return
				case <-time.After(th.retryInterval):
				}

				syncCtx, cancel := context.WithTimeout(ctx, th.syncTimeout)
				response, err := th.TicketingProvider.CreateOrUpdateTicket(syncCtx, dto.TicketingCreateRequest{
					TicketID:      record.TicketID,
					SessionID:     record.SessionID,
					TenantID:      record.TenantID,
					FromNumber:    record.FromNumber,
					IssueType:     record.IssueType,
					Description:   record.Description,
					Severity:      record.Severity,
					Status:        string(record.Status),
					KnowledgeRefs: record.KnowledgeRefs,
				})
				cancel()

				if err != nil {
					th.Logger.Warn(fmt.Sprintf("Ticket sync retry failed for session %s: %v", record.SessionID, err))
					th.enqueueRetry(record)
					continue
				}

				record.ExternalTicketID = response.ExternalTicketID
				record.Synced = true
				record.UpdatedAt = time.Now().UTC()
				if _, err := th.TicketRepository.Upsert(ctx, repocontants.TICKETS_COLLECTION, record.SessionID, record); err != nil {
					th.Logger.Warn(fmt.Sprintf("Failed to mark ticket synced for session %s: %v", record.SessionID, err))
				}
			}
		}
	}()
}
