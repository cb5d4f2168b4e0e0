package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"support-connector/internal/config"
	"support-connector/internal/domain/dto"
	"support-connector/internal/domain/entities"
	Irepository "support-connector/internal/domain/interfaces/repository"
	Iservices "support-connector/internal/domain/interfaces/services"
	"support-connector/internal/infra/logger"
)

const (
	defaultGreetingReply = "Hello! You've reached IT support. What can I help you with today?"
	defaultFallbackReply = "I'm sorry, I'm having trouble processing that right now. Could you please repeat or rephrase your issue?"
	defaultClosingReply  = "This support session has already ended. Please call again if you need further help."
)

// ConversationService drives one troubleshooting turn end to end: load the
// checkpointed session, gather context, delegate to the generation service,
// classify the outcome and persist. Sessions are shared across instances
// through the checkpoint store, so turn races are resolved by the store's
// version check, not by in-process locking.
type ConversationService struct {
	Logger               *logger.Logger
	CheckpointStore      Irepository.CheckpointRepository
	KnowledgeService     Iservices.IKnowledgeService
	CallerHistoryService Iservices.ICallerHistoryService
	QueryAIService       Iservices.IQueryAIService
	DecisionService      Iservices.IDecisionService
	TicketService        Iservices.ITicketService

	recentTurns     int
	contextMaxChars int
	greetingReply   string
	fallbackReply   string
	closingReply    string
}

func NewConversationService(
	log *logger.Logger,
	checkpointStore Irepository.CheckpointRepository,
	knowledgeService Iservices.IKnowledgeService,
	callerHistoryService Iservices.ICallerHistoryService,
	queryAIService Iservices.IQueryAIService,
	decisionService Iservices.IDecisionService,
	ticketService Iservices.ITicketService,
) *ConversationService {
	return &ConversationService{
		Logger:               log,
		CheckpointStore:      checkpointStore,
		KnowledgeService:     knowledgeService,
		CallerHistoryService: callerHistoryService,
		QueryAIService:       queryAIService,
		DecisionService:      decisionService,
		TicketService:        ticketService,
		recentTurns:          config.GetEnvIntDefault("RECENT_TURNS", 6),
		contextMaxChars:      config.GetEnvIntDefault("CONTEXT_MAX_CHARS", 4000),
		greetingReply:        config.GetEnvDefault("GREETING_REPLY", defaultGreetingReply),
		fallbackReply:        config.GetEnvDefault("FALLBACK_REPLY", defaultFallbackReply),
		closingReply:         config.GetEnvDefault("CLOSING_REPLY", defaultClosingReply),
	}
}

// HandleTurn processes one caller turn. A save rejected with a version
// conflict means a concurrent delivery of the same call won the race; the
// whole turn is reapplied once against the fresh state before the failure is
// surfaced for upstream retry.
func (th *ConversationService) HandleTurn(ctx context.Context, request dto.TurnRequest) (dto.TurnResponse, error) {
	var response dto.TurnResponse
	var err error

	for attempt := 0; attempt < 2; attempt++ {
		response, err = th.processTurn(ctx, request)
		if errors.Is(err, Irepository.ErrVersionConflict) {
			th.Logger.Warn(fmt.Sprintf("Checkpoint version conflict for session %s (attempt %d), reloading and reapplying", request.SessionID, attempt+1))
			continue
		}
		return response, err
	}
	return response, err
}

func (th *ConversationService) processTurn(ctx context.Context, request dto.TurnRequest) (dto.TurnResponse, error) {
	session, err := th.CheckpointStore.Load(ctx, request.SessionID)
	if errors.Is(err, Irepository.ErrNotFound) {
		session = entities.NewCallSession(request.SessionID, request.TenantID, request.FromNumber)
	} else if err != nil {
		return dto.TurnResponse{}, fmt.Errorf("failed to load session %s: %w", request.SessionID, err)
	}
	expectedVersion := session.Version

	callerText := strings.TrimSpace(request.CallerText)

	// Call start: the platform pings with no transcription yet. Greet without
	// touching the generation service.
	if callerText == "" {
		if err := th.persist(ctx, &session, expectedVersion); err != nil {
			return dto.TurnResponse{}, err
		}
		return dto.TurnResponse{SessionID: session.SessionID, ReplyText: th.greetingReply}, nil
	}

	// A completed session accepts late-arriving turns for logging only: the
	// transcript grows but the ticket never mutates again.
	if session.Complete {
		session.AppendTurn(entities.SpeakerCaller, callerText)
		if err := th.persist(ctx, &session, expectedVersion); err != nil && !errors.Is(err, Irepository.ErrVersionConflict) {
			th.Logger.Warn(fmt.Sprintf("Failed to log late turn for completed session %s: %v", session.SessionID, err))
		}
		return dto.TurnResponse{SessionID: session.SessionID, ReplyText: th.closingReply, IsComplete: true}, nil
	}

	session.AppendTurn(entities.SpeakerCaller, callerText)
	if session.State == entities.StateStart {
		issueType, severity := classifyIssue(callerText)
		session.TicketDraft.IssueType = issueType
		session.TicketDraft.Severity = severity
		session.TicketDraft.Description = callerText
	}
	session.State = entities.StateProcessing

	var snippets []entities.Snippet
	if th.KnowledgeService.MatchesTechnicalSignal(callerText) {
		snippets = th.KnowledgeService.Retrieve(ctx, session.TenantID, callerText, session.TicketDraft.IssueType)
	}

	historySummary := th.CallerHistoryService.ContextSummary(ctx, session.FromNumber, session.TenantID)

	messageContext := th.assembleContext(&session, snippets, historySummary)
	result, genErr := th.QueryAIService.ExecuteQueryAI(ctx, callerText, messageContext)
	if genErr != nil || result.Response == "" {
		if genErr != nil {
			th.Logger.Warn(fmt.Sprintf("Generation failed for session %s, using fallback reply: %v", session.SessionID, genErr))
		}
		// Fallback advances only the turn log, never the ticket status.
		session.AppendTurn(entities.SpeakerAgent, th.fallbackReply)
		session.State = entities.StateAwaitingInput
		if err := th.persist(ctx, &session, expectedVersion); err != nil {
			return dto.TurnResponse{}, err
		}
		return dto.TurnResponse{SessionID: session.SessionID, ReplyText: th.fallbackReply}, nil
	}

	session.AppendTurn(entities.SpeakerAgent, result.Response)
	for _, snippet := range snippets {
		session.AddKnowledgeRefs([]string{snippet.ID})
	}

	outcome := th.DecisionService.Decide(result.Response, session)
	switch outcome {
	case entities.OutcomeResolved:
		session.MarkResolved()
		th.materialize(ctx, session, entities.OutcomeResolved)
		session.MarkComplete()
	case entities.OutcomeEscalated:
		session.MarkEscalated()
		th.materialize(ctx, session, entities.OutcomeEscalated)
		session.MarkComplete()
	default:
		session.State = entities.StateAwaitingInput
	}

	if err := th.persist(ctx, &session, expectedVersion); err != nil {
		return dto.TurnResponse{}, err
	}

	return dto.TurnResponse{
		SessionID:  session.SessionID,
		ReplyText:  result.Response,
		IsComplete: session.Complete,
	}, nil
}

// persist saves on a context detached from the transport: when the caller
// hangs up mid-turn the write still completes instead of leaving the store
// below a bumped version.
func (th *ConversationService) persist(ctx context.Context, session *entities.CallSession, expectedVersion int64) error {
	saveCtx := context.WithoutCancel(ctx)
	if err := th.CheckpointStore.Save(saveCtx, session.SessionID, *session, expectedVersion); err != nil {
		return err
	}
	session.Version = expectedVersion + 1
	return nil
}

func (th *ConversationService) materialize(ctx context.Context, session entities.CallSession, outcome entities.Outcome) {
	result, err := th.TicketService.Materialize(context.WithoutCancel(ctx), session, outcome)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Ticket materialization failed for session %s: %v", session.SessionID, err))
		return
	}
	if result == Iservices.MaterializeDegraded {
		th.Logger.Warn(fmt.Sprintf("Ticket for session %s materialized in degraded mode", session.SessionID))
	}
}

func (th *ConversationService) assembleContext(session *entities.CallSession, snippets []entities.Snippet, historySummary string) string {
	var builder strings.Builder

	if historySummary != "" {
		builder.WriteString("Caller history: ")
		builder.WriteString(historySummary)
		builder.WriteString("\n")
	}

	if len(snippets) > 0 {
		builder.WriteString("Relevant knowledge:\n")
		for _, snippet := range snippets {
			builder.WriteString(fmt.Sprintf("- [%s] %s\n", snippet.ID, snippet.Text))
		}
	}

	recent := session.RecentTurns(th.recentTurns)
	if len(recent) > 0 {
		builder.WriteString("Recent conversation:\n")
		for _, turn := range recent {
			builder.WriteString(fmt.Sprintf("%s: %s\n", turn.Speaker, turn.Text))
		}
	}

	assembled := builder.String()
	if len(assembled) > th.contextMaxChars {
		// Keep the tail: recent turns matter more than old history.
		assembled = assembled[len(assembled)-th.contextMaxChars:]
	}
	return assembled
}

var issueTypeKeywords = map[string][]string{
	"network":  {"wifi", "wi-fi", "internet", "network", "vpn", "disconnect", "connection"},
	"hardware": {"laptop", "computer", "printer", "screen", "monitor", "keyboard", "mouse", "hardware"},
	"software": {"install", "update", "crash", "software", "application", "app", "outlook", "excel"},
	"account":  {"password", "login", "account", "locked", "sign in", "email access"},
}

var highSeverityKeywords = []string{
	"urgent", "critical", "outage", "everyone", "whole team", "can't work", "down for",
}

// classifyIssue derives the initial ticket draft fields from the first caller
// utterance with deterministic keyword matching.
func classifyIssue(text string) (issueType string, severity string) {
	lowered := strings.ToLower(text)

	issueType = "other"
	for _, candidate := range []string{"network", "hardware", "software", "account"} {
		if containsAny(lowered, issueTypeKeywords[candidate]) {
			issueType = candidate
			break
		}
	}

	severity = "medium"
	if containsAny(lowered, highSeverityKeywords) {
		severity = "high"
	}
	return issueType, severity
}
