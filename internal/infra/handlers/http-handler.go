package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"support-connector/internal/domain/dto"
	Irepository "support-connector/internal/domain/interfaces/repository"
	Iservices "support-connector/internal/domain/interfaces/services"
	"support-connector/internal/infra/logger"

	"github.com/gorilla/mux"
)

type ICheckpointModeReporter interface {
	Mode() string
	Ready() bool
}

type IKnowledgeReadyReporter interface {
	BackendReady() bool
}

type HttpHandlers struct {
	Logger              *logger.Logger
	ConversationService Iservices.IConversationService
	TicketService       Iservices.ITicketService
	CheckpointReporter  ICheckpointModeReporter
	KnowledgeReporter   IKnowledgeReadyReporter
}

func NewHttpHandlers(
	log *logger.Logger,
	conversationService Iservices.IConversationService,
	ticketService Iservices.ITicketService,
	checkpointReporter ICheckpointModeReporter,
	knowledgeReporter IKnowledgeReadyReporter,
) *HttpHandlers {
	return &HttpHandlers{
		Logger:              log,
		ConversationService: conversationService,
		TicketService:       ticketService,
		CheckpointReporter:  checkpointReporter,
		KnowledgeReporter:   knowledgeReporter,
	}
}

// Webhook handles one inbound turn from the telephony platform. Malformed
// input is the only condition rejected outright; every processable turn gets
// some reply.
func (th *HttpHandlers) Webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var turnRequest dto.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&turnRequest); err != nil {
		http.Error(w, "Error processing JSON", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(turnRequest.SessionID) == "" {
		http.Error(w, "sessionId is required", http.StatusBadRequest)
		return
	}
	if turnRequest.TenantID == "" {
		turnRequest.TenantID = "default"
	}

	response, err := th.ConversationService.HandleTurn(r.Context(), turnRequest)
	if err != nil {
		if errors.Is(err, Irepository.ErrVersionConflict) {
			// Two deliveries of the same turn raced and the retry lost too.
			// Surface a transient failure so the platform redelivers.
			th.Logger.Warn(fmt.Sprintf("Turn for session %s lost the version race twice, asking platform to retry", turnRequest.SessionID))
			http.Error(w, "Conflict processing turn, retry", http.StatusServiceUnavailable)
			return
		}
		th.Logger.Error(fmt.Sprintf("Failed to handle turn for session %s: %v", turnRequest.SessionID, err))
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Ticket returns the materialized ticket record for a session.
func (th *HttpHandlers) Ticket(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	if sessionID == "" {
		http.Error(w, "sessionId is required", http.StatusBadRequest)
		return
	}

	record, err := th.TicketService.FindBySessionID(r.Context(), sessionID)
	if err != nil {
		th.Logger.Debug(fmt.Sprintf("Ticket lookup failed for session %s: %v", sessionID, err))
		http.Error(w, "Ticket not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}

// Readiness reports whether the shared checkpoint backend and the knowledge
// backend are reachable. Local-fallback mode is surfaced here, not to
// callers: operators use it to sticky-route calls while degraded.
func (th *HttpHandlers) Readiness(w http.ResponseWriter, r *http.Request) {
	response := dto.ReadinessResponse{
		CheckpointMode:  th.CheckpointReporter.Mode(),
		CheckpointReady: th.CheckpointReporter.Ready(),
		KnowledgeReady:  th.KnowledgeReporter.BackendReady(),
	}

	w.Header().Set("Content-Type", "application/json")
	if !response.CheckpointReady {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(response)
}
