package services

import (
	"strings"
	"support-connector/internal/config"
	"support-connector/internal/domain/entities"
)

var (
	defaultEscalationMarkers = []string{
		"escalate", "human agent", "transfer you", "supervisor",
		"specialist will", "create a ticket for our team",
	}
	defaultResolutionMarkers = []string{
		"glad that fixed", "issue is resolved", "problem is solved",
		"glad it's working", "anything else i can help",
	}
	defaultAffirmativeMarkers = []string{
		"yes", "yeah", "yep", "correct", "that worked", "it works",
		"working now", "fixed", "solved", "thank",
	}
)

// DecisionService classifies a generated turn plus running state into
// continue, resolved or escalated. It is a pure function of its inputs; the
// marker sets and turn ceiling are configuration.
type DecisionService struct {
	escalationMarkers  []string
	resolutionMarkers  []string
	affirmativeMarkers []string
	maxCallerTurns     int
}

func NewDecisionService() *DecisionService {
	return &DecisionService{
		escalationMarkers:  config.GetEnvListDefault("ESCALATION_MARKERS", defaultEscalationMarkers),
		resolutionMarkers:  config.GetEnvListDefault("RESOLUTION_MARKERS", defaultResolutionMarkers),
		affirmativeMarkers: config.GetEnvListDefault("AFFIRMATIVE_MARKERS", defaultAffirmativeMarkers),
		maxCallerTurns:     config.GetEnvIntDefault("MAX_CALLER_TURNS", 20),
	}
}

func (th *DecisionService) Decide(generatedText string, session entities.CallSession) entities.Outcome {
	lowered := strings.ToLower(generatedText)

	// Escalation markers win when a turn carries both signals.
	if containsAny(lowered, th.escalationMarkers) {
		return entities.OutcomeEscalated
	}
	if session.CallerTurnCount() > th.maxCallerTurns {
		return entities.OutcomeEscalated
	}

	if containsAny(lowered, th.resolutionMarkers) {
		callerText := strings.ToLower(session.LastCallerText())
		if containsAny(callerText, th.affirmativeMarkers) {
			return entities.OutcomeResolved
		}
	}

	return entities.OutcomeContinue
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}
