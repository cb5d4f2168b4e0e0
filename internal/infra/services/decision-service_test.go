package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"support-connector/internal/domain/entities"
)

func sessionWithTurns(texts ...string) entities.CallSession {
	session := entities.NewCallSession("call-1", "default", "+5511988887777")
	for i, text := range texts {
		speaker := entities.SpeakerCaller
		if i%2 == 1 {
			speaker = entities.SpeakerAgent
		}
		session.AppendTurn(speaker, text)
	}
	return session
}

func TestDecideContinueByDefault(t *testing.T) {
	decision := NewDecisionService()
	session := sessionWithTurns("my wifi keeps disconnecting")

	outcome := decision.Decide("Let's try restarting your router first.", session)
	require.Equal(t, entities.OutcomeContinue, outcome)
}

func TestDecideEscalatedOnMarker(t *testing.T) {
	decision := NewDecisionService()
	session := sessionWithTurns("nothing works")

	outcome := decision.Decide("I'll escalate this to our support team.", session)
	require.Equal(t, entities.OutcomeEscalated, outcome)
}

func TestDecideEscalationWinsOverResolution(t *testing.T) {
	decision := NewDecisionService()
	session := sessionWithTurns("yes that worked")

	// Both signals in one turn: safety bias toward human follow-up.
	outcome := decision.Decide("Glad that fixed it, but I'll escalate this to a human agent for the remaining issue.", session)
	require.Equal(t, entities.OutcomeEscalated, outcome)
}

func TestDecideResolvedRequiresCallerAffirmative(t *testing.T) {
	decision := NewDecisionService()

	affirmed := sessionWithTurns("my vpn was down", "try reconnecting", "yes, it works now")
	outcome := decision.Decide("Glad that fixed it! Anything else I can help with?", affirmed)
	require.Equal(t, entities.OutcomeResolved, outcome)

	unconfirmed := sessionWithTurns("my vpn was down", "try reconnecting", "hmm let me see")
	outcome = decision.Decide("Glad that fixed it! Anything else I can help with?", unconfirmed)
	require.Equal(t, entities.OutcomeContinue, outcome)
}

func TestDecideEscalatesPastTurnCeiling(t *testing.T) {
	t.Setenv("MAX_CALLER_TURNS", "3")
	decision := NewDecisionService()

	session := sessionWithTurns("a", "b", "c", "d", "e", "f", "g", "h")
	outcome := decision.Decide("Let's try one more thing.", session)
	require.Equal(t, entities.OutcomeEscalated, outcome)
}
