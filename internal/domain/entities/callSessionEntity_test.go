package entities

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendTurnIsAppendOnly(t *testing.T) {
	session := NewCallSession("call-1", "default", "+5511999999999")

	session.AppendTurn(SpeakerCaller, "my printer is broken")
	session.AppendTurn(SpeakerAgent, "let's check the connection")
	session.AppendTurn(SpeakerCaller, "ok")

	require.Len(t, session.Transcript, 3)
	for i, turn := range session.Transcript {
		require.Equal(t, i, turn.Seq)
	}
	require.Equal(t, "ok", session.LastCallerText())
	require.Equal(t, 2, session.CallerTurnCount())
}

func TestRecentTurnsTrimsForContextOnly(t *testing.T) {
	session := NewCallSession("call-1", "default", "+5511999999999")
	for i := 0; i < 10; i++ {
		session.AppendTurn(SpeakerCaller, "turn")
	}

	recent := session.RecentTurns(6)
	require.Len(t, recent, 6)
	require.Equal(t, 4, recent[0].Seq)
	// The full transcript is untouched by trimming.
	require.Len(t, session.Transcript, 10)
}

func TestTicketStatusNeverMovesBackward(t *testing.T) {
	session := NewCallSession("call-1", "default", "+5511999999999")
	require.Equal(t, TicketStatusOpen, session.TicketDraft.Status)

	session.MarkResolved()
	require.Equal(t, TicketStatusResolved, session.TicketDraft.Status)
	require.True(t, session.Resolved)

	// A later escalation signal cannot reopen or rewrite a terminal status.
	session.MarkEscalated()
	require.Equal(t, TicketStatusResolved, session.TicketDraft.Status)
	require.True(t, session.Escalated)

	session.MarkResolved()
	require.True(t, session.Resolved)
	require.Equal(t, TicketStatusResolved, session.TicketDraft.Status)
}

func TestMarkCompleteIsTerminal(t *testing.T) {
	session := NewCallSession("call-1", "default", "+5511999999999")
	session.MarkEscalated()
	session.MarkComplete()

	require.True(t, session.Complete)
	require.Equal(t, StateComplete, session.State)
	require.True(t, session.Escalated)
}

func TestAddKnowledgeRefsDeduplicates(t *testing.T) {
	session := NewCallSession("call-1", "default", "+5511999999999")
	session.AddKnowledgeRefs([]string{"kb-1", "kb-2"})
	session.AddKnowledgeRefs([]string{"kb-2", "kb-3"})

	require.Equal(t, []string{"kb-1", "kb-2", "kb-3"}, session.TicketDraft.KnowledgeRefs)
}
