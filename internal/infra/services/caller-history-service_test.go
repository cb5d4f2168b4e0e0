package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"support-connector/internal/domain/entities"
)

func seedTicket(t *testing.T, repo *memoryTicketRepository, sessionID, issueType string, status entities.TicketStatus, age time.Duration) {
	t.Helper()
	_, err := repo.Upsert(context.Background(), "tickets", sessionID, entities.TicketRecord{
		TicketID:    "tck-" + sessionID,
		SessionID:   sessionID,
		TenantID:    "default",
		FromNumber:  "+5511988887777",
		IssueType:   issueType,
		Description: issueType + " problem",
		Status:      status,
		CreatedAt:   time.Now().UTC().Add(-age),
	})
	require.NoError(t, err)
}

func TestGetCallerHistoryAggregatesPriorTickets(t *testing.T) {
	repo := newMemoryTicketRepository()
	seedTicket(t, repo, "old-1", "network", entities.TicketStatusResolved, 24*time.Hour)
	seedTicket(t, repo, "old-2", "network", entities.TicketStatusEscalated, 48*time.Hour)
	seedTicket(t, repo, "old-3", "account", entities.TicketStatusResolved, 72*time.Hour)
	// Outside the lookback window.
	seedTicket(t, repo, "ancient", "hardware", entities.TicketStatusResolved, 120*24*time.Hour)

	svc := NewCallerHistoryService(repo, newTestLogger())

	history, err := svc.GetCallerHistory(context.Background(), "+5511988887777", "default")
	require.NoError(t, err)
	require.Equal(t, 3, history.TotalCalls)
	require.Equal(t, "network", history.CommonIssueTypes[0])
	require.Len(t, history.ResolvedIssues, 2)
}

func TestGetCallerHistoryEmptyForUnknownCaller(t *testing.T) {
	svc := NewCallerHistoryService(newMemoryTicketRepository(), newTestLogger())

	history, err := svc.GetCallerHistory(context.Background(), "+5511900000000", "default")
	require.NoError(t, err)
	require.Zero(t, history.TotalCalls)
	require.Empty(t, svc.ContextSummary(context.Background(), "+5511900000000", "default"))
}

func TestContextSummaryMentionsPriorCalls(t *testing.T) {
	repo := newMemoryTicketRepository()
	seedTicket(t, repo, "old-1", "network", entities.TicketStatusResolved, 24*time.Hour)

	svc := NewCallerHistoryService(repo, newTestLogger())
	summary := svc.ContextSummary(context.Background(), "+5511988887777", "default")
	require.Contains(t, summary, "1 prior support calls")
	require.Contains(t, summary, "network")
}
