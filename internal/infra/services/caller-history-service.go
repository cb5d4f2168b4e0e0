package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"support-connector/internal/config"
	"support-connector/internal/domain/entities"
	"support-connector/internal/domain/interfaces/repository"
	repocontants "support-connector/internal/domain/interfaces/repository/contants"
	"support-connector/internal/infra/logger"
	"time"
)

// CallerHistoryService aggregates a caller's prior tickets into
// personalization context. It is read-only and best-effort: lookups carry a
// timeout and any failure yields empty history.
type CallerHistoryService struct {
	TicketRepository repository.Repository[entities.TicketRecord]
	Logger           *logger.Logger
	lookbackDays     int
	lookupTimeout    time.Duration
}

func NewCallerHistoryService(ticketRepository repository.Repository[entities.TicketRecord], log *logger.Logger) *CallerHistoryService {
	return &CallerHistoryService{
		TicketRepository: ticketRepository,
		Logger:           log,
		lookbackDays:     config.GetEnvIntDefault("CALLER_HISTORY_DAYS", 90),
		lookupTimeout:    config.GetEnvDurationDefault("CALLER_HISTORY_TIMEOUT", 3*time.Second),
	}
}

func (th *CallerHistoryService) GetCallerHistory(ctx context.Context, fromNumber string, tenantID string) (entities.CallerHistory, error) {
	ctx, cancel := context.WithTimeout(ctx, th.lookupTimeout)
	defer cancel()

	since := time.Now().UTC().AddDate(0, 0, -th.lookbackDays)
	tickets, err := th.TicketRepository.FindByCallerSince(ctx, repocontants.TICKETS_COLLECTION, fromNumber, tenantID, since)
	if err != nil {
		return entities.CallerHistory{}, fmt.Errorf("failed to load caller history for %s: %w", fromNumber, err)
	}
	if len(tickets) == 0 {
		return entities.CallerHistory{}, nil
	}

	history := entities.CallerHistory{
		TotalCalls:   len(tickets),
		LastCallDate: tickets[0].CreatedAt,
	}

	issueTypeCounts := map[string]int{}
	for _, ticket := range tickets {
		if ticket.IssueType != "" {
			issueTypeCounts[ticket.IssueType]++
		}
		if ticket.Status == entities.TicketStatusResolved && ticket.Description != "" {
			history.ResolvedIssues = append(history.ResolvedIssues, ticket.Description)
		}
	}

	for issueType := range issueTypeCounts {
		history.CommonIssueTypes = append(history.CommonIssueTypes, issueType)
	}
	sort.Slice(history.CommonIssueTypes, func(i, j int) bool {
		a, b := history.CommonIssueTypes[i], history.CommonIssueTypes[j]
		if issueTypeCounts[a] != issueTypeCounts[b] {
			return issueTypeCounts[a] > issueTypeCounts[b]
		}
		return a < b
	})

	return history, nil
}

// ContextSummary renders the history as a short prompt fragment. Failures are
// logged and swallowed so the state machine never blocks on history.
func (th *CallerHistoryService) ContextSummary(ctx context.Context, fromNumber string, tenantID string) string {
	history, err := th.GetCallerHistory(ctx, fromNumber, tenantID)
	if err != nil {
		th.Logger.Warn(fmt.Sprintf("Caller history lookup failed, continuing without history: %v", err))
		return ""
	}
	if history.TotalCalls == 0 {
		return ""
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("Caller has %d prior support calls in the last %d days.", history.TotalCalls, th.lookbackDays))
	if len(history.CommonIssueTypes) > 0 {
		parts = append(parts, fmt.Sprintf("Common issue types: %s.", strings.Join(history.CommonIssueTypes, ", ")))
	}
	if len(history.ResolvedIssues) > 0 {
		recent := history.ResolvedIssues
		if len(recent) > 3 {
			recent = recent[:3]
		}
		parts = append(parts, fmt.Sprintf("Previously resolved: %s.", strings.Join(recent, "; ")))
	}
	return strings.Join(parts, " ")
}
