package entities

import "time"

// TicketRecord is the durable representation of a ticket draft at a terminal
// state, keyed by session_id. Materialization upserts, so retries overwrite
// instead of duplicating.
type TicketRecord struct {
	TicketID         string       `json:"ticket_id" bson:"ticket_id"`
	SessionID        string       `json:"session_id" bson:"session_id"`
	TenantID         string       `json:"tenant_id" bson:"tenant_id"`
	FromNumber       string       `json:"from_number" bson:"from_number"`
	IssueType        string       `json:"issue_type" bson:"issue_type"`
	Description      string       `json:"description" bson:"description"`
	Severity         string       `json:"severity" bson:"severity"`
	Status           TicketStatus `json:"status" bson:"status"`
	KnowledgeRefs    []string     `json:"knowledge_refs" bson:"knowledge_refs"`
	TurnCount        int          `json:"turn_count" bson:"turn_count"`
	ExternalTicketID string       `json:"external_ticket_id,omitempty" bson:"external_ticket_id,omitempty"`
	Synced           bool         `json:"synced" bson:"synced"`
	CreatedAt        time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" bson:"updated_at"`
}

type Snippet struct {
	ID    string  `json:"id" bson:"id"`
	Text  string  `json:"text" bson:"text"`
	Score float64 `json:"score" bson:"score"`
}

// CallerHistory aggregates a caller's prior tickets for personalization.
type CallerHistory struct {
	TotalCalls       int       `json:"total_calls"`
	ResolvedIssues   []string  `json:"resolved_issues"`
	CommonIssueTypes []string  `json:"common_issue_types"`
	LastCallDate     time.Time `json:"last_call_date"`
}
