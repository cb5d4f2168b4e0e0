package dto

// TicketingCreateRequest is the createOrUpdateTicket contract of the external
// ticketing collaborator.
type TicketingCreateRequest struct {
	TicketID      string   `json:"ticket_id"`
	SessionID     string   `json:"session_id"`
	TenantID      string   `json:"tenant_id"`
	FromNumber    string   `json:"from_number"`
	IssueType     string   `json:"issue_type"`
	Description   string   `json:"description"`
	Severity      string   `json:"severity"`
	Status        string   `json:"status"`
	KnowledgeRefs []string `json:"knowledge_refs"`
}

type TicketingCreateResponse struct {
	ExternalTicketID string `json:"external_ticket_id"`
}
