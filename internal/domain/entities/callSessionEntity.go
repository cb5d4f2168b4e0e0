package entities

import "time"

// SessionState is the position of a call in the troubleshooting flow.
type SessionState string

const (
	StateStart         SessionState = "start"
	StateAwaitingInput SessionState = "awaiting_input"
	StateProcessing    SessionState = "processing"
	StateResolved      SessionState = "resolved"
	StateEscalated     SessionState = "escalated"
	StateComplete      SessionState = "complete"
)

// Outcome is the decision engine classification for a generated turn.
type Outcome string

const (
	OutcomeContinue  Outcome = "continue"
	OutcomeResolved  Outcome = "resolved"
	OutcomeEscalated Outcome = "escalated"
)

type TicketStatus string

const (
	TicketStatusOpen      TicketStatus = "open"
	TicketStatusResolved  TicketStatus = "resolved"
	TicketStatusEscalated TicketStatus = "escalated"
)

const (
	SpeakerCaller = "caller"
	SpeakerAgent  = "agent"
)

type Turn struct {
	Speaker   string    `json:"speaker" bson:"speaker"`
	Text      string    `json:"text" bson:"text"`
	Seq       int       `json:"seq" bson:"seq"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

type TicketDraft struct {
	IssueType     string       `json:"issue_type" bson:"issue_type"`
	Description   string       `json:"description" bson:"description"`
	Severity      string       `json:"severity" bson:"severity"`
	KnowledgeRefs []string     `json:"knowledge_refs" bson:"knowledge_refs"`
	Status        TicketStatus `json:"status" bson:"status"`
}

// CallSession is the checkpointed state of one phone call. Transcript is the
// full append-only log; context assembly reads only the most recent turns.
type CallSession struct {
	SessionID   string       `json:"session_id" bson:"session_id"`
	TenantID    string       `json:"tenant_id" bson:"tenant_id"`
	FromNumber  string       `json:"from_number" bson:"from_number"`
	State       SessionState `json:"state" bson:"state"`
	Transcript  []Turn       `json:"transcript" bson:"transcript"`
	TicketDraft TicketDraft  `json:"ticket_draft" bson:"ticket_draft"`
	Resolved    bool         `json:"resolved" bson:"resolved"`
	Escalated   bool         `json:"escalated" bson:"escalated"`
	Complete    bool         `json:"complete" bson:"complete"`
	Version     int64        `json:"version" bson:"version"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" bson:"updated_at"`
}

func NewCallSession(sessionID, tenantID, fromNumber string) CallSession {
	now := time.Now().UTC()
	return CallSession{
		SessionID:  sessionID,
		TenantID:   tenantID,
		FromNumber: fromNumber,
		State:      StateStart,
		Transcript: []Turn{},
		TicketDraft: TicketDraft{
			KnowledgeRefs: []string{},
			Status:        TicketStatusOpen,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendTurn appends to the transcript. Ordering rides on the per-session
// sequence number, never on wall clock.
func (cs *CallSession) AppendTurn(speaker, text string) {
	cs.Transcript = append(cs.Transcript, Turn{
		Speaker:   speaker,
		Text:      text,
		Seq:       len(cs.Transcript),
		Timestamp: time.Now().UTC(),
	})
	cs.UpdatedAt = time.Now().UTC()
}

// RecentTurns returns the last n turns for context assembly. The full
// transcript is retained untouched.
func (cs *CallSession) RecentTurns(n int) []Turn {
	if n <= 0 || len(cs.Transcript) <= n {
		return cs.Transcript
	}
	return cs.Transcript[len(cs.Transcript)-n:]
}

func (cs *CallSession) CallerTurnCount() int {
	count := 0
	for _, turn := range cs.Transcript {
		if turn.Speaker == SpeakerCaller {
			count++
		}
	}
	return count
}

// LastCallerText returns the most recent caller utterance, or "".
func (cs *CallSession) LastCallerText() string {
	for i := len(cs.Transcript) - 1; i >= 0; i-- {
		if cs.Transcript[i].Speaker == SpeakerCaller {
			return cs.Transcript[i].Text
		}
	}
	return ""
}

// MarkResolved sets the resolved flag and moves the draft status forward.
// Flags are monotonic and the status never moves backward, so a session that
// already reached a terminal status is left untouched.
func (cs *CallSession) MarkResolved() {
	cs.Resolved = true
	if cs.TicketDraft.Status == TicketStatusOpen {
		cs.TicketDraft.Status = TicketStatusResolved
		cs.State = StateResolved
	}
	cs.UpdatedAt = time.Now().UTC()
}

// MarkEscalated sets the escalated flag and moves the draft status forward.
func (cs *CallSession) MarkEscalated() {
	cs.Escalated = true
	if cs.TicketDraft.Status == TicketStatusOpen {
		cs.TicketDraft.Status = TicketStatusEscalated
		cs.State = StateEscalated
	}
	cs.UpdatedAt = time.Now().UTC()
}

// MarkComplete ends the session. No further turns mutate the ticket after
// this; late arrivals are logged only.
func (cs *CallSession) MarkComplete() {
	cs.Complete = true
	cs.State = StateComplete
	cs.UpdatedAt = time.Now().UTC()
}

// AddKnowledgeRefs records snippet identifiers used during the call,
// deduplicated.
func (cs *CallSession) AddKnowledgeRefs(refs []string) {
	for _, ref := range refs {
		seen := false
		for _, existing := range cs.TicketDraft.KnowledgeRefs {
			if existing == ref {
				seen = true
				break
			}
		}
		if !seen {
			cs.TicketDraft.KnowledgeRefs = append(cs.TicketDraft.KnowledgeRefs, ref)
		}
	}
}
