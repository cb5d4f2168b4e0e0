package dto

// TurnRequest is the inbound turn webhook payload sent by the telephony
// platform for each transcribed caller utterance.
type TurnRequest struct {
	SessionID  string `json:"sessionId"`
	CallerText string `json:"callerText"`
	FromNumber string `json:"fromNumber"`
	TenantID   string `json:"tenantId"`
}

type TurnResponse struct {
	SessionID  string `json:"sessionId"`
	ReplyText  string `json:"replyText"`
	IsComplete bool   `json:"isComplete"`
}

type ReadinessResponse struct {
	CheckpointMode  string `json:"checkpointMode"`
	CheckpointReady bool   `json:"checkpointReady"`
	KnowledgeReady  bool   `json:"knowledgeReady"`
}
