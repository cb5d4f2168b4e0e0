package dto

// KnowledgeSearchRequest is the semantic search contract of the knowledge
// backend.
type KnowledgeSearchRequest struct {
	TenantID string `json:"tenant_id"`
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
	TopK     int    `json:"top_k"`
}

type KnowledgeSearchResponse struct {
	Results []KnowledgeChunk `json:"results"`
}

type KnowledgeChunk struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}
