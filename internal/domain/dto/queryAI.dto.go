package dto

// QueryAIRequest is the payload for the turn-completion endpoint of the
// generation service. The service is a black box; all branching the engine
// depends on happens on the returned text, not here.
type QueryAIRequest struct {
	QueryText      string `json:"query_text"`
	MessageContext string `json:"message_context"`
	MaxTokens      int    `json:"max_tokens"`
}

type QueryAIResponse struct {
	Response string `json:"response"`
}
