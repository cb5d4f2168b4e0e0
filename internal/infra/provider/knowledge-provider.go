package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"support-connector/internal/config"
	"support-connector/internal/domain/dto"
	"support-connector/internal/infra/logger"
)

// HttpKnowledgeProvider calls the semantic search backend over HTTP.
//
// Dependencies:
//   - Environment variable KNOWLEDGE_API_HOST: base URL of the knowledge backend.
type HttpKnowledgeProvider struct {
	Logger     *logger.Logger
	HttpClient *http.Client
}

func NewHttpKnowledgeProvider(logger *logger.Logger, httpClient *http.Client) *HttpKnowledgeProvider {
	return &HttpKnowledgeProvider{Logger: logger, HttpClient: httpClient}
}

func (th *HttpKnowledgeProvider) Search(ctx context.Context, request dto.KnowledgeSearchRequest) (dto.KnowledgeSearchResponse, error) {
	knowledgeHost := config.GetEnv("KNOWLEDGE_API_HOST")

	payload, err := json.Marshal(request)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to marshal knowledge search payload: %v", err))
		return dto.KnowledgeSearchResponse{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/search", knowledgeHost)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to create HTTP request: %v", err))
		return dto.KnowledgeSearchResponse{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := th.HttpClient.Do(req)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Knowledge search request failed: %v", err))
		return dto.KnowledgeSearchResponse{}, fmt.Errorf("knowledge search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(res.Body)
		th.Logger.Error(fmt.Sprintf("Unexpected HTTP status %s response_body %s", res.Status, string(body)))
		return dto.KnowledgeSearchResponse{}, fmt.Errorf("unexpected HTTP status: %s", res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to read response body: %v", err))
		return dto.KnowledgeSearchResponse{}, fmt.Errorf("failed to read response body: %w", err)
	}

	var searchResponse dto.KnowledgeSearchResponse
	if err := json.Unmarshal(body, &searchResponse); err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to unmarshal response body: %v", err))
		return dto.KnowledgeSearchResponse{}, fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	return searchResponse, nil
}
