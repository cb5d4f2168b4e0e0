package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"support-connector/internal/config"
	"support-connector/internal/domain/dto"
	"support-connector/internal/infra/logger"
	"time"
)

// QueryAIService calls the turn-completion endpoint of the generation
// service. The call carries a strict timeout and an output-size cap; a
// timeout or empty output is handled by the conversation service with the
// fixed fallback reply, never surfaced to the caller.
type QueryAIService struct {
	Logger     *logger.Logger
	HttpClient *http.Client
	Timeout    time.Duration
	MaxTokens  int
}

func NewQueryAIService(logger *logger.Logger, httpClient *http.Client) *QueryAIService {
	return &QueryAIService{
		Logger:     logger,
		HttpClient: httpClient,
		Timeout:    config.GetEnvDurationDefault("GENERATION_TIMEOUT", 10*time.Second),
		MaxTokens:  config.GetEnvIntDefault("GENERATION_MAX_TOKENS", 200),
	}
}

func (th *QueryAIService) ExecuteQueryAI(ctx context.Context, queryText string, messageContext string) (dto.QueryAIResponse, error) {
	queryAIHost := config.GetEnv("QUERY_AI_API_HOST")

	payload, err := json.Marshal(dto.QueryAIRequest{
		QueryText:      queryText,
		MessageContext: messageContext,
		MaxTokens:      th.MaxTokens,
	})
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to marshal payload: %s", err.Error()))
		return dto.QueryAIResponse{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, th.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, queryAIHost+"/query", bytes.NewBuffer(payload))
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to create HTTP request: %s", err.Error()))
		return dto.QueryAIResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := th.HttpClient.Do(req)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to send POST request: %s", err.Error()))
		return dto.QueryAIResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		th.Logger.Error(fmt.Sprintf("Unexpected HTTP status %s response_body %s", resp.Status, string(body)))
		return dto.QueryAIResponse{}, fmt.Errorf("unexpected HTTP status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to read response body: %s", err.Error()))
		return dto.QueryAIResponse{}, err
	}

	var queryResponse dto.QueryAIResponse
	if err := json.Unmarshal(body, &queryResponse); err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to unmarshal response body: %s", err.Error()))
		return dto.QueryAIResponse{}, fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	queryResponse.Response = strings.TrimSpace(queryResponse.Response)
	return queryResponse, nil
}
