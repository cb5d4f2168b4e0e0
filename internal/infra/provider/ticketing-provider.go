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

// HttpTicketingProvider forwards ticket records to the external ticketing
// collaborator.
//
// Dependencies:
//   - Environment variable TICKETING_API_HOST: base URL of the ticketing system.
type HttpTicketingProvider struct {
	Logger     *logger.Logger
	HttpClient *http.Client
}

func NewHttpTicketingProvider(logger *logger.Logger, httpClient *http.Client) *HttpTicketingProvider {
	return &HttpTicketingProvider{Logger: logger, HttpClient: httpClient}
}

func (th *HttpTicketingProvider) CreateOrUpdateTicket(ctx context.Context, request dto.TicketingCreateRequest) (dto.TicketingCreateResponse, error) {
	ticketingHost := config.GetEnv("TICKETING_API_HOST")

	payload, err := json.Marshal(request)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to marshal ticketing payload: %v", err))
		return dto.TicketingCreateResponse{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/tickets", ticketingHost)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to create HTTP request: %v", err))
		return dto.TicketingCreateResponse{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := th.HttpClient.Do(req)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Ticketing request failed: %v", err))
		return dto.TicketingCreateResponse{}, fmt.Errorf("ticketing request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(res.Body)
		th.Logger.Error(fmt.Sprintf("Unexpected HTTP status %s response_body %s", res.Status, string(body)))
		return dto.TicketingCreateResponse{}, fmt.Errorf("unexpected HTTP status: %s", res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to read response body: %v", err))
		return dto.TicketingCreateResponse{}, fmt.Errorf("failed to read response body: %w", err)
	}

	var ticketResponse dto.TicketingCreateResponse
	if err := json.Unmarshal(body, &ticketResponse); err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to unmarshal response body: %v", err))
		return dto.TicketingCreateResponse{}, fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	th.Logger.Info(fmt.Sprintf("Ticket %s synced to external system as %s", request.TicketID, ticketResponse.ExternalTicketID))
	return ticketResponse, nil
}
