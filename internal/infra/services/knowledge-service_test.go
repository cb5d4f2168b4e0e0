package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"support-connector/internal/domain/dto"
	"support-connector/internal/infra/logger"
)

type stubKnowledgeProvider struct {
	calls    int
	failWith error
}

func (p *stubKnowledgeProvider) Search(ctx context.Context, request dto.KnowledgeSearchRequest) (dto.KnowledgeSearchResponse, error) {
	p.calls++
	if p.failWith != nil {
		return dto.KnowledgeSearchResponse{}, p.failWith
	}
	return dto.KnowledgeSearchResponse{
		Results: []dto.KnowledgeChunk{
			{ID: "kb-" + request.Query, Text: "How to fix: " + request.Query, Score: 0.92},
			{ID: "kb-extra-1", Text: "Related article one", Score: 0.71},
			{ID: "kb-extra-2", Text: "Related article two", Score: 0.64},
			{ID: "kb-extra-3", Text: "Should be cut by top-k", Score: 0.33},
		},
	}, nil
}

func newTestLogger() *logger.Logger {
	return logger.NewLogger(context.Background(), false)
}

func TestRetrieveCachesHitsWithoutBackendCall(t *testing.T) {
	provider := &stubKnowledgeProvider{}
	svc := NewKnowledgeService(newTestLogger(), provider)
	ctx := context.Background()

	first := svc.Retrieve(ctx, "default", "wifi keeps disconnecting", "network")
	require.Len(t, first, 3)
	require.Equal(t, 1, provider.calls)

	second := svc.Retrieve(ctx, "default", "wifi keeps disconnecting", "network")
	require.Equal(t, first, second)
	require.Equal(t, 1, provider.calls)
}

func TestRetrieveExpiredEntryIsAMiss(t *testing.T) {
	t.Setenv("KB_CACHE_TTL", "30ms")
	provider := &stubKnowledgeProvider{}
	svc := NewKnowledgeService(newTestLogger(), provider)
	ctx := context.Background()

	svc.Retrieve(ctx, "default", "printer offline", "hardware")
	require.Equal(t, 1, provider.calls)

	time.Sleep(50 * time.Millisecond)

	svc.Retrieve(ctx, "default", "printer offline", "hardware")
	require.Equal(t, 2, provider.calls)
}

func TestRetrieveEvictsLeastRecentlyUsedAtCapacity(t *testing.T) {
	t.Setenv("KB_CACHE_CAPACITY", "3")
	provider := &stubKnowledgeProvider{}
	svc := NewKnowledgeService(newTestLogger(), provider)
	ctx := context.Background()

	svc.Retrieve(ctx, "default", "query a", "")
	svc.Retrieve(ctx, "default", "query b", "")
	svc.Retrieve(ctx, "default", "query c", "")
	require.Equal(t, 3, provider.calls)

	// Touch "query a" so "query b" becomes the least recently used.
	svc.Retrieve(ctx, "default", "query a", "")
	require.Equal(t, 3, provider.calls)

	svc.Retrieve(ctx, "default", "query d", "")
	require.Equal(t, 4, provider.calls)

	// "query a" survived the eviction, "query b" did not.
	svc.Retrieve(ctx, "default", "query a", "")
	require.Equal(t, 4, provider.calls)
	svc.Retrieve(ctx, "default", "query b", "")
	require.Equal(t, 5, provider.calls)
}

func TestRetrieveTruncatesSnippetsToMaxChars(t *testing.T) {
	t.Setenv("KB_SNIPPET_MAX_CHARS", "10")
	provider := &stubKnowledgeProvider{}
	svc := NewKnowledgeService(newTestLogger(), provider)

	snippets := svc.Retrieve(context.Background(), "default", "long article", "")
	require.NotEmpty(t, snippets)
	for _, snippet := range snippets {
		require.LessOrEqual(t, len(snippet.Text), 10)
	}
}

func TestRetrieveDegradesToEmptyOnBackendError(t *testing.T) {
	provider := &stubKnowledgeProvider{failWith: errors.New("backend exploded")}
	svc := NewKnowledgeService(newTestLogger(), provider)

	snippets := svc.Retrieve(context.Background(), "default", "wifi down", "")
	require.Empty(t, snippets)
	require.False(t, svc.BackendReady())

	provider.failWith = nil
	snippets = svc.Retrieve(context.Background(), "default", "wifi down", "")
	require.Len(t, snippets, 3)
	require.True(t, svc.BackendReady())
}

func TestRetrieveKeysAreTenantScoped(t *testing.T) {
	provider := &stubKnowledgeProvider{}
	svc := NewKnowledgeService(newTestLogger(), provider)
	ctx := context.Background()

	svc.Retrieve(ctx, "tenant-a", "same question", "")
	svc.Retrieve(ctx, "tenant-b", "same question", "")
	require.Equal(t, 2, provider.calls)
}

func TestMatchesTechnicalSignal(t *testing.T) {
	svc := NewKnowledgeService(newTestLogger(), &stubKnowledgeProvider{})

	require.True(t, svc.MatchesTechnicalSignal("My WiFi keeps disconnecting"))
	require.True(t, svc.MatchesTechnicalSignal("the printer shows an error"))
	require.False(t, svc.MatchesTechnicalSignal("I'd like to talk about my invoice"))
}

func TestRetrieveIgnoresQueryWhitespaceAndCase(t *testing.T) {
	provider := &stubKnowledgeProvider{}
	svc := NewKnowledgeService(newTestLogger(), provider)
	ctx := context.Background()

	svc.Retrieve(ctx, "default", "VPN not connecting", "")
	svc.Retrieve(ctx, "default", "  VPN Not Connecting  ", "")
	require.Equal(t, 1, provider.calls)
}
