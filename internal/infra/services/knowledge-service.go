package services

import (
	"container/list"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"support-connector/internal/config"
	"support-connector/internal/domain/dto"
	"support-connector/internal/domain/entities"
	"support-connector/internal/infra/logger"
	"support-connector/internal/infra/provider"
	"sync"
	"sync/atomic"
	"time"
)

var defaultSignalKeywords = []string{
	"wifi", "wi-fi", "internet", "network", "vpn", "password", "login",
	"email", "printer", "error", "crash", "slow", "disconnect", "freez",
	"screen", "install", "update", "not working", "laptop", "computer",
	"server", "software", "hardware", "outlook", "monitor",
}

type knowledgeCacheEntry struct {
	key       string
	snippets  []entities.Snippet
	createdAt time.Time
}

// KnowledgeService fronts the semantic search backend with a bounded cache:
// TTL expiry is checked lazily on access and capacity is enforced with
// least-recently-used eviction. Cached entries are immutable after insert.
// Retrieval is advisory context only, so any backend failure degrades to an
// empty snippet list.
type KnowledgeService struct {
	Logger   *logger.Logger
	Provider provider.IKnowledgeProvider

	ttl             time.Duration
	capacity        int
	topK            int
	snippetMaxChars int
	searchTimeout   time.Duration
	signalKeywords  []string

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used

	backendDown atomic.Bool
}

func NewKnowledgeService(log *logger.Logger, knowledgeProvider provider.IKnowledgeProvider) *KnowledgeService {
	return &KnowledgeService{
		Logger:          log,
		Provider:        knowledgeProvider,
		ttl:             config.GetEnvDurationDefault("KB_CACHE_TTL", 30*time.Minute),
		capacity:        config.GetEnvIntDefault("KB_CACHE_CAPACITY", 100),
		topK:            config.GetEnvIntDefault("KB_TOP_K", 3),
		snippetMaxChars: config.GetEnvIntDefault("KB_SNIPPET_MAX_CHARS", 300),
		searchTimeout:   config.GetEnvDurationDefault("KB_SEARCH_TIMEOUT", 5*time.Second),
		signalKeywords:  config.GetEnvListDefault("TECHNICAL_SIGNAL_KEYWORDS", defaultSignalKeywords),
		entries:         make(map[string]*list.Element),
		order:           list.New(),
	}
}

// MatchesTechnicalSignal reports whether the turn text carries a technical
// support signal. This is a cost-control gate in front of the backend, not a
// correctness requirement.
func (th *KnowledgeService) MatchesTechnicalSignal(text string) bool {
	lowered := strings.ToLower(text)
	for _, keyword := range th.signalKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func (th *KnowledgeService) BackendReady() bool {
	return !th.backendDown.Load()
}

func (th *KnowledgeService) Retrieve(ctx context.Context, tenantID string, query string, category string) []entities.Snippet {
	key := cacheKey(tenantID, query, category)

	if snippets, ok := th.lookup(key); ok {
		return snippets
	}

	searchCtx, cancel := context.WithTimeout(ctx, th.searchTimeout)
	defer cancel()

	response, err := th.Provider.Search(searchCtx, dto.KnowledgeSearchRequest{
		TenantID: tenantID,
		Query:    query,
		Category: category,
		TopK:     th.topK,
	})
	if err != nil {
		th.backendDown.Store(true)
		th.Logger.Warn(fmt.Sprintf("Knowledge backend search failed, continuing without snippets: %v", err))
		return []entities.Snippet{}
	}
	th.backendDown.Store(false)

	snippets := make([]entities.Snippet, 0, th.topK)
	for _, chunk := range response.Results {
		if len(snippets) >= th.topK {
			break
		}
		text := chunk.Text
		if len(text) > th.snippetMaxChars {
			text = text[:th.snippetMaxChars]
		}
		snippets = append(snippets, entities.Snippet{ID: chunk.ID, Text: text, Score: chunk.Score})
	}

	th.insert(key, snippets)
	return snippets
}

// lookup returns a copy of the cached snippets. An expired entry is removed
// and treated as a miss.
func (th *KnowledgeService) lookup(key string) ([]entities.Snippet, bool) {
	th.mu.Lock()
	defer th.mu.Unlock()

	elem, ok := th.entries[key]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*knowledgeCacheEntry)
	if time.Since(entry.createdAt) >= th.ttl {
		th.order.Remove(elem)
		delete(th.entries, key)
		return nil, false
	}

	th.order.MoveToFront(elem)
	copied := make([]entities.Snippet, len(entry.snippets))
	copy(copied, entry.snippets)
	return copied, true
}

func (th *KnowledgeService) insert(key string, snippets []entities.Snippet) {
	th.mu.Lock()
	defer th.mu.Unlock()

	if elem, ok := th.entries[key]; ok {
		th.order.Remove(elem)
		delete(th.entries, key)
	}

	for len(th.entries) >= th.capacity {
		oldest := th.order.Back()
		if oldest == nil {
			break
		}
		th.order.Remove(oldest)
		delete(th.entries, oldest.Value.(*knowledgeCacheEntry).key)
	}

	stored := make([]entities.Snippet, len(snippets))
	copy(stored, snippets)
	th.entries[key] = th.order.PushFront(&knowledgeCacheEntry{
		key:       key,
		snippets:  stored,
		createdAt: time.Now(),
	})
}

func cacheKey(tenantID, query, category string) string {
	raw := strings.Join([]string{tenantID, strings.ToLower(strings.TrimSpace(query)), category}, "|")
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
