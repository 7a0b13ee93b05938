package mcp

import (
	"context"

	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driving"
)

// mockKnowledgeService is a mock implementation of driving.KnowledgeService.
type mockKnowledgeService struct {
	ranked  []domain.RankedEntry
	entries []domain.Entry
	addedID string
	err     error

	lastQuery string
	lastOwner int64
	lastLimit int
	lastAdd   driving.AddEntryInput
}

func (m *mockKnowledgeService) FindPublicContext(_ context.Context, query string, k int) ([]domain.RankedEntry, error) {
	m.lastQuery, m.lastOwner, m.lastLimit = query, 0, k
	return m.ranked, m.err
}

func (m *mockKnowledgeService) FindContextForUser(_ context.Context, query string, ownerID int64, k int) ([]domain.RankedEntry, error) {
	m.lastQuery, m.lastOwner, m.lastLimit = query, ownerID, k
	return m.ranked, m.err
}

func (m *mockKnowledgeService) AddEntry(_ context.Context, in driving.AddEntryInput) (string, error) {
	m.lastAdd = in
	return m.addedID, m.err
}

func (m *mockKnowledgeService) UpdateEntryContent(context.Context, string, string) error {
	return m.err
}

func (m *mockKnowledgeService) UpdateEntryMetadata(context.Context, string, domain.EntryMetadata) error {
	return m.err
}

func (m *mockKnowledgeService) DeleteEntry(context.Context, string) error {
	return m.err
}

func (m *mockKnowledgeService) BulkDelete(context.Context, []string) (driving.BulkResult, error) {
	return driving.BulkResult{}, m.err
}

func (m *mockKnowledgeService) SetVisibility(context.Context, string, bool) error {
	return m.err
}

func (m *mockKnowledgeService) BulkSetVisibility(context.Context, []string, bool) (driving.BulkResult, error) {
	return driving.BulkResult{}, m.err
}

func (m *mockKnowledgeService) ListEntries(context.Context, domain.Scope) ([]domain.Entry, error) {
	return m.entries, m.err
}

func (m *mockKnowledgeService) Export(context.Context, int64) ([]byte, error) {
	return []byte("[]"), m.err
}

func (m *mockKnowledgeService) Import(context.Context, []byte, int64) (int, error) {
	return 0, m.err
}

func (m *mockKnowledgeService) RandomSample(context.Context) (*domain.Entry, error) {
	if len(m.entries) == 0 {
		return nil, domain.ErrEmptyKnowledgeBase
	}
	return &m.entries[0], m.err
}

func (m *mockKnowledgeService) Reset(context.Context, domain.Scope) (int64, error) {
	return 0, m.err
}

func (m *mockKnowledgeService) SaveConversation(context.Context, string, string, int64) (string, error) {
	return m.addedID, m.err
}

// mockAssistantService is a mock implementation of driving.AssistantService.
type mockAssistantService struct {
	result *driving.CompletionResult
	err    error

	lastReq driving.CompletionRequest
}

func (m *mockAssistantService) IsConfigured(domain.AIProvider) bool {
	return true
}

func (m *mockAssistantService) ResolveProvider(string) (domain.AIProvider, error) {
	return domain.AIProviderDemo, nil
}

func (m *mockAssistantService) GetChatCompletion(_ context.Context, req driving.CompletionRequest) (*driving.CompletionResult, error) {
	m.lastReq = req
	return m.result, m.err
}

func (m *mockAssistantService) GenerateEmbeddings(context.Context, string) ([]float32, error) {
	return nil, m.err
}

func (m *mockAssistantService) Usage(context.Context, string) (*domain.UsageSummary, error) {
	return &domain.UsageSummary{}, m.err
}
