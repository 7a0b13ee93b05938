package cli

import (
	"context"

	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driving"
)

// fakeKnowledge stubs the knowledge port; the embedded interface panics on
// anything a test does not exercise.
type fakeKnowledge struct {
	driving.KnowledgeService

	ranked  []domain.RankedEntry
	entries []domain.Entry
	addedID string
	count   int
	removed int64
	err     error

	lastAdd     driving.AddEntryInput
	lastScope   domain.Scope
	deletedIDs  []string
	sharedIDs   []string
	sharedState bool
}

func (f *fakeKnowledge) FindPublicContext(context.Context, string, int) ([]domain.RankedEntry, error) {
	return f.ranked, f.err
}

func (f *fakeKnowledge) FindContextForUser(context.Context, string, int64, int) ([]domain.RankedEntry, error) {
	return f.ranked, f.err
}

func (f *fakeKnowledge) AddEntry(_ context.Context, in driving.AddEntryInput) (string, error) {
	f.lastAdd = in
	return f.addedID, f.err
}

func (f *fakeKnowledge) DeleteEntry(_ context.Context, contentID string) error {
	f.deletedIDs = append(f.deletedIDs, contentID)
	return f.err
}

func (f *fakeKnowledge) BulkDelete(_ context.Context, contentIDs []string) (driving.BulkResult, error) {
	f.deletedIDs = append(f.deletedIDs, contentIDs...)
	return driving.BulkResult{Succeeded: len(contentIDs)}, f.err
}

func (f *fakeKnowledge) SetVisibility(_ context.Context, contentID string, isPublic bool) error {
	f.sharedIDs = append(f.sharedIDs, contentID)
	f.sharedState = isPublic
	return f.err
}

func (f *fakeKnowledge) BulkSetVisibility(_ context.Context, contentIDs []string, isPublic bool) (driving.BulkResult, error) {
	f.sharedIDs = append(f.sharedIDs, contentIDs...)
	f.sharedState = isPublic
	return driving.BulkResult{Succeeded: len(contentIDs)}, f.err
}

func (f *fakeKnowledge) ListEntries(_ context.Context, scope domain.Scope) ([]domain.Entry, error) {
	f.lastScope = scope
	return f.entries, f.err
}

func (f *fakeKnowledge) Export(context.Context, int64) ([]byte, error) {
	return []byte(`[]`), f.err
}

func (f *fakeKnowledge) Import(context.Context, []byte, int64) (int, error) {
	return f.count, f.err
}

func (f *fakeKnowledge) RandomSample(context.Context) (*domain.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.entries) == 0 {
		return nil, domain.ErrEmptyKnowledgeBase
	}
	return &f.entries[0], nil
}

func (f *fakeKnowledge) Reset(_ context.Context, scope domain.Scope) (int64, error) {
	f.lastScope = scope
	return f.removed, f.err
}

type fakeAssistant struct {
	driving.AssistantService

	result  *driving.CompletionResult
	summary *domain.UsageSummary
	err     error

	lastReq driving.CompletionRequest
}

func (f *fakeAssistant) GetChatCompletion(_ context.Context, req driving.CompletionRequest) (*driving.CompletionResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeAssistant) Usage(context.Context, string) (*domain.UsageSummary, error) {
	if f.summary != nil {
		return f.summary, f.err
	}
	return &domain.UsageSummary{}, f.err
}

// fakeSettingsStore keeps settings in memory.
type fakeSettingsStore struct {
	settings domain.AppSettings
	saved    *domain.AppSettings
	err      error
}

func (f *fakeSettingsStore) Load() (domain.AppSettings, error) {
	return f.settings, f.err
}

func (f *fakeSettingsStore) Save(settings domain.AppSettings) error {
	f.saved = &settings
	f.settings = settings
	return f.err
}

func (f *fakeSettingsStore) Watch(func(domain.AppSettings)) (func(), error) {
	return func() {}, nil
}

// setupTestServices installs fakes and returns them with a cleanup.
func setupTestServices() (*fakeKnowledge, *fakeAssistant, *fakeSettingsStore, func()) {
	kb := &fakeKnowledge{}
	ai := &fakeAssistant{result: &driving.CompletionResult{Text: "ok", Provider: domain.AIProviderDemo}}
	store := &fakeSettingsStore{settings: domain.DefaultAppSettings()}

	knowledgeService = kb
	assistantService = ai
	settingsStore = store

	return kb, ai, store, func() {
		knowledgeService = nil
		assistantService = nil
		settingsStore = nil
		validateProvider = nil
	}
}
