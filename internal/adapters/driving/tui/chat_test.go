package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driving"
)

// fakeKnowledge stubs the retrieval and save paths; the embedded interface
// panics on anything else, which no chat flow should reach.
type fakeKnowledge struct {
	driving.KnowledgeService

	ranked  []domain.RankedEntry
	savedID string
	err     error

	lastOwner  int64
	savedTitle string
	savedText  string
}

func (f *fakeKnowledge) FindPublicContext(_ context.Context, _ string, _ int) ([]domain.RankedEntry, error) {
	f.lastOwner = 0
	return f.ranked, f.err
}

func (f *fakeKnowledge) FindContextForUser(_ context.Context, _ string, ownerID int64, _ int) ([]domain.RankedEntry, error) {
	f.lastOwner = ownerID
	return f.ranked, f.err
}

func (f *fakeKnowledge) SaveConversation(_ context.Context, title, transcript string, _ int64) (string, error) {
	f.savedTitle = title
	f.savedText = transcript
	return f.savedID, f.err
}

type fakeAssistant struct {
	driving.AssistantService

	result *driving.CompletionResult
	err    error

	lastReq driving.CompletionRequest
}

func (f *fakeAssistant) GetChatCompletion(_ context.Context, req driving.CompletionRequest) (*driving.CompletionResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestModel(t *testing.T, kb *fakeKnowledge, ai *fakeAssistant) *Model {
	t.Helper()
	model, err := NewModel(&Ports{Knowledge: kb, Assistant: ai}, 0)
	require.NoError(t, err)

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(*Model)
}

func TestNewModel_Validation(t *testing.T) {
	_, err := NewModel(&Ports{}, 0)
	assert.Error(t, err)

	_, err = NewModel(&Ports{Knowledge: &fakeKnowledge{}}, 0)
	assert.Error(t, err)

	_, err = NewModel(&Ports{Knowledge: &fakeKnowledge{}, Assistant: &fakeAssistant{}}, 0)
	assert.NoError(t, err)
}

func TestModel_SubmitFlow(t *testing.T) {
	kb := &fakeKnowledge{ranked: []domain.RankedEntry{
		{Entry: domain.Entry{ContentID: "kb-1", Title: "Policy", Content: "30 days."}, Score: 0.9},
	}}
	ai := &fakeAssistant{result: &driving.CompletionResult{
		Text:     "Refunds within 30 days.",
		Provider: domain.AIProviderOpenAI,
	}}
	m := newTestModel(t, kb, ai)

	m.input.SetValue("what is the refund policy?")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(*Model)
	require.NotNil(t, cmd)

	assert.True(t, m.waiting)
	require.Len(t, m.turns, 1)
	assert.Equal(t, "user", m.turns[0].role)
	assert.Empty(t, m.input.Value())

	msg := cmd()
	done, ok := msg.(completionDone)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.Equal(t, "Refunds within 30 days.", done.text)
	assert.Contains(t, ai.lastReq.SystemMessage, "30 days.")

	updated, _ = m.Update(done)
	m = updated.(*Model)
	assert.False(t, m.waiting)
	require.Len(t, m.turns, 2)
	assert.Equal(t, "assistant", m.turns[1].role)
	assert.Contains(t, m.View(), "Refunds within 30 days.")
}

func TestModel_EmptyInputIgnored(t *testing.T) {
	m := newTestModel(t, &fakeKnowledge{}, &fakeAssistant{})

	m.input.SetValue("   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, m.turns)
}

func TestModel_CompletionError(t *testing.T) {
	ai := &fakeAssistant{err: domain.ErrConsentRequired}
	m := newTestModel(t, &fakeKnowledge{}, ai)

	m.input.SetValue("hello")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(*Model)
	require.NotNil(t, cmd)

	updated, _ = m.Update(cmd())
	m = updated.(*Model)
	assert.False(t, m.waiting)
	require.Len(t, m.turns, 2)
	assert.Contains(t, m.turns[1].text, "consent")
}

func TestModel_SaveConversation(t *testing.T) {
	kb := &fakeKnowledge{savedID: "conv-1"}
	m := newTestModel(t, kb, &fakeAssistant{})
	m.turns = []turn{
		{role: "user", text: "hi"},
		{role: "assistant", text: "hello"},
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)

	msg := cmd()
	saved, ok := msg.(conversationSaved)
	require.True(t, ok)
	require.NoError(t, saved.err)
	assert.Equal(t, "conv-1", saved.contentID)
	assert.True(t, strings.HasPrefix(kb.savedTitle, "Chat "))
	assert.Equal(t, "User: hi\n\nAssistant: hello", kb.savedText)

	updated, _ := m.Update(saved)
	m = updated.(*Model)
	assert.Contains(t, m.status, "conv-1")
}

func TestModel_SaveWithoutTurns(t *testing.T) {
	m := newTestModel(t, &fakeKnowledge{}, &fakeAssistant{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.Equal(t, "nothing to save yet", m.status)
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, &fakeKnowledge{}, &fakeAssistant{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestUserFacing(t *testing.T) {
	assert.Contains(t, userFacing(domain.ErrConsentRequired), "consent")
	assert.Contains(t, userFacing(domain.ErrNotConfigured), "settings provider")
	assert.Contains(t, userFacing(domain.ErrRateLimited), "rate limit")
	assert.Equal(t, "boom", userFacing(errors.New("boom")))

	provErr := domain.NewProviderError(domain.AIProviderOpenAI, "status 401: bad key")
	assert.Equal(t, provErr.UserMessage(), userFacing(provErr))
}
