// Package tui implements the interactive chat session on bubbletea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aiohm/assistant/internal/adapters/driving/tui/styles"
	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driving"
	"github.com/aiohm/assistant/internal/core/services"
)

const systemPrompt = `You are a knowledgeable assistant. Answer using the
numbered context entries below when they are relevant; say so when they are
not. Be concise.`

// Ports carries the services the chat session depends on.
type Ports struct {
	Knowledge driving.KnowledgeService
	Assistant driving.AssistantService
}

// Validate checks that required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return errors.New("nil ports")
	}
	if p.Knowledge == nil {
		return errors.New("knowledge service is required")
	}
	if p.Assistant == nil {
		return errors.New("assistant service is required")
	}
	return nil
}

type turn struct {
	role string // "user" or "assistant"
	text string
}

// completionDone carries the assistant's reply back into the update loop.
type completionDone struct {
	text     string
	provider domain.AIProvider
	err      error
}

// conversationSaved reports the outcome of saving the transcript.
type conversationSaved struct {
	contentID string
	err       error
}

// Model is the chat session bubbletea model.
type Model struct {
	ports  *Ports
	styles *styles.Styles

	input    textinput.Model
	viewport viewport.Model

	turns   []turn
	ownerID int64
	limit   int

	waiting bool
	status  string
	ctx     context.Context

	width  int
	height int
	ready  bool
}

// NewModel creates a chat session over the given ports.
func NewModel(ports *Ports, ownerID int64) (*Model, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	input := textinput.New()
	input.Placeholder = "Ask a question..."
	input.Focus()
	input.CharLimit = 2000

	return &Model{
		ports:   ports,
		styles:  styles.DefaultStyles(),
		input:   input,
		ownerID: ownerID,
		limit:   5,
		status:  "enter: send    ctrl+s: save conversation    esc: quit",
		ctx:     context.Background(),
		width:   80,
		height:  24,
	}, nil
}

// WithContext sets the context used for service calls.
func (m *Model) WithContext(ctx context.Context) *Model {
	m.ctx = ctx
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(msg.Width, max(msg.Height-4, 1))
		m.viewport.SetContent(m.transcript())
		m.viewport.GotoBottom()
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlS:
			return m, m.saveConversation()
		case tea.KeyEnter:
			return m, m.submit()
		}

	case completionDone:
		m.waiting = false
		if msg.err != nil {
			m.turns = append(m.turns, turn{role: "assistant", text: m.styles.Error.Render(userFacing(msg.err))})
		} else {
			m.turns = append(m.turns, turn{role: "assistant", text: msg.text})
			m.status = fmt.Sprintf("answered by %s    ctrl+s: save    esc: quit", msg.provider)
		}
		m.refresh()
		return m, nil

	case conversationSaved:
		if msg.err != nil {
			m.status = m.styles.Error.Render("save failed: " + userFacing(msg.err))
		} else {
			m.status = fmt.Sprintf("saved as %s", msg.contentID)
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	m.viewport, cmd = m.viewport.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("AIOHM Chat"))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.waiting {
		b.WriteString(m.styles.Muted.Render("thinking..."))
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")
	b.WriteString(m.styles.StatusBar.Width(m.width).Render(m.status))
	return b.String()
}

func (m *Model) submit() tea.Cmd {
	if m.waiting {
		return nil
	}
	question := strings.TrimSpace(m.input.Value())
	if question == "" {
		return nil
	}

	m.input.SetValue("")
	m.turns = append(m.turns, turn{role: "user", text: question})
	m.waiting = true
	m.refresh()

	ports := m.ports
	ctx := m.ctx
	ownerID := m.ownerID
	limit := m.limit
	return func() tea.Msg {
		var (
			ranked []domain.RankedEntry
			err    error
		)
		if ownerID != 0 {
			ranked, err = ports.Knowledge.FindContextForUser(ctx, question, ownerID, limit)
		} else {
			ranked, err = ports.Knowledge.FindPublicContext(ctx, question, limit)
		}
		if err != nil {
			return completionDone{err: err}
		}

		system := systemPrompt
		if block := services.BuildContextBlock(ranked); block != "" {
			system = system + "\n\nContext:\n\n" + block
		}

		result, err := ports.Assistant.GetChatCompletion(ctx, driving.CompletionRequest{
			SystemMessage: system,
			UserMessage:   question,
			Temperature:   0.7,
		})
		if err != nil {
			return completionDone{err: err}
		}
		return completionDone{text: result.Text, provider: result.Provider}
	}
}

func (m *Model) saveConversation() tea.Cmd {
	if len(m.turns) == 0 {
		m.status = "nothing to save yet"
		return nil
	}

	transcript := m.plainTranscript()
	title := "Chat " + time.Now().Format("2006-01-02 15:04")
	ports := m.ports
	ctx := m.ctx
	ownerID := m.ownerID
	return func() tea.Msg {
		contentID, err := ports.Knowledge.SaveConversation(ctx, title, transcript, ownerID)
		return conversationSaved{contentID: contentID, err: err}
	}
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

// transcript renders the styled conversation for the viewport.
func (m *Model) transcript() string {
	if len(m.turns) == 0 {
		return m.styles.Muted.Render("Ask anything. Answers use your knowledge base as context.")
	}

	var b strings.Builder
	for i := range m.turns {
		t := &m.turns[i]
		if i > 0 {
			b.WriteString("\n\n")
		}
		if t.role == "user" {
			b.WriteString(m.styles.UserLabel.Render("You: "))
		} else {
			b.WriteString(m.styles.AssistantLabel.Render("Assistant: "))
		}
		b.WriteString(t.text)
	}
	return b.String()
}

// plainTranscript is the unstyled form stored by SaveConversation.
func (m *Model) plainTranscript() string {
	var b strings.Builder
	for i := range m.turns {
		t := &m.turns[i]
		if i > 0 {
			b.WriteString("\n\n")
		}
		if t.role == "user" {
			b.WriteString("User: ")
		} else {
			b.WriteString("Assistant: ")
		}
		b.WriteString(t.text)
	}
	return b.String()
}

// userFacing rewrites facade errors for display.
func userFacing(err error) string {
	switch {
	case errors.Is(err, domain.ErrConsentRequired):
		return "external AI calls need consent; run: aiohm settings consent on"
	case errors.Is(err, domain.ErrNotConfigured):
		return "no AI provider configured; run: aiohm settings provider <name>"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate limit reached; try again later"
	}

	var provErr *domain.ProviderError
	if errors.As(err, &provErr) {
		return provErr.UserMessage()
	}
	return err.Error()
}
