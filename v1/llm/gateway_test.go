package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/observability"
)

type fakeModel struct {
	answer   string
	err      error
	empty    bool
	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	for _, o := range options {
		o(&m.opts)
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.empty {
		return &llms.ContentResponse{}, nil
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.answer, StopReason: "stop"}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func newTestGateway(t *testing.T, m llms.Model, obs observability.Observer) *Gateway {
	t.Helper()
	g, err := NewWithModel(DefaultConfig(), m, logger.NewLoggerClient(logger.Config{Level: logger.Error}), obs)
	require.NoError(t, err)
	return g
}

func text(mc llms.MessageContent) string {
	return mc.Parts[0].(llms.TextContent).Text
}

func TestMessages_PrependsSystemOnlyWithContext(t *testing.T) {
	g := newTestGateway(t, &fakeModel{}, nil)

	without := g.Messages(Request{Message: "hi"})
	require.Len(t, without, 1)
	assert.Equal(t, Message{Role: RoleUser, Content: "hi"}, without[0])

	with := g.Messages(Request{Message: "hi", Context: "the sky is blue"})
	require.Len(t, with, 2)
	assert.Equal(t, RoleSystem, with[0].Role)
	assert.Contains(t, with[0].Content, "the sky is blue")
	assert.Equal(t, RoleUser, with[1].Role)
}

func TestMessages_IdempotentAppend(t *testing.T) {
	g := newTestGateway(t, &fakeModel{}, nil)
	history := []Message{
		{Role: RoleUser, Content: "first"},
		{Role: RoleAssistant, Content: "answer"},
		{Role: RoleUser, Content: "second"},
	}

	msgs := g.Messages(Request{History: history, Message: "second"})
	assert.Len(t, msgs, 3, "already the last user turn")

	msgs = g.Messages(Request{History: history, Message: "first"})
	assert.Len(t, msgs, 4, "only the last turn is checked")
	assert.Equal(t, "first", msgs[3].Content)

	msgs = g.Messages(Request{History: history[:2], Message: "answer"})
	assert.Len(t, msgs, 3, "an assistant turn with the same text does not count")
}

func TestMessages_WindowsHistory(t *testing.T) {
	g := newTestGateway(t, &fakeModel{}, nil)
	var history []Message
	for i := 0; i < 15; i++ {
		history = append(history, Message{Role: RoleUser, Content: strings.Repeat("x", i+1)})
	}

	msgs := g.Messages(Request{History: history, Message: "new"})

	require.Len(t, msgs, 11)
	assert.Equal(t, strings.Repeat("x", 6), msgs[0].Content)
	assert.Equal(t, "new", msgs[10].Content)
}

func TestGenerate_SendsOptionsAndRoles(t *testing.T) {
	m := &fakeModel{answer: "forty-two"}
	var observed observability.OperationContext
	g := newTestGateway(t, m, observability.ObserverFunc(func(c observability.OperationContext) { observed = c }))
	temp := 0.2

	resp, err := g.Generate(context.Background(), Request{
		History:     []Message{{Role: RoleUser, Content: "q1"}, {Role: RoleAssistant, Content: "a1"}},
		Message:     "q2",
		Context:     "facts",
		MaxTokens:   50,
		Temperature: &temp,
	})
	require.NoError(t, err)

	assert.Equal(t, "forty-two", resp.Content)
	assert.Equal(t, DefaultModel, resp.Model)
	assert.Equal(t, "stop", resp.StopReason)

	require.Len(t, m.messages, 4)
	assert.Equal(t, llms.ChatMessageTypeSystem, m.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, m.messages[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, m.messages[2].Role)
	assert.Equal(t, "q2", text(m.messages[3]))
	assert.Equal(t, 50, m.opts.MaxTokens)
	assert.InDelta(t, 0.2, m.opts.Temperature, 1e-9)
	assert.Equal(t, DefaultModel, m.opts.Model)

	assert.Equal(t, "llm", observed.Component)
	assert.NoError(t, observed.Error)
}

func TestGenerate_Defaults(t *testing.T) {
	m := &fakeModel{answer: "ok"}
	g := newTestGateway(t, m, nil)

	_, err := g.Generate(context.Background(), Request{Message: "q"})
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxTokens, m.opts.MaxTokens)
	assert.InDelta(t, DefaultTemperature, m.opts.Temperature, 1e-9)
}

func TestGenerate_ProviderFailure(t *testing.T) {
	cause := errors.New("429 rate limited")
	m := &fakeModel{err: cause}
	g := newTestGateway(t, m, nil)

	_, err := g.Generate(context.Background(), Request{Message: "q"})

	assert.ErrorIs(t, err, ErrProviderFailure)
	assert.ErrorIs(t, err, cause)
}

func TestGenerate_EmptyChoices(t *testing.T) {
	g := newTestGateway(t, &fakeModel{empty: true}, nil)

	_, err := g.Generate(context.Background(), Request{Message: "q"})

	assert.ErrorIs(t, err, ErrProviderFailure)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.MaxTokens = MaxMaxTokens + 1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.Model = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}
