package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/observability"
)

const (
	promptLogLimit = 1000
	answerLogLimit = 500
)

// Gateway sends conversations to a chat completion model. Calls are never retried.
type Gateway struct {
	cfg      Config
	model    llms.Model
	logger   logger.Logger
	observer observability.Observer
}

// New builds a Gateway over the OpenAI-compatible endpoint in cfg.
func New(cfg Config, log logger.Logger, observer observability.Observer) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	token := cfg.APIKey
	if token == "" {
		token = "unused"
		log.Warn("No LLM API key configured", nil, map[string]interface{}{"base_url": cfg.BaseURL})
	}
	model, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithToken(token),
	)
	if err != nil {
		return nil, fmt.Errorf("[LLM] failed to create client: %w", err)
	}
	return NewWithModel(cfg, model, log, observer)
}

// NewWithModel builds a Gateway over an existing model.
func NewWithModel(cfg Config, model llms.Model, log logger.Logger, observer observability.Observer) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	log.Info("LLM gateway initialized", nil, map[string]interface{}{
		"model":    cfg.Model,
		"base_url": cfg.BaseURL,
	})
	return &Gateway{cfg: cfg, model: model, logger: log, observer: observer}, nil
}

// Generate answers req.Message given the history and the retrieved context.
func (g *Gateway) Generate(ctx context.Context, req Request) (*Response, error) {
	messages := g.Messages(req)

	maxTokens := g.cfg.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	temperature := g.cfg.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	g.logger.InfoWithContext(ctx, "Sending prompt to LLM", nil, map[string]interface{}{
		"model":       g.cfg.Model,
		"messages":    len(messages),
		"max_tokens":  maxTokens,
		"temperature": temperature,
		"prompt":      formatForLog(messages),
	})

	start := time.Now()
	resp, err := g.model.GenerateContent(ctx, toContent(messages),
		llms.WithModel(g.cfg.Model),
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(temperature),
	)
	if err == nil && (resp == nil || len(resp.Choices) == 0) {
		err = fmt.Errorf("%w: no choices returned", ErrProviderFailure)
	} else if err != nil {
		err = fmt.Errorf("%w: %w", ErrProviderFailure, err)
	}
	g.observe(len(messages), time.Since(start), err)
	if err != nil {
		g.logger.ErrorWithContext(ctx, "LLM generation failed", err, map[string]interface{}{"model": g.cfg.Model})
		return nil, err
	}

	choice := resp.Choices[0]
	g.logger.InfoWithContext(ctx, "Received LLM answer", nil, map[string]interface{}{
		"length": len([]rune(choice.Content)),
		"answer": logger.Truncate(choice.Content, answerLogLimit),
	})
	return &Response{Content: choice.Content, Model: g.cfg.Model, StopReason: choice.StopReason}, nil
}

// Messages builds the conversation sent to the model: an optional system message
// carrying the context, the last HistoryWindow turns of the history and the new user
// message unless it is already the last user turn.
func (g *Gateway) Messages(req Request) []Message {
	history := req.History
	if w := g.cfg.HistoryWindow; len(history) > w {
		history = history[len(history)-w:]
	}

	out := make([]Message, 0, len(history)+2)
	if req.Context != "" {
		out = append(out, Message{Role: RoleSystem, Content: fmt.Sprintf(g.cfg.SystemPrompt, req.Context)})
	}
	out = append(out, history...)

	if n := len(history); n > 0 && history[n-1].Role == RoleUser && history[n-1].Content == req.Message {
		return out
	}
	return append(out, Message{Role: RoleUser, Content: req.Message})
}

// Config returns the gateway configuration.
func (g *Gateway) Config() Config {
	return g.cfg
}

func toContent(messages []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, len(messages))
	for i, m := range messages {
		out[i] = llms.TextParts(messageType(m.Role), m.Content)
	}
	return out
}

func messageType(role string) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

func formatForLog(messages []Message) string {
	var b strings.Builder
	for i, m := range messages {
		fmt.Fprintf(&b, "--- message %d (%s) ---\n%s\n", i+1, m.Role, logger.Truncate(m.Content, promptLogLimit))
	}
	return b.String()
}

func (g *Gateway) observe(size int, duration time.Duration, err error) {
	if g.observer == nil {
		return
	}
	g.observer.ObserveOperation(observability.OperationContext{
		Component: "llm",
		Operation: "generate",
		Resource:  g.cfg.Model,
		Duration:  duration,
		Error:     err,
		Size:      int64(size),
	})
}
