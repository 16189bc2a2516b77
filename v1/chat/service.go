package chat

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/Aleph-Alpha/ragcore/v1/chunker"
	"github.com/Aleph-Alpha/ragcore/v1/llm"
	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/rag"
	"github.com/Aleph-Alpha/ragcore/v1/store"
	"github.com/Aleph-Alpha/ragcore/v1/tracer"
)

// Service runs chat turns and manages chat sessions.
type Service struct {
	cfg       Config
	repo      store.Repository
	retriever Retriever
	generator Generator
	side      SideWriter
	logger    logger.Logger
	tracer    *tracer.Tracer
}

// NewService builds a Service. tr may be nil.
func NewService(cfg Config, repo store.Repository, r Retriever, g Generator, side SideWriter,
	log logger.Logger, tr *tracer.Tracer) *Service {
	return &Service{
		cfg:       cfg.withDefaults(),
		repo:      repo,
		retriever: r,
		generator: g,
		side:      side,
		logger:    log,
		tracer:    tr,
	}
}

// Chat answers one user message.
//
// The user message is stored before retrieval and generation. When generation fails the
// user message stays stored and no assistant message is recorded. Both messages are
// copied to the user's message collection in the background.
func (s *Service) Chat(ctx context.Context, req Request) (*Response, error) {
	ctx, span := s.tracer.StartSpan(ctx, "chat.turn")
	defer span.End()
	start := time.Now()

	if err := s.validate(req); err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		return nil, err
	}

	session, err := s.session(ctx, req)
	if err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		return nil, err
	}

	userMsg := &store.ChatMessage{Content: req.Message, Role: store.RoleUser, SessionID: session.ID}
	if err := s.repo.CreateMessage(ctx, userMsg); err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		return nil, fmt.Errorf("[Chat] failed to store user message: %w", err)
	}
	s.sideWrite(ctx, req.UserID, userMsg)

	var retrieval *rag.Retrieval
	if req.UseRAG {
		retrieval, err = s.retriever.Retrieve(ctx, rag.Query{
			Text:              req.Message,
			UserID:            req.UserID,
			K:                 req.KPoints,
			UseRAG:            true,
			ExcludeMessageIDs: []int64{userMsg.ID},
		})
		if err != nil {
			s.tracer.RecordErrorOnSpan(span, err)
			return nil, err
		}
	} else {
		s.logger.DebugWithContext(ctx, "Retrieval not requested", nil, map[string]interface{}{"session_id": session.ID})
	}

	history, err := s.history(ctx, session.ID)
	if err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		return nil, err
	}

	genReq := llm.Request{History: history, Message: req.Message, MaxTokens: req.MaxTokens}
	if retrieval != nil {
		genReq.Context = retrieval.Context
	}
	answer, err := s.generator.Generate(ctx, genReq)
	if err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		return nil, err
	}

	assistantMsg := &store.ChatMessage{Content: answer.Content, Role: store.RoleAssistant, SessionID: session.ID}
	if err := s.repo.CreateMessage(ctx, assistantMsg); err != nil {
		s.tracer.RecordErrorOnSpan(span, err)
		return nil, fmt.Errorf("[Chat] failed to store assistant message: %w", err)
	}
	s.sideWrite(ctx, req.UserID, assistantMsg)

	resp := &Response{
		Message:   answer.Content,
		SessionID: session.ID,
		MessageID: assistantMsg.ID,
	}
	if retrieval != nil {
		used := retrieval.PointsUsed
		resp.KPointsUsed = &used
		if len(retrieval.Sources) > 0 {
			resp.Sources = retrieval.Sources
		}
	}

	s.tracer.SetAttributes(span, map[string]interface{}{
		"chat.session_id": session.ID,
		"chat.use_rag":    req.UseRAG,
	})
	s.logger.InfoWithContext(ctx, "Chat turn completed", nil, map[string]interface{}{
		"user_id":    req.UserID,
		"session_id": session.ID,
		"history":    len(history),
		"use_rag":    req.UseRAG,
		"duration":   time.Since(start).String(),
	})
	return resp, nil
}

func (s *Service) validate(req Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: user id must be positive", rag.ErrValidation)
	}
	if chunker.IsBlank(req.Message) {
		return fmt.Errorf("%w: message is empty", rag.ErrValidation)
	}
	if n := utf8.RuneCountInString(req.Message); n > s.cfg.MaxMessageLength {
		return fmt.Errorf("%w: message has %d characters, at most %d allowed", rag.ErrValidation, n, s.cfg.MaxMessageLength)
	}
	if req.MaxTokens < 0 || req.MaxTokens > llm.MaxMaxTokens {
		return fmt.Errorf("%w: max_tokens must be in [1, %d]", rag.ErrValidation, llm.MaxMaxTokens)
	}
	return nil
}

// session loads the requested session or starts a new one titled after the message.
func (s *Service) session(ctx context.Context, req Request) (*store.ChatSession, error) {
	if req.SessionID != nil {
		return s.repo.GetSession(ctx, *req.SessionID, req.UserID)
	}
	if err := s.repo.EnsureUser(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("[Chat] failed to register user: %w", err)
	}
	session := &store.ChatSession{Title: Title(req.Message, s.cfg.TitleLength), UserID: req.UserID}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("[Chat] failed to create session: %w", err)
	}
	s.logger.InfoWithContext(ctx, "Chat session created", nil, map[string]interface{}{
		"session_id": session.ID,
		"user_id":    req.UserID,
	})
	return session, nil
}

func (s *Service) history(ctx context.Context, sessionID int64) ([]llm.Message, error) {
	msgs, err := s.repo.RecentMessages(ctx, sessionID, s.cfg.HistoryWindow)
	if err != nil {
		return nil, fmt.Errorf("[Chat] failed to load history: %w", err)
	}
	out := make([]llm.Message, len(msgs))
	for i, m := range msgs {
		out[i] = llm.Message{Role: m.Role, Content: m.Content}
	}
	return out, nil
}

func (s *Service) sideWrite(ctx context.Context, userID int64, m *store.ChatMessage) {
	if s.side == nil {
		return
	}
	s.side.Submit(ctx, rag.SideWrite{
		UserID:    userID,
		SessionID: m.SessionID,
		MessageID: m.ID,
		Role:      m.Role,
		Text:      m.Content,
	})
}

// Sessions lists the user's sessions with their messages.
func (s *Service) Sessions(ctx context.Context, userID int64) ([]store.ChatSession, error) {
	sessions, err := s.repo.ListSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []store.ChatSession{}
	}
	return sessions, nil
}

// Messages lists the messages of a session owned by userID.
func (s *Service) Messages(ctx context.Context, sessionID, userID int64) ([]store.ChatMessage, error) {
	if _, err := s.repo.GetSession(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	msgs, err := s.repo.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []store.ChatMessage{}
	}
	return msgs, nil
}

// DeleteSession removes a session owned by userID and its messages.
func (s *Service) DeleteSession(ctx context.Context, sessionID, userID int64) error {
	err := s.repo.WithTx(ctx, func(tx store.Repository) error {
		if _, err := tx.GetSession(ctx, sessionID, userID); err != nil {
			return err
		}
		return tx.DeleteSession(ctx, sessionID)
	})
	if err != nil {
		return err
	}
	s.logger.InfoWithContext(ctx, "Chat session deleted", nil, map[string]interface{}{"session_id": sessionID})
	return nil
}

// Title is the first n characters of message, followed by "..." when cut.
func Title(message string, n int) string {
	r := []rune(message)
	if len(r) <= n {
		return message
	}
	return string(r[:n]) + "..."
}
