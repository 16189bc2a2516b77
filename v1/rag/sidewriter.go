package rag

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/metrics"
	"github.com/Aleph-Alpha/ragcore/v1/vectorstore"
)

const defaultSideWriteTimeout = 30 * time.Second

// SideWrite is a chat turn to copy into the user's message collection.
type SideWrite struct {
	UserID    int64
	SessionID int64
	MessageID int64
	Role      string
	Text      string
}

// SideWriteOutcome is the result of one SideWrite.
type SideWriteOutcome struct {
	Write   SideWrite
	PointID string
	Err     error
}

// SideWriter stores chat turns in per-user collections without blocking the caller.
// Each write runs on its own goroutine, detached from the caller's cancellation, and
// reports its outcome on a channel that a single drain goroutine logs. Failures never
// reach the caller.
type SideWriter struct {
	writer  MessageWriter
	logger  logger.Logger
	metrics metrics.MetricsCollector
	timeout time.Duration

	outcomes chan SideWriteOutcome
	drained  chan struct{}
	inflight sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	succeeded atomic.Uint64
	failed    atomic.Uint64
}

// NewSideWriter starts the drain goroutine. buffer is the outcome channel capacity.
// m may be nil.
func NewSideWriter(w MessageWriter, buffer int, log logger.Logger, m metrics.MetricsCollector) *SideWriter {
	s := &SideWriter{
		writer:   w,
		logger:   log,
		metrics:  m,
		timeout:  defaultSideWriteTimeout,
		outcomes: make(chan SideWriteOutcome, buffer),
		drained:  make(chan struct{}),
	}
	go s.drain()
	return s
}

// Submit schedules w and returns immediately. It reports false when the writer is
// already closed and the write was dropped.
func (s *SideWriter) Submit(ctx context.Context, w SideWrite) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.logger.Warn("Side write dropped after shutdown", nil, map[string]interface{}{
			"user_id": w.UserID,
			"role":    w.Role,
		})
		return false
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		id, err := s.writer.AddUserMessage(wctx, w.UserID, w.Text, map[string]any{
			vectorstore.KeySessionID:   w.SessionID,
			vectorstore.KeyMessageID:   w.MessageID,
			vectorstore.KeyRole:        w.Role,
			vectorstore.KeyContentType: vectorstore.ContentTypeChatMessage,
		})
		s.outcomes <- SideWriteOutcome{Write: w, PointID: id, Err: err}
	}()
	return true
}

func (s *SideWriter) drain() {
	defer close(s.drained)
	for o := range s.outcomes {
		fields := map[string]interface{}{
			"user_id":    o.Write.UserID,
			"session_id": o.Write.SessionID,
			"role":       o.Write.Role,
		}
		if o.Err != nil {
			s.failed.Add(1)
			if s.metrics != nil {
				s.metrics.IncrementSideWriteFailures(o.Write.Role)
			}
			s.logger.Error("Failed to store chat message in user collection", o.Err, fields)
			continue
		}
		s.succeeded.Add(1)
		fields["point_id"] = o.PointID
		s.logger.Debug("Stored chat message in user collection", nil, fields)
	}
}

// Stats returns the number of finished writes by outcome.
func (s *SideWriter) Stats() (succeeded, failed uint64) {
	return s.succeeded.Load(), s.failed.Load()
}

// Close stops accepting writes, waits for in-flight writes and for their outcomes to
// be logged, or until ctx is done.
func (s *SideWriter) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.drained
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	go func() {
		s.inflight.Wait()
		close(s.outcomes)
	}()

	select {
	case <-s.drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
