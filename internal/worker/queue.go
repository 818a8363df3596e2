package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/contacts-service/internal/events"
)

// ErrQueueClosed is returned by Publish after Close.
var ErrQueueClosed = errors.New("event queue closed")

const defaultQueueSize = 64

// Queue buffers events so request handlers return before notifications are
// delivered. Run drains it into the dispatcher.
type Queue struct {
	mu         sync.RWMutex
	closed     bool
	events     chan events.Event
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewQueue creates a queue in front of dispatcher. size <= 0 uses a default.
func NewQueue(dispatcher events.Dispatcher, size int, logger *zap.Logger) *Queue {
	if size <= 0 {
		size = defaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		events:     make(chan events.Event, size),
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Publish enqueues event, blocking while the buffer is full.
func (q *Queue) Publish(ctx context.Context, event events.Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run delivers queued events until the queue is closed and drained, or ctx is done.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case event, ok := <-q.events:
			if !ok {
				return nil
			}
			q.deliver(ctx, event)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops accepting events. Run returns once the backlog is delivered.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.events)
	}
}

func (q *Queue) deliver(ctx context.Context, event events.Event) {
	if err := q.dispatcher.Publish(ctx, event); err != nil {
		q.logger.Warn("event delivery failed",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID),
			zap.Error(err))
		return
	}
	q.logger.Debug("event delivered", zap.String("event_type", string(event.Type)), zap.String("event_id", event.ID))
}
