package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"flagdesk/internal/platform/metrics"
	id "flagdesk/pkg/domain"
	"flagdesk/pkg/requestcontext"
)

// Sink receives events for persistence or fan-out.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Recorder is the write side of the audit trail. Record never surfaces an
// error: sink failures are logged and counted, the caller's operation
// already succeeded and must stay successful.
type Recorder struct {
	sink    Sink
	logger  *slog.Logger
	metrics *metrics.Metrics

	inbox  chan Event
	done   chan struct{}
	closed sync.Once
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithAsyncBuffer decouples recording from the request path with a buffered
// channel drained by a background worker. A full buffer drops the event
// rather than blocking the request.
func WithAsyncBuffer(size int) Option {
	return func(r *Recorder) {
		if size > 0 {
			r.inbox = make(chan Event, size)
		}
	}
}

// NewRecorder builds a recorder around a sink.
func NewRecorder(sink Sink, logger *slog.Logger, m *metrics.Metrics, opts ...Option) *Recorder {
	r := &Recorder{
		sink:    sink,
		logger:  logger,
		metrics: m,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.inbox != nil {
		go r.drain()
	}
	return r
}

// Record captures one event. It never blocks beyond a channel send and never
// returns an error.
func (r *Recorder) Record(ctx context.Context, userID id.UserID, action, resourceType, resourceID, details string) {
	event := Event{
		ID:           id.NewActivityID(),
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		Timestamp:    requestcontext.Now(ctx),
	}

	if r.inbox == nil {
		r.append(ctx, event)
		return
	}

	select {
	case r.inbox <- event:
	default:
		r.drop(ctx, event, "activity buffer full")
	}
}

// Close stops the background worker after draining buffered events.
func (r *Recorder) Close() {
	r.closed.Do(func() {
		if r.inbox != nil {
			close(r.inbox)
			<-r.done
		}
	})
}

func (r *Recorder) drain() {
	defer close(r.done)
	// Sink writes happen off the request path; requests may be long gone.
	ctx := context.Background()
	for event := range r.inbox {
		r.append(ctx, event)
	}
}

func (r *Recorder) append(ctx context.Context, event Event) {
	// Bound sink latency so a stuck sink cannot stall the worker forever.
	appendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := r.sink.Append(appendCtx, event); err != nil {
		r.drop(ctx, event, err.Error())
	}
}

func (r *Recorder) drop(ctx context.Context, event Event, reason string) {
	if r.metrics != nil {
		r.metrics.ActivityEventsDropped.Inc()
	}
	r.logger.ErrorContext(ctx, "activity event dropped",
		"action", event.Action,
		"resource_type", event.ResourceType,
		"resource_id", event.ResourceID,
		"reason", reason,
	)
}
