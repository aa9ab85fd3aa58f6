package activity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "flagdesk/pkg/domain"
	"flagdesk/pkg/requestcontext"
)

// capturingSink collects appended events.
type capturingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
	gate   chan struct{} // when non-nil, Append blocks until the gate closes
}

func (s *capturingSink) Append(_ context.Context, event Event) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *capturingSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

// RecorderSuite tests fire-and-forget event recording.
type RecorderSuite struct {
	suite.Suite

	logger *slog.Logger
	now    time.Time
	ctx    context.Context
	userID id.UserID
}

func TestRecorderSuite(t *testing.T) {
	suite.Run(t, new(RecorderSuite))
}

func (s *RecorderSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.userID = id.NewUserID()
}

func (s *RecorderSuite) TestSynchronousRecord() {
	sink := &capturingSink{}
	recorder := NewRecorder(sink, s.logger, nil)
	defer recorder.Close()

	recorder.Record(s.ctx, s.userID, ActionEntryCreated, ResourceEntry, "entry-1", "Jane Doe")

	events := sink.Events()
	s.Require().Len(events, 1)
	s.Equal(ActionEntryCreated, events[0].Action)
	s.Equal(ResourceEntry, events[0].ResourceType)
	s.Equal("entry-1", events[0].ResourceID)
	s.Equal(s.userID, events[0].UserID)
	s.Equal(s.now, events[0].Timestamp)
	s.False(events[0].ID.IsNil())
}

func (s *RecorderSuite) TestSinkFailureIsSwallowed() {
	sink := &capturingSink{err: errors.New("sink down")}
	recorder := NewRecorder(sink, s.logger, nil)
	defer recorder.Close()

	s.NotPanics(func() {
		recorder.Record(s.ctx, s.userID, ActionEntryCreated, ResourceEntry, "entry-1", "")
	})
}

func (s *RecorderSuite) TestAsyncDrainsOnClose() {
	sink := &capturingSink{}
	recorder := NewRecorder(sink, s.logger, nil, WithAsyncBuffer(16))

	for range 5 {
		recorder.Record(s.ctx, s.userID, ActionEntryUpdated, ResourceEntry, "entry-1", "")
	}
	recorder.Close()

	s.Len(sink.Events(), 5)
}

func (s *RecorderSuite) TestFullBufferDropsInsteadOfBlocking() {
	gate := make(chan struct{})
	sink := &capturingSink{gate: gate}
	recorder := NewRecorder(sink, s.logger, nil, WithAsyncBuffer(1))

	// First event occupies the worker, second fills the buffer, third must
	// be dropped without blocking.
	recorder.Record(s.ctx, s.userID, ActionEntryCreated, ResourceEntry, "entry-1", "")
	recorder.Record(s.ctx, s.userID, ActionEntryCreated, ResourceEntry, "entry-2", "")

	done := make(chan struct{})
	go func() {
		recorder.Record(s.ctx, s.userID, ActionEntryCreated, ResourceEntry, "entry-3", "")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("Record blocked on a full buffer")
	}

	close(gate)
	recorder.Close()
	s.LessOrEqual(len(sink.Events()), 2)
}

func (s *RecorderSuite) TestFanOut() {
	first := &capturingSink{err: errors.New("first sink down")}
	second := &capturingSink{}
	sink := FanOut(first, second)

	err := sink.Append(s.ctx, Event{Action: ActionEntryCreated})
	s.Error(err)
	s.Len(second.Events(), 1, "failure in one sink must not starve the others")
}
