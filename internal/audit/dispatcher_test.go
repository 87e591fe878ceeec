package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
)

type memSink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (s *memSink) Log(ctx context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func TestDispatcherDeliversOnClose(t *testing.T) {
	sink := &memSink{}
	d := NewDispatcher(sink, zap.NewNop())

	id := "av-1"
	d.Dispatch(Event{Action: "availability_created", Entity: "availability", EntityID: &id})
	d.Dispatch(Event{Action: "availability_deleted", Entity: "availability", EntityID: &id})
	d.Close()

	if len(sink.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(sink.events))
	}
	if sink.events[0].Action != "availability_created" {
		t.Fatalf("events out of order: %+v", sink.events)
	}
}

func TestDispatcherSurvivesSinkErrors(t *testing.T) {
	sink := &memSink{err: errors.New("db down")}
	d := NewDispatcher(sink, zap.NewNop())

	d.Dispatch(Event{Action: "a"})
	d.Dispatch(Event{Action: "b"})
	d.Close()

	if len(sink.events) != 2 {
		t.Fatalf("expected worker to keep going, got %d events", len(sink.events))
	}
}

func TestNilDispatcherIsNoop(t *testing.T) {
	var d *Dispatcher
	d.Dispatch(Event{Action: "x"})
	d.Close()
}
