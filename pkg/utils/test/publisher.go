package testutils

import (
	"context"
	"sync"

	"github.com/muninnhq/muninn/pkg/eventstream"
)

// CapturePublisher is a test publisher that records every published event.
// Safe for concurrent use so worker pool tests can assert on delivery.
type CapturePublisher struct {
	mu     sync.Mutex
	events []*eventstream.TurnSavedEvent

	// Fail causes PublishTurn to return this error when non-nil.
	Fail error
}

func NewCapturePublisher() *CapturePublisher {
	return &CapturePublisher{}
}

func (p *CapturePublisher) PublishTurn(_ context.Context, event *eventstream.TurnSavedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	if p.Fail != nil {
		return p.Fail
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)

	return nil
}

// Events returns a snapshot of everything published so far.
func (p *CapturePublisher) Events() []*eventstream.TurnSavedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*eventstream.TurnSavedEvent, len(p.events))
	copy(out, p.events)
	return out
}

func (p *CapturePublisher) Close() error {
	return nil
}

var _ eventstream.Publisher = (*CapturePublisher)(nil)
