// Package nop provides a no-op eventstream publisher for tests and
// disabled mode.
package nop

import (
	"context"

	"github.com/muninnhq/muninn/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishTurn validates input and otherwise does nothing.
func (p *Publisher) PublishTurn(_ context.Context, event *eventstream.TurnSavedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}

// Ensure Publisher implements eventstream.Publisher.
var _ eventstream.Publisher = (*Publisher)(nil)
