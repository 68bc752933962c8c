package testutils

import (
	"context"

	"github.com/muninnhq/muninn/pkg/chat"
	"github.com/muninnhq/muninn/pkg/completion"
)

// MockCompleter is a test completer that records the messages it was given
// and returns a canned reply.
type MockCompleter struct {
	// Reply is returned by Complete. Defaults to "mock summary".
	Reply string

	// Fail causes Complete to return ErrCompletion.
	Fail bool

	// Calls accumulates every message slice passed to Complete.
	Calls [][]chat.Message
}

func NewMockCompleter() *MockCompleter {
	return &MockCompleter{
		Reply: "mock summary",
	}
}

func (m *MockCompleter) Complete(_ context.Context, messages []chat.Message) (string, error) {
	msgs := make([]chat.Message, len(messages))
	copy(msgs, messages)
	m.Calls = append(m.Calls, msgs)

	if m.Fail {
		return "", completion.ErrCompletion
	}

	return m.Reply, nil
}

func (m *MockCompleter) Close() error {
	return nil
}

var _ completion.Completer = (*MockCompleter)(nil)
