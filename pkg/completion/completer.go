// Package completion defines the text completion provider capability used
// by the context compactor to synthesize summaries.
package completion

import (
	"context"
	"errors"

	"github.com/muninnhq/muninn/pkg/chat"
)

// ErrCompletion is returned when a completion provider fails or times out.
var ErrCompletion = errors.New("completion failed")

// Completer produces a single non-streaming text reply for an ordered list
// of role-tagged messages.
type Completer interface {
	// Complete returns the synthesized reply text.
	Complete(ctx context.Context, messages []chat.Message) (string, error)

	// Close releases any resources held by the completer.
	Close() error
}
