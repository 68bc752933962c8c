// Package compactor bounds a user's conversation context by compressing
// older history into a model-written summary turn while keeping the most
// recent turns verbatim.
package compactor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/muninnhq/muninn/pkg/chat"
	"github.com/muninnhq/muninn/pkg/completion"
	"github.com/muninnhq/muninn/pkg/logger"
	"github.com/muninnhq/muninn/pkg/store"
)

const (
	// DefaultKeepRecent is how many trailing turns are always returned
	// verbatim. Histories at or below this length are never compacted.
	DefaultKeepRecent = 15

	// DefaultSummarizeWindow is how many of the head's trailing turns are
	// fed to the completer for summarization.
	DefaultSummarizeWindow = 14

	// summaryInstruction directs the completer to write for a model, not a
	// person. The summary's only consumer is the next completion call.
	summaryInstruction = "You are a conversation compression engine. Produce a dense summary " +
		"of the following conversation turns. The summary will be consumed by a " +
		"language model, not a human: optimize for preserving facts, names, " +
		"decisions, open questions, and anything needed to continue the " +
		"conversation coherently. Do not address the user. Do not editorialize."
)

// Counter is the sliver of a metrics counter the compactor needs. A nil
// counter disables instrumentation.
type Counter interface {
	Inc()
}

// Compactor builds bounded conversation context, persisting each synthesized
// summary back into the message store as a system turn.
type Compactor struct {
	store     store.Store
	completer completion.Completer
	logger    *slog.Logger

	// Compactions, when set, counts compactions that produced a summary.
	Compactions Counter

	// KeepRecent is the verbatim-tail threshold. Zero means DefaultKeepRecent.
	KeepRecent int

	// SummarizeWindow is how many head turns get summarized. Zero means
	// DefaultSummarizeWindow.
	SummarizeWindow int
}

// NewCompactor creates a compactor with the reference thresholds.
func NewCompactor(s store.Store, c completion.Completer, log *slog.Logger) *Compactor {
	if log == nil {
		log = logger.Nop()
	}
	return &Compactor{
		store:           s,
		completer:       c,
		logger:          log,
		KeepRecent:      DefaultKeepRecent,
		SummarizeWindow: DefaultSummarizeWindow,
	}
}

// Context returns the user's working context, bounded by compaction.
//
// Histories of KeepRecent or fewer non-empty turns come back verbatim in
// original order. Longer histories are split into head (everything but the
// trailing KeepRecent turns) and tail; the last SummarizeWindow turns of
// head are summarized by the completer, the summary is persisted as a new
// system turn in today's shard, and the returned context is the full head,
// then the summary, then the tail. The summarized slice therefore appears
// both raw (inside head) and compressed; callers relying on the context
// shape should pin it with a test before changing it.
func (c *Compactor) Context(ctx context.Context, user string) ([]*chat.Turn, error) {
	history, err := c.store.AllForUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	turns := make([]*chat.Turn, 0, len(history))
	for _, t := range history {
		if t.Content == "" {
			continue
		}
		turns = append(turns, t)
	}

	keep := c.KeepRecent
	if keep <= 0 {
		keep = DefaultKeepRecent
	}
	if len(turns) <= keep {
		return turns, nil
	}

	head := turns[:len(turns)-keep]
	tail := turns[len(turns)-keep:]

	window := c.SummarizeWindow
	if window <= 0 {
		window = DefaultSummarizeWindow
	}
	if window > len(head) {
		window = len(head)
	}
	toSummarize := head[len(head)-window:]

	summary, err := c.summarize(ctx, toSummarize)
	if err != nil {
		return nil, err
	}

	summaryTurn := chat.NewTurn(chat.RoleSystem, summary, uuid.NewString())
	_, status, err := c.store.Save(ctx, store.Today(), user, summaryTurn)
	if err != nil {
		return nil, fmt.Errorf("persisting summary: %w", err)
	}
	if status == store.SaveDegraded {
		c.logger.Warn("summary turn saved with degraded durability",
			"user", user,
			"hash", summaryTurn.Hash,
		)
	}

	if c.Compactions != nil {
		c.Compactions.Inc()
	}

	c.logger.Info("compacted context",
		"user", user,
		"history", len(turns),
		"summarized", len(toSummarize),
	)

	result := make([]*chat.Turn, 0, len(head)+1+len(tail))
	result = append(result, head...)
	result = append(result, summaryTurn)
	result = append(result, tail...)
	return result, nil
}

func (c *Compactor) summarize(ctx context.Context, turns []*chat.Turn) (string, error) {
	messages := make([]chat.Message, 0, len(turns)+1)
	messages = append(messages, chat.Message{Role: chat.RoleSystem, Content: summaryInstruction})
	messages = append(messages, chat.MessagesFromTurns(turns)...)

	summary, err := c.completer.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("summarizing head: %w", err)
	}
	return summary, nil
}
