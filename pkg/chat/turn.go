// Package chat defines the conversation data model shared by the stores,
// the search layer, and the context compactor.
package chat

import "time"

// Speaker roles. Role is an open string so callers can introduce new
// speaker tags without a schema change; these are the ones muninn emits.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Turn is one message in a conversation. Turns are append-only: once
// persisted a turn is never mutated, and a revised summary is written as a
// new turn rather than an edit.
type Turn struct {
	// Role is the speaker tag ("user", "assistant", "system").
	Role string `json:"role"`

	// Content is the UTF-8 text body. May be empty; empty turns are
	// filtered out of compacted context.
	Content string `json:"content"`

	// Hash is the caller-supplied content address for the turn. It is the
	// turn's primary key within a (user, day shard) scope and is not
	// derived from the content bytes.
	Hash string `json:"hash"`

	// Embedding is the turn's vector representation. Absent until
	// computed; immutable once set. All embeddings in a deployment must
	// come from the same model or cosine comparisons are meaningless.
	Embedding []float32 `json:"embedding,omitempty"`

	// Timestamp is the creation instant in seconds since the epoch. Used
	// for day-bucket assignment only, not for ordering within a day.
	Timestamp int64 `json:"timestamp"`
}

// NewTurn creates a turn stamped with the current time.
func NewTurn(role, content, hash string) *Turn {
	return &Turn{
		Role:      role,
		Content:   content,
		Hash:      hash,
		Timestamp: time.Now().Unix(),
	}
}

// HasEmbedding reports whether the turn carries a stored embedding.
func (t *Turn) HasEmbedding() bool {
	return len(t.Embedding) > 0
}

// Clone returns a deep copy so callers can't mutate stored state.
func (t *Turn) Clone() *Turn {
	if t == nil {
		return nil
	}
	c := *t
	if t.Embedding != nil {
		c.Embedding = make([]float32, len(t.Embedding))
		copy(c.Embedding, t.Embedding)
	}
	return &c
}
