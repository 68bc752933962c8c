// Package eventstream defines transport-neutral event payloads emitted when
// conversation turns are persisted, plus the Publisher interface backends
// implement.
package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/muninnhq/muninn/pkg/chat"
	"github.com/muninnhq/muninn/pkg/store"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnSaved is emitted after a conversation turn is persisted.
	EventTypeTurnSaved = "muninn.turn.saved"
)

// TurnSavedEvent is a transport-neutral event payload for a saved turn.
// The embedding is deliberately omitted: consumers that need vectors fetch
// the turn by hash instead of shipping floats through the broker.
type TurnSavedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	User          string    `json:"user"`
	Day           string    `json:"day"`
	Turn          TurnMeta  `json:"turn"`
}

// TurnMeta is the slice of turn state carried on the event.
type TurnMeta struct {
	Role       string `json:"role"`
	Hash       string `json:"hash"`
	ContentLen int    `json:"content_len"`
	HasVector  bool   `json:"has_vector"`
	Timestamp  int64  `json:"timestamp"`
	SaveStatus string `json:"save_status"`
}

// NewTurnSavedEvent builds a v1 event for a persisted turn.
func NewTurnSavedEvent(user string, day store.Day, turn *chat.Turn, status store.SaveStatus) *TurnSavedEvent {
	return &TurnSavedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTurnSaved,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		User:          user,
		Day:           day.String(),
		Turn: TurnMeta{
			Role:       turn.Role,
			Hash:       turn.Hash,
			ContentLen: len(turn.Content),
			HasVector:  turn.HasEmbedding(),
			Timestamp:  turn.Timestamp,
			SaveStatus: status.String(),
		},
	}
}
