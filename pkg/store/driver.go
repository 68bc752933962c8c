// Package store defines the message store contract: durable, per-user,
// day-sharded persistence of conversation turns with fast point lookup.
package store

import (
	"context"

	"github.com/muninnhq/muninn/pkg/chat"
)

// SaveStatus reports how durably a turn was persisted. The store favors
// availability: a failed disk write does not fail the save, it degrades it.
type SaveStatus int

const (
	// SaveDurable means the turn reached both the in-memory index and disk.
	SaveDurable SaveStatus = iota

	// SaveDegraded means the turn is held in memory but the disk write
	// failed; it will be lost on restart. The underlying error is logged
	// by the driver, not returned.
	SaveDegraded
)

func (s SaveStatus) String() string {
	switch s {
	case SaveDurable:
		return "durable"
	case SaveDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Store is the interface for persisting and retrieving conversation turns.
//
// Turns are partitioned by user and by calendar day. Within one (user, day)
// shard writes are serialized and ordering is append order; across users or
// days operations are independent.
type Store interface {
	// Save appends a turn to the user's shard for the given day and
	// indexes it by (user, hash). A disk failure does not fail the call;
	// it is reported through the returned SaveStatus.
	Save(ctx context.Context, day Day, user string, turn *chat.Turn) (*chat.Turn, SaveStatus, error)

	// Get looks a turn up by (user, hash). Only recently written shards
	// are consulted on an index miss; see the fs driver's MissLookbackDays
	// for the exact window. Callers needing full-history guarantees must
	// use AllForUser. Returns NotFoundError when the turn is unreachable.
	Get(ctx context.Context, user, hash string) (*chat.Turn, error)

	// AllForUser returns every turn for the user, day shards in ascending
	// date order, turns within a day in append order. Shards that fail to
	// parse are treated as empty.
	AllForUser(ctx context.Context, user string) ([]*chat.Turn, error)

	// AllForUserOnDay returns the turns of exactly one day shard.
	AllForUserOnDay(ctx context.Context, user string, day Day) ([]*chat.Turn, error)

	// Close releases any resources held by the store.
	Close() error
}
