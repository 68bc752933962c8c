// Package inmemory implements store.Store using in-process maps. It keeps
// the same day-shard semantics as the filesystem driver and is used by
// tests and local development.
package inmemory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/muninnhq/muninn/pkg/chat"
	"github.com/muninnhq/muninn/pkg/store"
)

type indexKey struct {
	user string
	hash string
}

// Driver implements store.Store without touching disk.
type Driver struct {
	mu     sync.RWMutex
	index  map[indexKey]*chat.Turn
	shards map[string]map[string][]*chat.Turn // user -> day -> turns in append order
}

// NewDriver creates an empty in-memory store.
func NewDriver() *Driver {
	return &Driver{
		index:  make(map[indexKey]*chat.Turn),
		shards: make(map[string]map[string][]*chat.Turn),
	}
}

// Save appends the turn to the user's day shard. In-memory writes cannot
// degrade, so the status is always SaveDurable on success.
func (d *Driver) Save(_ context.Context, day store.Day, user string, turn *chat.Turn) (*chat.Turn, store.SaveStatus, error) {
	if user == "" {
		return nil, store.SaveDegraded, errors.New("user is required")
	}
	if turn == nil {
		return nil, store.SaveDegraded, errors.New("cannot save nil turn")
	}
	if turn.Hash == "" {
		return nil, store.SaveDegraded, errors.New("cannot save turn without hash")
	}
	if day.IsZero() {
		day = store.Today()
	}

	saved := turn.Clone()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.index[indexKey{user: user, hash: saved.Hash}] = saved

	days, ok := d.shards[user]
	if !ok {
		days = make(map[string][]*chat.Turn)
		d.shards[user] = days
	}
	days[day.String()] = append(days[day.String()], saved)

	return saved.Clone(), store.SaveDurable, nil
}

// Get looks up a turn by (user, hash).
func (d *Driver) Get(_ context.Context, user, hash string) (*chat.Turn, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	turn, ok := d.index[indexKey{user: user, hash: hash}]
	if !ok {
		return nil, store.NotFoundError{User: user, Hash: hash}
	}

	return turn.Clone(), nil
}

// AllForUser returns the user's turns, day shards ascending, append order
// within each day.
func (d *Driver) AllForUser(_ context.Context, user string) ([]*chat.Turn, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	days, ok := d.shards[user]
	if !ok {
		return nil, nil
	}

	names := make([]string, 0, len(days))
	for name := range days {
		names = append(names, name)
	}
	sort.Strings(names)

	var turns []*chat.Turn
	for _, name := range names {
		for _, turn := range days[name] {
			turns = append(turns, turn.Clone())
		}
	}

	return turns, nil
}

// AllForUserOnDay returns the turns of one day shard.
func (d *Driver) AllForUserOnDay(_ context.Context, user string, day store.Day) ([]*chat.Turn, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	days, ok := d.shards[user]
	if !ok {
		return nil, nil
	}

	shard := days[day.String()]
	turns := make([]*chat.Turn, 0, len(shard))
	for _, turn := range shard {
		turns = append(turns, turn.Clone())
	}

	return turns, nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

// Ensure Driver implements store.Store.
var _ store.Store = (*Driver)(nil)
