// Package fs implements store.Store on the local filesystem.
//
// Layout is one directory per user, one subdirectory per calendar day,
// holding that day's ordered turns as a single JSON document:
//
//	<root>/<user>/2026-08-30/messages.json
//
// Appending rewrites the whole day document, so a day's turns must fit in
// memory and concurrent writers to the same (user, day) are serialized. An
// in-memory index keyed (user, hash) fronts the files for point lookup;
// the index is a cache, never the source of truth, and is always
// reconcilable by re-reading the directory tree.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/muninnhq/muninn/pkg/chat"
	"github.com/muninnhq/muninn/pkg/logger"
	"github.com/muninnhq/muninn/pkg/store"
)

const messagesFile = "messages.json"

// Config holds configuration for the filesystem driver.
type Config struct {
	// Root is the storage root directory. Required.
	Root string

	// MissLookbackDays is how many trailing day shards (today first) are
	// loaded into the index when a point lookup misses. Defaults to 1,
	// meaning only today's shard: a turn written on an earlier day is
	// reachable via Get only after AllForUser (or a wider lookback) has
	// loaded its shard. This is a deliberate latency trade-off.
	MissLookbackDays int
}

type indexKey struct {
	user string
	hash string
}

// Driver implements store.Store backed by day-sharded JSON files.
type Driver struct {
	config Config
	logger *slog.Logger

	// mu guards index only. It is never held across disk I/O.
	mu    sync.RWMutex
	index map[indexKey]*chat.Turn

	// shardLocks serializes read-modify-rewrite per (user, day) file.
	shardLocks sync.Map // string -> *sync.Mutex
}

// NewDriver creates a filesystem-backed store rooted at config.Root.
func NewDriver(config Config, log *slog.Logger) (*Driver, error) {
	if config.Root == "" {
		return nil, errors.New("storage root is required")
	}
	if config.MissLookbackDays <= 0 {
		config.MissLookbackDays = 1
	}
	if log == nil {
		log = logger.Nop()
	}

	if err := os.MkdirAll(config.Root, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}

	return &Driver{
		config: config,
		logger: log,
		index:  make(map[indexKey]*chat.Turn),
	}, nil
}

// Save appends the turn to the user's day shard and indexes it.
//
// The in-memory write always succeeds; a disk failure degrades the save
// instead of failing it (the error is logged) so the conversational flow
// stays available. Callers that care about durability must check the
// returned SaveStatus.
func (d *Driver) Save(_ context.Context, day store.Day, user string, turn *chat.Turn) (*chat.Turn, store.SaveStatus, error) {
	if err := validateUser(user); err != nil {
		return nil, store.SaveDegraded, err
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
	d.index[indexKey{user: user, hash: saved.Hash}] = saved
	d.mu.Unlock()

	if err := d.appendToShard(user, day, saved); err != nil {
		d.logger.Error("shard write failed, save degraded",
			"user", user,
			"day", day.String(),
			"hash", saved.Hash,
			"error", err,
		)
		return saved.Clone(), store.SaveDegraded, nil
	}

	return saved.Clone(), store.SaveDurable, nil
}

// Get looks up a turn by (user, hash). On an index miss the driver loads
// the last MissLookbackDays day shards and retries before reporting
// store.NotFoundError.
func (d *Driver) Get(_ context.Context, user, hash string) (*chat.Turn, error) {
	if turn := d.fromIndex(user, hash); turn != nil {
		return turn, nil
	}

	today := store.Today()
	for i := 0; i < d.config.MissLookbackDays; i++ {
		d.loadShardIntoIndex(user, today.AddDays(-i))
	}

	if turn := d.fromIndex(user, hash); turn != nil {
		return turn, nil
	}

	return nil, store.NotFoundError{User: user, Hash: hash}
}

// AllForUser returns the user's full history: shards in ascending date
// order, turns within a shard in append order. Directory entries that
// don't parse as dates are skipped; unreadable shards count as empty.
// Every turn read is also backfilled into the index.
func (d *Driver) AllForUser(_ context.Context, user string) ([]*chat.Turn, error) {
	if err := validateUser(user); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(d.config.Root, user))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		d.logger.Error("listing user shards failed", "user", user, "error", err)
		return nil, nil
	}

	var days []store.Day
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		day, err := store.ParseDay(entry.Name())
		if err != nil {
			continue
		}
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var turns []*chat.Turn
	for _, day := range days {
		shard := d.readShard(user, day)
		d.indexTurns(user, shard)
		turns = append(turns, shard...)
	}

	return turns, nil
}

// AllForUserOnDay returns the turns of exactly one day shard.
func (d *Driver) AllForUserOnDay(_ context.Context, user string, day store.Day) ([]*chat.Turn, error) {
	if err := validateUser(user); err != nil {
		return nil, err
	}

	shard := d.readShard(user, day)
	d.indexTurns(user, shard)
	return shard, nil
}

// Close releases driver resources. The filesystem driver holds none.
func (d *Driver) Close() error {
	return nil
}

func (d *Driver) fromIndex(user, hash string) *chat.Turn {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if turn, ok := d.index[indexKey{user: user, hash: hash}]; ok {
		return turn.Clone()
	}
	return nil
}

func (d *Driver) indexTurns(user string, turns []*chat.Turn) {
	if len(turns) == 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, turn := range turns {
		if turn.Hash == "" {
			continue
		}
		d.index[indexKey{user: user, hash: turn.Hash}] = turn
	}
}

func (d *Driver) loadShardIntoIndex(user string, day store.Day) {
	d.indexTurns(user, d.readShard(user, day))
}

// readShard reads one day document. Missing, unreadable, or malformed
// files are all treated as an empty shard; corruption is logged but never
// propagated, favoring availability over strict correctness.
func (d *Driver) readShard(user string, day store.Day) []*chat.Turn {
	path := d.shardPath(user, day)

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			d.logger.Error("reading shard failed, treating as empty",
				"path", path,
				"error", err,
			)
		}
		return nil
	}

	var turns []*chat.Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		d.logger.Error("malformed shard, treating as empty",
			"path", path,
			"error", err,
		)
		return nil
	}

	return turns
}

// appendToShard performs the read-modify-rewrite of a day document under
// the shard's lock.
func (d *Driver) appendToShard(user string, day store.Day, turn *chat.Turn) error {
	lock := d.shardLock(user, day)
	lock.Lock()
	defer lock.Unlock()

	turns := d.readShard(user, day)
	turns = append(turns, turn)

	data, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("encoding shard: %w", err)
	}

	dir := filepath.Dir(d.shardPath(user, day))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating shard directory: %w", err)
	}

	if err := os.WriteFile(d.shardPath(user, day), data, 0o644); err != nil {
		return fmt.Errorf("writing shard: %w", err)
	}

	return nil
}

func (d *Driver) shardPath(user string, day store.Day) string {
	return filepath.Join(d.config.Root, user, day.String(), messagesFile)
}

func (d *Driver) shardLock(user string, day store.Day) *sync.Mutex {
	key := user + "/" + day.String()
	actual, _ := d.shardLocks.LoadOrStore(key, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

func validateUser(user string) error {
	if user == "" {
		return errors.New("user is required")
	}
	if strings.ContainsAny(user, `/\`) || user == "." || user == ".." {
		return fmt.Errorf("invalid user %q", user)
	}
	return nil
}

// Ensure Driver implements store.Store.
var _ store.Store = (*Driver)(nil)
