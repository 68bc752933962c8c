// Package fs implements attributes.Store as one JSON document per user:
//
//	<root>/<user>/attributes.json
//
// Saves read-merge-write the whole document so concurrent writers for the
// same user are serialized; an in-memory map fronts the file for reads.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/muninnhq/muninn/pkg/attributes"
	"github.com/muninnhq/muninn/pkg/logger"
)

const attributesFile = "attributes.json"

// Config holds configuration for the filesystem attribute driver.
type Config struct {
	// Root is the storage root directory, shared with the message store.
	Root string
}

// Driver implements attributes.Store backed by per-user JSON documents.
type Driver struct {
	config Config
	logger *slog.Logger

	// mu guards memory. Held across the file read-merge-write during Save
	// because that sequence must serialize concurrent writers per user.
	mu     sync.Mutex
	memory map[string]map[string]string // user -> key -> value
}

// NewDriver creates a filesystem-backed attribute store rooted at config.Root.
func NewDriver(config Config, log *slog.Logger) (*Driver, error) {
	if config.Root == "" {
		return nil, errors.New("storage root is required")
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
		memory: make(map[string]map[string]string),
	}, nil
}

// Save merges the pair into memory and rewrites the user's document on
// disk. A disk failure is logged, not returned: the in-memory value is
// authoritative for the lifetime of the process.
func (d *Driver) Save(_ context.Context, user, key, value string) (*attributes.Attribute, error) {
	if err := validateUser(user); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, errors.New("attribute key is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	userAttrs, ok := d.memory[user]
	if !ok {
		userAttrs = make(map[string]string)
		d.memory[user] = userAttrs
	}
	userAttrs[key] = value

	// Merge into whatever is on disk so values written by earlier process
	// lifetimes survive.
	onDisk := d.readDocument(user)
	onDisk[key] = value

	if err := d.writeDocument(user, onDisk); err != nil {
		d.logger.Error("attribute write failed, value held in memory only",
			"user", user,
			"key", key,
			"error", err,
		)
	}

	return &attributes.Attribute{Key: key, Value: value}, nil
}

// Get checks memory first and falls back to the on-disk document.
func (d *Driver) Get(_ context.Context, user, key string) (*attributes.Attribute, error) {
	if err := validateUser(user); err != nil {
		return nil, err
	}

	d.mu.Lock()
	if userAttrs, ok := d.memory[user]; ok {
		if value, ok := userAttrs[key]; ok {
			d.mu.Unlock()
			return &attributes.Attribute{Key: key, Value: value}, nil
		}
	}
	d.mu.Unlock()

	onDisk := d.readDocument(user)
	value, ok := onDisk[key]
	if !ok {
		return nil, attributes.NotFoundError{User: user, Key: key}
	}

	d.mu.Lock()
	userAttrs, exists := d.memory[user]
	if !exists {
		userAttrs = make(map[string]string)
		d.memory[user] = userAttrs
	}
	userAttrs[key] = value
	d.mu.Unlock()

	return &attributes.Attribute{Key: key, Value: value}, nil
}

// Close releases driver resources. The filesystem driver holds none.
func (d *Driver) Close() error {
	return nil
}

// readDocument loads the user's attribute document. Missing, unreadable,
// or malformed files all count as an empty document.
func (d *Driver) readDocument(user string) map[string]string {
	path := d.documentPath(user)

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			d.logger.Error("reading attributes failed, treating as empty",
				"path", path,
				"error", err,
			)
		}
		return make(map[string]string)
	}

	doc := make(map[string]string)
	if err := json.Unmarshal(data, &doc); err != nil {
		d.logger.Error("malformed attributes document, treating as empty",
			"path", path,
			"error", err,
		)
		return make(map[string]string)
	}

	return doc
}

func (d *Driver) writeDocument(user string, doc map[string]string) error {
	path := d.documentPath(user)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating user directory: %w", err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding attributes: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing attributes: %w", err)
	}

	return nil
}

func (d *Driver) documentPath(user string) string {
	return filepath.Join(d.config.Root, user, attributesFile)
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

// Ensure Driver implements attributes.Store.
var _ attributes.Store = (*Driver)(nil)
