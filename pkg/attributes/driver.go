// Package attributes defines per-user key/value persistence, used for bot
// and session metadata such as external chat-channel identifiers.
package attributes

import "context"

// Attribute is one (key, value) pair for a user. Values are last-write-wins
// strings; no history is retained.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Store is the interface for saving and fetching user attributes.
type Store interface {
	// Save upserts the attribute for the user. Like the message store,
	// a disk failure does not fail the call; the in-memory value wins and
	// the failure is logged.
	Save(ctx context.Context, user, key, value string) (*Attribute, error)

	// Get returns the attribute, falling back to disk when the key is not
	// in memory. Returns NotFoundError when absent in both.
	Get(ctx context.Context, user, key string) (*Attribute, error)

	// Close releases any resources held by the store.
	Close() error
}

// NotFoundError is returned when an attribute doesn't exist for the user.
type NotFoundError struct {
	User string
	Key  string
}

func (e NotFoundError) Error() string {
	if e.Key == "" {
		return "attribute not found"
	}

	return "attribute not found: " + e.User + "/" + e.Key
}
