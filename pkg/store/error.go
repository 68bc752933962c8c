package store

// NotFoundError is returned when a turn doesn't exist in any reachable shard.
type NotFoundError struct {
	User string
	Hash string
}

func (e NotFoundError) Error() string {
	if e.Hash == "" {
		return "turn not found"
	}

	return "turn not found: " + e.User + "/" + e.Hash
}
