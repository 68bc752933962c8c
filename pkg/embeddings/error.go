package embeddings

import "errors"

// ErrEmbedding is returned when embedding generation fails or times out.
// Provider implementations wrap their failures with it so callers can
// classify provider errors without knowing the backend.
var ErrEmbedding = errors.New("embedding failed")
