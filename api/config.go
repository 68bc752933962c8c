// Package api provides the HTTP API server for saving, retrieving, and
// searching conversation turns and user attributes.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string
}
