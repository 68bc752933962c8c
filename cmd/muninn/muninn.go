// Package muninncmder
package muninncmder

import (
	"github.com/spf13/cobra"

	servecmder "github.com/muninnhq/muninn/cmd/muninn/serve"
	versioncmder "github.com/muninnhq/muninn/cmd/version"
)

const muninnLongDesc string = `Muninn is the persistence and retrieval core for a personal assistant.

It stores conversation turns in day-sharded files per user, ranks history
by semantic similarity, and compacts long histories into model-written
summaries.

Run the service using:
  muninn serve         Run the HTTP API server`

const muninnShortDesc string = "Muninn - conversational memory"

func NewMuninnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "muninn",
		Short: muninnShortDesc,
		Long:  muninnLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to config.toml")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
