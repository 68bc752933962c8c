// Package completionutils is the completion utility package.
package completionutils

import (
	"fmt"

	"github.com/muninnhq/muninn/pkg/completion"
	"github.com/muninnhq/muninn/pkg/completion/anthropic"
	"github.com/muninnhq/muninn/pkg/completion/ollama"
	"github.com/muninnhq/muninn/pkg/completion/openai"
)

// NewCompleterOpts selects and configures a completion provider.
type NewCompleterOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	APIKey       string
}

// NewCompleter builds the configured completion.Completer.
func NewCompleter(o *NewCompleterOpts) (completion.Completer, error) {
	switch o.ProviderType {
	case "ollama":
		return ollama.NewCompleter(ollama.Config{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	case "openai":
		return openai.NewCompleter(openai.Config{
			APIKey:  o.APIKey,
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	case "anthropic":
		return anthropic.NewCompleter(anthropic.Config{
			APIKey: o.APIKey,
			Model:  o.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", o.ProviderType)
	}
}
