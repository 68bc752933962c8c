// Package servecmder provides the serve command that runs the HTTP API
// server with its stores, providers, and async event publishing.
package servecmder

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muninnhq/muninn/api"
	attributesfs "github.com/muninnhq/muninn/pkg/attributes/fs"
	"github.com/muninnhq/muninn/pkg/compactor"
	completionutils "github.com/muninnhq/muninn/pkg/completion/utils"
	"github.com/muninnhq/muninn/pkg/config"
	embeddingutils "github.com/muninnhq/muninn/pkg/embeddings/utils"
	"github.com/muninnhq/muninn/pkg/eventstream"
	eventstreamkafka "github.com/muninnhq/muninn/pkg/eventstream/kafka"
	eventstreamnop "github.com/muninnhq/muninn/pkg/eventstream/nop"
	"github.com/muninnhq/muninn/pkg/logger"
	"github.com/muninnhq/muninn/pkg/metrics"
	"github.com/muninnhq/muninn/pkg/search"
	storefs "github.com/muninnhq/muninn/pkg/store/fs"
	"github.com/muninnhq/muninn/pkg/worker"
)

type ServeCommander struct {
	cfg    *config.Config
	logger *slog.Logger

	// flag targets, bound into viper in PreRunE
	listen          string
	storageRoot     string
	embeddingProv   string
	embeddingTgt    string
	embeddingModel  string
	completionProv  string
	completionTgt   string
	completionModel string
	eventsProvider  string
	eventsTopic     string
}

const serveLongDesc string = `Run the Muninn HTTP API server.

Configuration is resolved from flags, MUNINN_ environment variables, and
config.toml, in that order of precedence.`

const serveShortDesc string = "Run the Muninn API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("could not get config flag: %v", err)
			}

			v, err := config.InitViper(configPath)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, config.ServeFlags, []string{
				config.FlagListen,
				config.FlagStorageRoot,
				config.FlagEmbeddingProv,
				config.FlagEmbeddingTgt,
				config.FlagEmbeddingModel,
				config.FlagCompletionProv,
				config.FlagCompletionTgt,
				config.FlagCompletionModel,
				config.FlagEventsProvider,
				config.FlagEventsTopic,
			})

			cmder.cfg = config.ConfigFromViper(v)

			debug, err := cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			if debug {
				cmder.cfg.Log.Level = "debug"
			}

			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.ServeFlags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagStorageRoot, &cmder.storageRoot)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagEmbeddingProv, &cmder.embeddingProv)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagEmbeddingTgt, &cmder.embeddingTgt)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagCompletionProv, &cmder.completionProv)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagCompletionTgt, &cmder.completionTgt)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagCompletionModel, &cmder.completionModel)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagEventsProvider, &cmder.eventsProvider)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagEventsTopic, &cmder.eventsTopic)

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.New(
		logger.WithDebug(c.cfg.Log.Level == "debug"),
		logger.WithPretty(c.cfg.Log.Pretty),
		logger.WithJSON(c.cfg.Log.JSON),
	)

	messages, err := storefs.NewDriver(storefs.Config{
		Root:             c.cfg.Storage.Root,
		MissLookbackDays: c.cfg.Storage.MissLookbackDays,
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating message store: %w", err)
	}
	defer messages.Close()

	attrs, err := attributesfs.NewDriver(attributesfs.Config{
		Root: c.cfg.Storage.Root,
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating attribute store: %w", err)
	}
	defer attrs.Close()

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: c.cfg.Embedding.Provider,
		TargetURL:    c.cfg.Embedding.Target,
		Model:        c.cfg.Embedding.Model,
		APIKey:       c.cfg.Embedding.APIKey,
		Cache:        c.cfg.Embedding.Cache,
	})
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	defer embedder.Close()

	completer, err := completionutils.NewCompleter(&completionutils.NewCompleterOpts{
		ProviderType: c.cfg.Completion.Provider,
		TargetURL:    c.cfg.Completion.Target,
		Model:        c.cfg.Completion.Model,
		APIKey:       c.cfg.Completion.APIKey,
	})
	if err != nil {
		return fmt.Errorf("creating completer: %w", err)
	}
	defer completer.Close()

	publisher, err := c.createPublisher()
	if err != nil {
		return err
	}
	defer publisher.Close()

	pool, err := worker.NewPool(&worker.Config{
		Publisher: publisher,
		Logger:    c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}

	m := metrics.NewMetrics(metrics.DefaultNamespace)

	searcher := search.NewSearcher(messages, embedder, c.logger)
	searcher.LazyEmbeds = m.LazyEmbeds

	cmp := compactor.NewCompactor(messages, completer, c.logger)
	cmp.KeepRecent = c.cfg.Compaction.KeepRecent
	cmp.SummarizeWindow = c.cfg.Compaction.SummarizeWindow
	cmp.Compactions = m.Compactions

	apiServer := api.NewServer(api.Config{
		ListenAddr: c.cfg.API.Listen,
	}, api.Dependencies{
		Messages:   messages,
		Attributes: attrs,
		Embedder:   embedder,
		Searcher:   searcher,
		Compactor:  cmp,
		Pool:       pool,
		Metrics:    m,
	}, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		pool.Close()
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		if err := apiServer.Shutdown(); err != nil {
			c.logger.Error("api shutdown failed", "error", err)
		}
		// Drain queued turn events after the server stops accepting requests.
		pool.Close()
		return nil
	}
}

func (c *ServeCommander) createPublisher() (eventstream.Publisher, error) {
	switch c.cfg.Events.Provider {
	case "", "nop":
		c.logger.Info("event publishing disabled")
		return eventstreamnop.NewPublisher(), nil
	case "kafka":
		c.logger.Info("using kafka event publishing",
			"brokers", c.cfg.Events.Brokers,
			"topic", c.cfg.Events.Topic,
		)
		return eventstreamkafka.NewPublisher(eventstreamkafka.Config{
			Brokers: c.cfg.Events.Brokers,
			Topic:   c.cfg.Events.Topic,
			Logger:  c.logger,
		})
	default:
		return nil, fmt.Errorf("unsupported events provider: %s", c.cfg.Events.Provider)
	}
}
