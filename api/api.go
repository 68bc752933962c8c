package api

import (
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/muninnhq/muninn/pkg/attributes"
	"github.com/muninnhq/muninn/pkg/compactor"
	"github.com/muninnhq/muninn/pkg/embeddings"
	"github.com/muninnhq/muninn/pkg/logger"
	"github.com/muninnhq/muninn/pkg/metrics"
	"github.com/muninnhq/muninn/pkg/search"
	"github.com/muninnhq/muninn/pkg/store"
	"github.com/muninnhq/muninn/pkg/worker"
)

// Dependencies are the collaborators the server operates on. Stores and
// providers are injected so they can be shared with other components.
type Dependencies struct {
	Messages   store.Store
	Attributes attributes.Store
	Embedder   embeddings.Embedder
	Searcher   *search.Searcher
	Compactor  *compactor.Compactor
	Pool       *worker.Pool
	Metrics    *metrics.Metrics
}

// Server is the HTTP API server.
type Server struct {
	config Config
	deps   Dependencies
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server and registers its routes.
func NewServer(config Config, deps Dependencies, log *slog.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		deps:   deps,
		logger: log,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	v1 := app.Group("/api/v1")
	v1.Post("/chat/:username", s.handleSaveTurn)
	v1.Get("/chat/:username/context", s.handleContext)
	v1.Post("/chat/:username/search", s.handleSearch)
	v1.Get("/chat/:username/:id", s.handleGetTurn)
	v1.Get("/summary/:username/:date", s.handleDaySummary)
	v1.Post("/attribute/:username", s.handleSaveAttribute)
	v1.Get("/attribute/:username/:key", s.handleGetAttribute)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}
