package api

import (
	"errors"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/muninnhq/muninn/pkg/attributes"
	"github.com/muninnhq/muninn/pkg/chat"
	"github.com/muninnhq/muninn/pkg/completion"
	"github.com/muninnhq/muninn/pkg/embeddings"
	"github.com/muninnhq/muninn/pkg/eventstream"
	"github.com/muninnhq/muninn/pkg/search"
	"github.com/muninnhq/muninn/pkg/store"
	"github.com/muninnhq/muninn/pkg/utils"
	"github.com/muninnhq/muninn/pkg/worker"
)

// ErrorResponse is the JSON error body for every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SaveTurnRequest is the body for saving a conversation turn.
type SaveTurnRequest struct {
	// Role defaults to "user" when empty.
	Role string `json:"role"`

	// Content is the turn text. Required.
	Content string `json:"content"`

	// Hash is the caller-supplied turn identifier. A fresh UUID is
	// assigned when empty.
	Hash string `json:"hash"`
}

// SaveTurnResponse carries the persisted turn plus its durability outcome,
// so callers can distinguish fully durable saves from memory-only ones.
type SaveTurnResponse struct {
	Turn       *chat.Turn `json:"turn"`
	Durability string     `json:"durability"`
}

// ContextResponse is the compacted working context for a user.
type ContextResponse struct {
	Turns []*chat.Turn `json:"turns"`
	Count int          `json:"count"`
}

// SearchRequest is the body for semantic search.
type SearchRequest struct {
	Content string `json:"content"`
}

// SearchResponse carries scored turns, best match first.
type SearchResponse struct {
	Results []search.Result `json:"results"`
	Count   int             `json:"count"`
}

// DaySummaryResponse is the contents of one day shard.
type DaySummaryResponse struct {
	User  string       `json:"user"`
	Day   string       `json:"day"`
	Turns []*chat.Turn `json:"turns"`
	Count int          `json:"count"`
}

// SaveAttributeRequest is the body for upserting a user attribute.
type SaveAttributeRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleSaveTurn embeds the turn content, persists the turn under today's
// shard, and queues a turn event for async publishing. An embedding
// provider failure fails the request; the turn is not saved without its
// vector.
func (s *Server) handleSaveTurn(c *fiber.Ctx) error {
	username := c.Params("username")

	var req SaveTurnRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "content is required"})
	}

	role := req.Role
	if role == "" {
		role = chat.RoleUser
	}

	hash := req.Hash
	if hash == "" {
		hash = uuid.NewString()
	}

	ctx := c.Context()

	embedding, err := s.deps.Embedder.Embed(ctx, req.Content)
	if err != nil {
		s.logger.Error("embedding turn content failed",
			"user", username,
			"content", utils.Truncate(req.Content, 80),
			"error", err,
		)
		if s.deps.Metrics != nil {
			s.deps.Metrics.ProviderErrors.WithLabelValues("embedding").Inc()
		}
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "embedding provider failed"})
	}

	turn := chat.NewTurn(role, req.Content, hash)
	turn.Embedding = embedding

	day := store.Today()
	saved, status, err := s.deps.Messages.Save(ctx, day, username, turn)
	if err != nil {
		s.logger.Error("saving turn failed",
			"user", username,
			"hash", hash,
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to save turn"})
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.TurnsSaved.WithLabelValues(role).Inc()
		if status == store.SaveDegraded {
			s.deps.Metrics.DegradedWrites.Inc()
		}
	}

	if s.deps.Pool != nil {
		event := eventstream.NewTurnSavedEvent(username, day, saved, status)
		s.deps.Pool.Enqueue(worker.Job{Event: event})
	}

	return c.Status(fiber.StatusCreated).JSON(SaveTurnResponse{
		Turn:       saved,
		Durability: status.String(),
	})
}

// handleContext returns the user's compacted working context.
func (s *Server) handleContext(c *fiber.Ctx) error {
	username := c.Params("username")

	started := time.Now()
	turns, err := s.deps.Compactor.Context(c.Context(), username)
	if err != nil {
		if errors.Is(err, completion.ErrCompletion) {
			if s.deps.Metrics != nil {
				s.deps.Metrics.ProviderErrors.WithLabelValues("completion").Inc()
			}
			return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "completion provider failed"})
		}
		s.logger.Error("building context failed",
			"user", username,
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to build context"})
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveCompactionLatency(time.Since(started))
	}

	return c.JSON(ContextResponse{Turns: turns, Count: len(turns)})
}

// handleSearch ranks the user's history against the query text, best
// match first.
func (s *Server) handleSearch(c *fiber.Ctx) error {
	username := c.Params("username")

	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "content is required"})
	}

	results, err := s.deps.Searcher.SearchText(c.Context(), username, req.Content)
	if err != nil {
		if errors.Is(err, embeddings.ErrEmbedding) {
			if s.deps.Metrics != nil {
				s.deps.Metrics.ProviderErrors.WithLabelValues("embedding").Inc()
			}
			return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "embedding provider failed"})
		}
		s.logger.Error("search failed",
			"user", username,
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "search failed"})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if s.deps.Metrics != nil {
		s.deps.Metrics.Searches.Inc()
	}

	return c.JSON(SearchResponse{Results: results, Count: len(results)})
}

// handleGetTurn returns a single turn by its hash.
func (s *Server) handleGetTurn(c *fiber.Ctx) error {
	username := c.Params("username")
	id := c.Params("id")

	turn, err := s.deps.Messages.Get(c.Context(), username, id)
	if err != nil {
		var notFound store.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "turn not found"})
		}
		s.logger.Error("fetching turn failed",
			"user", username,
			"hash", id,
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to fetch turn"})
	}

	return c.JSON(turn)
}

// handleDaySummary returns every turn saved for the user on one day.
func (s *Server) handleDaySummary(c *fiber.Ctx) error {
	username := c.Params("username")

	day, err := store.ParseDay(c.Params("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid date, expected YYYY-MM-DD"})
	}

	turns, err := s.deps.Messages.AllForUserOnDay(c.Context(), username, day)
	if err != nil {
		s.logger.Error("fetching day shard failed",
			"user", username,
			"day", day.String(),
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to fetch day"})
	}

	return c.JSON(DaySummaryResponse{
		User:  username,
		Day:   day.String(),
		Turns: turns,
		Count: len(turns),
	})
}

// handleSaveAttribute upserts one key/value pair for the user.
func (s *Server) handleSaveAttribute(c *fiber.Ctx) error {
	username := c.Params("username")

	var req SaveAttributeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if req.Key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "key is required"})
	}

	attr, err := s.deps.Attributes.Save(c.Context(), username, req.Key, req.Value)
	if err != nil {
		s.logger.Error("saving attribute failed",
			"user", username,
			"key", req.Key,
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to save attribute"})
	}

	return c.Status(fiber.StatusCreated).JSON(attr)
}

// handleGetAttribute returns one attribute by key.
func (s *Server) handleGetAttribute(c *fiber.Ctx) error {
	username := c.Params("username")
	key := c.Params("key")

	attr, err := s.deps.Attributes.Get(c.Context(), username, key)
	if err != nil {
		var notFound attributes.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "attribute not found"})
		}
		s.logger.Error("fetching attribute failed",
			"user", username,
			"key", key,
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to fetch attribute"})
	}

	return c.JSON(attr)
}
