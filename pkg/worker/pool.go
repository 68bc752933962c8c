// Package worker provides an asynchronous worker pool for publishing turn
// events off the HTTP hot path. Saving a turn must never block on the
// event stream backend; the pool absorbs publish latency and drops work
// when saturated rather than backpressuring the request.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/muninnhq/muninn/pkg/eventstream"
	"github.com/muninnhq/muninn/pkg/logger"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	Event *eventstream.TurnSavedEvent
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Publisher is the eventstream backend events are delivered to.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool (defaults to 3).
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the structured logger. Defaults to a no-op logger.
	Logger *slog.Logger
}

// Pool delivers turn events asynchronously via a fixed set of workers.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewPool creates a pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped.
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			"event_id", job.Event.EventID,
			"user", job.Event.User,
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			"event_id", job.Event.EventID,
			"user", job.Event.User,
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker continuously pulls jobs off the queue until it closes.
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("worker stopped", "worker_id", id)
}

// processJob publishes a single turn event. Publish failures are logged,
// not retried: the event stream is an observer of durable state, never the
// source of truth.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	if err := p.config.Publisher.PublishTurn(ctx, job.Event); err != nil {
		p.logger.Error("async event publish failed",
			"event_id", job.Event.EventID,
			"user", job.Event.User,
			"error", err,
		)
		return
	}

	p.logger.Debug("turn event published",
		"event_id", job.Event.EventID,
		"user", job.Event.User,
		"hash", job.Event.Turn.Hash,
	)
}
