// Package worker provides an asynchronous worker pool for persisting audit
// records using the provided audit.Driver.
//
// The pool decouples audit writes from the API's HTTP hot path so a slow
// database never delays a response.
package worker

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/lingopod/lingopod/pkg/audit"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the audit backend records are persisted to.
	Driver audit.Driver

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Pool persists audit records asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan audit.Record
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
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

	wp := &Pool{
		config: c,
		queue:  make(chan audit.Record, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a record for persistence by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the record being dropped
func (p *Pool) Enqueue(record audit.Record) bool {
	select {
	case p.queue <- record:
		p.logger.Debug("audit record queued",
			zap.String("task", record.Task),
			zap.String("request_id", record.RequestID),
		)
		return true
	default:
		p.logger.Error("audit record not queued, queue full, record dropped",
			zap.String("task", record.Task),
			zap.String("request_id", record.RequestID),
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight records to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls records off the queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", zap.Uint("worker_id", id))

	for record := range p.queue {
		p.persist(record)
	}

	p.logger.Debug("audit worker stopped", zap.Uint("worker_id", id))
}

func (p *Pool) persist(record audit.Record) {
	if err := p.config.Driver.Put(context.Background(), record); err != nil {
		p.logger.Error("async audit write failed",
			zap.String("task", record.Task),
			zap.String("request_id", record.RequestID),
			zap.Error(err),
		)
		return
	}

	p.logger.Debug("audit record stored",
		zap.String("task", record.Task),
		zap.String("request_id", record.RequestID),
	)
}
