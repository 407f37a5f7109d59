// internal/app/system/workers/consumer.go
package workers

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/rollcallhq/rollcall/internal/app/process"
	"github.com/rollcallhq/rollcall/internal/app/queue"
	"github.com/rollcallhq/rollcall/internal/app/system/timeouts"
	"github.com/rollcallhq/rollcall/internal/domain/models"
)

// Consumer is the worker pool that drains the event queue. Each worker
// fetches, decodes and applies envelopes until stopped; failed applies
// are nacked so the transport redelivers them.
type Consumer struct {
	queue  queue.Consumer
	proc   *process.Processor
	log    *zap.Logger
	count  int
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConsumer creates a consumer pool with count workers.
func NewConsumer(q queue.Consumer, proc *process.Processor, logger *zap.Logger, count int) *Consumer {
	if count <= 0 {
		count = 4
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{
		queue:  q,
		proc:   proc,
		log:    logger,
		count:  count,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the workers.
func (c *Consumer) Start() {
	for i := 0; i < c.count; i++ {
		c.wg.Add(1)
		go c.run(i)
	}
	c.log.Info("queue consumer started", zap.Int("workers", c.count))
}

// Stop cancels all workers and waits for in-flight envelopes to finish.
func (c *Consumer) Stop() {
	c.cancel()
	c.wg.Wait()
	c.log.Info("queue consumer stopped")
}

func (c *Consumer) run(id int) {
	defer c.wg.Done()

	for {
		delivery, err := c.queue.Fetch(c.ctx)
		if err != nil {
			if c.ctx.Err() != nil || errors.Is(err, queue.ErrClosed) {
				return
			}
			c.log.Warn("consumer: fetch failed",
				zap.Int("worker", id),
				zap.Error(err))
			continue
		}
		c.handle(delivery)
	}
}

func (c *Consumer) handle(d queue.Delivery) {
	env, err := models.DecodeEnvelope(d.Data)
	if err != nil {
		// Undecodable messages can never succeed; ack them out of the
		// stream instead of redelivering forever.
		c.log.Error("consumer: dropping undecodable message", zap.Error(err))
		if aerr := d.Ack(); aerr != nil {
			c.log.Warn("consumer: ack failed", zap.Error(aerr))
		}
		return
	}

	// Processing continues even during shutdown: the envelope is
	// already in flight and handlers are restart-safe anyway. The
	// deadline keeps a wedged handler from pinning a worker forever.
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
	defer cancel()
	if err := c.proc.Handle(ctx, env); err != nil {
		if nerr := d.Nak(); nerr != nil {
			c.log.Warn("consumer: nak failed",
				zap.String("kind", string(env.Kind)),
				zap.Error(nerr))
		}
		return
	}
	if err := d.Ack(); err != nil {
		c.log.Warn("consumer: ack failed",
			zap.String("kind", string(env.Kind)),
			zap.Error(err))
	}
}
